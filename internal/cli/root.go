// Package cli implements the cobra-based CLI commands for denver.
//
// Each subcommand (run, build, status, stop, watch, completion) is defined
// in its own file within this package. This file defines the root command
// that serves as the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/denver/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether status and error output is formatted
	// as JSON for machine consumption.
	jsonOutput bool

	// verbose enables diagnostic logging on stderr.
	verbose bool

	// configPath is the configuration file given with --config. When
	// empty, config.DefaultPath decides.
	configPath string
)

// Version, Commit, and Date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action. It only provides
// help text and global flags; the subcommands do the work.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "denver",
		Short: "Development container lifecycle manager",
		Long: `denver builds and runs development containers declared in a
configuration file.

Each declared container names a build context, an image tag, and how to
run it. denver rebuilds the image, replaces the running container with a
fresh one, reports live status next to the declared set, stops containers
by name pattern, and can rebuild automatically whenever the build context
changes.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// The completion command is defined explicitly so that unknown
		// shells map to a denver error.
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Configuration file (default $DENVER_CONFIG or ~/.config/denver/config.yml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewBuildCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// Errors are printed as "Error: <message>" (or a JSON object with --json)
// on stderr. model.Error values exit with their kind's code; any other
// error, such as a cobra argument error, exits with the general code.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(int(model.KindOf(err).ExitCode()))
	}
}

// errorJSON is the JSON shape of a failed command.
type errorJSON struct {
	Error errorBodyJSON `json:"error"`
}

type errorBodyJSON struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// printError writes err to w in the format selected by --json.
func printError(w io.Writer, err error) {
	if !jsonOutput {
		fmt.Fprintf(w, "Error: %s\n", err)
		return
	}

	body := errorBodyJSON{Kind: model.KindGeneral.String(), Message: err.Error()}
	var e *model.Error
	if errors.As(err, &e) {
		body.Kind = e.Kind.String()
		body.Message = e.Message
		if e.Err != nil {
			body.Detail = e.Err.Error()
		}
	}

	// Errors go to stderr even in JSON mode; stdout is reserved for
	// successful command output.
	data, _ := json.MarshalIndent(errorJSON{Error: body}, "", "  ")
	fmt.Fprintln(w, string(data))
}

// Logger returns the diagnostic logger: a text handler on stderr at debug
// level with --verbose, a discarding logger otherwise.
func Logger() *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...any) {
	if verbose {
		Logger().Debug(fmt.Sprintf(format, args...))
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
