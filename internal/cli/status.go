// status.go implements the "denver status" command.
//
// The status command joins the managed containers reported by Docker with
// the declared containers by name. Live containers show their engine state
// and status; declared containers without a live instance are shown as
// NOT CREATED. Output is a text table, or a JSON array with --json.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/denver/internal/reconcile"
	"github.com/mmr-tortoise/denver/internal/status"
)

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [pattern]",
		Short: "Show live and declared containers",
		Long: `Show the state of every managed container whose name matches the
regular expression pattern (default ".*"), followed by the matching
declared containers that have not been created.

Examples:
  denver status
  denver status '^api'
  denver status --json`,

		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeContainerNames,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout(), patternArg(args))
		},
	}

	return cmd
}

func runStatus(ctx context.Context, out io.Writer, pattern string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Compile before connecting so a bad pattern fails without Docker.
	if _, err := reconcile.CompilePattern(pattern); err != nil {
		return err
	}

	s, err := connect(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := s.manager.Status(ctx, pattern)
	if err != nil {
		return err
	}

	printStatus(out, rows)
	return nil
}

// printStatus writes rows as a table or, with --json, as JSON.
func printStatus(out io.Writer, rows []status.Row) {
	if !IsJSONOutput() {
		fmt.Fprint(out, status.Render(rows))
		return
	}

	result := struct {
		Containers []status.Row `json:"containers"`
	}{
		// Use an empty slice instead of nil so that JSON shows [] rather
		// than null when nothing matches.
		Containers: append(make([]status.Row, 0, len(rows)), rows...),
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(out, string(data))
}

// patternArg returns the optional pattern argument, defaulting to a
// pattern that matches every name.
func patternArg(args []string) string {
	if len(args) == 0 {
		return reconcile.DefaultPattern
	}
	return args[0]
}
