// run.go implements the "denver run" command.
//
// The run command rebuilds a declared container's image (unless
// --no-rebuild is given), removes any container already running under the
// declared name, and creates and starts a fresh one.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/denver/internal/reconcile"
)

// runFlags holds the flag values for the run command.
type runFlags struct {
	// noRebuild skips the image build and reuses the existing tag.
	noRebuild bool

	// noCache disables the build cache.
	noCache bool
}

// NewRunCommand creates the "run" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewRunCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Build and (re)start a container",
		Long: `Build the image of a declared container and replace any running
instance with a freshly created one.

The workspace is bind-mounted at the same path inside the container and
used as its working directory.

Examples:
  denver run api
  denver run api --no-rebuild
  denver run api --no-cache`,

		// Exactly one positional argument (container name) is required.
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeContainerNames,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), cmd.OutOrStdout(), args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noRebuild, "no-rebuild", false, "Start from the existing image without building")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "Do not use the build cache")

	return cmd
}

// runRun is the main logic function for the run command.
func runRun(ctx context.Context, out io.Writer, name string, flags *runFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	def, err := cfg.Container(name)
	if err != nil {
		return err
	}

	s, err := connect(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.manager.EnsureRunning(ctx, def, reconcile.RunOptions{
		Rebuild: !flags.noRebuild,
		NoCache: flags.noCache,
	})
	if err != nil {
		return err
	}

	VerboseLog("Container %q running as %s", name, id)
	return nil
}
