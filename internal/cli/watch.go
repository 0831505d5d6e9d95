// watch.go implements the "denver watch" command.
//
// The watch command runs a container like "denver run", then watches the
// container's build context and rebuilds and restarts the container when
// files change. Changes within two seconds of the last completed rebuild
// are ignored. The command runs until interrupted or until a rebuild
// fails.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/denver/internal/reconcile"
	"github.com/mmr-tortoise/denver/internal/watch"
)

// NewWatchCommand creates the "watch" cobra command.
func NewWatchCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "watch <name>",
		Short: "Rebuild and restart a container on file changes",
		Long: `Build and start a declared container, then watch its build
context recursively. Every change made at least two seconds after the
last completed rebuild triggers another rebuild and restart.

Press Ctrl-C to stop watching. The container keeps running.

Examples:
  denver watch api
  denver watch api --no-cache`,

		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeContainerNames,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd.OutOrStdout(), args[0], noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Do not use the build cache")

	return cmd
}

func runWatch(ctx context.Context, out io.Writer, name string, noCache bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	def, err := cfg.Container(name)
	if err != nil {
		return err
	}

	// SIGINT and SIGTERM cancel the loop, which then returns without error.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := connect(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer s.Close()

	rebuild := func(ctx context.Context) error {
		_, err := s.manager.EnsureRunning(ctx, def, reconcile.RunOptions{
			Rebuild: true,
			NoCache: noCache,
		})
		if err == nil {
			fmt.Fprintf(out, "Watching %s for changes\n", def.Build.Context)
		}
		return err
	}

	return watch.NewLoop(watch.WithLogger(Logger())).Watch(ctx, def.Build.Context, rebuild)
}
