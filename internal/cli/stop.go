// stop.go implements the "denver stop" command.
//
// The stop command stops every managed container whose name matches a
// regular expression. Docker sends SIGTERM and kills the container if it
// has not exited after the grace period. Stopped containers are not
// removed.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/denver/internal/model"
	"github.com/mmr-tortoise/denver/internal/reconcile"
)

// NewStopCommand creates the "stop" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop [pattern]",
		Short: "Stop containers matching a pattern",
		Long: `Stop every managed container whose name matches the regular
expression pattern (default ".*", all managed containers).

Examples:
  denver stop
  denver stop '^api$'
  denver stop --json 'worker'`,

		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeContainerNames,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd.Context(), cmd.OutOrStdout(), patternArg(args))
		},
	}

	return cmd
}

// runStop is the main logic function for the stop command.
func runStop(ctx context.Context, out io.Writer, pattern string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := reconcile.CompilePattern(pattern); err != nil {
		return err
	}

	// In JSON mode the per-container progress lines are replaced by a
	// single result object.
	progress := out
	if IsJSONOutput() {
		progress = io.Discard
	}

	s, err := connect(ctx, cfg, progress)
	if err != nil {
		return err
	}
	defer s.Close()

	stopped, err := s.manager.Stop(ctx, pattern)
	if err != nil {
		return err
	}
	VerboseLog("Stopped %d container(s) matching %q", len(stopped), pattern)

	if IsJSONOutput() {
		printStopResultJSON(out, stopped)
	}
	return nil
}

// stoppedJSON is the JSON output structure for one stopped container.
type stoppedJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// printStopResultJSON outputs the stopped containers as structured JSON.
func printStopResultJSON(out io.Writer, stopped []model.LiveContainer) {
	result := struct {
		Stopped []stoppedJSON `json:"stopped"`
	}{
		Stopped: make([]stoppedJSON, 0, len(stopped)),
	}
	for _, c := range stopped {
		result.Stopped = append(result.Stopped, stoppedJSON{ID: c.ID, Name: c.Name()})
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(out, string(data))
}
