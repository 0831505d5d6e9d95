// build.go implements the "denver build" command, which
// builds a declared container's image and streams the build log without
// touching any container.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// NewBuildCommand creates the "build" cobra command.
func NewBuildCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "build <name>",
		Short: "Build a container's image",
		Long: `Build the image of a declared container and tag it with the
configured tag. Running containers are left alone.

Examples:
  denver build api
  denver build api --no-cache`,

		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeContainerNames,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd.OutOrStdout(), args[0], noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Do not use the build cache")

	return cmd
}

func runBuild(ctx context.Context, out io.Writer, name string, noCache bool) error {
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

	return s.manager.Build(ctx, def, noCache)
}
