package reconcile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/mmr-tortoise/denver/internal/clock"
	"github.com/mmr-tortoise/denver/internal/docker"
	"github.com/mmr-tortoise/denver/internal/model"
)

// StopGracePeriod is how long the engine waits after asking a container to
// stop before killing it.
const StopGracePeriod = 5 * time.Second

// Manager reconciles declared container definitions against the engine.
type Manager struct {
	runtime Runtime

	// definitions is the declared set, keyed by container name.
	definitions map[string]*model.ContainerDefinition

	// out receives human-readable progress: build log lines and one line
	// per lifecycle action.
	out io.Writer

	logger *slog.Logger
	clock  clock.Clock
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for diagnostic messages. The default
// discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock sets the clock used to timestamp created containers. The
// default is clock.Real().
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// NewManager returns a Manager operating on runtime for the given declared
// definitions. Progress is written to out.
func NewManager(runtime Runtime, definitions map[string]*model.ContainerDefinition, out io.Writer, options ...Option) *Manager {
	m := &Manager{
		runtime:     runtime,
		definitions: definitions,
		out:         out,
		logger:      slog.New(slog.DiscardHandler),
		clock:       clock.Real(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// RunOptions controls EnsureRunning.
type RunOptions struct {
	// Rebuild builds the image before replacing the container.
	Rebuild bool

	// NoCache disables the engine's layer cache for the build.
	NoCache bool
}

// Build builds the image of def, forwarding every build log line to the
// Manager's output as soon as the engine emits it.
func (m *Manager) Build(ctx context.Context, def *model.ContainerDefinition, noCache bool) error {
	m.logger.Debug("building image",
		"container", def.Name,
		"tag", def.Tag,
		"context", def.Build.Context,
		"dockerfile", def.Build.Dockerfile,
		"no_cache", noCache,
	)

	return m.runtime.BuildImage(ctx, model.BuildOptions{
		Context:    def.Build.Context,
		Dockerfile: def.Build.Dockerfile,
		Tag:        def.Tag,
		Args:       def.Build.Args,
		NoCache:    noCache,
	}, func(line string) {
		fmt.Fprintln(m.out, line)
	})
}

// EnsureRunning makes def's container run from a freshly created instance
// and returns the new container ID.
//
// The steps run strictly in order: optional build, listing of managed
// containers, forced removal of every container named def.Name, creation,
// start. Any failure aborts the remaining steps.
func (m *Manager) EnsureRunning(ctx context.Context, def *model.ContainerDefinition, opts RunOptions) (string, error) {
	if opts.Rebuild {
		if err := m.Build(ctx, def, opts.NoCache); err != nil {
			return "", err
		}
	}

	live, err := m.runtime.ListContainers(ctx, docker.FilterLabels())
	if err != nil {
		return "", err
	}

	for _, c := range live {
		if c.Name() != def.Name {
			continue
		}
		fmt.Fprintf(m.out, "Removing %s\n", c.Name())
		m.logger.Debug("removing container", "container", def.Name, "id", c.ID, "state", c.State)
		if err := m.runtime.RemoveContainer(ctx, c.ID, true); err != nil {
			return "", err
		}
	}

	createOpts := createOptions(def, docker.BuildLabels(def, m.clock.Now()))

	fmt.Fprintf(m.out, "Creating %s with image %s\n", def.Name, def.Tag)
	m.logger.Debug("creating container",
		"container", def.Name,
		"binds", createOpts.Binds,
		"flags", def.Run.Flags.String(),
	)
	id, err := m.runtime.CreateContainer(ctx, createOpts)
	if err != nil {
		return "", err
	}

	if err := m.runtime.StartContainer(ctx, id); err != nil {
		return "", err
	}
	fmt.Fprintf(m.out, "Started %s - %s\n", model.ShortID(id), def.Name)

	return id, nil
}

// createOptions translates a definition's run section into engine create
// options. The workspace is bind-mounted at the same path and used as the
// working directory; declared volumes follow it.
func createOptions(def *model.ContainerDefinition, labels map[string]string) model.CreateOptions {
	var binds []string
	if def.Run.Workspace != "" {
		binds = append(binds, def.Run.Workspace+":"+def.Run.Workspace)
	}
	binds = append(binds, def.Run.Volumes...)

	return model.CreateOptions{
		Name:       def.Name,
		Image:      def.Tag,
		Binds:      binds,
		WorkingDir: def.Run.Workspace,
		OpenStdin:  def.Run.Flags.Has(model.FlagInteractive),
		AutoRemove: def.Run.Flags.Has(model.FlagAutoRemove),
		Privileged: def.Run.Flags.Has(model.FlagPrivileged),
		Labels:     labels,
		Cmd:        slices.Clone(def.Run.Args),
	}
}
