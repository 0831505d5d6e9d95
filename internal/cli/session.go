// session.go holds the setup shared by the commands that
// talk to the container engine: loading the configuration, connecting to
// Docker, and constructing the reconcile.Manager.
package cli

import (
	"context"
	"io"

	"github.com/mmr-tortoise/denver/internal/config"
	"github.com/mmr-tortoise/denver/internal/docker"
	"github.com/mmr-tortoise/denver/internal/reconcile"
)

// session bundles the collaborators of one engine-facing command.
type session struct {
	cfg     *config.Config
	client  *docker.Client
	manager *reconcile.Manager
}

// loadConfig loads the configuration selected by --config, $DENVER_CONFIG,
// or the default path, in that order. Warnings are logged at verbose level.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	VerboseLog("Loaded configuration %s (%d containers)", cfg.Path, len(cfg.Containers))
	for _, w := range cfg.Warnings {
		VerboseLog("Warning: %s", w)
	}
	return cfg, nil
}

// connect opens a Docker client for cfg, verifies that the daemon answers,
// and returns a session whose Manager writes progress to out. The caller
// must Close the session.
func connect(ctx context.Context, cfg *config.Config, out io.Writer) (*session, error) {
	client, err := docker.NewClient(cfg.Socket)
	if err != nil {
		return nil, err // NewClient already returns a DockerUnavailable error
	}

	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	VerboseLog("Connected to Docker daemon at %s", client.Host())

	return &session{
		cfg:     cfg,
		client:  client,
		manager: reconcile.NewManager(client, cfg.Containers, out, reconcile.WithLogger(Logger())),
	}, nil
}

// Close releases the Docker client.
func (s *session) Close() {
	_ = s.client.Close()
}
