package reconcile

import (
	"context"
	"time"

	"github.com/mmr-tortoise/denver/internal/docker"
	"github.com/mmr-tortoise/denver/internal/model"
)

// Runtime is the subset of container engine operations the Manager uses.
// docker.Client is the production implementation.
type Runtime interface {
	// BuildImage builds an image and calls onLine for each build log line
	// as it arrives.
	BuildImage(ctx context.Context, opts model.BuildOptions, onLine func(string)) error

	// ListContainers returns all containers, running or not, carrying
	// every label in labels.
	ListContainers(ctx context.Context, labels map[string]string) ([]model.LiveContainer, error)

	// CreateContainer creates a container and returns its ID.
	CreateContainer(ctx context.Context, opts model.CreateOptions) (string, error)

	// StartContainer starts a created container.
	StartContainer(ctx context.Context, id string) error

	// StopContainer asks the engine to stop a container, allowing grace
	// before it is killed.
	StopContainer(ctx context.Context, id string, grace time.Duration) error

	// RemoveContainer deletes a container. With force, a running
	// container is killed first.
	RemoveContainer(ctx context.Context, id string, force bool) error
}

var _ Runtime = (*docker.Client)(nil)
