// container.go implements Docker container lifecycle operations for the
// denver CLI: listing managed containers and creating, starting,
// stopping, and removing them through the Docker SDK.
package docker

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"

	"github.com/mmr-tortoise/denver/internal/model"
)

// ListContainers queries the Docker daemon for all containers matching the
// label filter, including stopped ones. Callers pass FilterLabels() to scope
// the listing to managed containers. Summaries without the ownership marker
// are dropped client-side as well.
//
// The result is a fresh snapshot; nothing is cached between calls.
func (c *Client) ListContainers(ctx context.Context, labels map[string]string) ([]model.LiveContainer, error) {
	// Docker performs the label filtering server-side. All includes
	// stopped/exited containers, which still occupy their name.
	containers, err := c.inner.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: labelFilterArgs(labels),
	})
	if err != nil {
		return nil, model.WrapError(model.KindList, "failed to list Docker containers", err)
	}

	return managedContainers(containers), nil
}

// managedContainers converts summaries to the domain model, keeping only
// those that carry the ownership marker.
func managedContainers(summaries []container.Summary) []model.LiveContainer {
	result := make([]model.LiveContainer, 0, len(summaries))
	for _, s := range summaries {
		if !IsManaged(s.Labels) {
			continue
		}
		result = append(result, summaryToLive(s))
	}
	return result
}

// summaryToLive converts a Docker API container summary to the domain
// model. Names keep their leading "/" here; LiveContainer.Name strips it.
func summaryToLive(s container.Summary) model.LiveContainer {
	return model.LiveContainer{
		ID:     s.ID,
		Names:  s.Names,
		Image:  s.Image,
		State:  string(s.State),
		Status: s.Status,
		Labels: s.Labels,
	}
}

// CreateContainer creates (but does not start) a container and returns its
// ID. Failures are model.KindRun errors.
func (c *Client) CreateContainer(ctx context.Context, opts model.CreateOptions) (string, error) {
	cfg, hostCfg := createConfigs(opts)

	resp, err := c.inner.ContainerCreate(ctx, cfg, hostCfg, nil, nil, opts.Name)
	if err != nil {
		return "", model.WrapError(model.KindRun,
			fmt.Sprintf("failed to create container %q", opts.Name), err)
	}
	return resp.ID, nil
}

// createConfigs translates engine-neutral create options into the Docker
// API container and host configurations.
func createConfigs(opts model.CreateOptions) (*container.Config, *container.HostConfig) {
	cfg := &container.Config{
		Image:       opts.Image,
		WorkingDir:  opts.WorkingDir,
		Labels:      opts.Labels,
		Cmd:         opts.Cmd,
		OpenStdin:   opts.OpenStdin,
		AttachStdin: opts.OpenStdin,
	}

	hostCfg := &container.HostConfig{
		Binds:      opts.Binds,
		AutoRemove: opts.AutoRemove,
		Privileged: opts.Privileged,
	}

	return cfg, hostCfg
}

// StartContainer starts a created container by its ID.
func (c *Client) StartContainer(ctx context.Context, containerID string) error {
	if err := c.inner.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return model.WrapError(model.KindRun,
			fmt.Sprintf("failed to start container %q", model.ShortID(containerID)), err)
	}
	return nil
}

// StopContainer stops a running container. The engine sends SIGTERM and,
// once grace has elapsed, SIGKILL. denver adds no timeout of its own.
func (c *Client) StopContainer(ctx context.Context, containerID string, grace time.Duration) error {
	timeout := int(grace.Seconds())
	err := c.inner.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout})
	if err != nil {
		return model.WrapError(model.KindStop,
			fmt.Sprintf("failed to stop container %q", model.ShortID(containerID)), err)
	}
	return nil
}

// RemoveContainer removes a container by its ID. With force set, a running
// container is killed first.
func (c *Client) RemoveContainer(ctx context.Context, containerID string, force bool) error {
	err := c.inner.ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force: force,
	})
	if err != nil {
		return model.WrapError(model.KindRemove,
			fmt.Sprintf("failed to remove container %q", model.ShortID(containerID)), err)
	}
	return nil
}
