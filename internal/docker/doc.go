// Package docker provides Docker Engine API wrappers and container
// lifecycle management for the denver CLI.
//
// This package handles:
//   - Docker client initialization from the configured socket, DOCKER_HOST,
//     or automatic socket detection (Linux, macOS, Windows)
//   - The ownership labels attached to every container denver creates
//     (labels are the only marker separating managed from unmanaged
//     containers)
//   - Image builds with streamed, line-by-line log forwarding
//   - Container lifecycle operations: list, create, start, stop, remove
//
// Every failure is returned as a *model.Error whose kind names the
// operation that failed (build, run, stop, remove, list).
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package docker
