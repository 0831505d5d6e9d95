package reconcile

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/mmr-tortoise/denver/internal/docker"
	"github.com/mmr-tortoise/denver/internal/model"
)

// fakeRuntime is an in-memory container engine. It records every call in
// order so tests can assert on sequencing.
type fakeRuntime struct {
	mu sync.Mutex

	containers []model.LiveContainer
	nextID     int

	// buildLines are emitted by BuildImage; buildErr is returned after.
	buildLines []string
	buildErr   error

	// errs maps an operation name to the error it returns.
	errs map[string]error

	calls []string
	stops []time.Duration

	lastCreate model.CreateOptions
	lastBuild  model.BuildOptions
}

var _ Runtime = (*fakeRuntime)(nil)

func newFakeRuntime(containers ...model.LiveContainer) *fakeRuntime {
	return &fakeRuntime{containers: containers, errs: map[string]error{}}
}

// running returns a managed running container named name.
func running(id, name, image string) model.LiveContainer {
	return model.LiveContainer{
		ID:     id,
		Names:  []string{"/" + name},
		Image:  image,
		State:  "running",
		Status: "Up 2 minutes",
		Labels: docker.FilterLabels(),
	}
}

func (f *fakeRuntime) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeRuntime) BuildImage(_ context.Context, opts model.BuildOptions, onLine func(string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("build " + opts.Tag)
	f.lastBuild = opts
	for _, line := range f.buildLines {
		onLine(line)
	}
	return f.buildErr
}

func (f *fakeRuntime) ListContainers(_ context.Context, labels map[string]string) ([]model.LiveContainer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list")
	if err := f.errs["list"]; err != nil {
		return nil, err
	}

	var out []model.LiveContainer
	for _, c := range f.containers {
		match := true
		for k, v := range labels {
			if c.Labels[k] != v {
				match = false
			}
		}
		if match {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRuntime) CreateContainer(_ context.Context, opts model.CreateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create " + opts.Name)
	if err := f.errs["create"]; err != nil {
		return "", err
	}
	for _, c := range f.containers {
		if c.Name() == opts.Name {
			return "", model.Errorf(model.KindRun, "name %q already in use", opts.Name)
		}
	}

	f.nextID++
	id := fmt.Sprintf("%064x", f.nextID)
	f.lastCreate = opts
	f.containers = append(f.containers, model.LiveContainer{
		ID:     id,
		Names:  []string{"/" + opts.Name},
		Image:  opts.Image,
		State:  "created",
		Labels: maps.Clone(opts.Labels),
	})
	return id, nil
}

func (f *fakeRuntime) StartContainer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("start " + model.ShortID(id))
	if err := f.errs["start"]; err != nil {
		return err
	}
	for i := range f.containers {
		if f.containers[i].ID == id {
			f.containers[i].State = "running"
			f.containers[i].Status = "Up Less than a second"
			return nil
		}
	}
	return model.Errorf(model.KindRun, "no such container %s", id)
}

func (f *fakeRuntime) StopContainer(_ context.Context, id string, grace time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stop " + model.ShortID(id))
	f.stops = append(f.stops, grace)
	if err := f.errs["stop"]; err != nil {
		return err
	}
	for i := range f.containers {
		if f.containers[i].ID == id {
			f.containers[i].State = "exited"
			f.containers[i].Status = "Exited (0) Less than a second ago"
		}
	}
	return nil
}

func (f *fakeRuntime) RemoveContainer(_ context.Context, id string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("remove %s force=%t", model.ShortID(id), force))
	if err := f.errs["remove"]; err != nil {
		return err
	}
	for i, c := range f.containers {
		if c.ID == id {
			f.containers = append(f.containers[:i], f.containers[i+1:]...)
			return nil
		}
	}
	return model.Errorf(model.KindRemove, "no such container %s", id)
}

// named returns the live containers called name.
func (f *fakeRuntime) named(name string) []model.LiveContainer {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.LiveContainer
	for _, c := range f.containers {
		if c.Name() == name {
			out = append(out, c)
		}
	}
	return out
}
