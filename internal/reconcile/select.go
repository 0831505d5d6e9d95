package reconcile

import (
	"context"
	"fmt"
	"regexp"

	"github.com/mmr-tortoise/denver/internal/docker"
	"github.com/mmr-tortoise/denver/internal/model"
	"github.com/mmr-tortoise/denver/internal/status"
)

// DefaultPattern selects every container.
const DefaultPattern = ".*"

// Selection is the working set of a status or stop operation.
type Selection struct {
	// Live holds the managed containers whose name matched, in engine
	// order.
	Live []model.LiveContainer

	// Declared holds the matching definitions that have no live container
	// of the same name, sorted by name.
	Declared []*model.ContainerDefinition
}

// Names returns the names of every selected container, live ones first.
func (s Selection) Names() []string {
	names := make([]string, 0, len(s.Live)+len(s.Declared))
	for _, c := range s.Live {
		names = append(names, c.Name())
	}
	for _, def := range s.Declared {
		names = append(names, def.Name)
	}
	return names
}

// CompilePattern compiles a container name pattern. A malformed pattern is
// a model.KindInvalidPattern error.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, model.WrapError(model.KindInvalidPattern,
			fmt.Sprintf("invalid pattern %q", pattern), err)
	}
	return re, nil
}

// Select filters live containers and declared definitions by name.
//
// Only the displayed container name is matched against re; images and tags
// are never considered. A definition is selected only when no live
// container carries its name, so every name appears at most once across
// the two lists.
func Select(re *regexp.Regexp, live []model.LiveContainer, definitions map[string]*model.ContainerDefinition) Selection {
	var sel Selection
	liveNames := make(map[string]struct{}, len(live))

	for _, c := range live {
		name := c.Name()
		liveNames[name] = struct{}{}
		if re.MatchString(name) {
			sel.Live = append(sel.Live, c)
		}
	}

	for _, name := range model.SortedNames(definitions) {
		if _, ok := liveNames[name]; ok {
			continue
		}
		if re.MatchString(name) {
			sel.Declared = append(sel.Declared, definitions[name])
		}
	}

	return sel
}

// Select compiles pattern, lists the managed containers, and selects the
// live and declared-only containers whose name matches.
func (m *Manager) Select(ctx context.Context, pattern string) (Selection, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return Selection{}, err
	}

	live, err := m.runtime.ListContainers(ctx, docker.FilterLabels())
	if err != nil {
		return Selection{}, err
	}
	m.logger.Debug("listed managed containers", "count", len(live), "pattern", pattern)

	return Select(re, live, m.definitions), nil
}

// Status returns the merged status rows of the containers matching
// pattern, ready for status.Render.
func (m *Manager) Status(ctx context.Context, pattern string) ([]status.Row, error) {
	sel, err := m.Select(ctx, pattern)
	if err != nil {
		return nil, err
	}
	return status.Rows(sel.Live, sel.Declared), nil
}

// Stop stops every live managed container whose name matches pattern and
// returns the containers it stopped. Declared-only containers are left
// alone. The first failure aborts the remaining stops.
func (m *Manager) Stop(ctx context.Context, pattern string) ([]model.LiveContainer, error) {
	sel, err := m.Select(ctx, pattern)
	if err != nil {
		return nil, err
	}

	stopped := make([]model.LiveContainer, 0, len(sel.Live))
	for _, c := range sel.Live {
		fmt.Fprintf(m.out, "Stopping %s - %s\n", c.ShortID(), c.Name())
		if err := m.runtime.StopContainer(ctx, c.ID, StopGracePeriod); err != nil {
			return stopped, err
		}
		stopped = append(stopped, c)
	}
	return stopped, nil
}
