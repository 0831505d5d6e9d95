package docker

import (
	"sort"
	"time"

	"github.com/docker/docker/api/types/filters"

	"github.com/mmr-tortoise/denver/internal/model"
)

// Label key constants define the Docker labels denver attaches to the
// containers it creates. LabelManagedBy is the ownership marker: every
// create attaches it and every list filters by it.
//
// All keys share the "denver." prefix to namespace them and avoid
// collisions with labels set by other tools.
const (
	// LabelPrefix is the common prefix for all denver labels.
	LabelPrefix = "denver."

	// LabelManagedBy identifies containers managed by denver.
	// Key: "denver.managed-by", Value: always ManagedByValue.
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelName stores the declared container name.
	LabelName = LabelPrefix + "name"

	// LabelTag stores the image tag the container was created from.
	LabelTag = LabelPrefix + "tag"

	// LabelCreatedAt stores the RFC3339 timestamp of container creation.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "denver"

// BuildLabels constructs the label map for a container created from def.
// The ownership marker is always included.
func BuildLabels(def *model.ContainerDefinition, createdAt time.Time) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelName:      def.Name,
		LabelTag:       def.Tag,
		LabelCreatedAt: createdAt.UTC().Format(time.RFC3339),
	}
}

// FilterLabels returns the label filter that scopes container listings to
// containers managed by denver.
func FilterLabels() map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
	}
}

// IsManaged reports whether a label set carries the ownership marker.
func IsManaged(labels map[string]string) bool {
	return labels[LabelManagedBy] == ManagedByValue
}

// labelFilterArgs converts a label map into Docker API filter arguments.
// Keys are sorted so the generated query is deterministic.
func labelFilterArgs(labels map[string]string) filters.Args {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := filters.NewArgs()
	for _, k := range keys {
		args.Add("label", k+"="+labels[k])
	}
	return args
}
