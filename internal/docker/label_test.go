package docker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mmr-tortoise/denver/internal/model"
)

// TestBuildLabels verifies that every created container carries the
// ownership marker plus its declared name and tag.
func TestBuildLabels(t *testing.T) {
	def := &model.ContainerDefinition{Name: "api", Tag: "quay.io/org/api:dev"}
	createdAt := time.Date(2026, 2, 28, 19, 0, 0, 0, time.FixedZone("CET", 3600))

	labels := BuildLabels(def, createdAt)

	assert.Equal(t, ManagedByValue, labels[LabelManagedBy],
		"managed-by label should always be set to the constant value")
	assert.Equal(t, "api", labels[LabelName])
	assert.Equal(t, "quay.io/org/api:dev", labels[LabelTag])
	assert.Equal(t, "2026-02-28T18:00:00Z", labels[LabelCreatedAt])
	assert.Len(t, labels, 4)
	assert.True(t, IsManaged(labels))
}

func TestFilterLabels(t *testing.T) {
	assert.Equal(t, map[string]string{"denver.managed-by": "denver"}, FilterLabels())
}

func TestIsManaged(t *testing.T) {
	assert.False(t, IsManaged(nil))
	assert.False(t, IsManaged(map[string]string{LabelManagedBy: "someone-else"}))
	assert.True(t, IsManaged(map[string]string{LabelManagedBy: ManagedByValue, "other": "x"}))
}

// TestLabelFilterArgs checks the Docker API filter built from a label map.
func TestLabelFilterArgs(t *testing.T) {
	args := labelFilterArgs(map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelName:      "api",
	})

	assert.ElementsMatch(t,
		[]string{"denver.managed-by=denver", "denver.name=api"},
		args.Get("label"))
	assert.Equal(t, 0, labelFilterArgs(nil).Len())
}
