// validate.go checks a parsed configuration file before any path is
// resolved, so every problem in the file is reported in one pass.
package config

import (
	"fmt"
	"sort"

	"github.com/mmr-tortoise/denver/internal/model"
)

// ValidationError represents a specific validation failure in a
// configuration file.
type ValidationError struct {
	// Field is the path of the offending field (e.g. "containers.api.tag").
	Field string

	// Message describes what's wrong with the field value.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate performs structural checks on a parsed configuration file and
// returns every failure found (empty slice = valid).
//
// Checks performed:
//   - at least one container is declared
//   - every name is a valid engine container name
//   - tag and build.context are present
//   - volumes are non-empty strings
func Validate(file *File) []ValidationError {
	var errs []ValidationError

	if len(file.Containers) == 0 {
		errs = append(errs, ValidationError{
			Field:   "containers",
			Message: "at least one container must be declared",
		})
		return errs
	}

	for _, name := range sortedKeys(file.Containers) {
		raw := file.Containers[name]
		prefix := "containers." + name

		if err := model.ValidateName(name); err != nil {
			errs = append(errs, ValidationError{Field: prefix, Message: err.Error()})
		}
		if raw.Tag == "" {
			errs = append(errs, ValidationError{Field: prefix + ".tag", Message: "tag is required"})
		}
		if raw.Build.Context == "" {
			errs = append(errs, ValidationError{Field: prefix + ".build.context", Message: "build context is required"})
		}
		for i, v := range raw.Run.Volumes {
			if v == "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.run.volumes[%d]", prefix, i),
					Message: "volume must not be empty",
				})
			}
		}
	}

	return errs
}

func sortedKeys(m map[string]RawContainer) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
