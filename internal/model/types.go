package model

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultDockerfile is the Dockerfile name used when a definition's build
// section does not specify one. It is resolved relative to the build context.
const DefaultDockerfile = "Dockerfile"

// ShortIDLength is the number of leading characters of an engine container
// ID shown in human-readable output.
const ShortIDLength = 12

// ContainerDefinition is the declared description of one named development
// container: how to build its image and how to run it.
//
// Definitions are immutable once loaded. Name is the join key between the
// declared configuration and the live containers reported by the engine.
type ContainerDefinition struct {
	// Name uniquely identifies the container across runs. It is also the
	// engine-level container name.
	Name string

	// Build describes the image build.
	Build BuildSpec

	// Run describes how the container is created from the built image.
	Run RunSpec

	// Tag is the image reference the build produces and the container runs.
	Tag string
}

// BuildSpec holds the image build parameters of a definition.
type BuildSpec struct {
	// Context is the absolute path of the build context directory.
	Context string

	// Dockerfile is the Dockerfile path. Relative paths are relative to
	// Context. Defaults to DefaultDockerfile.
	Dockerfile string

	// Args are build-time variables (--build-arg KEY=VALUE).
	Args map[string]string
}

// RunSpec holds the container creation parameters of a definition.
type RunSpec struct {
	// Workspace is an absolute host path mounted at the same path inside
	// the container. It is also the container's working directory.
	Workspace string

	// Volumes are additional bind mounts in "host:container[:mode]" form.
	Volumes []string

	// Flags is the set of recognized run flags.
	Flags RunFlags

	// Args are positional run arguments passed as the container command.
	Args []string
}

// RunFlags is a small set of boolean container run options. It replaces
// free-form string tokens with a validated set built at configuration load
// time.
type RunFlags uint8

const (
	// FlagInteractive keeps the container's standard input open ("i",
	// "interactive").
	FlagInteractive RunFlags = 1 << iota

	// FlagAutoRemove removes the container when it exits ("rm").
	FlagAutoRemove

	// FlagPrivileged runs the container in privileged mode ("privileged").
	FlagPrivileged
)

// runFlagTokens maps accepted configuration tokens to flags.
var runFlagTokens = map[string]RunFlags{
	"i":           FlagInteractive,
	"interactive": FlagInteractive,
	"rm":          FlagAutoRemove,
	"privileged":  FlagPrivileged,
}

// ParseRunFlags converts configuration tokens into a RunFlags set.
// Matching is case-insensitive. Unrecognized tokens are ignored and
// returned separately so the caller can report them.
func ParseRunFlags(tokens []string) (RunFlags, []string) {
	var flags RunFlags
	var unknown []string
	for _, tok := range tokens {
		f, ok := runFlagTokens[strings.ToLower(strings.TrimSpace(tok))]
		if !ok {
			unknown = append(unknown, tok)
			continue
		}
		flags |= f
	}
	return flags, unknown
}

// Has reports whether every flag in f is set.
func (r RunFlags) Has(f RunFlags) bool {
	return r&f == f
}

// String returns the canonical tokens of the set, e.g. "i,privileged".
func (r RunFlags) String() string {
	var parts []string
	if r.Has(FlagInteractive) {
		parts = append(parts, "i")
	}
	if r.Has(FlagAutoRemove) {
		parts = append(parts, "rm")
	}
	if r.Has(FlagPrivileged) {
		parts = append(parts, "privileged")
	}
	return strings.Join(parts, ",")
}

// LiveContainer is a read-only snapshot of one managed container as reported
// by the container engine.
type LiveContainer struct {
	// ID is the full-length engine container ID.
	ID string `json:"id"`

	// Names are the engine-assigned names, each with a leading "/".
	Names []string `json:"names"`

	// Image is the image reference the container was created from.
	Image string `json:"image"`

	// State is the engine lifecycle phase (e.g. "running", "exited").
	State string `json:"state"`

	// Status is the human-readable runtime string (e.g. "Up 2 minutes").
	Status string `json:"status"`

	// Labels is the full label set of the container.
	Labels map[string]string `json:"labels,omitempty"`
}

// Name returns the displayed name: the first engine name with its leading
// separator stripped. By convention it equals the declared definition name.
func (c LiveContainer) Name() string {
	if len(c.Names) == 0 {
		return ""
	}
	return strings.TrimPrefix(c.Names[0], "/")
}

// ShortID returns the first ShortIDLength characters of the container ID.
func (c LiveContainer) ShortID() string {
	return ShortID(c.ID)
}

// ShortID truncates an engine ID for display.
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}

// CreateOptions is the engine-neutral description of a container to create.
// It is produced from a ContainerDefinition by the orchestrator and
// translated to engine structures by the runtime adapter.
type CreateOptions struct {
	Name       string
	Image      string
	Binds      []string
	WorkingDir string
	OpenStdin  bool
	AutoRemove bool
	Privileged bool
	Labels     map[string]string
	Cmd        []string
}

// BuildOptions is the engine-neutral description of an image build.
type BuildOptions struct {
	Context    string
	Dockerfile string
	Tag        string
	Args       map[string]string
	NoCache    bool
}

// nameRegex mirrors the container name rule enforced by the Docker Engine.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidateName checks that name is usable as an engine container name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("container name must not be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("invalid container name %q: must start with a letter or digit and contain only [a-zA-Z0-9_.-]", name)
	}
	return nil
}

// SortedNames returns the keys of a definition map in ascending order.
func SortedNames(defs map[string]*ContainerDefinition) []string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
