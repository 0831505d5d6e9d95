package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/denver/internal/model"
)

// EnvConfigPath names the environment variable that overrides the default
// configuration file location.
const EnvConfigPath = "DENVER_CONFIG"

// defaultRelativePath is the configuration location under the home directory.
const defaultRelativePath = ".config/denver/config.yml"

// File is the on-disk structure of a configuration file. Field names match
// the YAML keys; the JSON tags allow the same schema in .json/.jsonc files.
type File struct {
	// Socket is the container engine address: a Unix socket path or any
	// URI accepted by the Docker client (unix://, tcp://, npipe://).
	Socket string `yaml:"socket" json:"socket"`

	// Containers maps declared names to their definitions.
	Containers map[string]RawContainer `yaml:"containers" json:"containers"`
}

// RawContainer is one container entry as written in the file, before
// path resolution and flag parsing.
type RawContainer struct {
	Tag   string   `yaml:"tag" json:"tag"`
	Build RawBuild `yaml:"build" json:"build"`
	Run   RawRun   `yaml:"run" json:"run"`
}

// RawBuild is the "build" section of a container entry.
type RawBuild struct {
	Context    string            `yaml:"context" json:"context"`
	Dockerfile string            `yaml:"dockerfile" json:"dockerfile"`
	Args       map[string]string `yaml:"args" json:"args"`
}

// RawRun is the "run" section of a container entry.
type RawRun struct {
	Workspace string   `yaml:"workspace" json:"workspace"`
	Volumes   []string `yaml:"volumes" json:"volumes"`
	Flags     []string `yaml:"flags" json:"flags"`
	Args      []string `yaml:"args" json:"args"`
}

// Config is the resolved, validated configuration of one invocation.
type Config struct {
	// Path is the absolute path of the file the configuration came from.
	Path string

	// Socket is the engine address from the file, or "" to use the
	// environment / platform default.
	Socket string

	// Containers maps declared names to resolved definitions.
	Containers map[string]*model.ContainerDefinition

	// Warnings lists non-fatal findings, such as unrecognized run flags.
	Warnings []string
}

// DefaultPath returns the configuration path used when none is given:
// $DENVER_CONFIG if set, otherwise ~/.config/denver/config.yml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return "~/" + defaultRelativePath
}

// Load reads, parses, resolves, and validates the configuration file at path.
func Load(path string) (*Config, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, model.WrapError(model.KindConfig, "failed to resolve configuration path", err)
	}
	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return nil, model.WrapError(model.KindConfig, "failed to resolve configuration path", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapError(model.KindConfig,
				fmt.Sprintf("configuration file not found: %s", absPath), err)
		}
		return nil, model.WrapError(model.KindConfig,
			fmt.Sprintf("failed to read configuration file %s", absPath), err)
	}

	file, err := Parse(data, filepath.Ext(absPath))
	if err != nil {
		return nil, model.WrapError(model.KindConfig,
			fmt.Sprintf("failed to parse configuration file %s", absPath), err)
	}

	cfg, err := Resolve(file, filepath.Dir(absPath))
	if err != nil {
		return nil, err
	}
	cfg.Path = absPath
	return cfg, nil
}

// Parse decodes configuration bytes. ext selects the format: ".json" and
// ".jsonc" are decoded as JSON with comments, everything else as YAML.
// Unknown YAML keys are rejected so that typos surface at load time.
func Parse(data []byte, ext string) (*File, error) {
	var file File

	switch strings.ToLower(ext) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
			return nil, err
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("file is empty")
			}
			return nil, err
		}
	}

	return &file, nil
}

// Resolve validates a parsed file and converts it into a Config. Relative
// paths are resolved against baseDir.
func Resolve(file *File, baseDir string) (*Config, error) {
	if verrs := Validate(file); len(verrs) > 0 {
		msgs := make([]string, 0, len(verrs))
		for _, v := range verrs {
			msgs = append(msgs, v.Error())
		}
		return nil, model.NewError(model.KindConfig,
			"invalid configuration:\n  "+strings.Join(msgs, "\n  "))
	}

	cfg := &Config{
		Socket:     file.Socket,
		Containers: make(map[string]*model.ContainerDefinition, len(file.Containers)),
	}

	for _, name := range sortedKeys(file.Containers) {
		def, warnings, err := resolveContainer(name, file.Containers[name], baseDir)
		if err != nil {
			return nil, model.WrapError(model.KindConfig,
				fmt.Sprintf("container %q", name), err)
		}
		cfg.Containers[name] = def
		cfg.Warnings = append(cfg.Warnings, warnings...)
	}

	return cfg, nil
}

func resolveContainer(name string, raw RawContainer, baseDir string) (*model.ContainerDefinition, []string, error) {
	contextDir, err := resolvePath(raw.Build.Context, baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("build.context: %w", err)
	}

	dockerfile := raw.Build.Dockerfile
	if dockerfile == "" {
		dockerfile = model.DefaultDockerfile
	}
	if strings.HasPrefix(dockerfile, "~") {
		if dockerfile, err = ExpandHome(dockerfile); err != nil {
			return nil, nil, fmt.Errorf("build.dockerfile: %w", err)
		}
	}

	var workspace string
	if raw.Run.Workspace != "" {
		if workspace, err = resolvePath(raw.Run.Workspace, baseDir); err != nil {
			return nil, nil, fmt.Errorf("run.workspace: %w", err)
		}
	}

	volumes := make([]string, 0, len(raw.Run.Volumes))
	for _, v := range raw.Run.Volumes {
		resolved, err := resolveVolume(v, baseDir)
		if err != nil {
			return nil, nil, fmt.Errorf("run.volumes: %w", err)
		}
		volumes = append(volumes, resolved)
	}

	flags, unknown := model.ParseRunFlags(raw.Run.Flags)
	var warnings []string
	for _, tok := range unknown {
		warnings = append(warnings, fmt.Sprintf("container %q: ignoring unrecognized run flag %q", name, tok))
	}

	return &model.ContainerDefinition{
		Name: name,
		Build: model.BuildSpec{
			Context:    contextDir,
			Dockerfile: dockerfile,
			Args:       raw.Build.Args,
		},
		Run: model.RunSpec{
			Workspace: workspace,
			Volumes:   volumes,
			Flags:     flags,
			Args:      raw.Run.Args,
		},
		Tag: raw.Tag,
	}, warnings, nil
}

// Container looks up a declared definition by name. A missing name is a
// model.KindUnknownContainer error.
func (c *Config) Container(name string) (*model.ContainerDefinition, error) {
	def, ok := c.Containers[name]
	if !ok {
		return nil, model.Errorf(model.KindUnknownContainer, "%s not found", name)
	}
	return def, nil
}

// Names returns the declared container names in ascending order.
func (c *Config) Names() []string {
	return model.SortedNames(c.Containers)
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// resolvePath expands "~" and makes path absolute relative to baseDir.
func resolvePath(path, baseDir string) (string, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(baseDir, expanded)
	}
	return filepath.Clean(expanded), nil
}

// resolveVolume resolves the host part of a bind specification when it is a
// path. Named volumes (no path separator, no leading "." or "~") are kept.
func resolveVolume(spec, baseDir string) (string, error) {
	host, rest, hasRest := strings.Cut(spec, ":")
	if !hasRest || rest == "" {
		return "", fmt.Errorf("volume %q must have the form host:container[:mode]", spec)
	}
	if !strings.ContainsRune(host, '/') && !strings.HasPrefix(host, ".") && !strings.HasPrefix(host, "~") {
		return spec, nil
	}
	resolved, err := resolvePath(host, baseDir)
	if err != nil {
		return "", err
	}
	return resolved + ":" + rest, nil
}
