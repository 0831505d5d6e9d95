package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/denver/internal/model"
)

const sampleYAML = `
socket: /run/user/1000/docker.sock
containers:
  api:
    tag: quay.io/org/api:dev
    build:
      context: ./api
      args:
        GO_VERSION: "1.25"
    run:
      workspace: ./src/api
      volumes:
        - ./cache:/root/.cache
        - gomod:/go/pkg/mod
      flags: [i, rm, turbo]
      args: ["bash", "-l"]
  worker:
    tag: quay.io/org/worker:dev
    build:
      context: /abs/worker
      dockerfile: Containerfile
`

// writeConfig writes content into a fresh temp directory and returns the
// file path.
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoad_YAML verifies path resolution, defaults, and flag parsing for a
// typical YAML configuration.
func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "config.yml", sampleYAML)
	dir := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "/run/user/1000/docker.sock", cfg.Socket)
	assert.Equal(t, []string{"api", "worker"}, cfg.Names())

	api, err := cfg.Container("api")
	require.NoError(t, err)
	assert.Equal(t, "api", api.Name)
	assert.Equal(t, "quay.io/org/api:dev", api.Tag)
	assert.Equal(t, filepath.Join(dir, "api"), api.Build.Context)
	assert.Equal(t, model.DefaultDockerfile, api.Build.Dockerfile)
	assert.Equal(t, map[string]string{"GO_VERSION": "1.25"}, api.Build.Args)
	assert.Equal(t, filepath.Join(dir, "src", "api"), api.Run.Workspace)
	assert.Equal(t, []string{
		filepath.Join(dir, "cache") + ":/root/.cache",
		"gomod:/go/pkg/mod",
	}, api.Run.Volumes)
	assert.Equal(t, model.FlagInteractive|model.FlagAutoRemove, api.Run.Flags)
	assert.Equal(t, []string{"bash", "-l"}, api.Run.Args)

	worker, err := cfg.Container("worker")
	require.NoError(t, err)
	assert.Equal(t, "/abs/worker", worker.Build.Context)
	assert.Equal(t, "Containerfile", worker.Build.Dockerfile)
	assert.Empty(t, worker.Run.Workspace)
	assert.Equal(t, model.RunFlags(0), worker.Run.Flags)

	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], `"turbo"`)
}

// TestLoad_JSONC verifies that .jsonc files with comments and trailing
// commas are accepted.
func TestLoad_JSONC(t *testing.T) {
	content := `{
  // engine socket
  "socket": "unix:///var/run/docker.sock",
  "containers": {
    "api": {
      "tag": "api:dev",
      "build": {"context": "."}, /* trailing comma below */
    },
  },
}`
	path := writeConfig(t, "config.jsonc", content)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "unix:///var/run/docker.sock", cfg.Socket)

	api, err := cfg.Container("api")
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(path), api.Build.Context)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantMsg string
	}{
		{
			name:    "empty file",
			file:    "config.yml",
			content: "",
			wantMsg: "file is empty",
		},
		{
			name:    "unknown key",
			file:    "config.yml",
			content: "containers:\n  api:\n    tag: a\n    image: b\n    build: {context: .}\n",
			wantMsg: "image",
		},
		{
			name:    "no containers",
			file:    "config.yml",
			content: "socket: /tmp/x.sock\n",
			wantMsg: "at least one container",
		},
		{
			name:    "missing tag and context",
			file:    "config.yml",
			content: "containers:\n  api:\n    run: {workspace: /tmp}\n",
			wantMsg: "containers.api.tag: tag is required",
		},
		{
			name:    "invalid name",
			file:    "config.yml",
			content: "containers:\n  bad/name:\n    tag: a\n    build: {context: .}\n",
			wantMsg: "invalid container name",
		},
		{
			name:    "malformed volume",
			file:    "config.yml",
			content: "containers:\n  api:\n    tag: a\n    build: {context: .}\n    run: {volumes: [/only-host]}\n",
			wantMsg: "host:container",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Equal(t, model.KindConfig, model.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Equal(t, model.KindConfig, model.KindOf(err))
	assert.Contains(t, err.Error(), "configuration file not found")
}

// TestConfig_ContainerUnknown verifies that a missing name is a lookup
// failure of kind UnknownContainer, never a default.
func TestConfig_ContainerUnknown(t *testing.T) {
	cfg := &Config{Containers: map[string]*model.ContainerDefinition{}}
	_, err := cfg.Container("ghost")
	require.Error(t, err)
	assert.Equal(t, model.KindUnknownContainer, model.KindOf(err))
	assert.Equal(t, "ghost not found", err.Error())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/.config/denver/config.yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/denver/config.yml"), got)

	got, err = ExpandHome("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)

	got, err = ExpandHome("~other/x")
	require.NoError(t, err)
	assert.Equal(t, "~other/x", got)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, "~/.config/denver/config.yml", DefaultPath())

	t.Setenv(EnvConfigPath, "/etc/denver.yml")
	assert.Equal(t, "/etc/denver.yml", DefaultPath())
}
