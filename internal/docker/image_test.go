package docker

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/denver/internal/model"
)

// collect returns an onLine callback that appends into lines.
func collect(lines *[]string) func(string) {
	return func(s string) { *lines = append(*lines, s) }
}

// TestDecodeBuildStream verifies that stream text is forwarded line by line
// in order and that malformed records are skipped without aborting.
func TestDecodeBuildStream(t *testing.T) {
	stream := strings.Join([]string{
		`{"stream":"Step 1/2 : FROM alpine\n"}`,
		`{"stream":" ---> 1d34ffeaf190\n"}`,
		`{"stream":`, // truncated fragment
		`not json at all`,
		`{"status":"Pulling from library/alpine","id":"latest"}`,
		`{"status":"Downloading","progressDetail":{"current":1,"total":2},"progress":"[=>  ]","id":"abc"}`,
		`{"aux":{"ID":"sha256:deadbeef"}}`,
		`{"stream":"Step 2/2 : RUN true\nSuccessfully built 1d34ffeaf190\n"}`,
		``,
		`{"stream":"\n"}`,
	}, "\r\n")

	var lines []string
	err := decodeBuildStream(strings.NewReader(stream), collect(&lines))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Step 1/2 : FROM alpine",
		"---> 1d34ffeaf190",
		"latest: Pulling from library/alpine",
		"Step 2/2 : RUN true",
		"Successfully built 1d34ffeaf190",
	}, lines)
}

// TestDecodeBuildStream_EngineError verifies that an error record ends the
// build with a Build-kind error after forwarding the preceding lines.
func TestDecodeBuildStream_EngineError(t *testing.T) {
	stream := `{"stream":"Step 1/1 : RUN false\n"}` + "\n" +
		`{"errorDetail":{"code":1,"message":"The command '/bin/sh -c false' returned a non-zero code: 1"},"error":"The command '/bin/sh -c false' returned a non-zero code: 1"}` + "\n" +
		`{"stream":"never forwarded\n"}` + "\n"

	var lines []string
	err := decodeBuildStream(strings.NewReader(stream), collect(&lines))

	require.Error(t, err)
	assert.Equal(t, model.KindBuild, model.KindOf(err))
	assert.Contains(t, err.Error(), "returned a non-zero code: 1")
	assert.Equal(t, []string{"Step 1/1 : RUN false"}, lines)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

// TestDecodeBuildStream_TransportError verifies that a read failure on the
// stream itself is fatal.
func TestDecodeBuildStream_TransportError(t *testing.T) {
	err := decodeBuildStream(failingReader{}, nil)
	require.Error(t, err)
	assert.Equal(t, model.KindBuild, model.KindOf(err))
	assert.Contains(t, err.Error(), "connection reset")
}

// TestDecodeBuildStream_OversizedRecord verifies that a record larger than
// maxBuildRecordSize is skipped and later records are still forwarded.
func TestDecodeBuildStream_OversizedRecord(t *testing.T) {
	huge := `{"stream":"` + strings.Repeat("x", 2*maxBuildRecordSize) + `\n"}`
	stream := `{"stream":"before\n"}` + "\n" + huge + "\n" + `{"stream":"after\n"}` + "\n"

	var lines []string
	err := decodeBuildStream(strings.NewReader(stream), collect(&lines))
	require.NoError(t, err)
	assert.Equal(t, []string{"before", "after"}, lines)
}

func TestDecodeBuildStream_UnterminatedLastRecord(t *testing.T) {
	var lines []string
	err := decodeBuildStream(strings.NewReader(`{"stream":"done\n"}`), collect(&lines))
	require.NoError(t, err)
	assert.Equal(t, []string{"done"}, lines)
}

func TestDockerfileInContext(t *testing.T) {
	ctx := filepath.FromSlash("/src/api")

	tests := []struct {
		name       string
		dockerfile string
		want       string
		wantErr    bool
	}{
		{"default", "", "Dockerfile", false},
		{"relative", "docker/Dockerfile.dev", "docker/Dockerfile.dev", false},
		{"absolute inside", filepath.FromSlash("/src/api/build/Containerfile"), "build/Containerfile", false},
		{"absolute outside", filepath.FromSlash("/src/other/Dockerfile"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dockerfileInContext(ctx, tt.dockerfile)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildArgs(t *testing.T) {
	assert.Nil(t, buildArgs(nil))

	out := buildArgs(map[string]string{"A": "1", "B": "2"})
	require.Len(t, out, 2)
	assert.Equal(t, "1", *out["A"])
	assert.Equal(t, "2", *out["B"])
}

// TestContextArchive verifies that .dockerignore patterns are applied while
// the Dockerfile and .dockerignore are always included.
func TestContextArchive(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"Dockerfile":          "FROM alpine\n",
		".dockerignore":       "# comment\nnode_modules\n*.log\nDockerfile\n",
		"main.go":             "package main\n",
		"debug.log":           "noise\n",
		"node_modules/x/a.js": "x\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	rc, err := contextArchive(dir, "Dockerfile")
	require.NoError(t, err)
	defer rc.Close()

	var names []string
	tr := tar.NewReader(rc)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if hdr.Typeflag == tar.TypeReg {
			names = append(names, hdr.Name)
		}
	}
	sort.Strings(names)

	assert.Equal(t, []string{".dockerignore", "Dockerfile", "main.go"}, names)
}

func TestContextArchive_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := contextArchive(file, "Dockerfile")
	assert.Error(t, err)

	_, err = contextArchive(filepath.Join(t.TempDir(), "missing"), "Dockerfile")
	assert.Error(t, err)
}
