// image.go implements image builds. The build context directory is sent to
// the engine as a tar stream (honoring .dockerignore), and the engine's
// JSON progress records are decoded one at a time and forwarded to the
// caller as plain log lines while the build runs.
package docker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/moby/patternmatcher/ignorefile"

	"github.com/mmr-tortoise/denver/internal/model"
)

// maxBuildRecordSize bounds a single JSON record in the build output stream.
const maxBuildRecordSize = 1 << 20

// BuildImage builds opts.Tag from the context directory and Dockerfile in
// opts, calling onLine for every log line as soon as the engine emits it.
//
// Transport failures and errors reported by the engine in the build stream
// are returned as model.KindBuild errors. Records that cannot be parsed are
// skipped and do not abort the build.
func (c *Client) BuildImage(ctx context.Context, opts model.BuildOptions, onLine func(string)) error {
	dockerfile, err := dockerfileInContext(opts.Context, opts.Dockerfile)
	if err != nil {
		return model.WrapError(model.KindBuild, "invalid dockerfile", err)
	}

	buildContext, err := contextArchive(opts.Context, dockerfile)
	if err != nil {
		return model.WrapError(model.KindBuild,
			fmt.Sprintf("failed to create build context from %s", opts.Context), err)
	}
	defer buildContext.Close()

	resp, err := c.inner.ImageBuild(ctx, buildContext, build.ImageBuildOptions{
		Tags:       []string{opts.Tag},
		Dockerfile: dockerfile,
		BuildArgs:  buildArgs(opts.Args),
		NoCache:    opts.NoCache,
		// Remove intermediate containers after a successful build.
		Remove: true,
	})
	if err != nil {
		return model.WrapError(model.KindBuild,
			fmt.Sprintf("failed to build image %s", opts.Tag), err)
	}
	defer resp.Body.Close()

	return decodeBuildStream(resp.Body, onLine)
}

// dockerfileInContext returns the Dockerfile path relative to the context
// directory, in slash form as the engine expects. Absolute paths must point
// inside the context.
func dockerfileInContext(contextDir, dockerfile string) (string, error) {
	if dockerfile == "" {
		dockerfile = model.DefaultDockerfile
	}
	if !filepath.IsAbs(dockerfile) {
		return filepath.ToSlash(filepath.Clean(dockerfile)), nil
	}

	rel, err := filepath.Rel(contextDir, dockerfile)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("dockerfile %s is outside the build context %s", dockerfile, contextDir)
	}
	return filepath.ToSlash(rel), nil
}

// contextArchive tars the context directory, excluding paths matched by its
// .dockerignore file. The Dockerfile and .dockerignore itself are always
// sent, as the docker CLI does.
func contextArchive(contextDir, dockerfile string) (io.ReadCloser, error) {
	info, err := os.Stat(contextDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", contextDir)
	}

	excludes, err := readDockerignore(contextDir)
	if err != nil {
		return nil, err
	}
	if len(excludes) > 0 {
		excludes = append(excludes, "!"+dockerfile, "!.dockerignore")
	}

	return archive.TarWithOptions(contextDir, &archive.TarOptions{
		ExcludePatterns: excludes,
	})
}

// readDockerignore returns the patterns of contextDir/.dockerignore, or nil
// when the file does not exist.
func readDockerignore(contextDir string) ([]string, error) {
	f, err := os.Open(filepath.Join(contextDir, ".dockerignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	patterns, err := ignorefile.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse .dockerignore: %w", err)
	}
	return patterns, nil
}

// buildArgs converts build arguments into the pointer map the API expects.
func buildArgs(args map[string]string) map[string]*string {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]*string, len(args))
	for k, v := range args {
		out[k] = &v
	}
	return out
}

// decodeBuildStream reads newline-delimited JSON build records from r and
// forwards their log text to onLine in the order received.
//
// A record carrying an error ends the build with a model.KindBuild error.
// Progress-bar updates are not forwarded. Records that are not valid JSON
// or exceed maxBuildRecordSize are skipped. Only a failure to read the
// stream itself is fatal.
func decodeBuildStream(r io.Reader, onLine func(string)) error {
	br := bufio.NewReader(r)

	for {
		record, readErr := readBuildRecord(br)
		if err := handleBuildRecord(record, onLine); err != nil {
			return err
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return model.WrapError(model.KindBuild, "failed to read build output", readErr)
		}
	}
}

// readBuildRecord reads one newline-terminated record from br. A record
// longer than maxBuildRecordSize is consumed up to its newline and
// returned as nil.
func readBuildRecord(br *bufio.Reader) ([]byte, error) {
	var record []byte
	oversized := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !oversized {
			if len(record)+len(chunk) > maxBuildRecordSize {
				oversized, record = true, nil
			} else {
				record = append(record, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return record, err
	}
}

// handleBuildRecord decodes a single record and forwards its log text.
func handleBuildRecord(record []byte, onLine func(string)) error {
	raw := bytes.TrimSpace(record)
	if len(raw) == 0 {
		return nil
	}

	var msg jsonmessage.JSONMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil
	}

	if msg.Error != nil {
		return model.NewError(model.KindBuild, strings.TrimSpace(msg.Error.Message))
	}

	forwardLines(msg.Stream, onLine)
	if msg.Status != "" && msg.Progress == nil {
		status := msg.Status
		if msg.ID != "" {
			status = msg.ID + ": " + status
		}
		forwardLines(status, onLine)
	}
	return nil
}

// forwardLines splits text into lines and passes each non-blank one,
// trimmed, to onLine.
func forwardLines(text string, onLine func(string)) {
	if text == "" || onLine == nil {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			onLine(line)
		}
	}
}
