// Package shell runs external style compilers.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/ports"
)

var _ ports.CommandRunner = (*Runner)(nil)

// Runner implements ports.CommandRunner using os/exec.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// LookPath finds name in root/node_modules/.bin first, then in PATH.
func (r *Runner) LookPath(root, name string) (string, error) {
	if root != "" {
		local := filepath.Join(root, "node_modules", ".bin", name)
		if err := findExecutable(local); err == nil {
			return local, nil
		}
	}
	p, err := lookPath(name, os.Getenv("PATH"))
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "executable not found"), "name", name)
	}
	return p, nil
}

// Run executes cmd and returns its standard output.
// On failure the returned error carries the trimmed standard error text as its message.
func (r *Runner) Run(ctx context.Context, cmd ports.Command) (string, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...) //nolint:gosec // compiler path is resolved by LookPath
	c.Dir = cmd.Dir
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = io.MultiWriter(&stderr, &logWriter{logger: r.logger})

	if err := c.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "command failed"
		}
		wrapped := zerr.With(zerr.Wrap(err, msg), "exit_code", exitCode)
		return stdout.String(), zerr.With(wrapped, "command", filepath.Base(cmd.Path))
	}
	return stdout.String(), nil
}

// logWriter forwards compiler diagnostics to the debug log line by line.
type logWriter struct {
	logger ports.Logger
}

func (w *logWriter) Write(p []byte) (int, error) {
	for line := range strings.SplitSeq(strings.TrimSuffix(string(p), "\n"), "\n") {
		if line != "" {
			w.logger.Debug(line)
		}
	}
	return len(p), nil
}

// lookPath searches for an executable in the directories of path.
func lookPath(file, path string) (string, error) {
	if path == "" {
		return "", exec.ErrNotFound
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
