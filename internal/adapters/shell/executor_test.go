package shell_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"

	"go.trai.ch/sheen/internal/adapters/shell"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/core/ports/mocks"
)

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700)) //nolint:gosec // test script must be executable
}

func TestRunner_LookPath_PrefersLocalBin(t *testing.T) {
	root := t.TempDir()
	local := filepath.Join(root, "node_modules", ".bin", "lessc")
	writeScript(t, local, "exit 0")

	runner := shell.NewRunner(mocks.NewMockLogger(gomock.NewController(t)))
	got, err := runner.LookPath(root, "lessc")
	require.NoError(t, err)
	assert.Equal(t, local, got)
}

func TestRunner_LookPath_FallsBackToPath(t *testing.T) {
	binDir := t.TempDir()
	writeScript(t, filepath.Join(binDir, "stylus"), "exit 0")
	t.Setenv("PATH", binDir)

	runner := shell.NewRunner(mocks.NewMockLogger(gomock.NewController(t)))
	got, err := runner.LookPath(t.TempDir(), "stylus")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(binDir, "stylus"), got)
}

func TestRunner_LookPath_NotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	runner := shell.NewRunner(mocks.NewMockLogger(gomock.NewController(t)))
	_, err := runner.LookPath(t.TempDir(), "lessc")
	require.Error(t, err)

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, "lessc", zErr.Metadata()["name"])
}

func TestRunner_Run_Stdin(t *testing.T) {
	runner := shell.NewRunner(mocks.NewMockLogger(gomock.NewController(t)))

	out, err := runner.Run(context.Background(), ports.Command{
		Path:  "/bin/sh",
		Args:  []string{"-c", "tr a-z A-Z"},
		Stdin: ".a{color:red}",
		Dir:   t.TempDir(),
	})
	require.NoError(t, err)
	assert.Equal(t, ".A{COLOR:RED}", out)
}

func TestRunner_Run_FailureCarriesStderr(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug("ParseError: Unrecognised input on line 3, column 5").Times(1)

	runner := shell.NewRunner(mockLogger)
	_, err := runner.Run(context.Background(), ports.Command{
		Path: "/bin/sh",
		Args: []string{"-c", "echo 'ParseError: Unrecognised input on line 3, column 5' >&2; exit 2"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3, column 5")

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, 2, zErr.Metadata()["exit_code"])
	assert.Equal(t, "sh", zErr.Metadata()["command"])
}
