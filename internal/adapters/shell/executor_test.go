package shell_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/corepm/internal/adapters/shell"
	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "gen.sh")
	//nolint:gosec // Test requires executable file
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o700))
	return path
}

func TestRunner_Run_MultiLineOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info("line1").Times(1)
	mockLogger.EXPECT().Info("line2").Times(1)

	dir := t.TempDir()
	runner := shell.NewRunner(mockLogger)

	err := runner.Run(context.Background(), &domain.GeneratorInvocation{
		Generator:   "gen",
		Instance:    "inst",
		Command:     writeScript(t, dir, "echo line1; echo line2\n"),
		Interpreter: "sh",
		WorkDir:     dir,
	})
	require.NoError(t, err)
}

func TestRunner_Run_FragmentedOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info("part1part2").Times(1)

	dir := t.TempDir()
	runner := shell.NewRunner(mockLogger)

	err := runner.Run(context.Background(), &domain.GeneratorInvocation{
		Command:     writeScript(t, dir, "printf part1; sleep 0.1; printf part2\n"),
		Interpreter: "sh",
		WorkDir:     dir,
	})
	require.NoError(t, err)
}

func TestRunner_Run_InputFileAndWorkDir(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()

	dir := t.TempDir()
	input := filepath.Join(dir, "regs_input.yml")
	require.NoError(t, os.WriteFile(input, []byte("gapi: \"1.0\"\n"), 0o600))

	runner := shell.NewRunner(mockLogger)
	err := runner.Run(context.Background(), &domain.GeneratorInvocation{
		Command:     writeScript(t, dir, "cp \"$1\" copied.yml\n"),
		Interpreter: "sh",
		WorkDir:     dir,
		InputFile:   input,
	})
	require.NoError(t, err)

	//nolint:gosec // Test file with controlled path
	data, err := os.ReadFile(filepath.Join(dir, "copied.yml"))
	require.NoError(t, err)
	assert.Equal(t, "gapi: \"1.0\"\n", string(data))
}

func TestRunner_Run_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn("bad input").Times(1)

	dir := t.TempDir()
	runner := shell.NewRunner(mockLogger)

	err := runner.Run(context.Background(), &domain.GeneratorInvocation{
		Generator:   "regmap",
		Instance:    "regs",
		Command:     writeScript(t, dir, "echo 'bad input' >&2; exit 42\n"),
		Interpreter: "sh",
		WorkDir:     dir,
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrGeneratorFailed.Error())

	zErr, ok := err.(*zerr.Error) //nolint:errorlint // metadata lives on the outer error
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, 42, zErr.Metadata()["exit_code"])
	assert.Equal(t, "regmap", zErr.Metadata()["generator"])
	assert.Equal(t, "regs", zErr.Metadata()["instance"])
	assert.Equal(t, "bad input", zErr.Metadata()["stderr"])
}

func TestRunner_Run_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()

	dir := t.TempDir()
	runner := shell.NewRunner(mockLogger)

	err := runner.Run(context.Background(), &domain.GeneratorInvocation{
		Command:     writeScript(t, dir, "exec sleep 5\n"),
		Interpreter: "sh",
		WorkDir:     dir,
		Timeout:     100 * time.Millisecond,
	})
	require.Error(t, err)

	zErr, ok := err.(*zerr.Error) //nolint:errorlint // metadata lives on the outer error
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "timeout", zErr.Metadata()["reason"])
}

func TestRunner_Run_MissingProgram(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()

	runner := shell.NewRunner(mockLogger)
	err := runner.Run(context.Background(), &domain.GeneratorInvocation{
		Command: filepath.Join(t.TempDir(), "nonexistent-generator-xyz"),
		WorkDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrGeneratorFailed.Error())
}

func TestArgv(t *testing.T) {
	t.Setenv("COREPM_TEST_PY", "python3")

	argv, err := shell.Argv(&domain.GeneratorInvocation{
		Command:     "/gens/regmap.py",
		Interpreter: `$COREPM_TEST_PY -u "-X dev"`,
		InputFile:   "regs_input.yml",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"python3", "-u", "-X dev", "/gens/regmap.py", "regs_input.yml"}, argv)

	argv, err = shell.Argv(&domain.GeneratorInvocation{Command: "/gens/run"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/gens/run"}, argv)

	_, err = shell.Argv(&domain.GeneratorInvocation{})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrGeneratorFailed.Error())

	_, err = shell.Argv(&domain.GeneratorInvocation{Command: "x", Interpreter: `python3 "unterminated`})
	require.ErrorIs(t, err, domain.ErrGeneratorFailed)
}
