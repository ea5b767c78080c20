package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/corepm/internal/app"
	"go.trai.ch/corepm/internal/core/domain"
	"gopkg.in/yaml.v3"
)

const (
	configContent = `[main]
cores_root = cores
cache_root = cache
build_root = build
`
	coreA = `CAPI=2:
name: acme:ip:a:1.0
filesets:
  rtl:
    files: [a.v]
    file_type: verilogSource
    depend: [">=acme:ip:b:1.0"]
targets:
  default:
    filesets: [rtl]
    toplevel: a
`
	coreB = `CAPI=2:
name: acme:ip:b:1.1
filesets:
  rtl:
    files: [b.v]
    file_type: verilogSource
targets:
  default:
    filesets: [rtl]
`
)

func setupProject(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	files := map[string]string{
		domain.ConfigFileName:                 configContent,
		filepath.Join("cores", "a", "a.core"): coreA,
		filepath.Join("cores", "b", "b.core"): coreB,
	}
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, []byte(content), domain.PrivateFilePerm))
	}
	return tmpDir
}

func TestRun(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	tests := []struct {
		name         string
		args         []string
		expectedExit int
	}{
		{name: "Success with valid core", args: []string{"corepm", "run", "acme:ip:a:1.0"}, expectedExit: 0},
		{name: "Unknown core", args: []string{"corepm", "run", "acme:ip:missing"}, expectedExit: 1},
		{name: "Unknown target", args: []string{"corepm", "sim", "acme:ip:a"}, expectedExit: 1},
		{name: "Malformed identifier", args: []string{"corepm", "run", "acme:ip:a:1.0:extra"}, expectedExit: 1},
		{name: "Version", args: []string{"corepm", "version"}, expectedExit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := setupProject(t)

			os.Args = tt.args
			exitCode := run(func(a *app.App) {
				a.WithWorkingDir(tmpDir)
			})
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}

func TestRun_WritesManifestAndLockfile(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	tmpDir := setupProject(t)
	os.Args = []string{"corepm", "run", "acme:ip:a", "--locked"}
	exitCode := run(func(a *app.App) {
		a.WithWorkingDir(tmpDir)
	})
	require.Equal(t, 0, exitCode)

	data, err := os.ReadFile(filepath.Join(tmpDir, "build", "acme_ip_a_1_0", "default", "acme_ip_a_1_0.eda.yml"))
	require.NoError(t, err)

	var manifest domain.Manifest
	require.NoError(t, yaml.Unmarshal(data, &manifest))
	assert.Equal(t, "a", manifest.Toplevel)
	require.Len(t, manifest.Files, 2)
	assert.Equal(t, "../../../cores/b/b.v", manifest.Files[0].Name)
	assert.Equal(t, "../../../cores/a/a.v", manifest.Files[1].Name)

	assert.FileExists(t, filepath.Join(tmpDir, domain.LockFileName))
}
