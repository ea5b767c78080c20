package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/corepm/internal/adapters/config"
	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const sampleConfig = `[main]
cores_root = cores
  vendor/cores
cache_root = /var/cache/corepm
build_root = out

[library.orpsoc-cores]
location = libs/orpsoc
sync-uri = https://github.com/openrisc/orpsoc-cores
sync-type = git
auto-sync = true

[library.base]
location = /opt/base
`

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	return config.NewLoader(mockLogger)
}

func TestLoader_Load_FindsConfigInParent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, domain.ConfigFileName), []byte(sampleConfig), domain.PrivateFilePerm))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	cfg, err := newLoader(t).Load(nested, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, domain.ConfigFileName), cfg.Path)
	assert.Equal(t, []string{filepath.Join(root, "cores"), filepath.Join(root, "vendor", "cores")}, cfg.CoresRoots)
	assert.Equal(t, "/var/cache/corepm", cfg.CacheRoot)
	assert.Equal(t, filepath.Join(root, "out"), cfg.BuildRoot)

	require.Len(t, cfg.Libraries, 2)
	assert.Equal(t, "base", cfg.Libraries[0].Name)
	assert.Equal(t, "/opt/base", cfg.Libraries[0].Location)
	assert.Equal(t, "orpsoc-cores", cfg.Libraries[1].Name)
	assert.Equal(t, filepath.Join(root, "libs", "orpsoc"), cfg.Libraries[1].Location)
	assert.Equal(t, "git", cfg.Libraries[1].SyncType)
	assert.True(t, cfg.Libraries[1].AutoSync)

	assert.Equal(t, []string{
		filepath.Join(root, "cores"),
		filepath.Join(root, "vendor", "cores"),
		"/opt/base",
		filepath.Join(root, "libs", "orpsoc"),
	}, cfg.SearchRoots())
}

func TestLoader_Load_Defaults(t *testing.T) {
	cwd := t.TempDir()

	cfg, err := newLoader(t).Load(cwd, "")
	require.NoError(t, err)

	assert.Empty(t, cfg.Path)
	assert.Empty(t, cfg.CoresRoots)
	assert.Equal(t, filepath.Join(cwd, domain.DefaultBuildRoot), cfg.BuildRoot)
	assert.NotEmpty(t, cfg.CacheRoot)
}

func TestLoader_Load_EnvironmentOverrides(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, domain.ConfigFileName), []byte(sampleConfig), domain.PrivateFilePerm))
	t.Setenv("FUSESOC_CORES_ROOT", "/srv/cores")
	t.Setenv("FUSESOC_BUILD_ROOT", "/tmp/build")

	cfg, err := newLoader(t).Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"/srv/cores"}, cfg.CoresRoots)
	assert.Equal(t, "/tmp/build", cfg.BuildRoot)
	assert.Equal(t, "/var/cache/corepm", cfg.CacheRoot)
}

func TestLoader_Load_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.conf")
	require.NoError(t, os.WriteFile(path, []byte("[main]\ncores_root = ip\n"), domain.PrivateFilePerm))

	cfg, err := newLoader(t).Load(t.TempDir(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "ip")}, cfg.CoresRoots)
}

func TestLoader_Load_ExplicitPathMissing(t *testing.T) {
	cwd := t.TempDir()

	_, err := newLoader(t).Load(cwd, "missing.conf")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigNotFound.Error())

	zErr, ok := err.(*zerr.Error) //nolint:errorlint // metadata lives on the outer error
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, filepath.Join(cwd, "missing.conf"), zErr.Metadata()["path"])
}
