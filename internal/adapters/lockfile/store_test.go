package lockfile_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/corepm/internal/adapters/fs"
	"go.trai.ch/corepm/internal/adapters/lockfile"
	"go.trai.ch/corepm/internal/core/domain"
)

func TestStore_WriteRead(t *testing.T) {
	t.Parallel()
	store := lockfile.NewStore(fs.NewWriter())
	path := filepath.Join(t.TempDir(), domain.LockFileName)

	lock := domain.NewLockfile(
		[]domain.VLNV{
			domain.MustParseVLNV("acme:ip:uart:1.2-r1"),
			domain.MustParseVLNV("acme:ip:fifo:2.0"),
		},
		map[string]string{"acme:if:serial": "acme:ip:uart"},
	)

	changed, err := store.Write(path, lock)
	require.NoError(t, err)
	assert.True(t, changed)

	//nolint:gosec // Test file with controlled path
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "lockfile_version: 1\n"))
	assert.Contains(t, text, "- name: acme:ip:fifo:2.0")
	assert.Contains(t, text, "- name: acme:ip:uart:1.2-r1")
	assert.Less(t, strings.Index(text, "fifo"), strings.Index(text, "uart"), "cores are written in identity order")

	changed, err = store.Write(path, lock)
	require.NoError(t, err)
	assert.False(t, changed, "identical lockfile must not be rewritten")

	got, err := store.Read(path)
	require.NoError(t, err)
	require.NotNil(t, got)
	v, ok := got.Locked("acme:ip:uart")
	require.True(t, ok)
	assert.Equal(t, 1, v.Revision)
	p, ok := got.Provider("acme:if:serial")
	require.True(t, ok)
	assert.Equal(t, "acme:ip:uart", p)
}

func TestStore_ReadMissing(t *testing.T) {
	t.Parallel()
	store := lockfile.NewStore(fs.NewWriter())

	got, err := store.Read(filepath.Join(t.TempDir(), "none.lock"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_ReadUnsupportedVersion(t *testing.T) {
	t.Parallel()
	store := lockfile.NewStore(fs.NewWriter())

	path := filepath.Join(t.TempDir(), domain.LockFileName)
	require.NoError(t, os.WriteFile(path, []byte("lockfile_version: 7\ncores: []\n"), 0o600))

	_, err := store.Read(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnsupportedLockfile.Error())
}

func TestStore_ReadMalformedCore(t *testing.T) {
	t.Parallel()
	store := lockfile.NewStore(fs.NewWriter())

	path := filepath.Join(t.TempDir(), domain.LockFileName)
	require.NoError(t, os.WriteFile(path, []byte("lockfile_version: 1\ncores:\n  - name: \"a:b\"\n"), 0o600))

	_, err := store.Read(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrMalformedIdentifier.Error())
}
