package capi

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/corepm/internal/core/domain"
)

func TestMergeAppends_Isolation(t *testing.T) {
	t.Parallel()

	// Both targets share one backing array with spare capacity, the way a
	// YAML anchor or a careless copy would.
	shared := make([]any, 1, 4)
	shared[0] = "rtl"
	doc := map[string]any{
		"a": map[string]any{"filesets": shared, "filesets_append": []any{"tb"}},
		"b": map[string]any{"filesets": shared, "filesets_append": []any{"lint"}},
	}

	out, err := mergeAppends("x.core", doc)
	require.NoError(t, err)

	merged := out.(map[string]any)
	a := merged["a"].(map[string]any)
	b := merged["b"].(map[string]any)
	assert.Equal(t, []any{"rtl", "tb"}, a["filesets"])
	assert.Equal(t, []any{"rtl", "lint"}, b["filesets"])
	assert.NotContains(t, a, "filesets_append")

	a["filesets"].([]any)[0] = "mutated"
	assert.Equal(t, "rtl", b["filesets"].([]any)[0])
	assert.Equal(t, "rtl", shared[0])
	assert.Nil(t, shared[:2][1], "input backing array must not be written")
}

func TestMergeAppends_WithoutBase(t *testing.T) {
	t.Parallel()

	out, err := mergeAppends("x.core", map[string]any{"depend_append": []any{"a:b:c"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"depend": []any{"a:b:c"}}, out)
}

func TestDescriptionCache_SingleParse(t *testing.T) {
	t.Parallel()

	var (
		cache descriptionCache
		loads atomic.Int32
		wg    sync.WaitGroup
	)
	want := &domain.Core{Name: domain.MustParseVLNV("a:b:c:1")}
	release := make(chan struct{})

	results := make([]*domain.Core, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := cache.get("/abs/c.core", func() (*domain.Core, error) {
				loads.Add(1)
				<-release
				return want, nil
			})
			assert.NoError(t, err)
			results[i] = got
		}()
	}
	close(release)
	wg.Wait()

	for _, got := range results {
		assert.Same(t, want, got)
	}
	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, 1, cache.size())

	// Cached now; the loader must not run again.
	got, err := cache.get("/abs/c.core", func() (*domain.Core, error) {
		t.Fatal("loader called for a cached path")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestDescriptionCache_ErrorsNotCached(t *testing.T) {
	t.Parallel()

	var cache descriptionCache
	_, err := cache.get("/abs/bad.core", func() (*domain.Core, error) {
		return nil, domain.ErrSchemaViolation
	})
	require.Error(t, err)
	assert.Equal(t, 0, cache.size())
}
