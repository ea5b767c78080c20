// Package cas implements the persistent generator output cache.
//
// Generator results live in <cache_root>/generator_cache/<key>. A bbolt index
// next to them records which run produced each directory.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/zerr"
)

const bucketGenerators = "generators"

const openTimeout = time.Second

// Store implements ports.GeneratorCache on top of the file system and a bbolt index.
type Store struct {
	// mu serializes index access; bbolt holds an exclusive file lock per open handle.
	mu  sync.Mutex
	now func() time.Time
}

// NewStore creates a new generator cache store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Lookup returns the cached output directory for key.
// An index entry whose directory has disappeared counts as a miss.
func (s *Store) Lookup(cacheRoot, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	indexPath := domain.GeneratorIndexPath(cacheRoot)
	if _, err := os.Stat(indexPath); errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}

	db, err := openIndex(indexPath)
	if err != nil {
		return "", false, err
	}
	defer func() { _ = db.Close() }()

	var entry *domain.GeneratorCacheEntry
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketGenerators))
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}
		entry = &domain.GeneratorCacheEntry{}
		return json.Unmarshal(data, entry)
	})
	if err != nil {
		return "", false, zerr.With(zerr.Wrap(err, "failed to read generator cache index"), "key", key)
	}
	if entry == nil {
		return "", false, nil
	}

	info, err := os.Stat(entry.Dir)
	if err != nil || !info.IsDir() {
		return "", false, nil
	}
	return entry.Dir, true, nil
}

// Commit moves scratchDir to its final location under key and records the entry.
// When another run already committed the same key, scratchDir is discarded and
// the existing directory is returned.
func (s *Store) Commit(cacheRoot, scratchDir string, entry domain.GeneratorCacheEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cacheDir := domain.GeneratorCachePath(cacheRoot)
	if err := os.MkdirAll(cacheDir, domain.DirPerm); err != nil {
		return "", zerr.Wrap(err, "failed to create generator cache directory")
	}

	final := filepath.Join(cacheDir, entry.Key)
	if info, err := os.Stat(final); err == nil && info.IsDir() {
		if err := os.RemoveAll(scratchDir); err != nil {
			return "", zerr.Wrap(err, "failed to remove scratch directory")
		}
	} else if err := os.Rename(scratchDir, final); err != nil {
		err = zerr.Wrap(err, "failed to commit generator output")
		return "", zerr.With(err, "key", entry.Key)
	}

	entry.Dir = final
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", zerr.Wrap(err, "failed to marshal generator cache entry")
	}

	db, err := openIndex(domain.GeneratorIndexPath(cacheRoot))
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()

	err = db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(bucketGenerators))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(entry.Key), data)
	})
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to update generator cache index"), "key", entry.Key)
	}
	return final, nil
}

// Entries lists the committed entries in key order.
func (s *Store) Entries(cacheRoot string) ([]domain.GeneratorCacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	indexPath := domain.GeneratorIndexPath(cacheRoot)
	if _, err := os.Stat(indexPath); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	db, err := openIndex(indexPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	var entries []domain.GeneratorCacheEntry
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketGenerators))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			var e domain.GeneratorCacheEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read generator cache index")
	}
	return entries, nil
}

func openIndex(path string) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, "failed to create generator cache directory")
	}
	db, err := bolt.Open(path, domain.PrivateFilePerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open generator cache index"), "path", path)
	}
	return db, nil
}
