package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketDocs = []byte("docs")
	bucketMeta = []byte("meta")
)

// BoltCache persists generated doc comments across runs.
type BoltCache struct {
	db   *bbolt.DB
	path string
}

type docEntry struct {
	Documented string `json:"documented"`
	CreatedAt  int64  `json:"created_at"`
}

// OpenBoltCache opens (or creates) the cache at path and migrates it. Entries
// written under a different fingerprint are dropped.
func OpenBoltCache(path, fingerprint string) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocs, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	c := &BoltCache{db: db, path: path}
	if err := c.Migrate(fingerprint); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *BoltCache) Get(key string) (string, bool, error) {
	var entry docEntry
	found := false
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return "", false, fmt.Errorf("read cache entry: %w", err)
	}
	return entry.Documented, found, nil
}

func (c *BoltCache) Put(key, value string) error {
	data, err := json.Marshal(docEntry{Documented: value, CreatedAt: time.Now().Unix()})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).Put([]byte(key), data)
	})
}

// Clear removes every cached entry and keeps the schema info.
func (c *BoltCache) Clear() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketDocs); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(bucketDocs)
		return err
	})
}

// Len returns the number of cached entries.
func (c *BoltCache) Len() (int, error) {
	n := 0
	err := c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketDocs).Stats().KeyN
		return nil
	})
	return n, err
}

func (c *BoltCache) Path() string {
	return c.path
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
