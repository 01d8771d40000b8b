// Package boltcache keeps fetched lyric files in a BoltDB file so repeat plays do
// not hit the lyric host again.
package boltcache

import (
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"github.com/ewilliams-labs/siren/internal/core/ports"
)

var lyricsBucket = []byte("lyrics")

// LyricCache implements ports.LyricCache.
type LyricCache struct {
	db *bolt.DB
}

var _ ports.LyricCache = (*LyricCache)(nil)

// Open opens or creates the cache file at path.
func Open(path string) (*LyricCache, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt cache: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(lyricsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt cache: create bucket: %w", err)
	}

	return &LyricCache{db: db}, nil
}

// Close releases the file lock.
func (c *LyricCache) Close() error {
	return c.db.Close()
}

// Get returns the cached text for url.
func (c *LyricCache) Get(url string) (string, bool, error) {
	var text string
	var found bool
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(lyricsBucket).Get([]byte(url))
		if v == nil {
			return nil
		}
		// v is only valid inside the transaction
		text = string(v)
		found = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("bolt cache: get: %w", err)
	}
	return text, found, nil
}

// Put stores text under url, replacing any previous value.
func (c *LyricCache) Put(url, text string) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(lyricsBucket).Put([]byte(url), []byte(text))
	})
	if err != nil {
		return fmt.Errorf("bolt cache: put: %w", err)
	}
	return nil
}
