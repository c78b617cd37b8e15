package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] when an entry exists but has
// outlived the TTL. The caller should download again and call [Cache.Set].
var ErrExpired = errors.New("cache entry expired")

// Cache stores downloaded bodies as files named by the SHA-256 of the URL.
//
// Entry age is the file modification time. A TTL of 0 means entries never
// expire. Several processes may share one directory.
type Cache struct {
	dir string
	ttl time.Duration
}

// NewCache creates a Cache in dir, or ~/.cache/upset/remote when dir is
// empty. The directory is created if needed.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "upset", "remote")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the body stored for url.
//
//   - (data, true, nil): fresh entry
//   - (nil, false, nil): no entry
//   - (nil, false, ErrExpired): stale entry
func (c *Cache) Get(url string) ([]byte, bool, error) {
	path := c.path(url)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false, ErrExpired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data for url, resetting its age.
func (c *Cache) Set(url string, data []byte) error {
	return os.WriteFile(c.path(url), data, 0o644)
}

// Clear removes every stored body.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (c *Cache) path(url string) string {
	h := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
