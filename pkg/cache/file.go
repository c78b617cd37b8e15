package cache

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// fileMagic starts every entry file. The rest of the first line is the
// expiry in Unix nanoseconds, 0 for never; the payload follows raw.
const fileMagic = "upset-cache/1 "

// FileCache stores entries as files under a directory, fanned out by the
// first byte of the key hash. Writes go through a temporary file and a
// rename so concurrent readers never see a partial entry.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens (and creates) a cache in dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Get implements Cache. Corrupt and expired files are removed and
// reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	expires, data, ok := decodeEntry(raw)
	if !ok || (!expires.IsZero() && c.now().After(expires)) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

// Set implements Cache.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = c.now().Add(ttl)
	}

	path := c.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(encodeEntry(expires, data))
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(tmp.Name())
		return werr
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Delete implements Cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close implements Cache.
func (c *FileCache) Close() error { return nil }

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Clear removes every entry. The directory itself is kept.
func (c *FileCache) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:])
}

func encodeEntry(expires time.Time, data []byte) []byte {
	var exp int64
	if !expires.IsZero() {
		exp = expires.UnixNano()
	}
	header := fmt.Sprintf("%s%d\n", fileMagic, exp)
	return append([]byte(header), data...)
}

func decodeEntry(raw []byte) (time.Time, []byte, bool) {
	if !bytes.HasPrefix(raw, []byte(fileMagic)) {
		return time.Time{}, nil, false
	}
	rest := raw[len(fileMagic):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		return time.Time{}, nil, false
	}
	exp, err := strconv.ParseInt(string(rest[:nl]), 10, 64)
	if err != nil {
		return time.Time{}, nil, false
	}
	var expires time.Time
	if exp != 0 {
		expires = time.Unix(0, exp)
	}
	return expires, rest[nl+1:], true
}

var (
	_ Cache   = (*FileCache)(nil)
	_ Clearer = (*FileCache)(nil)
)
