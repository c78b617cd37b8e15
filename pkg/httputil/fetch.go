package httputil

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/upset/pkg/cache"
	"github.com/matzehuels/upset/pkg/errors"
)

// DefaultMaxBytes caps the size of a downloaded input.
const DefaultMaxBytes = 32 << 20

// Fetcher downloads input files.
type Fetcher struct {
	Client   *http.Client
	Cache    *Cache // optional
	MaxBytes int64
	Logger   *log.Logger
}

// NewFetcher returns a Fetcher with a 30 second timeout. c may be nil.
func NewFetcher(c *Cache, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Cache:    c,
		MaxBytes: DefaultMaxBytes,
		Logger:   logger,
	}
}

// IsURL reports whether s names an http or https resource.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// BaseName returns the last path segment of rawURL, or its host.
func BaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if b := path.Base(u.Path); b != "." && b != "/" {
		return b
	}
	return u.Host
}

// Fetch returns the body at rawURL and whether it came from the cache.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, bool, error) {
	if !IsURL(rawURL) {
		return nil, false, errors.New(errors.ErrCodeInvalidPath, "not an http(s) URL: %s", rawURL)
	}
	if f.Cache != nil {
		data, ok, err := f.Cache.Get(rawURL)
		if ok {
			f.Logger.Debug("remote input from cache", "url", rawURL)
			return data, true, nil
		}
		if err != nil && err != ErrExpired {
			f.Logger.Debug("remote cache read failed", "url", rawURL, "err", err)
		}
	}

	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = f.get(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if f.Cache != nil {
		if err := f.Cache.Set(rawURL, data); err != nil {
			f.Logger.Debug("remote cache write failed", "url", rawURL, "err", err)
		}
	}
	return data, false, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "bad URL %s", rawURL)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeFileRead, err, "fetch %s", rawURL))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, cache.Retryable(statusError(rawURL, resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeFileNotFound, "not found: %s", rawURL)
	case resp.StatusCode >= 300:
		return nil, statusError(rawURL, resp.StatusCode)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeFileRead, err, "read %s", rawURL))
	}
	if int64(len(data)) > limit {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is larger than %d bytes", rawURL, limit)
	}
	return data, nil
}

func statusError(rawURL string, code int) error {
	return errors.New(errors.ErrCodeFileRead, "fetch %s: %d %s", rawURL, code, http.StatusText(code))
}
