// Package httputil fetches input files from http and https URLs.
//
// # Overview
//
// Commands that take an input file also accept a URL. This package provides
// the two pieces that make remote inputs practical:
//
//   - [Fetcher]: downloads with retries on transient failures
//   - [Cache]: file-based storage of downloaded bodies
//
// # Caching
//
// [Cache] stores response bodies in the filesystem (~/.cache/upset/remote/)
// with a TTL, so re-rendering the same URL does not hit the network:
//
//	c, err := httputil.NewCache("", time.Hour)
//	f := httputil.NewFetcher(c, logger)
//	data, cached, err := f.Fetch(ctx, "https://example.com/sets.tsv")
//
// # Retry
//
// Network errors, 5xx responses and 429 responses are retried with
// exponential backoff via [cache.RetryWithBackoff]. Other 4xx responses fail
// immediately.
package httputil
