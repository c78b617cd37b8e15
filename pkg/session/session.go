// Package session keeps mounted charts alive between HTTP requests.
//
// Each [Session] owns one [chart.Chart] and the [chart.Loader] that feeds
// it uploads. A chart is not safe for concurrent use, so every access goes
// through [Session.Do], which holds the session's mutex. Sessions expire
// after a TTL of inactivity and are removed by [Store.Cleanup].
//
// # Usage
//
//	store := session.NewStore(session.DefaultTTL, logger)
//	sess, err := store.Create(chart.Options{Width: 800, Height: 400})
//	if err != nil {
//	    return err
//	}
//	if out := <-sess.Load(ctx, "sets.tsv", r); out.File.Err != nil {
//	    return out.File.Err
//	}
//
//	err = sess.Do(func(c *chart.Chart) error {
//	    c.PointerEnter("A,B", 10, 20)
//	    return nil
//	})
package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/upset/pkg/chart"
	"github.com/matzehuels/upset/pkg/matrix"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// DefaultTTL is the default idle lifetime of a session.
const DefaultTTL = 30 * time.Minute

// Session is one mounted chart.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu        sync.Mutex
	expiresAt time.Time
	chart     *chart.Chart
	loader    *chart.Loader
	closed    bool
}

// IsExpired reports whether the session has been idle past its TTL.
func (s *Session) IsExpired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.After(s.expiresAt)
}

// ExpiresAt returns the current expiry time.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// Do runs fn with exclusive access to the chart.
func (s *Session) Do(fn func(*chart.Chart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotFound
	}
	return fn(s.chart)
}

// Load parses r in the background and shows it once parsed. A newer Load
// cancels this one. The channel reports this load's own outcome. It must
// not be called from inside Do.
func (s *Session) Load(ctx context.Context, name string, r io.Reader) <-chan chart.Outcome {
	return s.loader.Load(ctx, name, r)
}

func (s *Session) deliver(f matrix.ParsedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.chart.SetFile(f)
	}
}

func (s *Session) touch(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	s.expiresAt = now.Add(ttl)
	s.mu.Unlock()
}

// close stops loading and unmounts the chart.
func (s *Session) close() {
	s.loader.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.chart.Unmount()
	}
}

// Store holds sessions in memory.
type Store struct {
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty store. A non-positive ttl means [DefaultTTL].
func NewStore(ttl time.Duration, logger *log.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create mounts a chart and registers it under a fresh UUID.
func (st *Store) Create(opts chart.Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = st.logger
	}
	c, err := chart.New(opts)
	if err != nil {
		return nil, err
	}
	now := st.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		expiresAt: now.Add(st.ttl),
		chart:     c,
	}
	s.loader = chart.NewLoader(s.deliver, opts.Logger)

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	st.logger.Debug("created session", "id", s.ID)
	return s, nil
}

// Get returns a live session and extends its lifetime. An expired session
// is removed and reported as [ErrExpired].
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	now := st.now()
	if s.IsExpired(now) {
		st.remove(id)
		return nil, ErrExpired
	}
	s.touch(now, st.ttl)
	return s, nil
}

// Delete unmounts and removes a session.
func (st *Store) Delete(id string) error {
	if !st.remove(id) {
		return ErrNotFound
	}
	st.logger.Debug("deleted session", "id", id)
	return nil
}

func (st *Store) remove(id string) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.close()
	}
	return ok
}

// Cleanup removes expired sessions and returns how many were removed.
func (st *Store) Cleanup() int {
	now := st.now()
	st.mu.RLock()
	var expired []string
	for id, s := range st.sessions {
		if s.IsExpired(now) {
			expired = append(expired, id)
		}
	}
	st.mu.RUnlock()

	n := 0
	for _, id := range expired {
		if st.remove(id) {
			n++
		}
	}
	if n > 0 {
		st.logger.Debug("cleaned up sessions", "count", n)
	}
	return n
}

// Run calls Cleanup every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st.Cleanup()
		}
	}
}

// Len returns the number of registered sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Close unmounts every session.
func (st *Store) Close() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()
	for _, s := range all {
		s.close()
	}
}
