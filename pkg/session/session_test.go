package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/upset/pkg/chart"
	"github.com/matzehuels/upset/pkg/matrix"
)

func newStore(ttl time.Duration) *Store {
	return NewStore(ttl, log.NewWithOptions(io.Discard, log.Options{}))
}

func TestCreateGet(t *testing.T) {
	st := newStore(time.Minute)
	s, err := st.Create(chart.Options{})
	require.NoError(t, err)
	_, err = uuid.Parse(s.ID)
	require.NoError(t, err, "session id should be a uuid")

	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, st.Len())
}

func TestCreateInvalid(t *testing.T) {
	st := newStore(time.Minute)
	_, err := st.Create(chart.Options{Width: -1})
	require.Error(t, err)
	assert.Equal(t, 0, st.Len())
}

func TestGetMissing(t *testing.T) {
	st := newStore(time.Minute)
	_, err := st.Get("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadAndDo(t *testing.T) {
	st := newStore(time.Minute)
	s, err := st.Create(chart.Options{Width: 400, Height: 200})
	require.NoError(t, err)

	out := <-s.Load(context.Background(), "sets.tsv", strings.NewReader("A\t3\nA,B\t2\n"))
	require.False(t, out.Superseded)
	assert.Equal(t, matrix.StatusValid, out.File.Status)

	err = s.Do(func(c *chart.Chart) error {
		assert.Equal(t, matrix.StatusValid, c.Status())
		assert.Equal(t, 2, c.File().Matrix.IntersectionCount())
		return nil
	})
	require.NoError(t, err)
}

func TestDoReturnsError(t *testing.T) {
	st := newStore(time.Minute)
	s, err := st.Create(chart.Options{})
	require.NoError(t, err)
	want := errors.New("boom")
	assert.Equal(t, want, s.Do(func(*chart.Chart) error { return want }))
}

func TestDelete(t *testing.T) {
	st := newStore(time.Minute)
	s, err := st.Create(chart.Options{})
	require.NoError(t, err)

	require.NoError(t, st.Delete(s.ID))
	assert.True(t, errors.Is(st.Delete(s.ID), ErrNotFound))
	_, err = st.Get(s.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.Do(func(*chart.Chart) error { return nil })
	assert.True(t, errors.Is(err, ErrNotFound), "deleted session should refuse access")
}

func TestExpiry(t *testing.T) {
	st := newStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	s, err := st.Create(chart.Options{})
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	_, err = st.Get(s.ID)
	require.NoError(t, err, "access within ttl")
	assert.Equal(t, now.Add(time.Minute), s.ExpiresAt(), "Get should extend the ttl")

	now = now.Add(2 * time.Minute)
	_, err = st.Get(s.ID)
	assert.True(t, errors.Is(err, ErrExpired))
	assert.Equal(t, 0, st.Len())
}

func TestCleanup(t *testing.T) {
	st := newStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	old, err := st.Create(chart.Options{})
	require.NoError(t, err)
	now = now.Add(45 * time.Second)
	fresh, err := st.Create(chart.Options{})
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, st.Cleanup())
	_, err = st.Get(old.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = st.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestConcurrentDo(t *testing.T) {
	st := newStore(time.Minute)
	s, err := st.Create(chart.Options{})
	require.NoError(t, err)
	<-s.Load(context.Background(), "x", strings.NewReader("A\t1\nB\t2\n"))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := "A"
			if i%2 == 1 {
				key = "B"
			}
			_ = s.Do(func(c *chart.Chart) error {
				c.PointerEnter(key, 1, 1)
				c.Click(key)
				c.PointerLeave()
				return nil
			})
		}()
	}
	wg.Wait()

	err = s.Do(func(c *chart.Chart) error {
		_, hovering := c.State().Hovered()
		assert.False(t, hovering)
		return nil
	})
	require.NoError(t, err)
}

func TestStoreClose(t *testing.T) {
	st := newStore(time.Minute)
	for range 3 {
		_, err := st.Create(chart.Options{})
		require.NoError(t, err)
	}
	st.Close()
	assert.Equal(t, 0, st.Len())
}

func TestRunStops(t *testing.T) {
	st := newStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestLoadAfterDelete(t *testing.T) {
	st := newStore(time.Minute)
	s, err := st.Create(chart.Options{})
	require.NoError(t, err)
	require.NoError(t, st.Delete(s.ID))

	out := <-s.Load(context.Background(), "late.tsv", strings.NewReader("A\t1\n"))
	assert.True(t, out.Superseded)
}
