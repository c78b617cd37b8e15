package chart

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/upset/pkg/matrix"
)

// DeliverFunc receives parsed uploads.
type DeliverFunc func(matrix.ParsedFile)

// Outcome is what became of one Load.
type Outcome struct {
	File matrix.ParsedFile
	// Superseded is set when the load was cancelled before delivery, by a
	// newer Load, by Close or by its context. File is then not on screen.
	Superseded bool
}

// Loader parses uploads in the background. Starting a load cancels the one
// in flight, so only the most recently requested upload is delivered.
type Loader struct {
	deliver DeliverFunc
	logger  *log.Logger

	mu     sync.Mutex
	gen    uint64
	closed bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLoader returns a loader handing results to deliver. Deliveries are
// serialized.
func NewLoader(deliver DeliverFunc, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{deliver: deliver, logger: logger}
}

// Load starts reading r. It delivers a pending file immediately and the
// parsed file once reading finishes, unless a newer Load superseded it.
//
// The returned channel receives exactly one Outcome for this load and is
// then closed. Loads started after Close are superseded at once.
func (l *Loader) Load(ctx context.Context, name string, r io.Reader) <-chan Outcome {
	done := make(chan Outcome, 1)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		done <- Outcome{File: matrix.Pending(name), Superseded: true}
		close(done)
		return done
	}
	ctx, cancel := context.WithCancel(ctx)
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.wg.Add(1)
	l.deliver(matrix.Pending(name))
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		defer close(done)
		defer cancel()
		f := matrix.Load(name, &ctxReader{ctx: ctx, r: r})

		l.mu.Lock()
		defer l.mu.Unlock()
		if gen != l.gen || ctx.Err() != nil {
			l.logger.Debug("dropped superseded upload", "file", name)
			done <- Outcome{File: f, Superseded: true}
			return
		}
		l.deliver(f)
		done <- Outcome{File: f}
	}()
	return done
}

// Close cancels the load in flight and waits for every started load to
// finish. Later loads are superseded immediately.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.gen++
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()
	l.wg.Wait()
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
