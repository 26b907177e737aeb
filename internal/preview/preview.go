// Package preview provides the live partial-count display: a periodic
// background sampler that renders in-progress counts to stderr while a
// source is being read.
package preview

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/chriscorrea/tally/internal/count"

	"golang.org/x/term"
)

// DefaultInterval is how often the preview line is refreshed.
const DefaultInterval = 200 * time.Millisecond

// Renderer formats a snapshot the same way the final output row will be
// formatted, so the preview and the eventual result line up.
type Renderer func(count.Snapshot) string

// Scheduler periodically samples a snapshot source and rewrites a
// single preview line on its writer. It only ever reads point-in-time
// copies; it never blocks or perturbs the counting loop.
type Scheduler struct {
	interval time.Duration
	writer   io.Writer
	peek     func() count.Snapshot
	render   Renderer
	active   bool
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a scheduler that samples peek every interval and renders
// the result to writer. ctx allows for cancellation of the preview
// goroutine. A non-positive interval falls back to DefaultInterval.
func New(ctx context.Context, writer io.Writer, interval time.Duration, peek func() count.Snapshot, render Renderer) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	schedCtx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		interval: interval,
		writer:   writer,
		peek:     peek,
		render:   render,
		ctx:      schedCtx,
		cancel:   cancel,
	}
}

// Start begins periodic preview output.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return // already running
	}

	s.active = true

	s.wg.Add(1)
	go s.run()
}

// Stop halts the preview and erases the preview line. It is synchronous:
// once Stop returns, no further preview output will be emitted, so the
// caller may safely print the final row.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return // not running
	}

	s.active = false
	s.cancel()
	s.mu.Unlock()

	// wait for the preview goroutine to finish
	s.wg.Wait()

	// clear the preview line with terminal control sequences
	// only clear if we're writing to a terminal (not redirected)
	if f, ok := s.writer.(*os.File); ok && IsTerminal(f) {
		fmt.Fprint(s.writer, "\r\033[2K")
	} else {
		// for non-terminal output, just use carriage return
		fmt.Fprint(s.writer, "\r")
	}
}

// IsActive returns whether the scheduler is currently running
func (s *Scheduler) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// run is the main preview loop.
func (s *Scheduler) run() {
	defer s.wg.Done() // signal completion when goroutine exits

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprintf(s.writer, "\r%s", s.render(s.peek()))
		}
	}
}

// IsTerminal helper function checks if f is a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
