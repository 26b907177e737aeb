// Package count implements the streaming counting engine: a per-source
// state machine that consumes raw byte chunks and maintains line, word,
// character, byte, and max-display-width counts incrementally.
//
// A Counter is fed sequentially by exactly one reader loop and may be
// sampled concurrently through Peek, which always returns a consistent
// point-in-time Snapshot. Feeding never blocks on sampling beyond the
// per-chunk write lock.
package count

import (
	"log/slog"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/chriscorrea/tally/internal/width"
)

// Snapshot is an immutable point-in-time copy of one source's counts.
// All fields are monotonically non-decreasing while the source is being
// consumed; MaxLineLength is a running maximum rather than a sum.
type Snapshot struct {
	Lines         uint64
	Words         uint64
	Chars         uint64
	Bytes         uint64
	MaxLineLength uint64
}

// Counter accumulates counts for a single input source. All five
// metrics are always computed; selecting a subset for display is a
// rendering concern and costs nothing here.
type Counter struct {
	mu      sync.RWMutex
	snap    Snapshot
	pending []byte // partial multi-byte sequence carried across chunks
	invalid uint64 // undecodable byte sequences seen so far
	inWord  bool
	col     uint64 // display column on the current line
	cls     width.Classifier
}

// New creates a Counter that uses the given classifier for
// display-width accounting.
func New(cls width.Classifier) *Counter {
	return &Counter{cls: cls}
}

// Feed consumes the next chunk of raw bytes from the source. Chunks may
// be sliced arbitrarily; a multi-byte character straddling a chunk
// boundary is carried over and completed by the next call.
func (c *Counter) Feed(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// bytes are counted unconditionally, decodable or not
	c.snap.Bytes += uint64(len(p))

	// complete any carried partial sequence before scanning the chunk;
	// an invalid head can expose a fresh partial prefix behind it, so
	// loop until the carry buffer drains or the chunk runs out
	for len(c.pending) > 0 {
		for len(p) > 0 && !utf8.FullRune(c.pending) {
			c.pending = append(c.pending, p[0])
			p = p[1:]
		}
		if !utf8.FullRune(c.pending) {
			return // still incomplete, wait for the next chunk
		}
		r, size := utf8.DecodeRune(c.pending)
		if r == utf8.RuneError && size == 1 {
			c.invalid++
		} else {
			c.processRune(r)
		}
		n := copy(c.pending, c.pending[size:])
		c.pending = c.pending[:n]
	}

	c.scan(p)
}

// scan decodes and processes a chunk with no leading carry. A trailing
// incomplete sequence is stashed for the next Feed.
func (c *Counter) scan(p []byte) {
	for len(p) > 0 {
		if p[0] < utf8.RuneSelf {
			c.processRune(rune(p[0]))
			p = p[1:]
			continue
		}
		if !utf8.FullRune(p) {
			c.pending = append(c.pending[:0], p...)
			return
		}
		r, size := utf8.DecodeRune(p)
		if r == utf8.RuneError && size == 1 {
			// undecodable byte: already counted as a byte, nothing else
			c.invalid++
		} else {
			c.processRune(r)
		}
		p = p[size:]
	}
}

// processRune applies one decoded character to the state machine.
// Caller holds the write lock.
func (c *Counter) processRune(r rune) {
	c.snap.Chars++

	if r == '\n' {
		c.snap.Lines++
		c.inWord = false
		c.col = 0
		return
	}

	if unicode.IsSpace(r) {
		c.inWord = false
	} else if !c.inWord {
		// outside-a-word -> inside-a-word transition
		c.inWord = true
		c.snap.Words++
	}

	cols, _ := c.cls.Advance(r, c.col)
	c.col += cols
	if c.col > c.snap.MaxLineLength {
		c.snap.MaxLineLength = c.col
	}
}

// Peek returns a consistent snapshot of the counts so far. Safe to call
// concurrently with Feed; it never observes a chunk half-applied.
func (c *Counter) Peek() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Finalize returns the final snapshot for the source. A trailing
// incomplete multi-byte sequence is a decode boundary: its bytes were
// counted, the unfinished character is not.
func (c *Counter) Finalize() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) > 0 {
		slog.Debug("incomplete multi-byte sequence at end of input",
			"pendingBytes", len(c.pending))
	}
	if c.invalid > 0 {
		slog.Debug("undecodable byte sequences skipped", "count", c.invalid)
	}
	return c.snap
}

// Incomplete reports whether input ended in the middle of a multi-byte
// character.
func (c *Counter) Incomplete() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pending) > 0
}

// InvalidSequences returns how many undecodable byte sequences were
// skipped so far.
func (c *Counter) InvalidSequences() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.invalid
}
