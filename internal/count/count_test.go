package count

import (
	"sync"
	"testing"

	"github.com/chriscorrea/tally/internal/width"
)

func newTestCounter() *Counter {
	return New(width.NewClassifier(nil))
}

func TestCounterBasic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Snapshot
	}{
		{
			"empty input",
			"",
			Snapshot{},
		},
		{
			"single line",
			"hello world\n",
			Snapshot{Lines: 1, Words: 2, Chars: 12, Bytes: 12, MaxLineLength: 11},
		},
		{
			"no trailing newline",
			"hello",
			Snapshot{Lines: 0, Words: 1, Chars: 5, Bytes: 5, MaxLineLength: 5},
		},
		{
			"final partial line still counts words and width",
			"one\ntwo three",
			Snapshot{Lines: 1, Words: 3, Chars: 13, Bytes: 13, MaxLineLength: 9},
		},
		{
			"whitespace only",
			"  \t \n \n",
			Snapshot{Lines: 2, Words: 0, Chars: 7, Bytes: 7, MaxLineLength: 9},
		},
		{
			"multiple spaces between words",
			"  hello   world  \n",
			Snapshot{Lines: 1, Words: 2, Chars: 18, Bytes: 18, MaxLineLength: 17},
		},
		{
			"multi-byte characters",
			"café\n",
			Snapshot{Lines: 1, Words: 1, Chars: 5, Bytes: 6, MaxLineLength: 4},
		},
		{
			"wide characters count two columns",
			"日本\n",
			Snapshot{Lines: 1, Words: 1, Chars: 3, Bytes: 7, MaxLineLength: 4},
		},
		{
			"tab advances to next tab stop",
			"a\tb",
			Snapshot{Lines: 0, Words: 2, Chars: 3, Bytes: 3, MaxLineLength: 9},
		},
		{
			"tab from column zero",
			"\tx\n",
			Snapshot{Lines: 1, Words: 1, Chars: 3, Bytes: 3, MaxLineLength: 9},
		},
		{
			"column resets per line",
			"longest line\nhi\n",
			Snapshot{Lines: 2, Words: 3, Chars: 16, Bytes: 16, MaxLineLength: 12},
		},
		{
			"control characters have no width",
			"a\x01b\n",
			Snapshot{Lines: 1, Words: 1, Chars: 4, Bytes: 4, MaxLineLength: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCounter()
			c.Feed([]byte(tt.input))
			got := c.Finalize()
			if got != tt.want {
				t.Errorf("Finalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCounterInvalidUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  Snapshot
	}{
		{
			"lone invalid byte",
			[]byte{0xFF},
			Snapshot{Bytes: 1},
		},
		{
			"invalid byte between words",
			[]byte("ab\xFFcd"),
			// the invalid byte is not decoded, so no word boundary forms
			Snapshot{Words: 1, Chars: 4, Bytes: 5, MaxLineLength: 4},
		},
		{
			"truncated sequence mid-stream",
			[]byte("a\xE2\x82b"),
			Snapshot{Words: 1, Chars: 2, Bytes: 4, MaxLineLength: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCounter()
			c.Feed(tt.input)
			got := c.Finalize()
			if got != tt.want {
				t.Errorf("Finalize() = %+v, want %+v", got, tt.want)
			}
			if c.InvalidSequences() == 0 {
				t.Error("InvalidSequences() = 0, want > 0")
			}
		})
	}
}

func TestCounterDecodeBoundary(t *testing.T) {
	// trailing incomplete sequence: bytes counted, character not
	c := newTestCounter()
	c.Feed([]byte("ab\xE2\x82"))
	got := c.Finalize()

	want := Snapshot{Words: 1, Chars: 2, Bytes: 4, MaxLineLength: 2}
	if got != want {
		t.Errorf("Finalize() = %+v, want %+v", got, want)
	}
	if !c.Incomplete() {
		t.Error("Incomplete() = false, want true")
	}
	if c.InvalidSequences() != 0 {
		t.Errorf("InvalidSequences() = %d, want 0", c.InvalidSequences())
	}
}

func TestCounterChunkingIdempotence(t *testing.T) {
	// feeding in one chunk vs many arbitrary slices must be identical,
	// including slices that split multi-byte characters
	input := []byte("héllo wörld\t日本語 x\n\xFFsecond line €uro\nno terminator … done")

	whole := newTestCounter()
	whole.Feed(input)
	want := whole.Finalize()

	for _, size := range []int{1, 2, 3, 5, 7, 16} {
		c := newTestCounter()
		for i := 0; i < len(input); i += size {
			end := i + size
			if end > len(input) {
				end = len(input)
			}
			c.Feed(input[i:end])
		}
		if got := c.Finalize(); got != want {
			t.Errorf("chunk size %d: Finalize() = %+v, want %+v", size, got, want)
		}
	}
}

func TestCounterWordSpansChunks(t *testing.T) {
	// one word split across feeds must count once
	c := newTestCounter()
	c.Feed([]byte("hel"))
	c.Feed([]byte("lo"))
	c.Feed([]byte(" wor"))
	c.Feed([]byte("ld"))
	got := c.Finalize()

	if got.Words != 2 {
		t.Errorf("Words = %d, want 2", got.Words)
	}
}

func TestCounterPeek(t *testing.T) {
	c := newTestCounter()
	c.Feed([]byte("one two\n"))

	snap := c.Peek()
	if snap.Lines != 1 || snap.Words != 2 {
		t.Errorf("Peek() = %+v, want lines=1 words=2", snap)
	}

	// Peek must not disturb the state machine
	c.Feed([]byte("three\n"))
	got := c.Finalize()
	if got.Lines != 2 || got.Words != 3 {
		t.Errorf("Finalize() = %+v, want lines=2 words=3", got)
	}
}

func TestCounterPeekConcurrent(t *testing.T) {
	// sample while feeding; every observed snapshot must be internally
	// consistent (bytes never behind chars for ASCII input)
	c := newTestCounter()
	chunk := []byte("some words here\n")

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			snap := c.Peek()
			if snap.Chars > snap.Bytes {
				t.Errorf("torn snapshot: chars %d > bytes %d", snap.Chars, snap.Bytes)
				return
			}
		}
	}()

	for i := 0; i < 1000; i++ {
		c.Feed(chunk)
	}
	close(done)
	wg.Wait()

	if got := c.Finalize(); got.Lines != 1000 {
		t.Errorf("Lines = %d, want 1000", got.Lines)
	}
}

func TestTotalsAdd(t *testing.T) {
	var totals Totals
	totals.Add(Snapshot{Lines: 1, Words: 2, Chars: 10, Bytes: 10, MaxLineLength: 5})
	totals.Add(Snapshot{Lines: 3, Words: 4, Chars: 20, Bytes: 20, MaxLineLength: 8})

	want := Snapshot{Lines: 4, Words: 6, Chars: 30, Bytes: 30, MaxLineLength: 8}
	if totals.Snapshot != want {
		t.Errorf("Totals = %+v, want %+v", totals.Snapshot, want)
	}
	if totals.Sources != 2 {
		t.Errorf("Sources = %d, want 2", totals.Sources)
	}
}

func TestTotalsRecordFailure(t *testing.T) {
	var totals Totals
	totals.Add(Snapshot{Lines: 1, Bytes: 2})
	totals.RecordFailure()

	if totals.Failed != 1 {
		t.Errorf("Failed = %d, want 1", totals.Failed)
	}
	// failures contribute nothing to the counts
	if totals.Lines != 1 || totals.Bytes != 2 {
		t.Errorf("Totals = %+v, want counts unchanged", totals.Snapshot)
	}
}

func TestTotalsWith(t *testing.T) {
	var totals Totals
	totals.Add(Snapshot{Lines: 2, Words: 5, Chars: 30, Bytes: 30, MaxLineLength: 12})

	combined := totals.With(Snapshot{Lines: 1, Words: 1, Chars: 4, Bytes: 4, MaxLineLength: 20})
	want := Snapshot{Lines: 3, Words: 6, Chars: 34, Bytes: 34, MaxLineLength: 20}
	if combined != want {
		t.Errorf("With() = %+v, want %+v", combined, want)
	}

	// With must not mutate the running total
	if totals.Lines != 2 {
		t.Errorf("totals mutated by With: %+v", totals.Snapshot)
	}
}
