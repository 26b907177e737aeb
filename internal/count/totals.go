package count

// Totals aggregates per-source snapshots into a combined record.
// Lines, words, chars, and bytes are summed; MaxLineLength is the
// maximum across sources. The merge is policy-independent: whether the
// combined row is rendered is decided later by the caller.
type Totals struct {
	Snapshot
	Sources int // sources merged successfully
	Failed  int // sources that failed with an I/O error
}

// Add merges one source's final snapshot into the running total.
func (t *Totals) Add(s Snapshot) {
	t.Lines += s.Lines
	t.Words += s.Words
	t.Chars += s.Chars
	t.Bytes += s.Bytes
	if s.MaxLineLength > t.MaxLineLength {
		t.MaxLineLength = s.MaxLineLength
	}
	t.Sources++
}

// RecordFailure notes a source that could not be read. Its partial
// counts are discarded from the total; the failure count drives the
// process exit status.
func (t *Totals) RecordFailure() {
	t.Failed++
}

// With returns the running total combined with an in-progress snapshot,
// without mutating the total. Used by the live preview while a source
// is still being read.
func (t Totals) With(s Snapshot) Snapshot {
	combined := Snapshot{
		Lines:         t.Lines + s.Lines,
		Words:         t.Words + s.Words,
		Chars:         t.Chars + s.Chars,
		Bytes:         t.Bytes + s.Bytes,
		MaxLineLength: t.MaxLineLength,
	}
	if s.MaxLineLength > combined.MaxLineLength {
		combined.MaxLineLength = s.MaxLineLength
	}
	return combined
}
