// Package format renders count rows: metric selection, the fixed
// output column order, and the column sizing rules of GNU wc.
package format

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chriscorrea/tally/internal/count"
)

// MaxNumberWidth is the widest column ever produced by pre-read sizing;
// unknown-size inputs such as pipes assume this width.
const MaxNumberWidth = 7

// Selection is the immutable set of metrics requested for display.
// It is built once from the flags before any source is read; selection
// never changes which counts are computed, only which are rendered.
type Selection struct {
	Lines         bool
	Words         bool
	Chars         bool
	Bytes         bool
	MaxLineLength bool
}

// DefaultSelection is what wc prints when no selection flags are given:
// lines, words, and bytes.
func DefaultSelection() Selection {
	return Selection{Lines: true, Words: true, Bytes: true}
}

// Any reports whether at least one metric is selected.
func (s Selection) Any() bool {
	return s.Lines || s.Words || s.Chars || s.Bytes || s.MaxLineLength
}

// Fields returns the selected counts in the fixed column order:
// lines, words, chars, bytes, max-line-length.
func (s Selection) Fields(snap count.Snapshot) []uint64 {
	fields := make([]uint64, 0, 5)
	if s.Lines {
		fields = append(fields, snap.Lines)
	}
	if s.Words {
		fields = append(fields, snap.Words)
	}
	if s.Chars {
		fields = append(fields, snap.Chars)
	}
	if s.Bytes {
		fields = append(fields, snap.Bytes)
	}
	if s.MaxLineLength {
		fields = append(fields, snap.MaxLineLength)
	}
	return fields
}

// Row renders one output row: right-aligned counts separated by single
// spaces, then the optional label. A row with a single count prints
// unpadded, matching wc's single-metric output.
func Row(fields []uint64, label string, numWidth int) string {
	var b strings.Builder
	if len(fields) == 1 {
		b.WriteString(strconv.FormatUint(fields[0], 10))
	} else {
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%*d", numWidth, f)
		}
	}
	if label != "" {
		b.WriteByte(' ')
		b.WriteString(label)
	}
	return b.String()
}

// NumberWidth sizes the count columns before anything is read, the way
// GNU wc's compute_number_width does: the digits of the summed sizes of
// the regular-file operands, clamped to [1, MaxNumberWidth]. Standard
// input or any non-regular operand forces the maximum since the final
// counts are unknowable up front. Stat errors are ignored here; they
// are reported when the source is actually opened. In total-only mode
// a single unpadded row is printed, so the width is 1.
func NumberWidth(names []string, totalOnly bool) int {
	if totalOnly {
		return 1
	}
	if len(names) == 0 {
		return MaxNumberWidth
	}

	numWidth := 1
	var total int64
	for _, name := range names {
		if name == "-" || name == "" {
			return MaxNumberWidth
		}

		st, err := os.Lstat(name)
		if err != nil {
			continue
		}
		if !st.Mode().IsRegular() {
			return MaxNumberWidth
		}

		// the summed file sizes bound every count we could print
		total += st.Size()
		if w := len(strconv.FormatInt(total, 10)); w > numWidth {
			numWidth = w
		}
		if numWidth >= MaxNumberWidth {
			return MaxNumberWidth
		}
	}
	return numWidth
}
