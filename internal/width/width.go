// Package width maps decoded characters to display columns for
// max-line-length accounting. The Unicode wide/zero-width tables are a
// pluggable per-rune policy so counting stays deterministic and
// independent of the process locale; the default policy delegates to
// go-runewidth.
package width

import (
	"unicode"

	"github.com/mattn/go-runewidth"
)

// TabWidth is the column interval of hardware tab stops.
const TabWidth = 8

// Policy returns the display width of a single rune: 0 for zero-width
// and non-printable characters, 1 for normal characters, 2 for wide
// (East-Asian / emoji-class) characters. Tab handling is not a policy
// concern; the Classifier resolves tabs against the current column.
type Policy func(r rune) int

// Runewidth is the default Policy, backed by go-runewidth's Unicode
// tables.
func Runewidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// Classifier computes column advancement for decoded characters.
// It is a pure function of its inputs; it holds no mutable state, so
// concurrent preview sampling can never perturb counting.
type Classifier struct {
	policy Policy
}

// NewClassifier creates a Classifier using the given per-rune policy.
// A nil policy falls back to the go-runewidth tables.
func NewClassifier(policy Policy) Classifier {
	if policy == nil {
		policy = Runewidth
	}
	return Classifier{policy: policy}
}

// Advance returns how many display columns r occupies when written at
// column col, and whether r is a printable character. A tab advances
// to the next multiple of TabWidth; control and other non-printable
// characters advance zero columns.
func (c Classifier) Advance(r rune, col uint64) (cols uint64, printable bool) {
	if r == '\t' {
		return TabWidth - col%TabWidth, false
	}
	if !unicode.IsPrint(r) {
		return 0, false
	}
	return uint64(c.policy(r)), true
}
