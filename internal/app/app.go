// Package app contains the core application logic for the tally CLI
// tool. It drives the per-source read-and-count loop, the live preview
// lifecycle, totals aggregation, and final rendering, separated from
// CLI concerns.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/chriscorrea/tally/internal/count"
	"github.com/chriscorrea/tally/internal/format"
	"github.com/chriscorrea/tally/internal/preview"
	"github.com/chriscorrea/tally/internal/source"
	"github.com/chriscorrea/tally/internal/width"
)

// chunkSize is the read buffer size for the counting loop.
const chunkSize = 128 * 1024

// TotalsPolicy controls whether the combined-count row is rendered
// relative to the per-source rows.
type TotalsPolicy int

const (
	// TotalsAuto prints the total row iff more than one source was given (default)
	TotalsAuto TotalsPolicy = iota
	// TotalsAlways prints the total row even for a single source
	TotalsAlways
	// TotalsOnly prints only the total row, unlabeled and unpadded
	TotalsOnly
	// TotalsNever suppresses the total row
	TotalsNever
)

// String returns the string representation of the totals policy.
func (p TotalsPolicy) String() string {
	switch p {
	case TotalsAuto:
		return "auto"
	case TotalsAlways:
		return "always"
	case TotalsOnly:
		return "only"
	case TotalsNever:
		return "never"
	default:
		return "unknown"
	}
}

// ParseTotalsPolicy parses a --total argument.
func ParseTotalsPolicy(s string) (TotalsPolicy, error) {
	switch s {
	case "auto":
		return TotalsAuto, nil
	case "always":
		return TotalsAlways, nil
	case "only":
		return TotalsOnly, nil
	case "never":
		return TotalsNever, nil
	default:
		return TotalsAuto, fmt.Errorf("invalid argument %q for --total (valid: auto, always, only, never)", s)
	}
}

// Config holds all configuration options for a counting run.
type Config struct {
	Files     []string         // operands; empty means stdin
	FilesFrom string           // --files0-from list source ("" = unset, "-" = stdin)
	Select    format.Selection // metrics to render; zero value means the wc default
	Totals    TotalsPolicy
	Interval  time.Duration // preview refresh interval (0 = default)
	Stdout    io.Writer     // result stream (defaults to os.Stdout)
	Stderr    io.Writer     // diagnostics and live preview (defaults to os.Stderr)
	Open      func(name string) (io.ReadCloser, error) // source opener (defaults to source.Open)
	Debug     bool
}

// row is a rendered-result record held until all sources have been read.
type row struct {
	fields []uint64
	label  string
}

// Run executes a full counting run: expands the file list, counts each
// source sequentially with an optional live preview on stderr, and
// renders the per-source rows and total according to the totals policy.
//
// It returns the number of sources that failed with an I/O error; those
// sources get a stderr diagnostic, are excluded from the totals, and
// must drive a nonzero process exit status. A non-nil error is fatal to
// the whole run (an unreadable files0-from list, or cancellation).
func Run(ctx context.Context, cfg Config) (failed int, err error) {
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	open := cfg.Open
	if open == nil {
		open = source.Open
	}

	files := cfg.Files
	if cfg.FilesFrom != "" {
		names, err := source.NamesFrom(cfg.FilesFrom)
		if err != nil {
			return 0, fmt.Errorf("cannot read file names from %s: %w", cfg.FilesFrom, err)
		}
		files = names
	}
	if len(files) == 0 {
		files = []string{source.Stdin}
	}

	sel := cfg.Select
	if !sel.Any() {
		sel = format.DefaultSelection()
	}

	// column width is fixed before anything is read so the live preview
	// and the final rows align
	numWidth := format.NumberWidth(files, cfg.Totals == TotalsOnly)

	// the preview only exists on an interactive stderr; otherwise the
	// timer is never started and costs nothing
	live := false
	if f, ok := stderr.(*os.File); ok {
		live = preview.IsTerminal(f)
	}

	cls := width.NewClassifier(nil)
	render := func(s count.Snapshot) string {
		return format.Row(sel.Fields(s), "", numWidth)
	}

	var totals count.Totals
	var rows []row

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return totals.Failed, err
		}

		rc, err := open(name)
		if err != nil {
			fmt.Fprintf(stderr, "tally: %s: %s\n", name, source.Reason(err))
			totals.RecordFailure()
			continue
		}

		ctr := count.New(cls)

		var sched *preview.Scheduler
		if live {
			// the preview shows the running total: everything merged so
			// far plus the source currently being read
			sched = preview.New(ctx, stderr, cfg.Interval, func() count.Snapshot {
				return totals.With(ctr.Peek())
			}, render)
			sched.Start()
		}

		// close the source on cancellation so a read blocked on a pipe or
		// fifo unblocks instead of swallowing the interrupt
		stopClose := context.AfterFunc(ctx, func() { rc.Close() })

		readErr := feed(ctx, rc, ctr)
		stopClose()
		rc.Close()

		// no preview tick may land after this point; the final rows and
		// diagnostics share the streams with the preview line
		if sched != nil {
			sched.Stop()
		}

		if readErr != nil {
			if ctx.Err() != nil {
				// interrupted: the read error is just the closed source
				return totals.Failed, ctx.Err()
			}
			// partial counts are discarded from the totals
			fmt.Fprintf(stderr, "tally: %s: %s\n", name, source.Reason(readErr))
			totals.RecordFailure()
			continue
		}

		snap := ctr.Finalize()
		slog.Debug("source counted", "name", name,
			"lines", snap.Lines, "words", snap.Words, "chars", snap.Chars,
			"bytes", snap.Bytes, "maxLineLength", snap.MaxLineLength)

		label := name
		if name == source.Stdin {
			label = ""
		}
		rows = append(rows, row{fields: sel.Fields(snap), label: label})
		totals.Add(snap)
	}

	switch {
	case cfg.Totals == TotalsOnly:
		rows = []row{{fields: sel.Fields(totals.Snapshot)}}
	case cfg.Totals == TotalsAlways,
		cfg.Totals == TotalsAuto && len(files) > 1:
		rows = append(rows, row{fields: sel.Fields(totals.Snapshot), label: "total"})
	}

	for _, r := range rows {
		fmt.Fprintln(stdout, format.Row(r.fields, r.label, numWidth))
	}

	return totals.Failed, nil
}

// feed runs the synchronous read-and-count loop for one source.
func feed(ctx context.Context, r io.Reader, ctr *count.Counter) error {
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			ctr.Feed(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
