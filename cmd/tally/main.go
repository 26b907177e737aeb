package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chriscorrea/tally/internal/app"
	"github.com/chriscorrea/tally/internal/format"

	"github.com/spf13/cobra"
)

// buildConfig constructs an app.Config from command flags and arguments
func buildConfig(cmd *cobra.Command, args []string) (app.Config, error) {
	// get flag values
	lines, _ := cmd.Flags().GetBool("lines")
	words, _ := cmd.Flags().GetBool("words")
	chars, _ := cmd.Flags().GetBool("chars")
	bytes, _ := cmd.Flags().GetBool("bytes")
	maxLineLength, _ := cmd.Flags().GetBool("max-line-length")
	filesFrom, _ := cmd.Flags().GetString("files0-from")
	total, _ := cmd.Flags().GetString("total")
	debug, _ := cmd.Flags().GetBool("debug")

	totals, err := app.ParseTotalsPolicy(total)
	if err != nil {
		return app.Config{}, err
	}

	if filesFrom != "" && len(args) > 0 {
		return app.Config{}, fmt.Errorf("file operands cannot be combined with --files0-from")
	}

	// selection flags accumulate; they never undo each other. The set is
	// built once here, before any source is read. An empty selection
	// falls back to the wc default (lines, words, bytes) in app.Run.
	sel := format.Selection{
		Lines:         lines,
		Words:         words,
		Chars:         chars,
		Bytes:         bytes,
		MaxLineLength: maxLineLength,
	}

	// return constructed config
	return app.Config{
		Files:     args,
		FilesFrom: filesFrom,
		Select:    sel,
		Totals:    totals,
		Debug:     debug,
	}, nil
}

// setupLogger configures the default slog logger based on debug mode
func setupLogger(debug bool) {
	var level slog.Level
	if debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// exitCode is set when sources fail but the run itself completes.
var exitCode int

var rootCmd = &cobra.Command{
	Use:     "tally [FILE]...",
	Version: "0.1.0",
	Short:   "Print newline, word, and byte counts with a live preview",
	Long: `Tally prints newline, word, and byte counts for each FILE, and a total
line if more than one FILE is specified. A word is a non-zero-length
sequence of non-whitespace characters delimited by whitespace.

With no FILE, or when FILE is -, read standard input.

A live preview of the counts is refreshed every 200ms on standard error
while input is being read, if standard error is a terminal.

Examples:
  tally file.txt notes.md
  tally -L wide.txt
  find . -name '*.go' -print0 | tally --files0-from=-`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// build config from flags and arguments
		config, err := buildConfig(cmd, args)
		if err != nil {
			return err
		}

		// configure logging pending debug flag
		setupLogger(config.Debug)

		// create context with signal handling for graceful shutdown
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		// run the counting loop
		failed, err := app.Run(ctx, config)
		if err != nil {
			return err
		}

		// per-source failures were already reported on stderr; they only
		// determine the exit status
		if failed > 0 {
			exitCode = 1
		}

		return nil
	},
}

func init() {
	// selection flags (fixed output order: lines, words, chars, bytes,
	// max-line-length, regardless of flag order)
	rootCmd.Flags().BoolP("lines", "l", false, "print the newline counts")
	rootCmd.Flags().BoolP("words", "w", false, "print the word counts")
	rootCmd.Flags().BoolP("chars", "m", false, "print the character counts")
	rootCmd.Flags().BoolP("bytes", "c", false, "print the byte counts")
	rootCmd.Flags().BoolP("max-line-length", "L", false, "print the maximum display width")

	// file-list and totals handling
	rootCmd.Flags().String("files0-from", "", "read input from the files specified by NUL-terminated names in file F; if F is - then read names from standard input")
	rootCmd.Flags().String("total", "auto", "when to print a line with total counts; WHEN can be: auto, always, only, never")

	// other flags
	rootCmd.Flags().BoolP("debug", "D", false, "enable debug logging")
	_ = rootCmd.Flags().MarkHidden("debug")
}

// exitStatus maps a fatal run error to the process exit status.
// Interruption gets the standard SIGINT code and no diagnostic.
func exitStatus(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130 // 128 + SIGINT
	}
	return 1
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		code := exitStatus(err)
		if code == 130 {
			// leave any preview remnants on their own line
			fmt.Fprintln(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "tally: %v\n", err)
		}
		os.Exit(code)
	}
	os.Exit(exitCode)
}
