// Package source provides data access for counting inputs; it handles
// opening named files or standard input and expanding NUL-terminated
// file lists for the files0-from mode.
package source

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
)

// Stdin is the operand naming standard input.
const Stdin = "-"

// ErrIsDirectory is returned by Open when the named source is a
// directory.
var ErrIsDirectory = errors.New("is a directory")

// Open returns a reader for the named source. Stdin ("-") is returned
// with a no-op closer so callers can Close unconditionally. Directories
// are rejected up front rather than surfacing a mid-read failure.
func Open(name string) (io.ReadCloser, error) {
	if name == Stdin {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	if fi, err := f.Stat(); err == nil && fi.IsDir() {
		f.Close()
		return nil, ErrIsDirectory
	}

	return f, nil
}

// Names parses NUL-terminated source names from r. Empty names are
// dropped; a trailing NUL does not produce an empty entry.
func Names(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, name := range strings.Split(string(data), "\x00") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// NamesFrom reads the NUL-terminated name list from the named file, or
// from standard input when name is "-".
func NamesFrom(name string) ([]string, error) {
	if name == Stdin {
		return Names(os.Stdin)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Names(f)
}

// Reason extracts the operating-system reason from a file error for
// per-source diagnostics, dropping the "open <path>" prefix that
// *fs.PathError carries. Common conditions are spelled the way wc
// spells them.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrIsDirectory):
		return "Is a directory"
	case errors.Is(err, fs.ErrNotExist):
		return "No such file or directory"
	case errors.Is(err, fs.ErrPermission):
		return "Permission denied"
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
