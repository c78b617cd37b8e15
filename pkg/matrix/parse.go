package matrix

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/upset/pkg/errors"
)

const (
	commentPrefix = "#"
	fieldSep      = "\t"
)

// Warning records a data line that was dropped because its count did not
// parse. Warnings never fail a parse.
type Warning struct {
	Line int    // 1-based line number
	Text string // the offending line, trimmed
	Err  error  // INVALID_VALUE error describing the problem
}

// String formats the warning for logs.
func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, errors.UserMessage(w.Err))
}

// Result is the outcome of a successful parse.
type Result struct {
	Matrix   Matrix
	Warnings []Warning
}

// Parse reads the whole of r and builds a Matrix.
//
// A read failure is returned as FILE_READ. A line that does not split into
// exactly two tab-separated fields aborts the parse with INVALID_FORMAT and
// no partial model. Counts that are not non-negative integers are dropped
// and reported in [Result.Warnings].
func Parse(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileRead, err, "read input")
	}
	return ParseString(string(data))
}

// ParseString parses already-loaded file content. See [Parse].
func ParseString(content string) (*Result, error) {
	b := NewBuilder()
	var warnings []Warning

	for i, line := range strings.Split(content, "\n") {
		lineNo := i + 1
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
			continue
		}

		// Split before trimming so a trailing tab still counts as a field.
		fields := strings.Split(line, fieldSep)
		if len(fields) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"line %d: expected 2 tab-separated fields, got %d", lineNo, len(fields))
		}

		key := strings.TrimSpace(fields[0])
		value, err := parseCount(strings.TrimSpace(fields[1]))
		if err != nil {
			warnings = append(warnings, Warning{Line: lineNo, Text: trimmed, Err: err})
			continue
		}
		b.AddIntersection(key, value)
	}

	return &Result{Matrix: b.Build(), Warnings: warnings}, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidValue, err, "invalid count %q", s)
	}
	if n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidValue, "negative count %d", n)
	}
	return n, nil
}

// ReadFile opens path and parses it. Open and read failures are FILE_READ
// errors; the underlying cause is kept so os.ErrNotExist still matches.
func ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileRead, err, "open %s", path)
	}
	defer f.Close()

	res, err := Parse(f)
	if err != nil {
		if errors.Is(err, errors.ErrCodeFileRead) {
			return nil, errors.Wrap(errors.ErrCodeFileRead, err, "read %s", path)
		}
		return nil, err
	}
	return res, nil
}
