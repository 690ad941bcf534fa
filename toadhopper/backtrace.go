package toadhopper

import (
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ErrMalformedFrame is returned by ParseFrame for a line that isn't of the
// form file:line or file:line:in 'method'.
var ErrMalformedFrame = errors.New("malformed backtrace line")

var frameRE = regexp.MustCompile(`^([^:]+):(\d+)(?::in '([^']+)')?$`)

// Frame is one parsed backtrace entry. Method is empty when the line has no
// method reference.
type Frame struct {
	File   string
	Line   int
	Method string
}

func (f Frame) String() string {
	if f.Method == "" {
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return fmt.Sprintf("%s:%d:in '%s'", f.File, f.Line, f.Method)
}

// ParseFrame parses a single raw backtrace line.
func ParseFrame(line string) (Frame, error) {
	m := frameRE.FindStringSubmatch(line)
	if m == nil {
		return Frame{}, fmt.Errorf("%w: %q", ErrMalformedFrame, line)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %q: %w", ErrMalformedFrame, line, err)
	}
	return Frame{File: m[1], Line: n, Method: m[3]}, nil
}

// ParseBacktrace parses lines in order. Malformed lines are skipped.
func ParseBacktrace(lines []string) []Frame {
	frames, _ := parseBacktrace(lines)
	return frames
}

func parseBacktrace(lines []string) ([]Frame, []string) {
	var malformed []string
	frames := lo.FilterMap(lines, func(line string, _ int) (Frame, bool) {
		f, err := ParseFrame(line)
		if err != nil {
			malformed = append(malformed, line)
			return Frame{}, false
		}
		return f, true
	})
	return frames, malformed
}

// Backtracer is implemented by errors that carry their own raw backtrace.
type Backtracer interface {
	Backtrace() []string
}

type stackError struct {
	err   error
	lines []string
}

// Wrap annotates err with the stack of its caller so that a later Post
// reports where the error was wrapped rather than where it was posted.
// Wrap returns nil if err is nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &stackError{err: err, lines: callers(1)}
}

func (e *stackError) Error() string { return e.err.Error() }

func (e *stackError) Unwrap() error { return e.err }

func (e *stackError) Backtrace() []string { return e.lines }

// callers formats the current goroutine's stack, skipping the given number of
// frames above the caller of callers.
func callers(skip int) []string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])

	var lines []string
	for {
		f, more := frames.Next()
		if f.Function == "" {
			lines = append(lines, fmt.Sprintf("%s:%d", f.File, f.Line))
		} else {
			lines = append(lines, fmt.Sprintf("%s:%d:in '%s'", f.File, f.Line, f.Function))
		}
		if !more {
			break
		}
	}
	return lines
}

// backtraceOf returns the raw backtrace carried by err, if any.
func backtraceOf(err error) ([]string, bool) {
	var bt Backtracer
	if errors.As(err, &bt) {
		return bt.Backtrace(), true
	}
	return nil, false
}

// errorClass names the dynamic type of err, looking through Wrap.
func errorClass(err error) string {
	for {
		se, ok := err.(*stackError)
		if !ok {
			break
		}
		err = se.err
	}
	return strings.TrimLeft(fmt.Sprintf("%T", err), "*")
}
