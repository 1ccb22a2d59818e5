// Package gcerr defines the error value shared by the lexer, parser and
// interpreter: a message plus an optional source location.
package gcerr

import (
	"fmt"
	"strings"
)

// Location spans from the position the first significant character of a
// token was seen to the position immediately before its terminator.
// Lines are 1-based; columns count characters within a line.
type Location struct {
	FirstLine   uint32
	FirstColumn uint32
	LastLine    uint32
	LastColumn  uint32
}

// Error carries a human-readable message and, when available, the source
// location that produced it. It is returned by the lexer and parser during
// parsing and by the interpreter during evaluation.
type Error struct {
	Message string
	Loc     *Location
}

// New creates a location-less error, used for conditions (OOM, internal
// invariant violations) that aren't tied to a specific span of input.
func New(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// NewAt creates an error anchored to loc.
func NewAt(loc Location, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Loc: &loc}
}

func (e *Error) Error() string {
	if e.Loc == nil {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Loc.FirstLine, e.Loc.FirstColumn, e.Message)
}

// Snippet renders a Rust/Clang-style pointer into source, given the full
// source text the error was raised against. It returns "" if there's no
// location or the location doesn't resolve against source (e.g. source was
// truncated since the error was raised).
func (e *Error) Snippet(source string) string {
	if e.Loc == nil {
		return ""
	}
	lines := strings.Split(source, "\n")
	lineNo := int(e.Loc.FirstLine)
	if lineNo < 1 || lineNo > len(lines) {
		return ""
	}
	lineContent := lines[lineNo-1]

	var b strings.Builder
	fmt.Fprintf(&b, "  --> %d:%d\n", e.Loc.FirstLine, e.Loc.FirstColumn)
	b.WriteString("   |\n")
	fmt.Fprintf(&b, "%2d | %s\n", lineNo, lineContent)
	b.WriteString("   | ")
	col := int(e.Loc.FirstColumn)
	if col > 0 && col <= len(lineContent)+1 {
		b.WriteString(strings.Repeat(" ", col-1) + "^")
	}
	return b.String()
}
