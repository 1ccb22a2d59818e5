package value

import "fmt"

// Arena is the per-statement scratch buffer string values are copied
// into during evaluation. The original C arena returns raw `char*`
// pointers into a buffer that can be reallocated mid-statement,
// invalidating every pointer handed out so far — a hazard spec.md §9
// flags explicitly. This port sidesteps it: Arena never hands out a
// pointer into its backing storage, only owned string copies (Go strings
// are immutable value types, so a copy is as cheap as a pointer for the
// interpreter's purposes and never dangles).
type Arena struct {
	buf []byte
}

// NewArena creates an arena pre-sized to hold hint bytes before its first
// internal grow.
func NewArena(hint int) *Arena {
	return &Arena{buf: make([]byte, 0, hint)}
}

// Reset releases every allocation made since the last Reset, in bulk,
// without giving up the underlying storage.
func (a *Arena) Reset() {
	a.buf = a.buf[:0]
}

// Alloc copies s into the arena and returns the owned copy. It exists
// to mirror the original alloc(n)/copy-in pattern; callers that already
// have a Go string (the common case) can just use it directly, since
// Go strings are already immutable — Alloc is for the few call sites
// that build up a string by appending which benefit from reusing the
// arena's backing array across a statement.
func (a *Arena) Alloc(s string) string {
	start := len(a.buf)
	a.buf = append(a.buf, s...)
	return string(a.buf[start:])
}

// Printf formats into the arena and returns the owned result, mirroring
// gcode_interp_printf.
func (a *Arena) Printf(format string, args ...any) string {
	return a.Alloc(fmt.Sprintf(format, args...))
}
