// Package queue is the bridge between the parser/interpreter pipeline
// and a host driving it one statement at a time: a ring buffer of parsed
// entries (statements and parse errors) that the host drains with
// ExecNext, plus the parse-time M112 side effect.
//
// Grounded on original_source/klippy/chelper/gcode_bridge.c/.h: the
// GCodeQueue/GCodeExecutor split (the executor — here, Interp plus Host —
// is an injected collaborator, not a peer the queue manages the
// lifecycle of), ring_add's power-of-two doubling-with-wrap-relocation,
// and parse_statement's "M112" check fired independent of the ring.
package queue

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/gcode-engine/engine/ast"
	"github.com/gcode-engine/engine/gcerr"
	"github.com/gcode-engine/engine/interp"
	"github.com/gcode-engine/engine/parser"
)

// Host is the collaborator a Queue drives: interp.Host for expression
// evaluation, plus the two bridge-level callbacks the original fires
// directly rather than through the ring (Fatal for push-time allocation
// failure, M112 for the emergency-stop side effect).
type Host interface {
	interp.Host
	Fatal(msg string)
	M112()
}

type entryKind int

const (
	entryStatement entryKind = iota
	entryError
)

type entry struct {
	kind entryKind
	stmt *ast.Statement
	err  *gcerr.Error
}

// Queue owns a parser feeding a ring buffer, and an interpreter the host
// drains results from via ExecNext. It implements parser.StatementSink.
type Queue struct {
	host   Host
	interp *interp.Interp
	parser *parser.Parser

	ring []entry
	pos  int
	size int

	lastErrFingerprint string
}

const initialRingSize = 32

// New creates a Queue whose parser feeds directly into its own ring, and
// whose popped statements evaluate against host.
func New(host Host) *Queue {
	q := &Queue{
		host:   host,
		interp: interp.New(host),
		ring:   make([]entry, initialRingSize),
	}
	q.parser = parser.New(q)
	return q
}

// Parse feeds more input bytes through the lexer/parser pipeline. Parsed
// statements and parse errors are pushed onto the ring as they complete;
// Parse itself never blocks or returns a result; drain with ExecNext.
func (q *Queue) Parse(data []byte) { q.parser.Parse(data) }

// ParseFinish flushes the parser's trailing partial line, same contract
// as lexer.Finish/parser.Finish.
func (q *Queue) ParseFinish() { q.parser.Finish() }

// Statement implements parser.StatementSink: push the statement, then
// fire the M112 side effect if applicable — at parse time, independent
// of when (or whether) the host ever pops this entry off the ring.
func (q *Queue) Statement(stmt *ast.Statement) {
	q.push(entry{kind: entryStatement, stmt: stmt})
	q.lastErrFingerprint = ""
	if isM112(stmt) {
		q.host.M112()
	}
}

// isM112 reports whether stmt's command field is the bare word "M112".
// The original checks statement->command, a field the C parser populates
// with the raw first-field text independent of evaluation; ast.Statement
// carries no such shortcut field, but every plain command word already
// collapses to a single *ast.Str node (parser.parseField never wraps a
// lone piece), so checking for that shape is equivalent without needing
// to run the interpreter first.
func isM112(stmt *ast.Statement) bool {
	children := stmt.Children()
	if len(children) == 0 {
		return false
	}
	word, ok := children[0].(*ast.Str)
	return ok && word.Value == "M112"
}

// Error implements parser.StatementSink: push the parse error onto the
// ring, after collapsing it into a no-op if it's an exact repeat of the
// immediately preceding ring entry (same message, location ignored; a
// statement pushed in between ends the run) —
// bursts of the same bad construct recurring line after line (e.g. a
// macro that repeats one illegal operator on every line) otherwise flood
// the ring with one entry per occurrence. The location is deliberately
// excluded from the fingerprint: two errors with identical text on two
// different lines are exactly the burst this is meant to collapse, not a
// pair of distinct errors.
func (q *Queue) Error(err *gcerr.Error) {
	fp := fingerprint(err)
	if q.size > 0 && fp == q.lastErrFingerprint {
		return
	}
	q.lastErrFingerprint = fp
	q.push(entry{kind: entryError, err: err})
}

func fingerprint(err *gcerr.Error) string {
	h, hashErr := blake2b.New256(nil)
	if hashErr != nil {
		// New256 only errors for an oversized key; nil always succeeds.
		panic(hashErr)
	}
	h.Write([]byte(err.Message))
	return hex.EncodeToString(h.Sum(nil))
}

// push appends e to the ring, growing it if full. Go's make() doesn't
// return an allocation-failure error the way the original's reallocarray
// does — it panics instead — so push-time allocation failure is realized
// by recovering from that panic, reporting it to the host's Fatal
// callback, and dropping the incoming entry, same as the original.
func (q *Queue) push(e entry) {
	if q.size == len(q.ring) {
		if !q.grow() {
			q.host.Fatal("out of memory (queue push)")
			return
		}
	}
	slot := (q.pos + q.size) % len(q.ring)
	q.ring[slot] = e
	q.size++
}

// grow doubles the ring's capacity, copying the logical range
// [pos, pos+size) into the front of the new backing array in order
// (rather than the original's in-place relocate-the-wrapped-suffix
// trick — Go hands back a fresh slice on every grow, so there's no "old
// end" to preserve data past). Reports false, leaving q unchanged, if
// the allocation itself panics.
func (q *Queue) grow() (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	oldSize := len(q.ring)
	newRing := make([]entry, oldSize*2)
	for i := 0; i < q.size; i++ {
		newRing[i] = q.ring[(q.pos+i)%oldSize]
	}
	q.ring = newRing
	q.pos = 0
	return true
}

// ExecNext pops the oldest ring entry and resolves it: a parse error is
// handed back as-is (as an interp.Result with Kind ResultError); a
// statement is evaluated against the interpreter and its Result
// returned. Returns (zero Result, false) if the ring is empty.
func (q *Queue) ExecNext() (interp.Result, bool) {
	if q.size == 0 {
		return interp.Result{}, false
	}

	e := q.ring[q.pos]
	q.ring[q.pos] = entry{}
	q.pos = (q.pos + 1) % len(q.ring)
	q.size--

	if e.kind == entryError {
		return interp.Result{Kind: interp.ResultError, Err: e.err}, true
	}
	return q.interp.Exec(e.stmt), true
}

// Len reports the number of entries currently queued.
func (q *Queue) Len() int { return q.size }

// Reset discards all buffered parser state and queued entries, as if New
// had just been called — spec.md §8's "idempotent reset" property
// (reset(); parse(B); finish() matches a fresh queue fed B in one piece)
// extended from the lexer/parser up through the bridge.
func (q *Queue) Reset() {
	q.parser.Reset()
	q.ring = make([]entry, initialRingSize)
	q.pos = 0
	q.size = 0
	q.lastErrFingerprint = ""
}
