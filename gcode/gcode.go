// Package gcode is the engine facade: it bundles the parser/interpreter
// pipeline (C1-C8) behind one import, mirroring the role the teacher's
// root runtime.go plays as its module's single wiring entry point.
package gcode

import (
	"log/slog"
	"os"

	"github.com/gcode-engine/engine/interp"
	"github.com/gcode-engine/engine/queue"
)

// Host is the environment an Engine evaluates against — exactly
// queue.Host, re-exported here so embedders importing only gcode never
// need to import queue directly to implement it.
type Host = queue.Host

// Engine wires C4-C8 (lexer through queue/bridge) into the single
// parse/drain surface a host needs: feed bytes in with Parse, flush with
// Finish, drain results one at a time with ExecNext.
type Engine struct {
	q   *queue.Queue
	log *slog.Logger
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger sets the engine's diagnostic logger. Logging is diagnostic
// only: it supplements, never substitutes for, the gcerr.Error values
// delivered through ExecNext.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an Engine evaluating against host. Without WithLogger, logs
// go to slog.Default(); the Engine only logs at Debug level, so they are
// dropped unless that logger enables Debug. GCODE_DEBUG has no effect on
// this default — it only gates the logger DebugLogger returns (which cli
// passes in via WithLogger).
func New(host Host, opts ...Option) *Engine {
	e := &Engine{q: queue.New(host), log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse feeds more input bytes through the pipeline.
func (e *Engine) Parse(data []byte) {
	e.log.Debug("parse", "bytes", len(data))
	e.q.Parse(data)
}

// Finish flushes any trailing partial line as if terminated by \n.
func (e *Engine) Finish() { e.q.ParseFinish() }

// ExecNext drains the oldest queued result. The bool is false when the
// queue is empty.
func (e *Engine) ExecNext() (interp.Result, bool) {
	r, ok := e.q.ExecNext()
	if ok {
		e.log.Debug("exec", "kind", r.Kind, "command", r.Command)
	}
	return r, ok
}

// Pending reports how many parsed entries are waiting to be drained.
func (e *Engine) Pending() int { return e.q.Len() }

// Reset discards all buffered lexer/parser/queue state, as if New had
// just been called (spec.md §8's idempotent-reset property).
func (e *Engine) Reset() { e.q.Reset() }

// DebugLogger returns a logger gated on the GCODE_DEBUG environment
// variable, matching the teacher's DEVCMD_DEBUG_LEXER convention
// (generalized to one engine-wide flag) — debug output is off by
// default so library embedders don't get unsolicited stderr writes.
func DebugLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("GCODE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
