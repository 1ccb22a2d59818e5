package parser

import (
	"github.com/gcode-engine/engine/gcerr"
	"github.com/gcode-engine/engine/keyword"
)

// tokenKind distinguishes the flavor of a buffered token; keyword carries
// its specific ID in addition to the kind.
type tokenKind int

const (
	tokKeyword tokenKind = iota
	tokIdent
	tokStr
	tokInt
	tokFloat
	tokBridge
)

// token is a buffered copy of one Lexer.Sink callback, replayed once a
// full logical line has arrived. Carrying every literal's decoded value
// (not raw text) means the parser never re-parses a number or escape.
type token struct {
	kind tokenKind
	id   keyword.ID
	text string
	ival int64
	fval float64
	loc  gcerr.Location
}
