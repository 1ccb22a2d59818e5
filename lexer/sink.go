package lexer

import (
	"github.com/gcode-engine/engine/gcerr"
	"github.com/gcode-engine/engine/keyword"
)

// Sink receives the token stream produced by a Lexer. Every method is a
// plain reporting callback — none of them can reject a token. The
// original C lexer let any callback return false to force error recovery
// (used there to propagate malloc failure out of a deeply nested call);
// Go doesn't need that protocol, so recoverable lex errors are reported
// exclusively through Error, and the Lexer itself decides when to resume
// at the next statement. See DESIGN.md for the rationale.
// There is no dedicated "end of statement" callback: a line-ending '\n'
// is tokenized like anything else, as Keyword(keyword.Newline, ...) —
// the same sentinel the keyword table already reserves for it. Deciding
// whether a given Newline closes a real statement, a blank line, or an
// aborted one (because an Error arrived since the last Newline) is the
// parser's job, not the lexer's; see parser.Parser.
type Sink interface {
	Keyword(id keyword.ID, loc gcerr.Location)
	Identifier(text string, loc gcerr.Location)
	StrLiteral(text string, loc gcerr.Location)
	IntLiteral(value int64, loc gcerr.Location)
	FloatLiteral(value float64, loc gcerr.Location)
	Bridge(loc gcerr.Location)
	Error(err *gcerr.Error)
}
