package lexer_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gcode-engine/engine/gcerr"
	"github.com/gcode-engine/engine/keyword"
	"github.com/gcode-engine/engine/lexer"
)

type event struct {
	kind string
	text string
}

type recorder struct {
	events []event
	errs   []*gcerr.Error
}

func (r *recorder) Keyword(id keyword.ID, loc gcerr.Location) {
	r.events = append(r.events, event{"kw", id.String()})
}
func (r *recorder) Identifier(text string, loc gcerr.Location) {
	r.events = append(r.events, event{"ident", text})
}
func (r *recorder) StrLiteral(text string, loc gcerr.Location) {
	r.events = append(r.events, event{"str", text})
}
func (r *recorder) IntLiteral(value int64, loc gcerr.Location) {
	r.events = append(r.events, event{"int", fmt.Sprintf("%d", value)})
}
func (r *recorder) FloatLiteral(value float64, loc gcerr.Location) {
	r.events = append(r.events, event{"float", ""})
}
func (r *recorder) Bridge(loc gcerr.Location) {
	r.events = append(r.events, event{"bridge", ""})
}
func (r *recorder) Error(err *gcerr.Error) {
	r.errs = append(r.errs, err)
}

func run(t *testing.T, src string, chunkSize int) *recorder {
	t.Helper()
	r := &recorder{}
	lx := lexer.New(r)
	data := []byte(src)
	if chunkSize <= 0 {
		lx.Scan(data)
	} else {
		for i := 0; i < len(data); i += chunkSize {
			end := i + chunkSize
			if end > len(data) {
				end = len(data)
			}
			lx.Scan(data[i:end])
		}
	}
	lx.Finish()
	return r
}

// newlines counts the Keyword(Newline) boundary markers in r — the
// lexer's only line-boundary signal; it fires for every '\n', blank or
// not, leaving "does this close a real statement" to the parser.
func newlines(r *recorder) int {
	n := 0
	for _, e := range r.events {
		if e.kind == "kw" && e.text == keyword.Newline.String() {
			n++
		}
	}
	return n
}

func TestSimpleStatement(t *testing.T) {
	r := run(t, "G1 X10 Y20\n", 0)
	var words []string
	for _, e := range r.events {
		if e.kind == "str" {
			words = append(words, e.text)
		}
	}
	assert.Equal(t, []string{"G1", "X10", "Y20"}, words)
	// one Newline for the real line, one synthetic blank-line Newline
	// from Finish().
	assert.Equal(t, 2, newlines(r))
	assert.Empty(t, r.errs)
}

func TestBlankAndCommentLinesStillEmitNewline(t *testing.T) {
	r := run(t, "\n; just a comment\n   \n", 0)
	// 3 real lines + 1 synthetic from Finish, none carry any field
	// tokens — it's the parser's job to treat these as "no statement".
	assert.Equal(t, 4, newlines(r))
	assert.Equal(t, 0, countKind(r, "str"))
}

func TestLineNumberPrefixIgnored(t *testing.T) {
	r := run(t, "N10 G1 X1\n", 0)
	var words []string
	for _, e := range r.events {
		if e.kind == "str" {
			words = append(words, e.text)
		}
	}
	assert.Equal(t, []string{"G1", "X1"}, words)
}

func TestBareNWithNoDigitsIsAnOrdinaryWord(t *testing.T) {
	r := run(t, "N X1\n", 0)
	var words []string
	for _, e := range r.events {
		if e.kind == "str" {
			words = append(words, e.text)
		}
	}
	assert.Equal(t, []string{"N", "X1"}, words)
}

func TestBareNFollowedByNewlineIsAnOrdinaryWord(t *testing.T) {
	r := run(t, "N\n", 0)
	var words []string
	for _, e := range r.events {
		if e.kind == "str" {
			words = append(words, e.text)
		}
	}
	assert.Equal(t, []string{"N"}, words)
}

func TestLineNumberLikePrefixFoldsToWordWithoutTrailingSpace(t *testing.T) {
	r := run(t, "N10X2\n", 0)
	var words []string
	for _, e := range r.events {
		if e.kind == "str" {
			words = append(words, e.text)
		}
	}
	assert.Equal(t, []string{"N10X2"}, words)
}

func TestBridgeEntryAndExit(t *testing.T) {
	r := run(t, "G{1}MORE\n", 0)
	bridges := countKind(r, "bridge")
	assert.Equal(t, 2, bridges)
}

func TestPureExpressionFieldHasNoLeadingBridge(t *testing.T) {
	r := run(t, "{1 + 2}\n", 0)
	assert.Equal(t, 0, countKind(r, "bridge"))
}

func TestOperatorRun(t *testing.T) {
	r := run(t, "{1 ** 2 <= 3}\n", 0)
	var kws []string
	for _, e := range r.events {
		if e.kind == "kw" {
			kws = append(kws, e.text)
		}
	}
	assert.Contains(t, kws, "**")
	assert.Contains(t, kws, "<=")
}

func TestIllegalOperatorRun(t *testing.T) {
	r := run(t, "{1 & 2}\n", 0)
	assert.NotEmpty(t, r.errs)
}

func TestIllegalOperatorSuggestsClosestMatch(t *testing.T) {
	r := run(t, "{1 <== 2}\n", 0)
	if assert.NotEmpty(t, r.errs) {
		assert.Contains(t, r.errs[0].Error(), "<=")
	}
}

func TestIllegalOperatorWithNoCloseMatchOmitsSuggestion(t *testing.T) {
	r := run(t, "{1 & 2}\n", 0)
	if assert.NotEmpty(t, r.errs) {
		assert.NotContains(t, r.errs[0].Error(), "did you mean")
	}
}

func TestIllegalOperatorSuggestionIsStableAcrossRepeatedRuns(t *testing.T) {
	var first string
	for i := 0; i < 20; i++ {
		r := run(t, "{1 <== 2}\n", 0)
		if !assert.NotEmpty(t, r.errs) {
			continue
		}
		if i == 0 {
			first = r.errs[0].Error()
			continue
		}
		assert.Equal(t, first, r.errs[0].Error())
	}
}

func TestStringEscapes(t *testing.T) {
	r := run(t, `{"a\nb\x41\x42"}`+"\n", 0)
	var strs []string
	for _, e := range r.events {
		if e.kind == "str" {
			strs = append(strs, e.text)
		}
	}
	if assert.Len(t, strs, 1) {
		assert.Equal(t, "a\nbAB", strs[0])
	}
}

func TestUnterminatedExpressionError(t *testing.T) {
	r := run(t, "{1 + \n", 0)
	assert.NotEmpty(t, r.errs)
}

func TestChunkInvariance(t *testing.T) {
	src := "N5 G1 X{1+2*3} Y{foo.bar}\n; comment\nM112\n"
	whole := run(t, src, 0)
	perByte := run(t, src, 1)
	assert.Equal(t, whole.events, perByte.events)
	assert.Equal(t, len(whole.errs), len(perByte.errs))
}

func TestResetClearsState(t *testing.T) {
	r := &recorder{}
	lx := lexer.New(r)
	lx.Scan([]byte("G1 X"))
	lx.Reset()
	lx.Scan([]byte("G2\n"))
	lx.Finish()
	var words []string
	for _, e := range r.events {
		if e.kind == "str" {
			words = append(words, e.text)
		}
	}
	// "G1" was already emitted before Reset; the partial "X" is dropped
	// rather than merged into the next word.
	assert.Equal(t, []string{"G1", "G2"}, words)
}

func countKind(r *recorder, kind string) int {
	n := 0
	for _, e := range r.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}
