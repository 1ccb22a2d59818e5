package keyword_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gcode-engine/engine/keyword"
)

func TestLookupKnown(t *testing.T) {
	cases := map[string]keyword.ID{
		"\n":       keyword.Newline,
		"OR":       keyword.Or,
		"AND":      keyword.And,
		"=":        keyword.Assign,
		"~":        keyword.Concat,
		"**":       keyword.Pow,
		"*":        keyword.Star,
		"<=":       keyword.Lte,
		">=":       keyword.Gte,
		"!":        keyword.Bang,
		"IF":       keyword.If,
		"ELSE":     keyword.Else,
		"NAN":      keyword.Nan,
		"INFINITY": keyword.Infinity,
		"TRUE":     keyword.True,
		"FALSE":    keyword.False,
	}
	for text, want := range cases {
		got, ok := keyword.Lookup(text)
		assert.True(t, ok, "expected %q to be found", text)
		assert.Equal(t, want, got, "lookup(%q)", text)
	}
}

func TestLookupUnknown(t *testing.T) {
	for _, text := range []string{"NOTAKEYWORD", "&", "^", ""} {
		_, ok := keyword.Lookup(text)
		assert.False(t, ok, "expected %q to be unknown", text)
	}
}

func TestBridgeNeverLooksUp(t *testing.T) {
	// Bridge is a synthetic id; no spelling should ever resolve to it.
	for _, name := range keyword.Names() {
		id, ok := keyword.Lookup(name)
		assert.True(t, ok)
		assert.NotEqual(t, keyword.Bridge, id)
	}
}

func TestNamesCoversClosedSet(t *testing.T) {
	assert.Len(t, keyword.Names(), 26)
}
