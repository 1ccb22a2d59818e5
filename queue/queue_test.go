package queue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcode-engine/engine/interp"
	"github.com/gcode-engine/engine/queue"
	"github.com/gcode-engine/engine/value"
)

type testHost struct {
	fatals []string
	m112s  int
	params map[string]value.Value
}

func newTestHost() *testHost {
	return &testHost{params: map[string]value.Value{}}
}

func (h *testHost) Lookup(key string, parent value.DictHandle) (value.Value, bool) {
	if parent != nil {
		return value.Value{}, false
	}
	v, ok := h.params[key]
	return v, ok
}

func (h *testHost) Serialize(value.DictHandle) (string, bool) { return "", false }

func (h *testHost) CallFunction(name string, args []value.Value) (value.Value, error) {
	return value.Value{}, nil
}

func (h *testHost) Fatal(msg string) { h.fatals = append(h.fatals, msg) }
func (h *testHost) M112()            { h.m112s++ }

func TestExecNextOnEmptyQueue(t *testing.T) {
	q := queue.New(newTestHost())
	_, ok := q.ExecNext()
	assert.False(t, ok)
}

func TestParseThenExecNextReturnsCommand(t *testing.T) {
	q := queue.New(newTestHost())
	q.Parse([]byte("G1 X10\n"))
	q.ParseFinish()

	r, ok := q.ExecNext()
	require.True(t, ok)
	require.Equal(t, interp.ResultCommand, r.Kind)
	assert.Equal(t, "G1", r.Command)
	assert.Equal(t, []string{"X10"}, r.Args)

	_, ok = q.ExecNext()
	assert.False(t, ok)
}

func TestFIFOOrderAcrossStatementsAndErrors(t *testing.T) {
	q := queue.New(newTestHost())
	q.Parse([]byte("G1 X1\n{1 & 2}\nG2 X2\n"))
	q.ParseFinish()
	require.Equal(t, 3, q.Len())

	r1, _ := q.ExecNext()
	assert.Equal(t, interp.ResultCommand, r1.Kind)
	assert.Equal(t, "G1", r1.Command)

	r2, _ := q.ExecNext()
	assert.Equal(t, interp.ResultError, r2.Kind)

	r3, _ := q.ExecNext()
	assert.Equal(t, interp.ResultCommand, r3.Kind)
	assert.Equal(t, "G2", r3.Command)

	_, ok := q.ExecNext()
	assert.False(t, ok)
}

func TestM112FiresAtParseTimeBeforeExecNext(t *testing.T) {
	host := newTestHost()
	q := queue.New(host)
	q.Parse([]byte("M112\n"))
	q.ParseFinish()

	assert.Equal(t, 1, host.m112s)
	assert.Equal(t, 1, q.Len())
}

func TestM112DoesNotFireWhenCommandIsAssembledFromAnExpression(t *testing.T) {
	host := newTestHost()
	q := queue.New(host)
	// Evaluates to "M112" once interpreted, but the pre-eval AST shape of
	// its first field is a concat node, not a bare Str("M112") — the same
	// literal-text-only limitation the original's statement->command has.
	q.Parse([]byte("M11{1+1}\n"))
	q.ParseFinish()

	assert.Equal(t, 0, host.m112s)
}

func TestRepeatedIdenticalParseErrorsCollapseToOne(t *testing.T) {
	q := queue.New(newTestHost())
	q.Parse([]byte("{1 & 2}\n{1 & 2}\n{1 & 2}\n"))
	q.ParseFinish()

	assert.Equal(t, 1, q.Len())
}

func TestDistinctParseErrorsAreNotCollapsed(t *testing.T) {
	q := queue.New(newTestHost())
	// Two different illegal-operator runs ("&" has no close match, "<=="
	// suggests "<=") produce two different message texts, so neither
	// collapses into the other even though they're adjacent.
	q.Parse([]byte("{1 & 2}\n{1 <== 2}\n"))
	q.ParseFinish()

	assert.Equal(t, 2, q.Len())
}

func TestRingGrowsPastInitialCapacity(t *testing.T) {
	q := queue.New(newTestHost())
	for i := 0; i < 100; i++ {
		q.Parse([]byte("G1\n"))
	}
	q.ParseFinish()
	assert.Equal(t, 100, q.Len())

	for i := 0; i < 100; i++ {
		r, ok := q.ExecNext()
		require.True(t, ok)
		assert.Equal(t, interp.ResultCommand, r.Kind)
		assert.Equal(t, "G1", r.Command)
	}
	_, ok := q.ExecNext()
	assert.False(t, ok)
}

func TestRingWrapsThenGrowsPreservesFIFOOrder(t *testing.T) {
	q := queue.New(newTestHost())
	// Push and pop a few to move pos away from 0, then push past
	// capacity so growth has to relocate a wrapped logical range.
	for i := 0; i < 10; i++ {
		q.Parse([]byte("G1\n"))
	}
	q.ParseFinish()
	for i := 0; i < 5; i++ {
		_, ok := q.ExecNext()
		require.True(t, ok)
	}
	for i := 0; i < 40; i++ {
		q.Parse([]byte("G2\n"))
	}
	q.ParseFinish()

	for i := 0; i < 5; i++ {
		r, ok := q.ExecNext()
		require.True(t, ok)
		assert.Equal(t, "G1", r.Command)
	}
	for i := 0; i < 40; i++ {
		r, ok := q.ExecNext()
		require.True(t, ok)
		assert.Equal(t, "G2", r.Command)
	}
	_, ok := q.ExecNext()
	assert.False(t, ok)
}

func TestResetDiscardsBufferedStateAndIsIdempotent(t *testing.T) {
	q := queue.New(newTestHost())
	q.Parse([]byte("G1 X1\nG1 X{1+"))

	q.Reset()
	assert.Equal(t, 0, q.Len())

	q.Parse([]byte("G2 X2\n"))
	q.ParseFinish()

	r, ok := q.ExecNext()
	require.True(t, ok)
	assert.Equal(t, "G2", r.Command)
	assert.Equal(t, []string{"X2"}, r.Args)

	_, ok = q.ExecNext()
	assert.False(t, ok)
}
