// Package interp evaluates one Statement AST into a Result: a host
// command name plus its stringified arguments.
//
// Grounded on original_source/klippy/chelper/gcode_interpreter.c/.h: the
// reset-arena-then-walk-fields shape of gcode_interp_exec, and the
// eval/serialize/buffer_field split (buffer_field's hand-rolled
// realloc-doubling becomes a plain Go slice reused across calls via
// fields[:0] — append already amortizes growth the same way the manual
// doubling did, so there's nothing left to port there). Operator
// semantics follow spec.md §4.7.
package interp

import (
	"math"
	"strings"

	"github.com/gcode-engine/engine/ast"
	"github.com/gcode-engine/engine/gcerr"
	"github.com/gcode-engine/engine/value"
)

// Host supplies the environment an Interp evaluates against: parameter
// and dict-member resolution, dict-to-string serialization, and the
// Function() extension point (spec.md §4.7 treats the builtin function
// set as empty plus this hook).
type Host interface {
	// Lookup resolves key against parent (nil for the root environment).
	// ok=false means the host has nothing by that name; eval treats that
	// as the Unknown value rather than an error (see DESIGN.md).
	Lookup(key string, parent value.DictHandle) (value.Value, bool)
	Serialize(handle value.DictHandle) (string, bool)
	CallFunction(name string, args []value.Value) (value.Value, error)
}

// ResultKind closes the three-way Result shape spec.md §4.7 calls out:
// Error, Command, or Empty.
type ResultKind int

const (
	ResultEmpty ResultKind = iota
	ResultCommand
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultCommand:
		return "Command"
	case ResultError:
		return "Error"
	default:
		return "Empty"
	}
}

// Result is the outcome of executing one statement. Command/Args are
// only meaningful when Kind is ResultCommand; Err only when ResultError.
type Result struct {
	Kind    ResultKind
	Command string
	Args    []string
	Err     *gcerr.Error
}

// Interp evaluates statements against a Host. It owns a scratch arena and
// a reusable field buffer, both reset at the start of every Exec call —
// never reset mid-statement, so an eval error can discard everything
// accumulated so far for that statement just by returning early.
type Interp struct {
	host   Host
	arena  *value.Arena
	fields []string
}

// New creates an Interp evaluating against host.
func New(host Host) *Interp {
	return &Interp{host: host, arena: value.NewArena(128)}
}

// Exec evaluates every field of stmt left to right, stringifies each
// result into the scratch arena, and returns the assembled command. Any
// eval error aborts the statement immediately: the fields gathered so far
// are discarded (never reach the result), though the arena isn't reset
// until the next Exec call.
func (interp *Interp) Exec(stmt *ast.Statement) Result {
	interp.arena.Reset()
	fields := interp.fields[:0]

	for _, child := range stmt.Children() {
		v, err := interp.eval(child)
		if err != nil {
			return Result{Kind: ResultError, Err: err}
		}
		text := v.AsStr(interp.host.Serialize)
		fields = append(fields, interp.arena.Alloc(text))
	}
	interp.fields = fields

	if len(fields) == 0 {
		return Result{Kind: ResultEmpty}
	}
	return Result{Kind: ResultCommand, Command: fields[0], Args: fields[1:]}
}

func (interp *Interp) eval(n ast.Node) (value.Value, *gcerr.Error) {
	switch v := n.(type) {
	case *ast.Str:
		return value.OfStr(v.Value), nil
	case *ast.Bool:
		return value.OfBool(v.Value), nil
	case *ast.Int:
		return value.OfInt(v.Value), nil
	case *ast.Float:
		return value.OfFloat(v.Value), nil
	case *ast.Parameter:
		val, ok := interp.host.Lookup(v.Name, nil)
		if !ok {
			return value.Value{}, nil
		}
		return val, nil
	case *ast.Function:
		args := make([]value.Value, len(v.Children()))
		for i, c := range v.Children() {
			a, err := interp.eval(c)
			if err != nil {
				return value.Value{}, err
			}
			args[i] = a
		}
		result, callErr := interp.host.CallFunction(v.Name, args)
		if callErr != nil {
			return value.Value{}, gcerr.New("%s(): %v", v.Name, callErr)
		}
		return result, nil
	case *ast.Operator:
		return interp.evalOperator(v)
	default:
		return value.Value{}, gcerr.New("cannot evaluate node of kind %s", n.Kind())
	}
}

func (interp *Interp) evalOperator(op *ast.Operator) (value.Value, *gcerr.Error) {
	children := op.Children()

	switch op.Op {
	case ast.OpNot:
		a, err := interp.eval(children[0])
		if err != nil {
			return value.Value{}, err
		}
		return value.OfBool(!a.AsBool()), nil

	case ast.OpNegate:
		a, err := interp.eval(children[0])
		if err != nil {
			return value.Value{}, err
		}
		if a.IsFloat() {
			return value.OfFloat(-a.AsFloat()), nil
		}
		return value.OfInt(-a.AsInt()), nil

	case ast.OpIfElse:
		cond, err := interp.eval(children[0])
		if err != nil {
			return value.Value{}, err
		}
		if cond.AsBool() {
			return interp.eval(children[1])
		}
		return interp.eval(children[2])

	case ast.OpLookup:
		parent, err := interp.eval(children[0])
		if err != nil {
			return value.Value{}, err
		}
		keyVal, err := interp.eval(children[1])
		if err != nil {
			return value.Value{}, err
		}
		key := keyVal.AsStr(interp.host.Serialize)
		val, ok := interp.host.Lookup(key, parent.Dict)
		if !ok {
			return value.Value{}, nil
		}
		return val, nil

	case ast.OpConcat:
		// n-ary: the parser reuses OpConcat both for the binary "~"
		// string-concat operator and for joining a field's word/
		// expression pieces, so this always walks every child rather
		// than assuming exactly two.
		parts := make([]string, len(children))
		for i, c := range children {
			v, err := interp.eval(c)
			if err != nil {
				return value.Value{}, err
			}
			parts[i] = v.AsStr(interp.host.Serialize)
		}
		return value.OfStr(interp.arena.Alloc(strings.Join(parts, ""))), nil

	case ast.OpAnd:
		a, b, err := interp.evalPair(children)
		if err != nil {
			return value.Value{}, err
		}
		return value.OfBool(a.AsBool() && b.AsBool()), nil

	case ast.OpOr:
		a, b, err := interp.evalPair(children)
		if err != nil {
			return value.Value{}, err
		}
		return value.OfBool(a.AsBool() || b.AsBool()), nil

	case ast.OpEquals, ast.OpLt, ast.OpGt, ast.OpLte, ast.OpGte:
		a, b, err := interp.evalPair(children)
		if err != nil {
			return value.Value{}, err
		}
		c := compareValues(a, b)
		var result bool
		switch op.Op {
		case ast.OpEquals:
			result = c == 0
		case ast.OpLt:
			result = c < 0
		case ast.OpGt:
			result = c > 0
		case ast.OpLte:
			result = c <= 0
		case ast.OpGte:
			result = c >= 0
		}
		return value.OfBool(result), nil

	case ast.OpAdd, ast.OpSubtract, ast.OpMultiply, ast.OpDivide, ast.OpModulus, ast.OpPower:
		a, b, err := interp.evalPair(children)
		if err != nil {
			return value.Value{}, err
		}
		return evalArith(op.Op, a, b)

	default:
		return value.Value{}, gcerr.New("unsupported operator %s", op.Op.String())
	}
}

func (interp *Interp) evalPair(children []ast.Node) (value.Value, value.Value, *gcerr.Error) {
	a, err := interp.eval(children[0])
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	b, err := interp.eval(children[1])
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	return a, b, nil
}

// compareValues orders two values for "= < > <= >=". Two Str-kind
// operands compare lexically; otherwise the pair is compared numerically
// (float if either side carries a Float kind, else int), matching the
// float-promotion rule §4.7 states for arithmetic. Without this special
// case, two unequal non-numeric strings would both coerce to int 0 via
// AsInt and compare equal — spec.md doesn't spell out comparison
// semantics beyond arity, so this is a resolved Open Question; see
// DESIGN.md.
func compareValues(a, b value.Value) int {
	if a.Kind == value.Str && b.Kind == value.Str {
		return strings.Compare(a.Str, b.Str)
	}
	if a.IsFloat() || b.IsFloat() {
		af, bf := a.AsFloat(), b.AsFloat()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	ai, bi := a.AsInt(), b.AsInt()
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return 0
	}
}

// evalArith applies the arithmetic operators. Mixed-type operands
// promote to float if either side carries a Float kind (spec.md §4.7);
// otherwise both sides coerce to int. Integer division/modulus by zero
// would panic the Go runtime (unlike the float path, which just produces
// Inf/NaN), so it's reported as an eval error instead of a silent
// promotion or a crash.
func evalArith(op ast.Op, a, b value.Value) (value.Value, *gcerr.Error) {
	if a.IsFloat() || b.IsFloat() {
		x, y := a.AsFloat(), b.AsFloat()
		switch op {
		case ast.OpAdd:
			return value.OfFloat(x + y), nil
		case ast.OpSubtract:
			return value.OfFloat(x - y), nil
		case ast.OpMultiply:
			return value.OfFloat(x * y), nil
		case ast.OpDivide:
			return value.OfFloat(x / y), nil
		case ast.OpModulus:
			return value.OfFloat(math.Mod(x, y)), nil
		case ast.OpPower:
			return value.OfFloat(math.Pow(x, y)), nil
		}
	}

	x, y := a.AsInt(), b.AsInt()
	switch op {
	case ast.OpAdd:
		return value.OfInt(x + y), nil
	case ast.OpSubtract:
		return value.OfInt(x - y), nil
	case ast.OpMultiply:
		return value.OfInt(x * y), nil
	case ast.OpDivide:
		if y == 0 {
			return value.Value{}, gcerr.New("division by zero")
		}
		return value.OfInt(x / y), nil
	case ast.OpModulus:
		if y == 0 {
			return value.Value{}, gcerr.New("division by zero")
		}
		return value.OfInt(x % y), nil
	case ast.OpPower:
		if y < 0 {
			return value.OfFloat(math.Pow(float64(x), float64(y))), nil
		}
		return value.OfInt(intPow(x, y)), nil
	}
	return value.Value{}, gcerr.New("unsupported arithmetic operator")
}

// intPow computes x**y by squaring for non-negative y. math.Pow is
// float-only, and no third-party library in the pack covers integer
// exponentiation, so this stays a small hand-rolled helper rather than an
// import.
func intPow(x, y int64) int64 {
	result := int64(1)
	for y > 0 {
		if y&1 == 1 {
			result *= x
		}
		x *= x
		y >>= 1
	}
	return result
}
