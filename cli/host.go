// Package cli is the reference harness from spec.md §6: a small cobra
// program wiring gcode.Engine to a file or a watched directory, backed by
// a trivial in-memory dictionary host (the FOO.BAR.BIZ demo environment).
// It is deliberately thin — nothing here participates in parse/eval
// semantics, only in driving the engine and printing its results.
//
// Grounded on the teacher's runtime/cli/harness.go (cobra.Command,
// PersistentFlags, RunE-per-subcommand skeleton); its ChainCommands/
// ChainElement shell-operator chaining has no G-code analog and was
// dropped (see DESIGN.md).
package cli

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/gcode-engine/engine/value"
)

// DictHost is the reference queue.Host: an in-memory nested map, looked
// up case-insensitively so the lower-case parameter spelling spec.md's
// example uses (`foo.bar.biz`) resolves against an upper-case environment
// document (`FOO.BAR.BIZ`), matching Klipper's convention of upper-case
// config section/option names.
type DictHost struct {
	root map[string]any
	log  *slog.Logger
}

// NewDictHost creates a DictHost seeded from env (typically
// config.Config.Environment). A nil env is treated as empty.
func NewDictHost(env map[string]any, log *slog.Logger) *DictHost {
	if env == nil {
		env = map[string]any{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &DictHost{root: env, log: log}
}

// Lookup implements interp.Host.
func (h *DictHost) Lookup(key string, parent value.DictHandle) (value.Value, bool) {
	dict := h.root
	if parent != nil {
		d, ok := parent.(map[string]any)
		if !ok {
			return value.Value{}, false
		}
		dict = d
	}

	raw, ok := dict[strings.ToUpper(key)]
	if !ok {
		return value.Value{}, false
	}
	return toValue(raw), true
}

func toValue(raw any) value.Value {
	switch v := raw.(type) {
	case map[string]any:
		return value.OfDict(v)
	case string:
		return value.OfStr(v)
	case bool:
		return value.OfBool(v)
	case int:
		return value.OfInt(int64(v))
	case int64:
		return value.OfInt(v)
	case float64:
		// JSON has one numeric type; config/environment documents rarely
		// distinguish "1500" from "1500.0" the way the G-code lexer's two
		// literal forms do, so a whole-number JSON value reads back as Int
		// (so `S{speed}` renders "S1500", not "S1500.000000") and only a
		// genuinely fractional value stays Float.
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return value.OfInt(int64(v))
		}
		return value.OfFloat(v)
	default:
		return value.Value{}
	}
}

// Serialize implements interp.Host: a dict coerced to a string (e.g. by
// string concatenation or an unmatched lookup chain) renders as its
// sorted key=value pairs, not a language-specific debug dump.
func (h *DictHost) Serialize(handle value.DictHandle) (string, bool) {
	d, ok := handle.(map[string]any)
	if !ok {
		return "", false
	}

	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, d[k])
	}
	return strings.Join(parts, ","), true
}

// CallFunction implements interp.Host. The reference harness defines no
// functions of its own; every call is reported as unknown, the same
// outcome a real host would give for a name outside its extension set.
func (h *DictHost) CallFunction(name string, _ []value.Value) (value.Value, error) {
	return value.Value{}, fmt.Errorf("unknown function %q", name)
}

// Fatal implements queue.Host. An OOM report from the queue is
// unrecoverable (spec.md §7: "further behavior is undefined, safe
// shutdown expected"), so the reference harness logs and exits rather
// than trying to continue.
func (h *DictHost) Fatal(msg string) {
	h.log.Error("fatal", "msg", msg)
	os.Exit(1)
}

// M112 implements queue.Host: the reference harness has no motion system
// to actually halt, so it just logs the emergency-stop request loudly.
func (h *DictHost) M112() {
	h.log.Warn("M112 emergency stop requested")
}
