// Package recorder appends an engine's exec results to an append-only
// CBOR stream, for replay and offline debugging of a run. It is a
// host-side convenience layered on top of gcode.Engine.ExecNext/
// interp.Result — it never participates in parse/eval semantics.
//
// Grounded on the teacher's core/planfmt/canonical.go CBOR usage
// (cbor.CanonicalEncOptions().EncMode() for deterministic, byte-stable
// encoding), trimmed to what a flat result log needs: no canonical-tree
// conversion or SHA-256 plan hash, since a recorder isn't hashing a whole
// execution plan, just logging one flat result per statement as it
// happens.
package recorder

import (
	"errors"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/gcode-engine/engine/interp"
)

// Record is the on-disk shape of one logged interp.Result. Only the
// fields relevant to Kind are populated; the others are omitted rather
// than encoded as zero values, so an Empty record carries only its kind.
type Record struct {
	Kind    string   `cbor:"kind"`
	Command string   `cbor:"command,omitempty"`
	Args    []string `cbor:"args,omitempty"`
	Message string   `cbor:"message,omitempty"`
}

const (
	kindEmpty   = "empty"
	kindCommand = "command"
	kindError   = "error"
)

func fromResult(r interp.Result) Record {
	switch r.Kind {
	case interp.ResultCommand:
		return Record{Kind: kindCommand, Command: r.Command, Args: r.Args}
	case interp.ResultError:
		return Record{Kind: kindError, Message: r.Err.Error()}
	default:
		return Record{Kind: kindEmpty}
	}
}

// Recorder appends Records to an underlying writer using a deterministic
// CBOR encoding, one value per call to Record — the stream is a sequence
// of CBOR values with no outer framing, read back the same way by Replay.
type Recorder struct {
	enc *cbor.Encoder
}

// New creates a Recorder writing to w.
func New(w io.Writer) (*Recorder, error) {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	return &Recorder{enc: mode.NewEncoder(w)}, nil
}

// Record appends one interp.Result to the stream.
func (r *Recorder) Record(result interp.Result) error {
	return r.enc.Encode(fromResult(result))
}

// Replay reads back every Record appended by a Recorder, in order.
func Replay(r io.Reader) ([]Record, error) {
	dec := cbor.NewDecoder(r)
	var out []Record
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
