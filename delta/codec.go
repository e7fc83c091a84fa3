// Package delta provides the per-field P-frame codecs of the keyframe
// format.
//
// A delta codec is attached to a schema block and takes over that field
// in P-frame entries: instead of the block codec's full representation,
// the field stores either nothing (IFrameOnly carry-forward) or a
// numeric difference relative to the previous entry (NumericDelta).
// I-frame entries always use the block codec.
//
// Every delta codec advertises a fixed P-frame byte length so the
// decoder can walk P-frame entries without per-field framing.
package delta

import (
	"fmt"

	"github.com/arloliu/keyframe/value"
)

// Kind names of the built-in codecs, as persisted in schema JSON.
const (
	KindIFrameOnly   = "IFrameOnly"
	KindNumericDelta = "NumericDelta"
)

// Codec compresses one field of a P-frame entry relative to the
// previous entry, and reconstructs it on decode.
//
// The same codec instance is shared by every entry of a stream; callers
// must serialize access across streams.
type Codec interface {
	// Kind returns the persisted kind name of the codec.
	Kind() string

	// PFrameByteLength returns the fixed number of bytes the field
	// occupies in a P-frame entry. Zero is valid (carry-forward).
	PFrameByteLength() int

	// CustomPayload returns the kind-specific parameter strings stored
	// in the schema JSON "compression_custom" array.
	CustomPayload() []string

	// Compress produces the P-frame bytes for the field given the
	// previous and current entry values. The result must be exactly
	// PFrameByteLength bytes; the stream encoder enforces this.
	Compress(prev, curr value.Value) ([]byte, error)

	// Decompress reconstructs the current value from the previous entry
	// value and exactly PFrameByteLength wire bytes.
	Decompress(prev value.Value, data []byte) (value.Value, error)
}

// Custom is a user-defined delta codec carrying a pair of function
// values and an advertised P-frame byte length.
type Custom struct {
	kind       string
	byteLength int
	custom     []string
	compress   func(prev, curr value.Value) ([]byte, error)
	decompress func(prev value.Value, data []byte) (value.Value, error)
}

// NewCustom creates a user-defined delta codec.
func NewCustom(
	kind string,
	pFrameByteLength int,
	custom []string,
	compress func(prev, curr value.Value) ([]byte, error),
	decompress func(prev value.Value, data []byte) (value.Value, error),
) (*Custom, error) {
	if kind == "" {
		return nil, fmt.Errorf("custom delta codec requires a kind name")
	}
	if pFrameByteLength < 0 {
		return nil, fmt.Errorf("invalid p-frame byte length %d for custom delta codec %q", pFrameByteLength, kind)
	}
	if compress == nil || decompress == nil {
		return nil, fmt.Errorf("custom delta codec %q requires compress and decompress functions", kind)
	}

	return &Custom{
		kind:       kind,
		byteLength: pFrameByteLength,
		custom:     custom,
		compress:   compress,
		decompress: decompress,
	}, nil
}

func (c *Custom) Kind() string            { return c.kind }
func (c *Custom) PFrameByteLength() int   { return c.byteLength }
func (c *Custom) CustomPayload() []string { return c.custom }

func (c *Custom) Compress(prev, curr value.Value) ([]byte, error) {
	return c.compress(prev, curr)
}

func (c *Custom) Decompress(prev value.Value, data []byte) (value.Value, error) {
	return c.decompress(prev, data)
}
