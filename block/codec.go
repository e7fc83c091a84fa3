// Package block provides the per-field codecs of the keyframe format.
//
// A block codec encodes one typed field value to bytes and decodes it
// back. Fixed-width codecs advertise their exact byte length; variable
// width codecs advertise Variable and rely on the stream encoder to
// frame their payload with a one-byte 0x00 terminator.
//
// Built-in codecs cover the numeric primitives, raw byte sequences, and
// text in a fixed set of encodings. User-defined field types plug in
// through Custom.
package block

import (
	"fmt"

	"github.com/arloliu/keyframe/value"
)

// Variable is the ByteLength of codecs whose payload size depends on
// the encoded value.
const Variable = -1

// Kind names of the built-in codecs, as persisted in schema JSON.
const (
	KindNumeric = "Numeric"
	KindBytes   = "Bytes"
	KindString  = "String"
)

// Codec encodes and decodes one field of a data entry.
//
// The same codec instance is shared by every entry of a stream, and by
// every stream using the schema. Codecs are not required to be safe for
// concurrent use; encoders and decoders are single-threaded and callers
// must serialize access to a schema across streams.
type Codec interface {
	// Kind returns the persisted kind name of the codec.
	Kind() string

	// ByteLength returns the fixed encoded width in bytes, or Variable
	// for codecs whose payload length depends on the value.
	ByteLength() int

	// CustomPayload returns the kind-specific parameter strings stored
	// in the schema JSON "custom" array.
	CustomPayload() []string

	// Encode converts the value to its wire bytes. For fixed-width
	// codecs the result must be exactly ByteLength bytes; the stream
	// encoder enforces this.
	Encode(v value.Value) ([]byte, error)

	// Decode converts wire bytes back to a value. Fixed-width codecs
	// receive exactly ByteLength bytes; variable-width codecs receive
	// the unframed payload with the terminator already stripped.
	Decode(data []byte) (value.Value, error)
}

// Custom is a user-defined block codec carrying a pair of function
// values and an advertised byte length.
//
// The kind name and custom payload are persisted verbatim in schema
// JSON; reading such a schema back requires a matching deserialize
// hook (see the schema package).
type Custom struct {
	kind       string
	byteLength int
	custom     []string
	encode     func(value.Value) ([]byte, error)
	decode     func([]byte) (value.Value, error)
}

// NewCustom creates a user-defined block codec.
//
// byteLength is the fixed encoded width, or Variable for terminator
// framed payloads. custom is the parameter payload persisted with the
// schema; it may be nil.
func NewCustom(
	kind string,
	byteLength int,
	custom []string,
	encode func(value.Value) ([]byte, error),
	decode func([]byte) (value.Value, error),
) (*Custom, error) {
	if kind == "" {
		return nil, fmt.Errorf("custom block codec requires a kind name")
	}
	if byteLength < 0 && byteLength != Variable {
		return nil, fmt.Errorf("invalid byte length %d for custom block codec %q", byteLength, kind)
	}
	if encode == nil || decode == nil {
		return nil, fmt.Errorf("custom block codec %q requires encode and decode functions", kind)
	}

	return &Custom{
		kind:       kind,
		byteLength: byteLength,
		custom:     custom,
		encode:     encode,
		decode:     decode,
	}, nil
}

func (c *Custom) Kind() string            { return c.kind }
func (c *Custom) ByteLength() int         { return c.byteLength }
func (c *Custom) CustomPayload() []string { return c.custom }

func (c *Custom) Encode(v value.Value) ([]byte, error) { return c.encode(v) }
func (c *Custom) Decode(data []byte) (value.Value, error) {
	return c.decode(data)
}
