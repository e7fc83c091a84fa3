package block

import (
	"fmt"

	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/value"
)

// BytesCodec encodes a raw byte sequence field verbatim.
//
// The payload is variable length; the stream encoder frames it with a
// one-byte 0x00 terminator. Payloads containing an embedded 0x00 byte
// will not round-trip (the format does not escape) - this is an
// inherited limitation of the wire format.
type BytesCodec struct{}

// NewBytes creates a raw bytes block codec.
func NewBytes() *BytesCodec { return &BytesCodec{} }

func (c *BytesCodec) Kind() string            { return KindBytes }
func (c *BytesCodec) ByteLength() int         { return Variable }
func (c *BytesCodec) CustomPayload() []string { return []string{} }

// Encode returns the raw bytes verbatim. An empty payload is valid and
// encodes to zero bytes before the terminator.
func (c *BytesCodec) Encode(v value.Value) ([]byte, error) {
	raw, ok := v.BytesValue()
	if !ok {
		return nil, fmt.Errorf("%w: bytes block, value is %s", errs.ErrValueKindMismatch, v.Kind())
	}

	return raw, nil
}

// Decode copies the payload into a fresh slice; the input aliases the
// decoder's scratch buffer.
func (c *BytesCodec) Decode(data []byte) (value.Value, error) {
	out := make([]byte, len(data))
	copy(out, data)

	return value.Bytes(out), nil
}
