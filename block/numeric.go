package block

import (
	"fmt"

	"github.com/arloliu/keyframe/endian"
	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/format"
	"github.com/arloliu/keyframe/value"
)

// Numeric encodes one numeric primitive field in little-endian wire
// order: two's-complement for signed integers, plain binary for
// unsigned integers and the 16-bit code unit type, one byte for bool
// (0 false, nonzero true), IEEE-754 for floats.
type Numeric struct {
	typ    format.PrimitiveType
	engine endian.EndianEngine
}

// NewNumeric creates a numeric block codec for the given primitive type.
//
// Returns errs.ErrUnsupportedType when typ is not one of the supported
// primitives.
func NewNumeric(typ format.PrimitiveType, engine endian.EndianEngine) (*Numeric, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedType, typ)
	}

	return &Numeric{typ: typ, engine: engine}, nil
}

// PrimitiveType returns the primitive type the codec encodes.
func (c *Numeric) PrimitiveType() format.PrimitiveType { return c.typ }

func (c *Numeric) Kind() string            { return KindNumeric }
func (c *Numeric) ByteLength() int         { return c.typ.ByteLength() }
func (c *Numeric) CustomPayload() []string { return []string{c.typ.String()} }

// Encode writes the value in little-endian wire order.
//
// The value's kind must match the codec's primitive type exactly;
// no implicit numeric conversion is performed.
func (c *Numeric) Encode(v value.Value) ([]byte, error) {
	if v.Kind().Primitive() != c.typ {
		return nil, fmt.Errorf("%w: block wants %s, value is %s", errs.ErrValueKindMismatch, c.typ, v.Kind())
	}

	bits, _ := v.Bits()
	wire := value.TruncateBits(c.typ, bits)

	switch c.typ.ByteLength() {
	case 1:
		return []byte{byte(wire)}, nil
	case 2:
		return c.engine.AppendUint16(make([]byte, 0, 2), uint16(wire)), nil
	case 4:
		return c.engine.AppendUint32(make([]byte, 0, 4), uint32(wire)), nil
	default:
		return c.engine.AppendUint64(make([]byte, 0, 8), wire), nil
	}
}

// Decode inverts Encode. data must be exactly ByteLength bytes.
func (c *Numeric) Decode(data []byte) (value.Value, error) {
	if len(data) != c.typ.ByteLength() {
		return value.Value{}, fmt.Errorf("%w: %s block wants %d bytes, got %d",
			errs.ErrLengthMismatch, c.typ, c.typ.ByteLength(), len(data))
	}

	var wire uint64
	switch c.typ.ByteLength() {
	case 1:
		wire = uint64(data[0])
	case 2:
		wire = uint64(c.engine.Uint16(data))
	case 4:
		wire = uint64(c.engine.Uint32(data))
	default:
		wire = c.engine.Uint64(data)
	}

	return value.FromBits(c.typ, wire), nil
}
