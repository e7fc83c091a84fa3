package delta

import (
	"fmt"
	"math"

	"github.com/arloliu/keyframe/endian"
	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/format"
	"github.com/arloliu/keyframe/value"
)

// NumericDelta stores a field's P-frame representation as the numeric
// difference between the current and previous entry, cast to a
// (typically narrower) delta primitive.
//
// The difference is computed in the original primitive's arithmetic.
// Integer arithmetic wraps at every width, signed and unsigned, so an
// out-of-range delta reconstructs deterministically (if incorrectly);
// staying within the delta primitive's range is the caller's contract.
// Float deltas use IEEE arithmetic in the original width.
type NumericDelta struct {
	orig   format.PrimitiveType
	dlt    format.PrimitiveType
	engine endian.EndianEngine
}

// NewNumericDelta creates a numeric delta codec.
//
// orig is the block's primitive type; dlt is the primitive the
// difference is cast to on the wire. Integer originals (including
// char16) require an integer delta; float originals require a float
// delta; bool is not supported.
func NewNumericDelta(orig, dlt format.PrimitiveType, engine endian.EndianEngine) (*NumericDelta, error) {
	if !orig.Valid() || !dlt.Valid() {
		return nil, fmt.Errorf("%w: NumericDelta(%s, %s)", errs.ErrUnsupportedType, orig, dlt)
	}
	if orig == format.PrimitiveBool || dlt == format.PrimitiveBool {
		return nil, fmt.Errorf("%w: NumericDelta does not support bool", errs.ErrUnsupportedType)
	}
	if orig.Float() != dlt.Float() {
		return nil, fmt.Errorf("%w: NumericDelta(%s, %s) mixes float and integer arithmetic",
			errs.ErrUnsupportedType, orig, dlt)
	}

	return &NumericDelta{orig: orig, dlt: dlt, engine: engine}, nil
}

// OriginalType returns the block primitive the codec differences.
func (c *NumericDelta) OriginalType() format.PrimitiveType { return c.orig }

// DeltaType returns the wire primitive the difference is cast to.
func (c *NumericDelta) DeltaType() format.PrimitiveType { return c.dlt }

func (c *NumericDelta) Kind() string          { return KindNumericDelta }
func (c *NumericDelta) PFrameByteLength() int { return c.dlt.ByteLength() }

func (c *NumericDelta) CustomPayload() []string {
	return []string{c.orig.String(), c.dlt.String()}
}

// Compress writes curr - prev (in the original primitive's arithmetic)
// cast to the delta primitive, little-endian.
func (c *NumericDelta) Compress(prev, curr value.Value) ([]byte, error) {
	prevBits, err := c.origBits(prev)
	if err != nil {
		return nil, err
	}
	currBits, err := c.origBits(curr)
	if err != nil {
		return nil, err
	}

	var wire uint64
	if c.orig.Float() {
		wire = c.floatDeltaBits(prevBits, currBits)
	} else {
		// Two's-complement subtraction in 64-bit wraps identically to
		// the original width once truncated to the delta width.
		wire = value.TruncateBits(c.dlt, currBits-prevBits)
	}

	return c.appendWire(make([]byte, 0, c.dlt.ByteLength()), wire), nil
}

// Decompress reads a delta-primitive value and returns prev + delta in
// the original primitive's arithmetic.
func (c *NumericDelta) Decompress(prev value.Value, data []byte) (value.Value, error) {
	if len(data) != c.dlt.ByteLength() {
		return value.Value{}, fmt.Errorf("%w: NumericDelta wants %d bytes, got %d",
			errs.ErrLengthMismatch, c.dlt.ByteLength(), len(data))
	}

	prevBits, err := c.origBits(prev)
	if err != nil {
		return value.Value{}, err
	}

	var wire uint64
	switch c.dlt.ByteLength() {
	case 1:
		wire = uint64(data[0])
	case 2:
		wire = uint64(c.engine.Uint16(data))
	case 4:
		wire = uint64(c.engine.Uint32(data))
	default:
		wire = c.engine.Uint64(data)
	}

	if c.orig.Float() {
		return value.FromBits(c.orig, c.floatSumBits(prevBits, wire)), nil
	}

	// Sign-extend the delta per its own signedness, then wrap into the
	// original width.
	d := value.WidenBits(c.dlt, wire)

	return value.FromBits(c.orig, prevBits+d), nil
}

// origBits extracts the widened bit pattern of a value, requiring its
// kind to match the original primitive.
func (c *NumericDelta) origBits(v value.Value) (uint64, error) {
	if v.Kind().Primitive() != c.orig {
		return 0, fmt.Errorf("%w: NumericDelta wants %s, value is %s", errs.ErrValueKindMismatch, c.orig, v.Kind())
	}

	bits, _ := v.Bits()

	return bits, nil
}

// floatDeltaBits computes curr - prev in the original float width and
// returns the delta primitive's bit pattern.
func (c *NumericDelta) floatDeltaBits(prevBits, currBits uint64) uint64 {
	var d float64
	if c.orig == format.PrimitiveFloat32 {
		d = float64(math.Float32frombits(uint32(currBits)) - math.Float32frombits(uint32(prevBits)))
	} else {
		d = math.Float64frombits(currBits) - math.Float64frombits(prevBits)
	}

	if c.dlt == format.PrimitiveFloat32 {
		return uint64(math.Float32bits(float32(d)))
	}

	return math.Float64bits(d)
}

// floatSumBits computes prev + delta in the original float width and
// returns the original primitive's bit pattern.
func (c *NumericDelta) floatSumBits(prevBits, wire uint64) uint64 {
	var d float64
	if c.dlt == format.PrimitiveFloat32 {
		d = float64(math.Float32frombits(uint32(wire)))
	} else {
		d = math.Float64frombits(wire)
	}

	if c.orig == format.PrimitiveFloat32 {
		return uint64(math.Float32bits(math.Float32frombits(uint32(prevBits)) + float32(d)))
	}

	return math.Float64bits(math.Float64frombits(prevBits) + d)
}

func (c *NumericDelta) appendWire(dst []byte, wire uint64) []byte {
	switch c.dlt.ByteLength() {
	case 1:
		return append(dst, byte(wire))
	case 2:
		return c.engine.AppendUint16(dst, uint16(wire))
	case 4:
		return c.engine.AppendUint32(dst, uint32(wire))
	default:
		return c.engine.AppendUint64(dst, wire)
	}
}
