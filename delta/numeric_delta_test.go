package delta

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/keyframe/endian"
	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/format"
	"github.com/arloliu/keyframe/value"
)

var engine = endian.GetLittleEndianEngine()

func TestNumericDelta_Uint8Int8(t *testing.T) {
	codec, err := NewNumericDelta(format.PrimitiveUint8, format.PrimitiveInt8, engine)
	require.NoError(t, err)
	require.Equal(t, 1, codec.PFrameByteLength())

	// +5
	wire, err := codec.Compress(value.Uint8(100), value.Uint8(105))
	require.NoError(t, err)
	require.Equal(t, []byte{0x05}, wire)

	got, err := codec.Decompress(value.Uint8(100), wire)
	require.NoError(t, err)
	require.True(t, value.Uint8(105).Equal(got))

	// -10 encodes as two's complement 0xF6
	wire, err = codec.Compress(value.Uint8(105), value.Uint8(95))
	require.NoError(t, err)
	require.Equal(t, []byte{0xF6}, wire)

	got, err = codec.Decompress(value.Uint8(105), wire)
	require.NoError(t, err)
	require.True(t, value.Uint8(95).Equal(got))
}

func TestNumericDelta_WrappingReconstruction(t *testing.T) {
	codec, err := NewNumericDelta(format.PrimitiveUint8, format.PrimitiveInt8, engine)
	require.NoError(t, err)

	// 250 -> 4 wraps in uint8 arithmetic; the wrapped delta (+10) fits
	// int8 and reconstructs exactly.
	wire, err := codec.Compress(value.Uint8(250), value.Uint8(4))
	require.NoError(t, err)
	require.Equal(t, []byte{0x0A}, wire)

	got, err := codec.Decompress(value.Uint8(250), wire)
	require.NoError(t, err)
	require.True(t, value.Uint8(4).Equal(got))
}

func TestNumericDelta_SignedWrapping(t *testing.T) {
	codec, err := NewNumericDelta(format.PrimitiveInt16, format.PrimitiveInt8, engine)
	require.NoError(t, err)

	wire, err := codec.Compress(value.Int16(-3), value.Int16(-7))
	require.NoError(t, err)
	require.Equal(t, []byte{0xFC}, wire)

	got, err := codec.Decompress(value.Int16(-3), wire)
	require.NoError(t, err)
	require.True(t, value.Int16(-7).Equal(got))
}

func TestNumericDelta_WideDelta(t *testing.T) {
	codec, err := NewNumericDelta(format.PrimitiveInt64, format.PrimitiveInt32, engine)
	require.NoError(t, err)
	require.Equal(t, 4, codec.PFrameByteLength())

	wire, err := codec.Compress(value.Int64(1_000_000), value.Int64(999_000))
	require.NoError(t, err)

	got, err := codec.Decompress(value.Int64(1_000_000), wire)
	require.NoError(t, err)
	require.True(t, value.Int64(999_000).Equal(got))
}

func TestNumericDelta_Char16(t *testing.T) {
	codec, err := NewNumericDelta(format.PrimitiveChar16, format.PrimitiveInt8, engine)
	require.NoError(t, err)

	wire, err := codec.Compress(value.Char16('a'), value.Char16('c'))
	require.NoError(t, err)
	require.Equal(t, []byte{0x02}, wire)

	got, err := codec.Decompress(value.Char16('a'), wire)
	require.NoError(t, err)
	require.True(t, value.Char16('c').Equal(got))
}

func TestNumericDelta_Float64Float32(t *testing.T) {
	codec, err := NewNumericDelta(format.PrimitiveFloat64, format.PrimitiveFloat32, engine)
	require.NoError(t, err)
	require.Equal(t, 4, codec.PFrameByteLength())

	wire, err := codec.Compress(value.Float64(1.5), value.Float64(2.0))
	require.NoError(t, err)

	got, err := codec.Decompress(value.Float64(1.5), wire)
	require.NoError(t, err)

	f, ok := got.Float64()
	require.True(t, ok)
	require.InDelta(t, 2.0, f, 1e-6)
}

func TestNumericDelta_Float32RoundTrip(t *testing.T) {
	codec, err := NewNumericDelta(format.PrimitiveFloat32, format.PrimitiveFloat32, engine)
	require.NoError(t, err)

	wire, err := codec.Compress(value.Float32(0.25), value.Float32(0.75))
	require.NoError(t, err)

	got, err := codec.Decompress(value.Float32(0.25), wire)
	require.NoError(t, err)
	require.True(t, value.Float32(0.75).Equal(got))
}

func TestNumericDelta_InvalidCombinations(t *testing.T) {
	_, err := NewNumericDelta(format.PrimitiveBool, format.PrimitiveInt8, engine)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = NewNumericDelta(format.PrimitiveFloat64, format.PrimitiveInt8, engine)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = NewNumericDelta(format.PrimitiveUint32, format.PrimitiveFloat32, engine)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = NewNumericDelta(format.PrimitiveInvalid, format.PrimitiveInt8, engine)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestNumericDelta_KindMismatch(t *testing.T) {
	codec, err := NewNumericDelta(format.PrimitiveUint8, format.PrimitiveInt8, engine)
	require.NoError(t, err)

	_, err = codec.Compress(value.Uint16(1), value.Uint8(2))
	require.ErrorIs(t, err, errs.ErrValueKindMismatch)

	_, err = codec.Decompress(value.Uint16(1), []byte{0x00})
	require.ErrorIs(t, err, errs.ErrValueKindMismatch)
}

func TestNumericDelta_ShortDecompress(t *testing.T) {
	codec, err := NewNumericDelta(format.PrimitiveUint32, format.PrimitiveInt16, engine)
	require.NoError(t, err)

	_, err = codec.Decompress(value.Uint32(1), []byte{0x01})
	require.ErrorIs(t, err, errs.ErrLengthMismatch)
}

func TestIFrameOnly(t *testing.T) {
	codec := NewIFrameOnly()
	require.Equal(t, 0, codec.PFrameByteLength())

	wire, err := codec.Compress(value.String("a"), value.String("b"))
	require.NoError(t, err)
	require.Empty(t, wire)

	got, err := codec.Decompress(value.String("a"), nil)
	require.NoError(t, err)
	require.True(t, value.String("a").Equal(got))

	_, err = codec.Decompress(value.String("a"), []byte{0x01})
	require.ErrorIs(t, err, errs.ErrLengthMismatch)
}
