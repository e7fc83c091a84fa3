package block

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/keyframe/endian"
	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/format"
	"github.com/arloliu/keyframe/value"
)

var engine = endian.GetLittleEndianEngine()

func TestNumeric_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		typ  format.PrimitiveType
		val  value.Value
		wire []byte
	}{
		{"uint8", format.PrimitiveUint8, value.Uint8(0xAB), []byte{0xAB}},
		{"int8 negative", format.PrimitiveInt8, value.Int8(-10), []byte{0xF6}},
		{"bool true", format.PrimitiveBool, value.Bool(true), []byte{0x01}},
		{"bool false", format.PrimitiveBool, value.Bool(false), []byte{0x00}},
		{"char16", format.PrimitiveChar16, value.Char16(0x4E2D), []byte{0x2D, 0x4E}},
		{"int16 negative", format.PrimitiveInt16, value.Int16(-2), []byte{0xFE, 0xFF}},
		{"uint16", format.PrimitiveUint16, value.Uint16(0x1234), []byte{0x34, 0x12}},
		{"int32", format.PrimitiveInt32, value.Int32(-1), []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"uint32", format.PrimitiveUint32, value.Uint32(0xDEADBEEF), []byte{0xEF, 0xBE, 0xAD, 0xDE}},
		{"int64", format.PrimitiveInt64, value.Int64(-2), []byte{0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{"uint64", format.PrimitiveUint64, value.Uint64(0x0102030405060708), []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}},
		{"float32", format.PrimitiveFloat32, value.Float32(1.0), []byte{0x00, 0x00, 0x80, 0x3F}},
		{"float64", format.PrimitiveFloat64, value.Float64(1.0), []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF0, 0x3F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := NewNumeric(tt.typ, engine)
			require.NoError(t, err)
			require.Equal(t, tt.typ.ByteLength(), codec.ByteLength())

			wire, err := codec.Encode(tt.val)
			require.NoError(t, err)
			require.Equal(t, tt.wire, wire)

			got, err := codec.Decode(wire)
			require.NoError(t, err)
			require.True(t, tt.val.Equal(got), "want %s, got %s", tt.val, got)
		})
	}
}

func TestNumeric_InvalidPrimitive(t *testing.T) {
	_, err := NewNumeric(format.PrimitiveInvalid, engine)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestNumeric_KindMismatch(t *testing.T) {
	codec, err := NewNumeric(format.PrimitiveUint8, engine)
	require.NoError(t, err)

	_, err = codec.Encode(value.Int16(1))
	require.ErrorIs(t, err, errs.ErrValueKindMismatch)
}

func TestNumeric_ShortDecode(t *testing.T) {
	codec, err := NewNumeric(format.PrimitiveUint32, engine)
	require.NoError(t, err)

	_, err = codec.Decode([]byte{0x01, 0x02})
	require.ErrorIs(t, err, errs.ErrLengthMismatch)
}

func TestNumeric_BoolNonZeroIsTrue(t *testing.T) {
	codec, err := NewNumeric(format.PrimitiveBool, engine)
	require.NoError(t, err)

	got, err := codec.Decode([]byte{0x7F})
	require.NoError(t, err)

	b, ok := got.Bool()
	require.True(t, ok)
	require.True(t, b)
}

func TestBytes_RoundTrip(t *testing.T) {
	codec := NewBytes()
	require.Equal(t, Variable, codec.ByteLength())

	payload := []byte{0x01, 0xFF, 0x7F}
	wire, err := codec.Encode(value.Bytes(payload))
	require.NoError(t, err)
	require.Equal(t, payload, wire)

	got, err := codec.Decode(wire)
	require.NoError(t, err)

	raw, ok := got.BytesValue()
	require.True(t, ok)
	require.Equal(t, payload, raw)
}

func TestBytes_DecodeCopiesInput(t *testing.T) {
	codec := NewBytes()

	scratch := []byte{0x01, 0x02}
	got, err := codec.Decode(scratch)
	require.NoError(t, err)

	scratch[0] = 0xFF
	raw, _ := got.BytesValue()
	require.Equal(t, []byte{0x01, 0x02}, raw)
}

func TestBytes_KindMismatch(t *testing.T) {
	codec := NewBytes()
	_, err := codec.Encode(value.String("nope"))
	require.ErrorIs(t, err, errs.ErrValueKindMismatch)
}

func TestCustom_Validation(t *testing.T) {
	enc := func(value.Value) ([]byte, error) { return nil, nil }
	dec := func([]byte) (value.Value, error) { return value.Value{}, nil }

	_, err := NewCustom("", 1, nil, enc, dec)
	require.Error(t, err)

	_, err = NewCustom("Thing", -2, nil, enc, dec)
	require.Error(t, err)

	_, err = NewCustom("Thing", 1, nil, nil, dec)
	require.Error(t, err)

	c, err := NewCustom("Thing", Variable, []string{"p"}, enc, dec)
	require.NoError(t, err)
	require.Equal(t, "Thing", c.Kind())
	require.Equal(t, Variable, c.ByteLength())
	require.Equal(t, []string{"p"}, c.CustomPayload())
}
