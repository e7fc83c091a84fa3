package block

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/format"
	"github.com/arloliu/keyframe/value"
)

func TestString_UTF8RoundTrip(t *testing.T) {
	codec, err := NewString(format.EncodingUTF8)
	require.NoError(t, err)
	require.Equal(t, Variable, codec.ByteLength())

	wire, err := codec.Encode(value.String("héllo 世界"))
	require.NoError(t, err)

	got, err := codec.Decode(wire)
	require.NoError(t, err)

	s, ok := got.StringValue()
	require.True(t, ok)
	require.Equal(t, "héllo 世界", s)
}

func TestString_UTF8RejectsMalformed(t *testing.T) {
	codec, err := NewString(format.EncodingUTF8)
	require.NoError(t, err)

	_, err = codec.Decode([]byte{0xFF, 0xFE})
	require.ErrorIs(t, err, errs.ErrInvalidEncoding)
}

func TestString_ASCII(t *testing.T) {
	codec, err := NewString(format.EncodingASCII)
	require.NoError(t, err)

	wire, err := codec.Encode(value.String("hi"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x68, 0x69}, wire)

	_, err = codec.Encode(value.String("héllo"))
	require.ErrorIs(t, err, errs.ErrInvalidEncoding)

	_, err = codec.Decode([]byte{0x80})
	require.ErrorIs(t, err, errs.ErrInvalidEncoding)
}

func TestString_Latin1(t *testing.T) {
	codec, err := NewString(format.EncodingLatin1)
	require.NoError(t, err)

	wire, err := codec.Encode(value.String("héllo"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x68, 0xE9, 0x6C, 0x6C, 0x6F}, wire)

	got, err := codec.Decode(wire)
	require.NoError(t, err)

	s, _ := got.StringValue()
	require.Equal(t, "héllo", s)

	// Unrepresentable code point
	_, err = codec.Encode(value.String("世"))
	require.ErrorIs(t, err, errs.ErrInvalidEncoding)
}

func TestString_UTF16(t *testing.T) {
	le, err := NewString(format.EncodingUTF16LE)
	require.NoError(t, err)

	// Pick code points whose UTF-16 code units avoid 0x00 bytes, since
	// the stream framing cannot carry embedded NULs.
	wire, err := le.Encode(value.String("世界"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x16, 0x4E, 0x4C, 0x75}, wire)

	got, err := le.Decode(wire)
	require.NoError(t, err)
	s, _ := got.StringValue()
	require.Equal(t, "世界", s)

	be, err := NewString(format.EncodingUTF16BE)
	require.NoError(t, err)

	wire, err = be.Encode(value.String("世"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x4E, 0x16}, wire)

	got, err = be.Decode(wire)
	require.NoError(t, err)
	s, _ = got.StringValue()
	require.Equal(t, "世", s)
}

func TestString_UTF32LE(t *testing.T) {
	codec, err := NewString(format.EncodingUTF32LE)
	require.NoError(t, err)

	wire, err := codec.Encode(value.String("A"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x41, 0x00, 0x00, 0x00}, wire)

	got, err := codec.Decode(wire)
	require.NoError(t, err)
	s, _ := got.StringValue()
	require.Equal(t, "A", s)
}

func TestString_EmptyPayload(t *testing.T) {
	for _, enc := range []format.StringEncoding{
		format.EncodingASCII,
		format.EncodingLatin1,
		format.EncodingUTF16LE,
		format.EncodingUTF8,
	} {
		codec, err := NewString(enc)
		require.NoError(t, err)

		wire, err := codec.Encode(value.String(""))
		require.NoError(t, err)
		require.Empty(t, wire)

		got, err := codec.Decode(nil)
		require.NoError(t, err)
		s, ok := got.StringValue()
		require.True(t, ok)
		require.Empty(t, s)
	}
}

func TestString_KindMismatch(t *testing.T) {
	codec, err := NewString(format.EncodingUTF8)
	require.NoError(t, err)

	_, err = codec.Encode(value.Uint8(1))
	require.ErrorIs(t, err, errs.ErrValueKindMismatch)
}

func TestString_UnknownEncoding(t *testing.T) {
	_, err := NewString(format.StringEncoding(0xEE))
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}
