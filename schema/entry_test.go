package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/format"
	"github.com/arloliu/keyframe/value"
)

type telemetry struct {
	X     uint8  `keyframe:"x,delta=int8"`
	Y     uint8  `keyframe:"y"`
	Label string `keyframe:"label,iframeonly"`
}

func TestFromStruct(t *testing.T) {
	s, err := FromStruct[telemetry](1, WithIFrameInterval(4))
	require.NoError(t, err)

	require.Equal(t, byte(1), s.Version())
	require.Equal(t, 4, s.IFrameInterval())

	blocks := s.Blocks()
	require.Len(t, blocks, 3)

	require.Equal(t, "x", blocks[0].PropertyName)
	require.Equal(t, 0, blocks[0].Index)
	require.NotNil(t, blocks[0].Compression)
	require.Equal(t, 1, blocks[0].Compression.PFrameByteLength())

	require.Equal(t, "y", blocks[1].PropertyName)
	require.Nil(t, blocks[1].Compression)

	require.Equal(t, "label", blocks[2].PropertyName)
	require.NotNil(t, blocks[2].Compression)
	require.Equal(t, 0, blocks[2].Compression.PFrameByteLength())
}

func TestFromStruct_TagErrors(t *testing.T) {
	type badOption struct {
		A uint8 `keyframe:"a,bogus"`
	}
	_, err := FromStruct[badOption](1)
	require.ErrorIs(t, err, errs.ErrMalformedSchema)

	type badEncoding struct {
		A string `keyframe:"a,string=EBCDIC"`
	}
	_, err = FromStruct[badEncoding](1)
	require.ErrorIs(t, err, errs.ErrMalformedSchema)

	type badDelta struct {
		A uint8 `keyframe:"a,delta=int128"`
	}
	_, err = FromStruct[badDelta](1)
	require.ErrorIs(t, err, errs.ErrMalformedSchema)

	type unsupported struct {
		A map[string]int `keyframe:"a"`
	}
	_, err = FromStruct[unsupported](1)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestFromStruct_SkipsAndDefaults(t *testing.T) {
	type rec struct {
		Kept    uint16 // untagged: bound by field name
		Code    uint16 `keyframe:"code,char16"`
		Ignored int32  `keyframe:"-"`
		hidden  int8   //nolint:unused
	}

	s, err := FromStruct[rec](1)
	require.NoError(t, err)

	blocks := s.Blocks()
	require.Len(t, blocks, 2)
	require.Equal(t, "Kept", blocks[0].PropertyName)
	require.Equal(t, "code", blocks[1].PropertyName)
	require.Equal(t, []string{format.PrimitiveChar16.String()}, blocks[1].Codec.CustomPayload())
}

func TestCastToEntry_Reflection(t *testing.T) {
	s, err := FromStruct[telemetry](1, WithIFrameInterval(4))
	require.NoError(t, err)

	entry, err := s.CastToEntry(&telemetry{X: 10, Y: 20, Label: "a"})
	require.NoError(t, err)
	require.Equal(t, Entry{value.Uint8(10), value.Uint8(20), value.String("a")}, entry)
}

func TestCastToEntry_MissingProperty(t *testing.T) {
	s, err := FromStruct[telemetry](1)
	require.NoError(t, err)

	type other struct {
		X uint8 `keyframe:"x"`
	}
	_, err = s.CastToEntry(&other{X: 1})
	require.ErrorIs(t, err, errs.ErrPropertyBinding)
}

func TestCastToEntry_WrongFieldType(t *testing.T) {
	s, err := FromStruct[telemetry](1)
	require.NoError(t, err)

	type mistyped struct {
		X     int32  `keyframe:"x"`
		Y     uint8  `keyframe:"y"`
		Label string `keyframe:"label"`
	}
	_, err = s.CastToEntry(&mistyped{})
	require.ErrorIs(t, err, errs.ErrPropertyBinding)
}

func TestCastFromEntry_Reflection(t *testing.T) {
	s, err := FromStruct[telemetry](1)
	require.NoError(t, err)

	var rec telemetry
	err = s.CastFromEntry(&rec, Entry{value.Uint8(10), value.Uint8(20), value.String("a")})
	require.NoError(t, err)
	require.Equal(t, telemetry{X: 10, Y: 20, Label: "a"}, rec)
}

func TestCastFromEntry_LengthMismatch(t *testing.T) {
	s, err := FromStruct[telemetry](1)
	require.NoError(t, err)

	var rec telemetry
	err = s.CastFromEntry(&rec, Entry{value.Uint8(10)})
	require.ErrorIs(t, err, errs.ErrEntryLengthMismatch)
}

func TestFromEntry_Generic(t *testing.T) {
	s, err := FromStruct[telemetry](1)
	require.NoError(t, err)

	rec, err := FromEntry[telemetry](s, Entry{value.Uint8(1), value.Uint8(2), value.String("z")})
	require.NoError(t, err)
	require.Equal(t, telemetry{X: 1, Y: 2, Label: "z"}, rec)
}

// mapRecord binds properties through the explicit Record interface.
type mapRecord map[string]value.Value

func (m mapRecord) GetProperty(name string) (value.Value, bool) {
	v, ok := m[name]
	return v, ok
}

func (m mapRecord) SetProperty(name string, v value.Value) bool {
	m[name] = v
	return true
}

func TestCast_RecordInterface(t *testing.T) {
	s, err := New(1, []Block{
		{Index: 0, PropertyName: "a", Codec: numericCodec(t, format.PrimitiveUint8)},
		{Index: 1, PropertyName: "b", Codec: numericCodec(t, format.PrimitiveInt16)},
	})
	require.NoError(t, err)

	rec := mapRecord{"a": value.Uint8(7), "b": value.Int16(-3)}
	entry, err := s.CastToEntry(rec)
	require.NoError(t, err)
	require.Equal(t, Entry{value.Uint8(7), value.Int16(-3)}, entry)

	out := mapRecord{}
	require.NoError(t, s.CastFromEntry(out, entry))
	require.True(t, value.Uint8(7).Equal(out["a"]))
	require.True(t, value.Int16(-3).Equal(out["b"]))

	// wrong dynamic kind through the interface
	bad := mapRecord{"a": value.Int16(1), "b": value.Int16(2)}
	_, err = s.CastToEntry(bad)
	require.ErrorIs(t, err, errs.ErrPropertyBinding)

	// missing property
	missing := mapRecord{"a": value.Uint8(1)}
	_, err = s.CastToEntry(missing)
	require.ErrorIs(t, err, errs.ErrPropertyBinding)
}

func TestCast_NonStructRecord(t *testing.T) {
	s, err := FromStruct[telemetry](1)
	require.NoError(t, err)

	_, err = s.CastToEntry(42)
	require.ErrorIs(t, err, errs.ErrPropertyBinding)

	var rec telemetry
	require.ErrorIs(t, s.CastFromEntry(rec, make(Entry, 3)), errs.ErrPropertyBinding)
}
