package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/keyframe/block"
	"github.com/arloliu/keyframe/delta"
	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/format"
	"github.com/arloliu/keyframe/value"
)

func cadenceSchema(t *testing.T) *Schema {
	t.Helper()

	strCodec, err := block.NewString(format.EncodingUTF16LE)
	require.NoError(t, err)

	s, err := New(2, []Block{
		{Index: 0, PropertyName: "x", Codec: numericCodec(t, format.PrimitiveUint8)},
		{
			Index: 1, PropertyName: "y",
			Codec:       numericCodec(t, format.PrimitiveInt32),
			Compression: numericDelta(t, format.PrimitiveInt32, format.PrimitiveInt8),
		},
		{Index: 2, PropertyName: "tag", Codec: strCodec, Compression: delta.NewIFrameOnly()},
		{Index: 3, PropertyName: "blob", Codec: block.NewBytes()},
	}, WithIFrameInterval(3), WithCustomHeader([]byte{0xAA, 0xBB}))
	require.NoError(t, err)

	return s
}

func TestToJSON_Shape(t *testing.T) {
	doc, err := cadenceSchema(t).ToJSON()
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))

	require.EqualValues(t, 2, parsed["version"])
	require.Equal(t, map[string]any{"i_frame_interval": float64(3)}, parsed["stream_compression"])

	blocks, ok := parsed["blocks"].([]any)
	require.True(t, ok)
	require.Len(t, blocks, 4)

	first := blocks[0].(map[string]any)
	require.Equal(t, "Numeric", first["type"])
	require.EqualValues(t, 0, first["index"])
	require.Equal(t, "x", first["property_name"])
	require.Equal(t, []any{"uint8"}, first["custom"])
	require.Equal(t, "", first["compression"])
	require.Equal(t, []any{}, first["compression_custom"])

	second := blocks[1].(map[string]any)
	require.Equal(t, "NumericDelta", second["compression"])
	require.Equal(t, []any{"int32", "int8"}, second["compression_custom"])

	third := blocks[2].(map[string]any)
	require.Equal(t, "String", third["type"])
	require.Equal(t, []any{"UTF16LE"}, third["custom"])
	require.Equal(t, "IFrameOnly", third["compression"])
	require.Equal(t, []any{}, third["compression_custom"])

	fourth := blocks[3].(map[string]any)
	require.Equal(t, "Bytes", fourth["type"])
	require.Equal(t, []any{}, fourth["custom"])
}

func TestJSON_RoundTripFingerprint(t *testing.T) {
	orig := cadenceSchema(t)

	doc, err := orig.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(doc)
	require.NoError(t, err)

	require.Equal(t, orig.Fingerprint(), restored.Fingerprint())
	require.Equal(t, orig.Version(), restored.Version())
	require.Equal(t, orig.IFrameInterval(), restored.IFrameInterval())
	require.Equal(t, orig.CustomHeader(), restored.CustomHeader())
}

func TestFromJSON_AcceptsComments(t *testing.T) {
	doc := `{
		// persisted by the schema editor
		"version": 1,
		"blocks": [
			{"type": "Numeric", "index": 0, "property_name": "x", "custom": ["uint8"], "compression": "", "compression_custom": []},
		],
	}`

	s, err := FromJSON(doc)
	require.NoError(t, err)
	require.Equal(t, byte(1), s.Version())
	require.Len(t, s.Blocks(), 1)
}

func TestFromJSON_Malformed(t *testing.T) {
	_, err := FromJSON("{not json")
	require.ErrorIs(t, err, errs.ErrMalformedSchema)

	// Numeric block without its primitive parameter
	_, err = FromJSON(`{"version":1,"blocks":[
		{"type":"Numeric","index":0,"property_name":"x","custom":[],"compression":"","compression_custom":[]}
	]}`)
	require.ErrorIs(t, err, errs.ErrMalformedSchema)

	// custom header length disagreement
	_, err = FromJSON(`{"version":1,"custom_header":{"byte_length":4,"info":"qrs="},"blocks":[
		{"type":"Numeric","index":0,"property_name":"x","custom":["uint8"],"compression":"","compression_custom":[]}
	]}`)
	require.ErrorIs(t, err, errs.ErrMalformedSchema)
}

func TestFromJSON_UnknownKinds(t *testing.T) {
	blockDoc := `{"version":1,"blocks":[
		{"type":"Varint","index":0,"property_name":"x","custom":[],"compression":"","compression_custom":[]}
	]}`
	_, err := FromJSON(blockDoc)
	require.ErrorIs(t, err, errs.ErrUnknownBlockKind)

	compDoc := `{"version":1,"blocks":[
		{"type":"Numeric","index":0,"property_name":"x","custom":["uint8"],"compression":"XOR","compression_custom":[]}
	]}`
	_, err = FromJSON(compDoc)
	require.ErrorIs(t, err, errs.ErrUnknownCompressionKind)
}

func TestJSON_CustomKindHooks(t *testing.T) {
	varint := func() block.Codec {
		c, err := block.NewCustom("Varint", block.Variable, []string{"zigzag"},
			func(v value.Value) ([]byte, error) {
				bits, _ := v.Bits()
				// toy encoding: one byte, enough for the test
				return []byte{byte(bits)&0x7F | 0x01}, nil
			},
			func(data []byte) (value.Value, error) {
				return value.Uint64(uint64(data[0])), nil
			},
		)
		require.NoError(t, err)

		return c
	}()

	s, err := New(1, []Block{
		{Index: 0, PropertyName: "n", Codec: varint},
	})
	require.NoError(t, err)

	doc, err := s.ToJSON()
	require.NoError(t, err)

	// without a hook the kind is unknown
	_, err = FromJSON(doc)
	require.ErrorIs(t, err, errs.ErrUnknownBlockKind)

	var seenCustom []string
	restored, err := FromJSON(doc, UnmarshalHooks{
		Block: func(kind string, custom []string) (block.Codec, bool) {
			if kind != "Varint" {
				return nil, false
			}
			seenCustom = custom

			return varint, true
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"zigzag"}, seenCustom)
	require.Equal(t, s.Fingerprint(), restored.Fingerprint())
}

func TestToJSON_MarshalHookOverride(t *testing.T) {
	custom, err := block.NewCustom("Opaque", 1, nil,
		func(value.Value) ([]byte, error) { return []byte{0}, nil },
		func([]byte) (value.Value, error) { return value.Uint8(0), nil },
	)
	require.NoError(t, err)

	s, err := New(1, []Block{
		{Index: 0, PropertyName: "o", Codec: custom},
	})
	require.NoError(t, err)

	doc, err := s.ToJSON(func(codec any) ([]string, bool) {
		if c, ok := codec.(*block.Custom); ok && c.Kind() == "Opaque" {
			return []string{"hooked"}, true
		}

		return nil, false
	})
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	first := parsed["blocks"].([]any)[0].(map[string]any)
	require.Equal(t, []any{"hooked"}, first["custom"])
}
