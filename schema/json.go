package schema

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"

	"github.com/arloliu/keyframe/block"
	"github.com/arloliu/keyframe/delta"
	"github.com/arloliu/keyframe/endian"
	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/format"
)

// Schema JSON persistence.
//
// Naming convention: kinds use their short names (Numeric, Bytes,
// String, IFrameOnly, NumericDelta); type parameters inside "custom"
// and "compression_custom" use the canonical primitive spelling
// (uint8, int8, ..., float64, char16) and string encoding spelling
// (ASCII, Latin1, UTF16LE, UTF16BE, UTF8, UTF32LE). Custom header info
// is base64, the encoding/json default for byte slices.

type jsonSchema struct {
	Version           byte                   `json:"version"`
	StreamCompression *jsonStreamCompression `json:"stream_compression,omitempty"`
	CustomHeader      *jsonCustomHeader      `json:"custom_header,omitempty"`
	Blocks            []jsonBlock            `json:"blocks"`
}

type jsonStreamCompression struct {
	IFrameInterval int `json:"i_frame_interval"`
}

type jsonCustomHeader struct {
	ByteLength int    `json:"byte_length"`
	Info       []byte `json:"info"`
}

type jsonBlock struct {
	Type              string   `json:"type"`
	Index             int      `json:"index"`
	PropertyName      string   `json:"property_name"`
	Custom            []string `json:"custom"`
	Compression       string   `json:"compression"`
	CompressionCustom []string `json:"compression_custom"`
}

// MarshalHook produces the "custom" payload for a user-defined block or
// compression codec during serialization. It is consulted before the
// codec's own CustomPayload, letting callers override persistence for
// codecs they did not author. Return false to decline.
type MarshalHook func(codec any) ([]string, bool)

// UnmarshalHooks reconstruct user-defined codecs during
// deserialization. A hook is consulted only after every built-in kind
// fails to match. Either field may be nil.
type UnmarshalHooks struct {
	// Block reconstructs a user-defined block codec from its persisted
	// kind name and custom payload.
	Block func(kind string, custom []string) (block.Codec, bool)

	// Compression reconstructs a user-defined delta codec from its
	// persisted kind name and custom payload.
	Compression func(kind string, custom []string) (delta.Codec, bool)
}

// ToJSON serializes the schema to its persisted JSON form.
//
// Optional hooks provide the custom payload of user-defined codecs;
// without a matching hook a user-defined codec persists its own
// CustomPayload.
func (s *Schema) ToJSON(hooks ...MarshalHook) (string, error) {
	doc := jsonSchema{
		Version: s.version,
		Blocks:  make([]jsonBlock, 0, len(s.blocks)),
	}

	if s.streamComp != nil {
		doc.StreamCompression = &jsonStreamCompression{IFrameInterval: s.streamComp.IFrameInterval}
	}
	if s.customHeader != nil {
		doc.CustomHeader = &jsonCustomHeader{
			ByteLength: s.customHeader.ByteLength,
			Info:       s.customHeader.Info,
		}
	}

	for _, b := range s.blocks {
		jb := jsonBlock{
			Type:              b.Codec.Kind(),
			Index:             b.Index,
			PropertyName:      b.PropertyName,
			Custom:            customPayload(b.Codec, b.Codec.Kind(), hooks),
			CompressionCustom: []string{},
		}

		if b.Compression != nil {
			jb.Compression = b.Compression.Kind()
			jb.CompressionCustom = customPayload(b.Compression, b.Compression.Kind(), hooks)
		}

		doc.Blocks = append(doc.Blocks, jb)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrMalformedSchema, err)
	}

	return string(out), nil
}

// customPayload resolves the persisted parameter strings of a codec:
// caller hooks first for non-builtin kinds, the codec's own payload
// otherwise.
func customPayload(codec any, kind string, hooks []MarshalHook) []string {
	if !builtinKind(kind) {
		for _, hook := range hooks {
			if custom, ok := hook(codec); ok {
				return custom
			}
		}
	}

	type payloader interface{ CustomPayload() []string }
	if p, ok := codec.(payloader); ok {
		if custom := p.CustomPayload(); custom != nil {
			return custom
		}
	}

	return []string{}
}

func builtinKind(kind string) bool {
	switch kind {
	case block.KindNumeric, block.KindBytes, block.KindString,
		delta.KindIFrameOnly, delta.KindNumericDelta:
		return true
	default:
		return false
	}
}

// FromJSON reconstructs a schema from its persisted JSON form.
//
// The document may contain // and /* */ comments and trailing commas;
// it is translated through jsonc before parsing, so hand-maintained
// schema files stay readable.
//
// Built-in kinds are matched first; anything else is offered to the
// hooks. Returns errs.ErrUnknownBlockKind or
// errs.ErrUnknownCompressionKind when no hook claims a kind, and
// errs.ErrMalformedSchema for documents that do not parse or violate
// schema invariants.
func FromJSON(doc string, hooks ...UnmarshalHooks) (*Schema, error) {
	var parsed jsonSchema
	if err := json.Unmarshal(jsonc.ToJSON([]byte(doc)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrMalformedSchema, err)
	}

	engine := endian.GetLittleEndianEngine()
	blocks := make([]Block, 0, len(parsed.Blocks))

	for _, jb := range parsed.Blocks {
		codec, err := blockCodecFromJSON(jb, engine, hooks)
		if err != nil {
			return nil, err
		}

		b := Block{Index: jb.Index, PropertyName: jb.PropertyName, Codec: codec}

		if jb.Compression != "" {
			comp, err := deltaCodecFromJSON(jb, engine, hooks)
			if err != nil {
				return nil, err
			}
			b.Compression = comp
		}

		blocks = append(blocks, b)
	}

	var opts []Option
	if parsed.StreamCompression != nil {
		opts = append(opts, WithIFrameInterval(parsed.StreamCompression.IFrameInterval))
	}
	if parsed.CustomHeader != nil {
		if len(parsed.CustomHeader.Info) != parsed.CustomHeader.ByteLength {
			return nil, fmt.Errorf("%w: custom header declares %d bytes but info has %d",
				errs.ErrMalformedSchema, parsed.CustomHeader.ByteLength, len(parsed.CustomHeader.Info))
		}
		opts = append(opts, WithCustomHeader(parsed.CustomHeader.Info))
	}

	return New(parsed.Version, blocks, opts...)
}

func blockCodecFromJSON(jb jsonBlock, engine endian.EndianEngine, hooks []UnmarshalHooks) (block.Codec, error) {
	switch jb.Type {
	case block.KindNumeric:
		if len(jb.Custom) != 1 {
			return nil, fmt.Errorf("%w: Numeric block %q wants 1 custom entry, got %d",
				errs.ErrMalformedSchema, jb.PropertyName, len(jb.Custom))
		}
		prim := format.ParsePrimitiveType(jb.Custom[0])
		if !prim.Valid() {
			return nil, fmt.Errorf("%w: Numeric block %q: unknown primitive %q",
				errs.ErrMalformedSchema, jb.PropertyName, jb.Custom[0])
		}

		return block.NewNumeric(prim, engine)
	case block.KindBytes:
		return block.NewBytes(), nil
	case block.KindString:
		if len(jb.Custom) != 1 {
			return nil, fmt.Errorf("%w: String block %q wants 1 custom entry, got %d",
				errs.ErrMalformedSchema, jb.PropertyName, len(jb.Custom))
		}
		enc := format.ParseStringEncoding(jb.Custom[0])
		if !enc.Valid() {
			return nil, fmt.Errorf("%w: String block %q: unknown encoding %q",
				errs.ErrMalformedSchema, jb.PropertyName, jb.Custom[0])
		}

		return block.NewString(enc)
	default:
		for _, hook := range hooks {
			if hook.Block == nil {
				continue
			}
			if codec, ok := hook.Block(jb.Type, jb.Custom); ok {
				return codec, nil
			}
		}

		return nil, fmt.Errorf("%w: %q (block %q)", errs.ErrUnknownBlockKind, jb.Type, jb.PropertyName)
	}
}

func deltaCodecFromJSON(jb jsonBlock, engine endian.EndianEngine, hooks []UnmarshalHooks) (delta.Codec, error) {
	switch jb.Compression {
	case delta.KindIFrameOnly:
		return delta.NewIFrameOnly(), nil
	case delta.KindNumericDelta:
		if len(jb.CompressionCustom) != 2 {
			return nil, fmt.Errorf("%w: NumericDelta on block %q wants 2 custom entries, got %d",
				errs.ErrMalformedSchema, jb.PropertyName, len(jb.CompressionCustom))
		}
		orig := format.ParsePrimitiveType(jb.CompressionCustom[0])
		dlt := format.ParsePrimitiveType(jb.CompressionCustom[1])
		if !orig.Valid() || !dlt.Valid() {
			return nil, fmt.Errorf("%w: NumericDelta on block %q: unknown primitive in %v",
				errs.ErrMalformedSchema, jb.PropertyName, jb.CompressionCustom)
		}

		return delta.NewNumericDelta(orig, dlt, engine)
	default:
		for _, hook := range hooks {
			if hook.Compression == nil {
				continue
			}
			if codec, ok := hook.Compression(jb.Compression, jb.CompressionCustom); ok {
				return codec, nil
			}
		}

		return nil, fmt.Errorf("%w: %q (block %q)", errs.ErrUnknownCompressionKind, jb.Compression, jb.PropertyName)
	}
}
