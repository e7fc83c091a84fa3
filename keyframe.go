// Package keyframe provides a schema-driven binary codec for sequences
// of fixed-shape records, with optional temporal compression inspired
// by video keying: periodic full I-frame entries followed by delta
// P-frame entries that store either nothing (carry-forward fields) or
// numeric differences relative to the preceding entry.
//
// # Core Concepts
//
//   - Schema: an ordered list of typed blocks, a version byte, an
//     optional I-frame cadence, and an optional custom header region.
//   - Entry: one record's field values in block order.
//   - Block codec: encodes one field in I-frames (numeric primitives,
//     raw bytes, text in several encodings, or user-defined).
//   - Delta codec: takes over a field in P-frames (carry-forward or
//     numeric delta cast to a narrower primitive).
//
// # Basic Usage
//
// Defining a schema from a tagged struct and round-tripping records:
//
//	type Sample struct {
//	    X uint8 `keyframe:"x,delta=int8"`
//	    Y uint8 `keyframe:"y,delta=int8"`
//	    T uint8 `keyframe:"t,iframeonly"`
//	}
//
//	s, _ := schema.FromStruct[Sample](1, schema.WithIFrameInterval(4))
//
//	data, _ := keyframe.MarshalRecords(s, []Sample{{10, 20, 3}, {11, 22, 3}})
//	samples, _ := keyframe.UnmarshalRecords[Sample](s, data)
//
// Schemas persist as JSON (schema.ToJSON / schema.FromJSON) and can be
// dispatched by version byte on read (schema.MultiVersion).
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the
// stream package, simplifying the most common in-memory cases. For
// streaming encode/decode over files or other sinks, use the stream
// package directly.
package keyframe

import (
	"github.com/arloliu/keyframe/schema"
	"github.com/arloliu/keyframe/stream"
)

// Marshal encodes a sequence of entries against a schema and returns
// the complete stream bytes.
func Marshal(s *schema.Schema, entries []schema.Entry) ([]byte, error) {
	buf := stream.NewBuffer()
	defer buf.Release()

	enc, err := stream.NewEncoder(buf, s)
	if err != nil {
		return nil, err
	}
	defer enc.Finish()

	if err := enc.WriteAll(entries); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// Unmarshal decodes a complete stream against a schema selector (a
// single schema or a multi-version dispatcher) and returns every whole
// entry it contains. A truncated final entry is discarded, matching
// the format's short-read semantics.
func Unmarshal(sel schema.Selector, data []byte) ([]schema.Entry, error) {
	dec, err := stream.NewDecoder(stream.NewBufferWith(data, 0), sel)
	if err != nil {
		return nil, err
	}

	var entries []schema.Entry
	for entry := range dec.All() {
		entries = append(entries, entry)
	}
	if err := dec.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// MarshalRecords encodes a slice of records through the schema's
// property binding.
func MarshalRecords[T any](s *schema.Schema, records []T) ([]byte, error) {
	entries := make([]schema.Entry, 0, len(records))
	for i := range records {
		entry, err := s.CastToEntry(&records[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return Marshal(s, entries)
}

// UnmarshalRecords decodes a complete stream into freshly constructed
// records of type T.
func UnmarshalRecords[T any](sel schema.Selector, data []byte) ([]T, error) {
	dec, err := stream.NewDecoder(stream.NewBufferWith(data, 0), sel)
	if err != nil {
		return nil, err
	}

	var records []T
	for entry := range dec.All() {
		rec, err := schema.FromEntry[T](dec.Schema(), entry)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := dec.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
