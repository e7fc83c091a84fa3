// Package schema defines the layout descriptors of the keyframe format:
// which fields a data entry has, how each is encoded, which fields are
// delta-compressed in P-frames, and how schemas are persisted as JSON
// and dispatched by version on read.
//
// A Schema is constructed once - from explicit blocks, from a tagged
// struct type, or from JSON - validated eagerly, and immutable
// thereafter. Encoders and decoders borrow a schema for their lifetime
// and never mutate it.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arloliu/keyframe/block"
	"github.com/arloliu/keyframe/delta"
	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/internal/hash"
	"github.com/arloliu/keyframe/internal/options"
)

// Block describes one field of a data entry.
type Block struct {
	// Index is the ordering key within an entry. Entries are laid out
	// in ascending index order; indexes must be unique but need not be
	// contiguous.
	Index int

	// PropertyName binds the block to a record property. Must be
	// non-empty and unique within a schema.
	PropertyName string

	// Codec encodes the field in I-frame entries (and in P-frames when
	// no Compression is attached).
	Codec block.Codec

	// Compression, when non-nil, takes over the field in P-frame
	// entries. Only meaningful when the schema has stream compression.
	Compression delta.Codec
}

// StreamCompression enables I-frame keying: every IFrameInterval-th
// entry is a full I-frame, the entries between are P-frames.
type StreamCompression struct {
	// IFrameInterval is the cadence; must be at least 2.
	IFrameInterval int
}

// CustomHeader declares a fixed-length opaque byte region written
// between the version byte and the entry stream.
type CustomHeader struct {
	// ByteLength is the declared region length; zero writes nothing.
	ByteLength int

	// Info is the default content, written when the encoder caller does
	// not supply its own bytes. Always exactly ByteLength bytes.
	Info []byte
}

// VersionValidator decides whether a schema accepts a stream's version
// byte. The default validator accepts only the schema's own version.
type VersionValidator func(version byte) bool

// Schema is an ordered list of blocks plus the stream-wide settings.
type Schema struct {
	version      byte
	blocks       []Block
	streamComp   *StreamCompression
	customHeader *CustomHeader
	validator    VersionValidator
	byName       map[string]int
}

// Option configures schema construction.
type Option = options.Option[*Schema]

// WithIFrameInterval enables stream compression with the given I-frame
// cadence. interval must be at least 2.
func WithIFrameInterval(interval int) Option {
	return options.New(func(s *Schema) error {
		if interval < 2 {
			return fmt.Errorf("%w: got %d", errs.ErrInvalidIFrameInterval, interval)
		}
		s.streamComp = &StreamCompression{IFrameInterval: interval}

		return nil
	})
}

// WithCustomHeader declares a custom header region whose length and
// default content are taken from info. A zero-length info declares a
// zero-length region.
func WithCustomHeader(info []byte) Option {
	return options.New(func(s *Schema) error {
		cloned := make([]byte, len(info))
		copy(cloned, info)
		s.customHeader = &CustomHeader{ByteLength: len(cloned), Info: cloned}

		return nil
	})
}

// WithVersionValidator replaces the default exact-match version check.
// Useful for schemas that accept a range of compatible versions.
func WithVersionValidator(fn VersionValidator) Option {
	return options.New(func(s *Schema) error {
		if fn == nil {
			return fmt.Errorf("version validator must not be nil")
		}
		s.validator = fn

		return nil
	})
}

// New creates a schema from a version byte and a block list.
//
// The block slice is cloned and sorted by ascending index. Validation
// is eager: duplicate indexes, duplicate or empty property names,
// missing codecs, and delta codecs incompatible with their block's
// primitive type are all construction errors.
func New(version byte, blocks []Block, opts ...Option) (*Schema, error) {
	if len(blocks) == 0 {
		return nil, errs.ErrNoBlocks
	}

	s := &Schema{
		version: version,
		blocks:  make([]Block, len(blocks)),
	}
	copy(s.blocks, blocks)

	sort.SliceStable(s.blocks, func(i, j int) bool {
		return s.blocks[i].Index < s.blocks[j].Index
	})

	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	s.byName = make(map[string]int, len(s.blocks))
	for i, b := range s.blocks {
		s.byName[b.PropertyName] = i
	}

	return s, nil
}

func (s *Schema) validate() error {
	seenIdx := make(map[int]struct{}, len(s.blocks))
	seenName := make(map[string]struct{}, len(s.blocks))

	for _, b := range s.blocks {
		if b.PropertyName == "" {
			return fmt.Errorf("%w: block index %d", errs.ErrEmptyPropertyName, b.Index)
		}
		if _, dup := seenIdx[b.Index]; dup {
			return fmt.Errorf("%w: index %d", errs.ErrDuplicateBlockIndex, b.Index)
		}
		if _, dup := seenName[b.PropertyName]; dup {
			return fmt.Errorf("%w: %q", errs.ErrDuplicatePropertyName, b.PropertyName)
		}
		seenIdx[b.Index] = struct{}{}
		seenName[b.PropertyName] = struct{}{}

		if b.Codec == nil {
			return fmt.Errorf("%w: block %q has no codec", errs.ErrMalformedSchema, b.PropertyName)
		}

		if err := validateCompression(b); err != nil {
			return err
		}
	}

	return nil
}

// validateCompression checks that a block's delta codec is compatible
// with its block codec. NumericDelta requires a numeric block of the
// same primitive type; decoders trust this statically, so it must hold
// at construction time. Custom delta codecs are trusted.
func validateCompression(b Block) error {
	nd, ok := b.Compression.(*delta.NumericDelta)
	if !ok {
		return nil
	}

	num, ok := b.Codec.(*block.Numeric)
	if !ok {
		return fmt.Errorf("%w: block %q is not numeric but has NumericDelta compression",
			errs.ErrIncompatibleCompression, b.PropertyName)
	}

	if num.PrimitiveType() != nd.OriginalType() {
		return fmt.Errorf("%w: block %q is %s but NumericDelta original is %s",
			errs.ErrIncompatibleCompression, b.PropertyName, num.PrimitiveType(), nd.OriginalType())
	}

	return nil
}

// Version returns the schema's version byte.
func (s *Schema) Version() byte { return s.version }

// Blocks returns the blocks in ascending index order. The returned
// slice is the schema's own; callers must not modify it.
func (s *Schema) Blocks() []Block { return s.blocks }

// BlockByName returns the block bound to the given property name.
func (s *Schema) BlockByName(name string) (Block, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Block{}, false
	}

	return s.blocks[i], true
}

// IFrameInterval returns the stream compression cadence, or 0 when the
// schema has no stream compression (every entry is an I-frame).
func (s *Schema) IFrameInterval() int {
	if s.streamComp == nil {
		return 0
	}

	return s.streamComp.IFrameInterval
}

// CustomHeader returns a copy of the schema's custom header
// declaration, or nil when the schema has none.
func (s *Schema) CustomHeader() *CustomHeader {
	if s.customHeader == nil {
		return nil
	}

	info := make([]byte, len(s.customHeader.Info))
	copy(info, s.customHeader.Info)

	return &CustomHeader{ByteLength: s.customHeader.ByteLength, Info: info}
}

// ValidateVersion reports whether the schema accepts a stream's version
// byte. The default check is exact equality; see WithVersionValidator.
func (s *Schema) ValidateVersion(v byte) bool {
	if s.validator != nil {
		return s.validator(v)
	}

	return v == s.version
}

// Select implements Selector for a single schema: it returns the schema
// itself when the version byte is accepted.
func (s *Schema) Select(v byte) (*Schema, bool) {
	if !s.ValidateVersion(v) {
		return nil, false
	}

	return s, true
}

// Fingerprint returns a 64-bit identity of the schema's layout:
// version, cadence, custom header declaration, and every block's
// index, name, kind, and parameters. Two schemas with equal
// fingerprints produce byte-identical streams for the same entries.
func (s *Schema) Fingerprint() uint64 {
	var sb strings.Builder

	fmt.Fprintf(&sb, "v%d|k%d|", s.version, s.IFrameInterval())
	if s.customHeader != nil {
		fmt.Fprintf(&sb, "h%d:%x|", s.customHeader.ByteLength, s.customHeader.Info)
	}

	for _, b := range s.blocks {
		fmt.Fprintf(&sb, "b%d:%s:%s:%s", b.Index, b.PropertyName, b.Codec.Kind(),
			strings.Join(b.Codec.CustomPayload(), ","))
		if b.Compression != nil {
			fmt.Fprintf(&sb, ":%s:%s", b.Compression.Kind(),
				strings.Join(b.Compression.CustomPayload(), ","))
		}
		sb.WriteByte('|')
	}

	return hash.ID(sb.String())
}
