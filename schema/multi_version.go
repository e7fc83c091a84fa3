package schema

import (
	"fmt"

	"github.com/arloliu/keyframe/errs"
)

// Selector picks the schema matching a stream's version byte. Both a
// single Schema and a MultiVersion satisfy it, so a decoder accepts
// either.
type Selector interface {
	// Select returns the schema accepting the version byte, or false
	// when none does. The returned schema is fixed for the remainder of
	// the stream; selection holds no mutable state.
	Select(version byte) (*Schema, bool)
}

// MultiVersion is an ordered collection of schemas dispatched by
// version byte at read time. Encoding always targets one concrete
// schema; MultiVersion exists for the decode side, where the stream's
// version byte picks the first schema whose validator accepts it.
type MultiVersion struct {
	schemas []*Schema
}

// NewMultiVersion creates a version dispatcher over the given schemas.
// Order matters: the first schema accepting a version byte wins.
func NewMultiVersion(schemas ...*Schema) (*MultiVersion, error) {
	if len(schemas) == 0 {
		return nil, fmt.Errorf("%w: multi-version schema needs at least one schema", errs.ErrMalformedSchema)
	}
	for i, s := range schemas {
		if s == nil {
			return nil, fmt.Errorf("%w: schema at position %d is nil", errs.ErrMalformedSchema, i)
		}
	}

	mv := &MultiVersion{schemas: make([]*Schema, len(schemas))}
	copy(mv.schemas, schemas)

	return mv, nil
}

// Schemas returns the dispatch order. The returned slice is the
// dispatcher's own; callers must not modify it.
func (m *MultiVersion) Schemas() []*Schema { return m.schemas }

// Select returns the first schema whose version validator accepts v.
func (m *MultiVersion) Select(v byte) (*Schema, bool) {
	for _, s := range m.schemas {
		if s.ValidateVersion(v) {
			return s, true
		}
	}

	return nil, false
}
