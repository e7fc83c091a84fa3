package schema

import (
	"fmt"
	"reflect"

	"github.com/arloliu/keyframe/block"
	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/value"
)

// Entry is one record's field values in block index order: entry[i]
// corresponds to the i-th block of the schema. Entries are short-lived,
// produced and consumed per encode/decode step.
type Entry []value.Value

// Record is the explicit property binding surface for types that opt
// out of reflection. CastToEntry and CastFromEntry prefer this
// interface when a record implements it.
type Record interface {
	// GetProperty returns the value bound to a property name.
	GetProperty(name string) (value.Value, bool)

	// SetProperty stores a decoded value into the named property,
	// reporting whether the property exists and accepted the value.
	SetProperty(name string, v value.Value) bool
}

// CastToEntry reads each block's property out of the record into an
// entry, in block index order.
//
// Records implementing the Record interface are read through it; any
// other struct (or pointer to struct) is read via reflection, matching
// the block's property name against the `keyframe` field tag or, when
// untagged, the field name.
//
// Returns errs.ErrPropertyBinding when a property is absent or its
// dynamic type does not match the block.
func (s *Schema) CastToEntry(rec any) (Entry, error) {
	entry := make(Entry, len(s.blocks))

	if r, ok := rec.(Record); ok {
		for i, b := range s.blocks {
			v, ok := r.GetProperty(b.PropertyName)
			if !ok {
				return nil, fmt.Errorf("%w: property %q not found", errs.ErrPropertyBinding, b.PropertyName)
			}
			if want := expectedKind(b); want != value.KindInvalid && v.Kind() != want {
				return nil, fmt.Errorf("%w: property %q wants %s, got %s",
					errs.ErrPropertyBinding, b.PropertyName, want, v.Kind())
			}
			entry[i] = v
		}

		return entry, nil
	}

	rv, err := derefStruct(rec)
	if err != nil {
		return nil, err
	}

	fields := fieldsByProperty(rv.Type())
	for i, b := range s.blocks {
		idx, ok := fields[b.PropertyName]
		if !ok {
			return nil, fmt.Errorf("%w: property %q not found on %s", errs.ErrPropertyBinding, b.PropertyName, rv.Type())
		}

		v, err := valueFromField(rv.Field(idx), expectedKind(b), b.PropertyName)
		if err != nil {
			return nil, err
		}
		entry[i] = v
	}

	return entry, nil
}

// CastFromEntry writes each entry value back into the record's named
// properties. rec must implement Record or be a non-nil pointer to a
// struct.
func (s *Schema) CastFromEntry(rec any, entry Entry) error {
	if len(entry) != len(s.blocks) {
		return fmt.Errorf("%w: schema has %d blocks, entry has %d values",
			errs.ErrEntryLengthMismatch, len(s.blocks), len(entry))
	}

	if r, ok := rec.(Record); ok {
		for i, b := range s.blocks {
			if !r.SetProperty(b.PropertyName, entry[i]) {
				return fmt.Errorf("%w: property %q rejected %s", errs.ErrPropertyBinding, b.PropertyName, entry[i].Kind())
			}
		}

		return nil
	}

	rv := reflect.ValueOf(rec)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: record must be a non-nil pointer, got %T", errs.ErrPropertyBinding, rec)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: record must point to a struct, got %T", errs.ErrPropertyBinding, rec)
	}

	fields := fieldsByProperty(rv.Type())
	for i, b := range s.blocks {
		idx, ok := fields[b.PropertyName]
		if !ok {
			return fmt.Errorf("%w: property %q not found on %s", errs.ErrPropertyBinding, b.PropertyName, rv.Type())
		}

		if err := assignToField(rv.Field(idx), entry[i], b.PropertyName); err != nil {
			return err
		}
	}

	return nil
}

// FromEntry constructs a fresh record of type T from an entry.
// The inverse of CastToEntry for struct-typed records.
func FromEntry[T any](s *Schema, entry Entry) (T, error) {
	var rec T
	if err := s.CastFromEntry(&rec, entry); err != nil {
		return rec, err
	}

	return rec, nil
}

// expectedKind returns the value kind a block's codec consumes, or
// KindInvalid for custom codecs whose expectations are opaque.
func expectedKind(b Block) value.Kind {
	switch c := b.Codec.(type) {
	case *block.Numeric:
		return value.KindOf(c.PrimitiveType())
	case *block.BytesCodec:
		return value.KindBytes
	case *block.StringCodec:
		return value.KindString
	default:
		return value.KindInvalid
	}
}

func derefStruct(rec any) (reflect.Value, error) {
	rv := reflect.ValueOf(rec)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil record", errs.ErrPropertyBinding)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: record must be a struct, got %T", errs.ErrPropertyBinding, rec)
	}

	return rv, nil
}

// fieldsByProperty maps property names to exported field indexes,
// honoring the `keyframe` tag and falling back to the field name.
func fieldsByProperty(rt reflect.Type) map[string]int {
	fields := make(map[string]int, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}

		name, _ := parseTag(f)
		if name == "-" {
			continue
		}
		fields[name] = i
	}

	return fields
}

var valueType = reflect.TypeOf(value.Value{})

// valueFromField converts a struct field to a Value of the wanted kind.
// Fields of type value.Value pass through with a kind check; custom
// codec blocks (want == KindInvalid) accept only value.Value fields.
func valueFromField(rv reflect.Value, want value.Kind, prop string) (value.Value, error) {
	if rv.Type() == valueType {
		v := rv.Interface().(value.Value)
		if want != value.KindInvalid && v.Kind() != want {
			return value.Value{}, fmt.Errorf("%w: property %q wants %s, got %s", errs.ErrPropertyBinding, prop, want, v.Kind())
		}

		return v, nil
	}

	mismatch := func() (value.Value, error) {
		return value.Value{}, fmt.Errorf("%w: property %q wants %s, field is %s",
			errs.ErrPropertyBinding, prop, want, rv.Type())
	}

	switch want {
	case value.KindUint8:
		if rv.Kind() != reflect.Uint8 {
			return mismatch()
		}
		return value.Uint8(uint8(rv.Uint())), nil
	case value.KindInt8:
		if rv.Kind() != reflect.Int8 {
			return mismatch()
		}
		return value.Int8(int8(rv.Int())), nil
	case value.KindBool:
		if rv.Kind() != reflect.Bool {
			return mismatch()
		}
		return value.Bool(rv.Bool()), nil
	case value.KindChar16:
		if rv.Kind() != reflect.Uint16 {
			return mismatch()
		}
		return value.Char16(uint16(rv.Uint())), nil
	case value.KindInt16:
		if rv.Kind() != reflect.Int16 {
			return mismatch()
		}
		return value.Int16(int16(rv.Int())), nil
	case value.KindUint16:
		if rv.Kind() != reflect.Uint16 {
			return mismatch()
		}
		return value.Uint16(uint16(rv.Uint())), nil
	case value.KindInt32:
		if rv.Kind() != reflect.Int32 {
			return mismatch()
		}
		return value.Int32(int32(rv.Int())), nil
	case value.KindUint32:
		if rv.Kind() != reflect.Uint32 {
			return mismatch()
		}
		return value.Uint32(uint32(rv.Uint())), nil
	case value.KindInt64:
		if rv.Kind() != reflect.Int64 {
			return mismatch()
		}
		return value.Int64(rv.Int()), nil
	case value.KindUint64:
		if rv.Kind() != reflect.Uint64 {
			return mismatch()
		}
		return value.Uint64(rv.Uint()), nil
	case value.KindFloat32:
		if rv.Kind() != reflect.Float32 {
			return mismatch()
		}
		return value.Float32(float32(rv.Float())), nil
	case value.KindFloat64:
		if rv.Kind() != reflect.Float64 {
			return mismatch()
		}
		return value.Float64(rv.Float()), nil
	case value.KindBytes:
		if rv.Type() != reflect.TypeOf([]byte(nil)) {
			return mismatch()
		}
		return value.Bytes(rv.Bytes()), nil
	case value.KindString:
		if rv.Kind() != reflect.String {
			return mismatch()
		}
		return value.String(rv.String()), nil
	default:
		return value.Value{}, fmt.Errorf("%w: property %q uses a custom codec; field must be value.Value, got %s",
			errs.ErrPropertyBinding, prop, rv.Type())
	}
}

// assignToField writes a decoded value into a settable struct field.
func assignToField(rv reflect.Value, v value.Value, prop string) error {
	if rv.Type() == valueType {
		rv.Set(reflect.ValueOf(v))
		return nil
	}

	mismatch := func() error {
		return fmt.Errorf("%w: property %q decoded %s, field is %s",
			errs.ErrPropertyBinding, prop, v.Kind(), rv.Type())
	}

	switch v.Kind() {
	case value.KindUint8, value.KindChar16, value.KindUint16, value.KindUint32, value.KindUint64:
		bits, _ := v.Bits()
		switch rv.Kind() {
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if rv.Kind() != reflectUintKind(v.Kind()) {
				return mismatch()
			}
			rv.SetUint(bits)
		default:
			return mismatch()
		}
	case value.KindInt8, value.KindInt16, value.KindInt32, value.KindInt64:
		bits, _ := v.Bits()
		switch rv.Kind() {
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if rv.Kind() != reflectIntKind(v.Kind()) {
				return mismatch()
			}
			rv.SetInt(int64(bits))
		default:
			return mismatch()
		}
	case value.KindBool:
		if rv.Kind() != reflect.Bool {
			return mismatch()
		}
		b, _ := v.Bool()
		rv.SetBool(b)
	case value.KindFloat32:
		if rv.Kind() != reflect.Float32 {
			return mismatch()
		}
		f, _ := v.Float32()
		rv.SetFloat(float64(f))
	case value.KindFloat64:
		if rv.Kind() != reflect.Float64 {
			return mismatch()
		}
		f, _ := v.Float64()
		rv.SetFloat(f)
	case value.KindBytes:
		if rv.Type() != reflect.TypeOf([]byte(nil)) {
			return mismatch()
		}
		raw, _ := v.BytesValue()
		rv.SetBytes(raw)
	case value.KindString:
		if rv.Kind() != reflect.String {
			return mismatch()
		}
		s, _ := v.StringValue()
		rv.SetString(s)
	default:
		return fmt.Errorf("%w: property %q holds an invalid value", errs.ErrPropertyBinding, prop)
	}

	return nil
}

func reflectUintKind(k value.Kind) reflect.Kind {
	switch k {
	case value.KindUint8:
		return reflect.Uint8
	case value.KindChar16, value.KindUint16:
		return reflect.Uint16
	case value.KindUint32:
		return reflect.Uint32
	default:
		return reflect.Uint64
	}
}

func reflectIntKind(k value.Kind) reflect.Kind {
	switch k {
	case value.KindInt8:
		return reflect.Int8
	case value.KindInt16:
		return reflect.Int16
	case value.KindInt32:
		return reflect.Int32
	default:
		return reflect.Int64
	}
}
