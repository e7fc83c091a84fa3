package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/arloliu/keyframe/block"
	"github.com/arloliu/keyframe/delta"
	"github.com/arloliu/keyframe/endian"
	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/format"
)

// FromStruct builds a schema from a struct type's field metadata, the
// Go analogue of attribute-driven schema reflection.
//
// Exported fields become blocks in declaration order, which is also the
// authoritative block index. The `keyframe` tag carries the per-field
// metadata:
//
//	type Sample struct {
//	    X     uint8   `keyframe:"x"`                 // Numeric block named "x"
//	    Y     uint8   `keyframe:"y,delta=int8"`      // NumericDelta(uint8, int8) in P-frames
//	    Label string  `keyframe:"label,iframeonly"`  // carried forward through P-frames
//	    Name  string  `keyframe:"name,string=UTF16LE"`
//	    Code  uint16  `keyframe:"code,char16"`       // 16-bit code unit, not uint16
//	    skip  int                                    // unexported: ignored
//	    Tmp   int     `keyframe:"-"`                 // explicitly ignored
//	}
//
// Block kinds are inferred from field types: the numeric primitives map
// to Numeric blocks, []byte to a Bytes block, string to a String block
// (UTF-8 unless a string= option selects another encoding). Fields of
// unsupported types are an error rather than silently skipped.
//
// Stream-wide settings (version, cadence, custom header) are passed
// explicitly; tags only describe blocks:
//
//	s, err := schema.FromStruct[Sample](1, schema.WithIFrameInterval(4))
func FromStruct[T any](version byte, opts ...Option) (*Schema, error) {
	rt := reflect.TypeFor[T]()
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: FromStruct requires a struct type, got %s", errs.ErrMalformedSchema, rt)
	}

	engine := endian.GetLittleEndianEngine()
	blocks := make([]Block, 0, rt.NumField())

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}

		name, tagOpts := parseTag(f)
		if name == "-" {
			continue
		}

		b, err := blockFromField(f, name, len(blocks), tagOpts, engine)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}

	return New(version, blocks, opts...)
}

// parseTag splits a `keyframe` struct tag into the property name and
// option tokens. An absent or empty tag binds by field name.
func parseTag(f reflect.StructField) (string, []string) {
	tag := f.Tag.Get("keyframe")
	if tag == "" {
		return f.Name, nil
	}

	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = f.Name
	}

	return name, parts[1:]
}

func blockFromField(f reflect.StructField, name string, index int, tagOpts []string, engine endian.EndianEngine) (Block, error) {
	var (
		strEnc     = format.EncodingUTF8
		char16     bool
		deltaType  format.PrimitiveType
		hasDelta   bool
		iframeOnly bool
	)

	for _, opt := range tagOpts {
		switch {
		case opt == "char16":
			char16 = true
		case opt == "iframeonly":
			iframeOnly = true
		case strings.HasPrefix(opt, "string="):
			strEnc = format.ParseStringEncoding(strings.TrimPrefix(opt, "string="))
			if !strEnc.Valid() {
				return Block{}, fmt.Errorf("%w: field %s: unknown string encoding %q",
					errs.ErrMalformedSchema, f.Name, strings.TrimPrefix(opt, "string="))
			}
		case strings.HasPrefix(opt, "delta="):
			deltaType = format.ParsePrimitiveType(strings.TrimPrefix(opt, "delta="))
			if !deltaType.Valid() {
				return Block{}, fmt.Errorf("%w: field %s: unknown delta primitive %q",
					errs.ErrMalformedSchema, f.Name, strings.TrimPrefix(opt, "delta="))
			}
			hasDelta = true
		default:
			return Block{}, fmt.Errorf("%w: field %s: unknown tag option %q", errs.ErrMalformedSchema, f.Name, opt)
		}
	}

	if hasDelta && iframeOnly {
		return Block{}, fmt.Errorf("%w: field %s: delta= and iframeonly are exclusive", errs.ErrMalformedSchema, f.Name)
	}

	codec, prim, err := codecFromFieldType(f.Type, strEnc, char16, engine)
	if err != nil {
		return Block{}, fmt.Errorf("field %s: %w", f.Name, err)
	}

	b := Block{Index: index, PropertyName: name, Codec: codec}

	if iframeOnly {
		b.Compression = delta.NewIFrameOnly()
	} else if hasDelta {
		nd, err := delta.NewNumericDelta(prim, deltaType, engine)
		if err != nil {
			return Block{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		b.Compression = nd
	}

	return b, nil
}

// codecFromFieldType infers a block codec from a struct field type.
// The returned primitive is the numeric type, or PrimitiveInvalid for
// bytes and string blocks.
func codecFromFieldType(rt reflect.Type, strEnc format.StringEncoding, char16 bool, engine endian.EndianEngine) (block.Codec, format.PrimitiveType, error) {
	var prim format.PrimitiveType

	switch rt.Kind() {
	case reflect.Uint8:
		prim = format.PrimitiveUint8
	case reflect.Int8:
		prim = format.PrimitiveInt8
	case reflect.Bool:
		prim = format.PrimitiveBool
	case reflect.Uint16:
		if char16 {
			prim = format.PrimitiveChar16
		} else {
			prim = format.PrimitiveUint16
		}
	case reflect.Int16:
		prim = format.PrimitiveInt16
	case reflect.Int32:
		prim = format.PrimitiveInt32
	case reflect.Uint32:
		prim = format.PrimitiveUint32
	case reflect.Int64:
		prim = format.PrimitiveInt64
	case reflect.Uint64:
		prim = format.PrimitiveUint64
	case reflect.Float32:
		prim = format.PrimitiveFloat32
	case reflect.Float64:
		prim = format.PrimitiveFloat64
	case reflect.String:
		c, err := block.NewString(strEnc)
		return c, format.PrimitiveInvalid, err
	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			return block.NewBytes(), format.PrimitiveInvalid, nil
		}
		return nil, format.PrimitiveInvalid, fmt.Errorf("%w: slice type %s", errs.ErrUnsupportedType, rt)
	default:
		return nil, format.PrimitiveInvalid, fmt.Errorf("%w: field type %s", errs.ErrUnsupportedType, rt)
	}

	c, err := block.NewNumeric(prim, engine)

	return c, prim, err
}
