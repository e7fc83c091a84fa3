// Package value provides the tagged union over the primitive types a
// data entry field can hold: the numeric primitives, raw byte
// sequences, and text.
//
// A Value is immutable once constructed. Numeric values are stored as a
// 64-bit widened bit pattern (two's-complement sign-extension for
// signed integers, IEEE-754 bits for floats), which lets block and
// delta codecs operate on a single representation regardless of width.
package value

import (
	"fmt"
	"math"

	"github.com/arloliu/keyframe/format"
)

// Kind discriminates the union.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUint8
	KindInt8
	KindBool
	KindChar16
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindBytes
	KindString
)

// String returns a human-readable kind name for diagnostics.
func (k Kind) String() string {
	if k >= KindUint8 && k <= KindFloat64 {
		return format.PrimitiveType(k).String()
	}

	switch k {
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Primitive returns the numeric primitive type for a numeric kind, or
// PrimitiveInvalid for bytes, string, and invalid kinds.
//
// Kind and format.PrimitiveType share ordinals for the numeric range,
// so the conversion is a cast guarded by a range check.
func (k Kind) Primitive() format.PrimitiveType {
	if k >= KindUint8 && k <= KindFloat64 {
		return format.PrimitiveType(k)
	}

	return format.PrimitiveInvalid
}

// KindOf returns the value kind matching a numeric primitive type.
func KindOf(p format.PrimitiveType) Kind {
	if p.Valid() {
		return Kind(p)
	}

	return KindInvalid
}

// Value is one field of a data entry.
//
// The zero Value has KindInvalid and is returned by failed lookups;
// codecs reject it with an error rather than encoding garbage.
type Value struct {
	kind Kind
	bits uint64
	str  string
	raw  []byte
}

// Numeric constructors.

func Uint8(v uint8) Value   { return Value{kind: KindUint8, bits: uint64(v)} }
func Int8(v int8) Value     { return Value{kind: KindInt8, bits: uint64(int64(v))} }
func Char16(v uint16) Value { return Value{kind: KindChar16, bits: uint64(v)} }

func Bool(v bool) Value {
	var bits uint64
	if v {
		bits = 1
	}

	return Value{kind: KindBool, bits: bits}
}

func Int16(v int16) Value   { return Value{kind: KindInt16, bits: uint64(int64(v))} }
func Uint16(v uint16) Value { return Value{kind: KindUint16, bits: uint64(v)} }
func Int32(v int32) Value   { return Value{kind: KindInt32, bits: uint64(int64(v))} }
func Uint32(v uint32) Value { return Value{kind: KindUint32, bits: uint64(v)} }
func Int64(v int64) Value   { return Value{kind: KindInt64, bits: uint64(v)} }
func Uint64(v uint64) Value { return Value{kind: KindUint64, bits: v} }

func Float32(v float32) Value {
	return Value{kind: KindFloat32, bits: uint64(math.Float32bits(v))}
}

func Float64(v float64) Value {
	return Value{kind: KindFloat64, bits: math.Float64bits(v)}
}

// Bytes constructs a raw byte sequence value. The slice is not copied;
// callers must not mutate it after construction.
func Bytes(v []byte) Value { return Value{kind: KindBytes, raw: v} }

// String constructs a text value. The associated wire encoding lives on
// the schema block, not on the value.
func String(v string) Value { return Value{kind: KindString, str: v} }

// FromBits reconstructs a numeric value from a truncated wire-width bit
// pattern, widening it to the 64-bit internal representation
// (sign-extending signed integers).
func FromBits(p format.PrimitiveType, bits uint64) Value {
	if !p.Valid() {
		return Value{}
	}

	widened := WidenBits(p, bits)
	if p == format.PrimitiveBool && widened != 0 {
		// nonzero wire bytes all mean true; normalize so decoded
		// values compare equal to constructed ones
		widened = 1
	}

	return Value{kind: KindOf(p), bits: widened}
}

// WidenBits widens a wire-width bit pattern to the internal 64-bit
// representation for the given primitive.
func WidenBits(p format.PrimitiveType, bits uint64) uint64 {
	width := p.ByteLength() * 8
	if width >= 64 {
		return bits
	}

	mask := (uint64(1) << width) - 1
	bits &= mask

	if p.Signed() && bits&(uint64(1)<<(width-1)) != 0 {
		bits |= ^mask // sign-extend
	}

	return bits
}

// TruncateBits narrows a 64-bit internal pattern to the wire width of
// the given primitive. Two's-complement truncation, so it is the exact
// inverse of WidenBits for in-range values and wraps otherwise.
func TruncateBits(p format.PrimitiveType, bits uint64) uint64 {
	width := p.ByteLength() * 8
	if width >= 64 {
		return bits
	}

	return bits & ((uint64(1) << width) - 1)
}

// Kind returns the union discriminator.
func (v Value) Kind() Kind { return v.kind }

// IsNumeric reports whether the value holds one of the numeric primitives.
func (v Value) IsNumeric() bool { return v.kind >= KindUint8 && v.kind <= KindFloat64 }

// Bits returns the widened 64-bit pattern of a numeric value.
// The second return is false for bytes, string, and invalid values.
func (v Value) Bits() (uint64, bool) {
	if !v.IsNumeric() {
		return 0, false
	}

	return v.bits, true
}

// Typed accessors. Each returns false when the value holds a different kind.

func (v Value) Uint8() (uint8, bool)   { return uint8(v.bits), v.kind == KindUint8 }
func (v Value) Int8() (int8, bool)     { return int8(v.bits), v.kind == KindInt8 }
func (v Value) Bool() (bool, bool)     { return v.bits != 0, v.kind == KindBool }
func (v Value) Char16() (uint16, bool) { return uint16(v.bits), v.kind == KindChar16 }
func (v Value) Int16() (int16, bool)   { return int16(v.bits), v.kind == KindInt16 }
func (v Value) Uint16() (uint16, bool) { return uint16(v.bits), v.kind == KindUint16 }
func (v Value) Int32() (int32, bool)   { return int32(v.bits), v.kind == KindInt32 }
func (v Value) Uint32() (uint32, bool) { return uint32(v.bits), v.kind == KindUint32 }
func (v Value) Int64() (int64, bool)   { return int64(v.bits), v.kind == KindInt64 }
func (v Value) Uint64() (uint64, bool) { return v.bits, v.kind == KindUint64 }

func (v Value) Float32() (float32, bool) {
	return math.Float32frombits(uint32(v.bits)), v.kind == KindFloat32
}

func (v Value) Float64() (float64, bool) {
	return math.Float64frombits(v.bits), v.kind == KindFloat64
}

func (v Value) BytesValue() ([]byte, bool) { return v.raw, v.kind == KindBytes }
func (v Value) StringValue() (string, bool) { return v.str, v.kind == KindString }

// Equal reports deep equality of two values, comparing byte payloads
// element-wise.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindBytes:
		if len(v.raw) != len(o.raw) {
			return false
		}
		for i := range v.raw {
			if v.raw[i] != o.raw[i] {
				return false
			}
		}

		return true
	case KindString:
		return v.str == o.str
	default:
		return v.bits == o.bits
	}
}

// String renders the value for diagnostics and test failure messages.
func (v Value) String() string {
	switch v.kind {
	case KindInvalid:
		return "<invalid>"
	case KindBytes:
		return fmt.Sprintf("bytes(%x)", v.raw)
	case KindString:
		return fmt.Sprintf("string(%q)", v.str)
	case KindBool:
		return fmt.Sprintf("bool(%t)", v.bits != 0)
	case KindFloat32:
		return fmt.Sprintf("float32(%g)", math.Float32frombits(uint32(v.bits)))
	case KindFloat64:
		return fmt.Sprintf("float64(%g)", math.Float64frombits(v.bits))
	default:
		if v.kind.Primitive().Signed() {
			return fmt.Sprintf("%s(%d)", v.kind, int64(v.bits))
		}

		return fmt.Sprintf("%s(%d)", v.kind, v.bits)
	}
}
