// Package format defines the wire-level type enumerations shared by the
// keyframe packages: primitive numeric types, string encodings, and
// container compression types.
package format

type (
	PrimitiveType   uint8
	StringEncoding  uint8
	CompressionType uint8
)

const (
	PrimitiveInvalid PrimitiveType = iota
	PrimitiveUint8
	PrimitiveInt8
	PrimitiveBool
	PrimitiveChar16 // unsigned 16-bit code unit
	PrimitiveInt16
	PrimitiveUint16
	PrimitiveInt32
	PrimitiveUint32
	PrimitiveInt64
	PrimitiveUint64
	PrimitiveFloat32
	PrimitiveFloat64
)

const (
	EncodingASCII StringEncoding = iota + 1
	EncodingLatin1
	EncodingUTF16LE
	EncodingUTF16BE
	EncodingUTF8
	EncodingUTF32LE
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// ByteLength returns the encoded width of the primitive in bytes,
// or 0 for an invalid primitive.
func (p PrimitiveType) ByteLength() int {
	switch p {
	case PrimitiveUint8, PrimitiveInt8, PrimitiveBool:
		return 1
	case PrimitiveChar16, PrimitiveInt16, PrimitiveUint16:
		return 2
	case PrimitiveInt32, PrimitiveUint32, PrimitiveFloat32:
		return 4
	case PrimitiveInt64, PrimitiveUint64, PrimitiveFloat64:
		return 8
	default:
		return 0
	}
}

// Signed reports whether the primitive uses two's-complement encoding.
func (p PrimitiveType) Signed() bool {
	switch p {
	case PrimitiveInt8, PrimitiveInt16, PrimitiveInt32, PrimitiveInt64:
		return true
	default:
		return false
	}
}

// Float reports whether the primitive is an IEEE-754 floating point type.
func (p PrimitiveType) Float() bool {
	return p == PrimitiveFloat32 || p == PrimitiveFloat64
}

// Valid reports whether the primitive is one of the supported types.
func (p PrimitiveType) Valid() bool {
	return p >= PrimitiveUint8 && p <= PrimitiveFloat64
}

// String returns the canonical spelling used in persisted schemas.
// Integer and float primitives use the Go type spelling; the 16-bit
// code unit type is spelled "char16".
func (p PrimitiveType) String() string {
	switch p {
	case PrimitiveUint8:
		return "uint8"
	case PrimitiveInt8:
		return "int8"
	case PrimitiveBool:
		return "bool"
	case PrimitiveChar16:
		return "char16"
	case PrimitiveInt16:
		return "int16"
	case PrimitiveUint16:
		return "uint16"
	case PrimitiveInt32:
		return "int32"
	case PrimitiveUint32:
		return "uint32"
	case PrimitiveInt64:
		return "int64"
	case PrimitiveUint64:
		return "uint64"
	case PrimitiveFloat32:
		return "float32"
	case PrimitiveFloat64:
		return "float64"
	default:
		return "invalid"
	}
}

// ParsePrimitiveType parses the canonical spelling produced by String.
// Returns PrimitiveInvalid for unknown spellings.
func ParsePrimitiveType(s string) PrimitiveType {
	switch s {
	case "uint8":
		return PrimitiveUint8
	case "int8":
		return PrimitiveInt8
	case "bool":
		return PrimitiveBool
	case "char16":
		return PrimitiveChar16
	case "int16":
		return PrimitiveInt16
	case "uint16":
		return PrimitiveUint16
	case "int32":
		return PrimitiveInt32
	case "uint32":
		return PrimitiveUint32
	case "int64":
		return PrimitiveInt64
	case "uint64":
		return PrimitiveUint64
	case "float32":
		return PrimitiveFloat32
	case "float64":
		return PrimitiveFloat64
	default:
		return PrimitiveInvalid
	}
}

// String returns the canonical spelling used in persisted schemas.
func (e StringEncoding) String() string {
	switch e {
	case EncodingASCII:
		return "ASCII"
	case EncodingLatin1:
		return "Latin1"
	case EncodingUTF16LE:
		return "UTF16LE"
	case EncodingUTF16BE:
		return "UTF16BE"
	case EncodingUTF8:
		return "UTF8"
	case EncodingUTF32LE:
		return "UTF32LE"
	default:
		return "Unknown"
	}
}

// ParseStringEncoding parses the canonical spelling produced by String.
// Returns 0 for unknown spellings.
func ParseStringEncoding(s string) StringEncoding {
	switch s {
	case "ASCII":
		return EncodingASCII
	case "Latin1":
		return EncodingLatin1
	case "UTF16LE":
		return EncodingUTF16LE
	case "UTF16BE":
		return EncodingUTF16BE
	case "UTF8":
		return EncodingUTF8
	case "UTF32LE":
		return EncodingUTF32LE
	default:
		return 0
	}
}

// Valid reports whether the encoding is one of the supported encodings.
func (e StringEncoding) Valid() bool {
	return e >= EncodingASCII && e <= EncodingUTF32LE
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
