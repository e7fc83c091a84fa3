// Package errs defines the sentinel error values shared across the
// keyframe packages.
//
// Callers can match these with errors.Is even when the returned error
// wraps a sentinel with additional context via fmt.Errorf("%w: ...").
package errs

import "errors"

// Codec errors.
var (
	// ErrUnsupportedType indicates a block or delta codec was asked to
	// handle a primitive type it does not support.
	ErrUnsupportedType = errors.New("unsupported primitive type")

	// ErrLengthMismatch indicates a codec produced a different number of
	// bytes than its declared byte length.
	ErrLengthMismatch = errors.New("encoded length mismatch")

	// ErrValueKindMismatch indicates a codec received a value whose kind
	// does not match the block's declared type.
	ErrValueKindMismatch = errors.New("value kind mismatch")

	// ErrInvalidEncoding indicates text data that cannot be represented
	// in the block's string encoding.
	ErrInvalidEncoding = errors.New("invalid text encoding")
)

// Schema errors.
var (
	// ErrDuplicateBlockIndex indicates two blocks share the same index.
	ErrDuplicateBlockIndex = errors.New("duplicate block index")

	// ErrDuplicatePropertyName indicates two blocks share the same property name.
	ErrDuplicatePropertyName = errors.New("duplicate property name")

	// ErrEmptyPropertyName indicates a block with an empty property name.
	ErrEmptyPropertyName = errors.New("empty property name")

	// ErrIncompatibleCompression indicates a delta codec whose original
	// primitive does not match the block's primitive type.
	ErrIncompatibleCompression = errors.New("incompatible compression for block")

	// ErrInvalidIFrameInterval indicates a stream compression interval below 2.
	ErrInvalidIFrameInterval = errors.New("i-frame interval must be at least 2")

	// ErrNoBlocks indicates a schema without any blocks.
	ErrNoBlocks = errors.New("schema has no blocks")

	// ErrPropertyBinding indicates a record property is missing or has
	// the wrong dynamic type during entry casting.
	ErrPropertyBinding = errors.New("property binding failure")

	// ErrEntryLengthMismatch indicates an entry whose value count does
	// not match the schema's block count.
	ErrEntryLengthMismatch = errors.New("entry length mismatch")
)

// Stream errors.
var (
	// ErrVersionMismatch indicates the stream's version byte was rejected
	// by the schema's version validator.
	ErrVersionMismatch = errors.New("schema version mismatch")

	// ErrCustomInfoLengthMismatch indicates caller-supplied custom header
	// bytes whose length differs from the schema's declared length.
	ErrCustomInfoLengthMismatch = errors.New("custom header length mismatch")

	// ErrEncoderFinished indicates a write after the encoder was closed.
	ErrEncoderFinished = errors.New("encoder already finished")
)

// Persistence errors.
var (
	// ErrMalformedSchema indicates schema JSON that cannot be parsed or
	// violates the schema invariants.
	ErrMalformedSchema = errors.New("malformed schema document")

	// ErrUnknownBlockKind indicates a block kind name that matches no
	// built-in kind and was not claimed by the caller's hook.
	ErrUnknownBlockKind = errors.New("unknown block kind")

	// ErrUnknownCompressionKind indicates a compression kind name that
	// matches no built-in kind and was not claimed by the caller's hook.
	ErrUnknownCompressionKind = errors.New("unknown compression kind")
)
