// Package stream implements the keyframe encode/decode state machine
// over byte sinks and sources.
//
// Stream layout:
//
//	[version: 1 byte]
//	[custom_info: CustomHeader.ByteLength bytes]  (only if the schema declares one)
//	[entry_0][entry_1]...[entry_k]
//
// There is no terminator after the last entry; end of the source
// terminates reading. Within an entry, fixed-width blocks occupy
// exactly their byte length, variable-width blocks are followed by a
// one-byte 0x00 terminator, and - in P-frame entries - blocks with a
// delta codec occupy exactly the codec's P-frame byte length.
//
// All multi-byte values are little-endian.
package stream

import (
	"fmt"
	"io"

	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/internal/options"
	"github.com/arloliu/keyframe/internal/pool"
	"github.com/arloliu/keyframe/schema"
	"github.com/arloliu/keyframe/value"
)

// terminator ends each variable-length field payload. Payloads
// containing an embedded 0x00 byte will not round-trip; the format
// does not escape.
const terminator = 0x00

// Encoder writes data entries to a byte sink in the keyframe format.
//
// The encoder borrows its schema for its lifetime and owns the sink
// exclusively. It is not safe for concurrent use; callers must
// serialize access.
//
// The stream header (version byte plus custom header region) is
// written on construction, so an encoder that never sees an entry
// still produces a valid, empty stream.
type Encoder struct {
	w      io.Writer
	schema *schema.Schema
	buf    *pool.ByteBuffer
	prev   schema.Entry
	// counter is the position within the current cadence window;
	// 0 means the next entry is an I-frame.
	counter int
	// interval is the I-frame cadence; 0 means no stream compression
	// and every entry is an I-frame.
	interval   int
	customInfo []byte
	finished   bool
}

// EncoderOption configures an Encoder at construction time.
type EncoderOption = options.Option[*Encoder]

// WithCustomInfo replaces the schema's default custom header content.
// The byte length must equal the schema's declared custom header
// length; a schema without a custom header accepts no info bytes.
func WithCustomInfo(info []byte) EncoderOption {
	return options.New(func(e *Encoder) error {
		declared := 0
		if h := e.schema.CustomHeader(); h != nil {
			declared = h.ByteLength
		}
		if len(info) != declared {
			return fmt.Errorf("%w: schema declares %d bytes, got %d",
				errs.ErrCustomInfoLengthMismatch, declared, len(info))
		}

		cloned := make([]byte, len(info))
		copy(cloned, info)
		e.customInfo = cloned

		return nil
	})
}

// NewEncoder creates an encoder over the sink and writes the stream
// header immediately.
//
// Returns the sink's error if the header write fails.
func NewEncoder(w io.Writer, s *schema.Schema, opts ...EncoderOption) (*Encoder, error) {
	e := &Encoder{
		w:        w,
		schema:   s,
		buf:      pool.GetStreamBuffer(),
		interval: s.IFrameInterval(),
	}

	if h := s.CustomHeader(); h != nil {
		e.customInfo = h.Info
	}

	if err := options.Apply(e, opts...); err != nil {
		pool.PutStreamBuffer(e.buf)
		return nil, err
	}

	if err := e.writeHeader(); err != nil {
		pool.PutStreamBuffer(e.buf)
		return nil, err
	}

	return e, nil
}

func (e *Encoder) writeHeader() error {
	e.buf.Reset()
	e.buf.MustWrite([]byte{e.schema.Version()})
	e.buf.MustWrite(e.customInfo)

	_, err := e.buf.WriteTo(e.w)

	return err
}

// Write encodes one entry and writes it to the sink.
//
// The entry is staged in a scratch buffer and flushed with a single
// sink write, so a failing codec never leaves a partial entry in the
// sink. A failing sink write can still truncate the stream mid-entry;
// the format has no transactional semantics and partial writes are not
// rolled back.
func (e *Encoder) Write(entry schema.Entry) error {
	if e.finished {
		return errs.ErrEncoderFinished
	}

	blocks := e.schema.Blocks()
	if len(entry) != len(blocks) {
		return fmt.Errorf("%w: schema has %d blocks, entry has %d values",
			errs.ErrEntryLengthMismatch, len(blocks), len(entry))
	}

	iFrame := e.interval == 0 || e.counter == 0

	e.buf.Reset()
	for i, b := range blocks {
		var err error
		if !iFrame && b.Compression != nil {
			err = e.stageCompressed(b, e.prev[i], entry[i])
		} else {
			err = e.stageFull(b, entry[i])
		}
		if err != nil {
			return err
		}
	}

	if _, err := e.buf.WriteTo(e.w); err != nil {
		return err
	}

	e.advance(entry)

	return nil
}

// WriteAll encodes a sequence of entries in order.
func (e *Encoder) WriteAll(entries []schema.Entry) error {
	for _, entry := range entries {
		if err := e.Write(entry); err != nil {
			return err
		}
	}

	return nil
}

// WriteRecord casts a record through the schema's property binding and
// writes the resulting entry.
func (e *Encoder) WriteRecord(rec any) error {
	entry, err := e.schema.CastToEntry(rec)
	if err != nil {
		return err
	}

	return e.Write(entry)
}

// stageFull appends a field's I-frame representation: the block
// codec's bytes, plus the terminator for variable-width blocks.
func (e *Encoder) stageFull(b schema.Block, v value.Value) error {
	data, err := b.Codec.Encode(v)
	if err != nil {
		return fmt.Errorf("block %q: %w", b.PropertyName, err)
	}

	if bl := b.Codec.ByteLength(); bl >= 0 {
		if len(data) != bl {
			return fmt.Errorf("%w: block %q declared %d bytes, codec produced %d",
				errs.ErrLengthMismatch, b.PropertyName, bl, len(data))
		}
		e.buf.MustWrite(data)

		return nil
	}

	e.buf.MustWrite(data)
	_ = e.buf.WriteByte(terminator)

	return nil
}

// stageCompressed appends a field's P-frame representation.
func (e *Encoder) stageCompressed(b schema.Block, prev, curr value.Value) error {
	data, err := b.Compression.Compress(prev, curr)
	if err != nil {
		return fmt.Errorf("block %q: %w", b.PropertyName, err)
	}

	if want := b.Compression.PFrameByteLength(); len(data) != want {
		return fmt.Errorf("%w: block %q compression declared %d bytes, codec produced %d",
			errs.ErrLengthMismatch, b.PropertyName, want, len(data))
	}

	e.buf.MustWrite(data)

	return nil
}

// advance updates the I-frame counter and retains the entry for
// P-frame differencing. Values are immutable, so retaining only needs
// a shallow copy of the slice.
func (e *Encoder) advance(entry schema.Entry) {
	e.prev = append(e.prev[:0], entry...)

	if e.interval > 0 {
		e.counter++
		if e.counter == e.interval {
			e.counter = 0
		}
	}
}

// Finish releases the encoder's scratch buffer. Subsequent writes
// return ErrEncoderFinished. The sink is not closed; the caller owns
// it and is responsible for flushing or closing it.
func (e *Encoder) Finish() {
	if e.finished {
		return
	}
	e.finished = true
	pool.PutStreamBuffer(e.buf)
	e.buf = nil
}
