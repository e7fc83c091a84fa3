package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/internal/options"
	"github.com/arloliu/keyframe/schema"
	"github.com/arloliu/keyframe/value"
)

// Decoder reads data entries from a byte source.
//
// The header is parsed on construction: the version byte selects a
// schema through the Selector (a single schema or a multi-version
// dispatcher), and the custom header region, if declared, is read and
// optionally handed to an inspection callback. Entries are then
// yielded lazily through Next or All.
//
// End-of-source handling mirrors the format's lack of an end marker:
// a short read mid-entry discards the partial entry and terminates
// iteration cleanly, so a truncated stream yields every whole entry
// it contains. Within a variable-length field the 0x00 terminator and
// end-of-source are indistinguishable stops: a stream ending inside
// the last entry's final variable-length field still completes that
// field with the bytes accumulated so far.
//
// The decoder is not safe for concurrent use and is not restartable;
// decoding again requires a new decoder over a repositioned source.
type Decoder struct {
	r        *bufio.Reader
	schema   *schema.Schema
	prev     schema.Entry
	scratch  []byte
	counter  int
	interval int
	validate bool
	infoFunc func([]byte)
	done     bool
	err      error
}

// DecoderOption configures a Decoder at construction time.
type DecoderOption = options.Option[*Decoder]

// WithoutVersionValidation disables the version check. The selector is
// still consulted to pick a schema; a version byte no schema accepts
// falls back to the selector's first schema instead of failing.
func WithoutVersionValidation() DecoderOption {
	return options.NoError(func(d *Decoder) {
		d.validate = false
	})
}

// WithCustomInfoFunc registers a callback invoked with the raw custom
// header bytes after the header is parsed. The slice is only valid for
// the duration of the call.
func WithCustomInfoFunc(fn func(info []byte)) DecoderOption {
	return options.NoError(func(d *Decoder) {
		d.infoFunc = fn
	})
}

// NewDecoder creates a decoder over the source and parses the stream
// header.
//
// sel is either a *schema.Schema or a *schema.MultiVersion. Returns
// errs.ErrVersionMismatch when version validation is enabled (the
// default) and no schema accepts the stream's version byte, and an
// I/O error when the source ends inside the header.
func NewDecoder(r io.Reader, sel schema.Selector, opts ...DecoderOption) (*Decoder, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	d := &Decoder{
		r:        br,
		validate: true,
	}

	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	version, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading stream version: %w", err)
	}

	sch, found := sel.Select(version)
	if !found {
		if d.validate {
			return nil, fmt.Errorf("%w: stream version %d", errs.ErrVersionMismatch, version)
		}
		sch, found = fallbackSchema(sel)
		if !found {
			return nil, fmt.Errorf("%w: stream version %d and no fallback schema", errs.ErrVersionMismatch, version)
		}
	}

	d.schema = sch
	d.interval = sch.IFrameInterval()

	if h := sch.CustomHeader(); h != nil && h.ByteLength > 0 {
		info := make([]byte, h.ByteLength)
		if _, err := io.ReadFull(br, info); err != nil {
			return nil, fmt.Errorf("reading custom header: %w", err)
		}
		if d.infoFunc != nil {
			d.infoFunc(info)
		}
	} else if h != nil && d.infoFunc != nil {
		d.infoFunc(nil)
	}

	return d, nil
}

// fallbackSchema returns the schema to use when validation is disabled
// and no schema accepted the version byte.
func fallbackSchema(sel schema.Selector) (*schema.Schema, bool) {
	switch s := sel.(type) {
	case *schema.Schema:
		return s, true
	case *schema.MultiVersion:
		return s.Schemas()[0], true
	default:
		return nil, false
	}
}

// Schema returns the schema selected by the stream's version byte.
func (d *Decoder) Schema() *schema.Schema { return d.schema }

// Next decodes and returns the next entry.
//
// Returns io.EOF at the clean end of the stream (end of source, or a
// short read that discarded a partial entry). Any other error is a
// decode failure surfaced from a block or delta codec, or a source
// I/O failure; such errors are sticky and terminate iteration.
func (d *Decoder) Next() (schema.Entry, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.done {
		return nil, io.EOF
	}

	entry, err := d.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			d.done = true
			return nil, io.EOF
		}
		d.err = err

		return nil, err
	}

	return entry, nil
}

// All returns an iterator over the remaining entries. Iteration stops
// at the clean end of the stream or on the first decode error; after
// iterating, Err reports the error, if any.
func (d *Decoder) All() iter.Seq[schema.Entry] {
	return func(yield func(schema.Entry) bool) {
		for {
			entry, err := d.Next()
			if err != nil {
				return
			}
			if !yield(entry) {
				return
			}
		}
	}
}

// Err returns the sticky decode error that terminated iteration, or
// nil when the stream ended cleanly (or has not ended yet).
func (d *Decoder) Err() error { return d.err }

func (d *Decoder) next() (schema.Entry, error) {
	// No end marker: end-of-source before the first byte of an entry is
	// the normal way a stream ends.
	if _, err := d.r.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, err
	}

	blocks := d.schema.Blocks()
	iFrame := d.interval == 0 || d.counter == 0
	entry := make(schema.Entry, len(blocks))

	for i, b := range blocks {
		v, err := d.readField(b, i, iFrame)
		if err != nil {
			return nil, err
		}
		entry[i] = v
	}

	d.prev = entry
	if d.interval > 0 {
		d.counter++
		if d.counter == d.interval {
			d.counter = 0
		}
	}

	return entry, nil
}

func (d *Decoder) readField(b schema.Block, i int, iFrame bool) (value.Value, error) {
	if !iFrame && b.Compression != nil {
		data, err := d.readN(b.Compression.PFrameByteLength())
		if err != nil {
			return value.Value{}, err
		}

		v, err := b.Compression.Decompress(d.prev[i], data)
		if err != nil {
			return value.Value{}, fmt.Errorf("block %q: %w", b.PropertyName, err)
		}

		return v, nil
	}

	var (
		data []byte
		err  error
	)
	if bl := b.Codec.ByteLength(); bl >= 0 {
		data, err = d.readN(bl)
	} else {
		data, err = d.readVariable()
	}
	if err != nil {
		return value.Value{}, err
	}

	v, err := b.Codec.Decode(data)
	if err != nil {
		return value.Value{}, fmt.Errorf("block %q: %w", b.PropertyName, err)
	}

	return v, nil
}

// readN reads exactly n bytes into the reused scratch buffer. A short
// read is reported as io.EOF: the partial entry is discarded and
// iteration ends cleanly.
func (d *Decoder) readN(n int) ([]byte, error) {
	if cap(d.scratch) < n {
		d.scratch = make([]byte, n)
	}
	buf := d.scratch[:n]

	if _, err := io.ReadFull(d.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}

		return nil, err
	}

	return buf, nil
}

// readVariable accumulates bytes until the 0x00 terminator, which is
// excluded from the payload. End-of-source is treated as a terminator:
// the two stops are indistinguishable at the field level.
func (d *Decoder) readVariable() ([]byte, error) {
	buf := d.scratch[:0]

	for {
		c, err := d.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, err
		}
		if c == terminator {
			break
		}
		buf = append(buf, c)
	}

	d.scratch = buf[:0]

	return buf, nil
}
