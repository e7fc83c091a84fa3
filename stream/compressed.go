package stream

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/keyframe/compress"
	"github.com/arloliu/keyframe/format"
	"github.com/arloliu/keyframe/internal/pool"
)

// CompressedSink wraps a sink so the complete encoded stream is stored
// compressed. The wire format itself is unchanged: compression is an
// outer container applied when the sink is closed, mirrored by
// NewCompressedSource on the read side.
//
// Bytes are buffered until Close, which compresses the whole stream
// and writes it to the underlying sink in one shot. The block-oriented
// codecs (S2, LZ4, Zstd) need the full payload, so incremental
// compression is not attempted.
type CompressedSink struct {
	w      io.Writer
	codec  compress.Codec
	buf    *pool.ByteBuffer
	closed bool
}

// NewCompressedSink creates a compressing sink over w using the given
// container compression type.
func NewCompressedSink(w io.Writer, typ format.CompressionType) (*CompressedSink, error) {
	codec, err := compress.CreateCodec(typ, "container")
	if err != nil {
		return nil, err
	}

	return &CompressedSink{w: w, codec: codec, buf: pool.GetStreamBuffer()}, nil
}

// Write buffers stream bytes for compression at Close.
func (s *CompressedSink) Write(data []byte) (int, error) {
	if s.closed {
		return 0, fmt.Errorf("write to closed compressed sink")
	}

	return s.buf.Write(data)
}

// Close compresses the buffered stream, writes it to the underlying
// sink, and releases the buffer. The underlying sink is not closed.
func (s *CompressedSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	compressed, err := s.codec.Compress(s.buf.Bytes())
	if err == nil {
		_, err = s.w.Write(compressed)
	}

	pool.PutStreamBuffer(s.buf)
	s.buf = nil

	return err
}

// NewCompressedSource reads the complete compressed container from r,
// decompresses it, and returns a source serving the original stream
// bytes. The inverse of CompressedSink.
func NewCompressedSource(r io.Reader, typ format.CompressionType) (io.Reader, error) {
	codec, err := compress.CreateCodec(typ, "container")
	if err != nil {
		return nil, err
	}

	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading compressed container: %w", err)
	}

	data, err := codec.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("decompressing container: %w", err)
	}

	return bytes.NewReader(data), nil
}
