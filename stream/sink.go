package stream

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/keyframe/internal/pool"
)

// Buffer is an in-memory byte sink and source backed by a pooled
// buffer. Writes append; reads consume from an independent cursor, so
// a Buffer filled by an Encoder can be handed directly to a Decoder.
type Buffer struct {
	bb  *pool.ByteBuffer
	off int
	// pooled buffers (NewBuffer) go back to the pool on Release;
	// wrapping buffers (NewBufferWith) do not own their bytes.
	pooled bool
}

// NewBuffer creates an empty in-memory buffer.
func NewBuffer() *Buffer {
	return &Buffer{bb: pool.GetStreamBuffer(), pooled: true}
}

// NewBufferWith creates a buffer reading from existing bytes, starting
// at the given offset. The data is not copied.
func NewBufferWith(data []byte, offset int) *Buffer {
	if offset < 0 || offset > len(data) {
		offset = len(data)
	}

	return &Buffer{bb: &pool.ByteBuffer{B: data}, off: offset}
}

// Write appends data to the buffer. It never fails.
func (b *Buffer) Write(data []byte) (int, error) {
	return b.bb.Write(data)
}

// Read consumes bytes from the read cursor. Returns io.EOF when the
// cursor reaches the end of the written data.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.off >= b.bb.Len() {
		return 0, io.EOF
	}

	n := copy(p, b.bb.B[b.off:])
	b.off += n

	return n, nil
}

// Bytes returns the full written content, regardless of the read
// cursor. The slice aliases the buffer; callers must not modify it.
func (b *Buffer) Bytes() []byte { return b.bb.Bytes() }

// Len returns the number of bytes written.
func (b *Buffer) Len() int { return b.bb.Len() }

// Position returns the read cursor's offset.
func (b *Buffer) Position() int { return b.off }

// Rewind moves the read cursor back to the given offset.
func (b *Buffer) Rewind(offset int) {
	if offset < 0 {
		offset = 0
	}
	if offset > b.bb.Len() {
		offset = b.bb.Len()
	}
	b.off = offset
}

// Release returns the backing buffer to the pool. The Buffer must not
// be used afterwards. Buffers created with NewBufferWith do not own
// their bytes and are not pooled.
func (b *Buffer) Release() {
	if b.bb == nil {
		return
	}
	if b.pooled {
		pool.PutStreamBuffer(b.bb)
	}
	b.bb = nil
}

// FileSink is a buffered byte sink over an OS file. Closing flushes;
// a sink abandoned without Close loses buffered bytes, matching the
// scoped-acquisition contract of stream-backed sinks.
type FileSink struct {
	f       *os.File
	w       *bufio.Writer
	written int64
}

// CreateFileSink creates (or truncates) the file at path and returns a
// buffered sink over it.
func CreateFileSink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating sink file: %w", err)
	}

	return &FileSink{f: f, w: bufio.NewWriter(f)}, nil
}

// Write appends data to the file through the sink's buffer.
func (s *FileSink) Write(data []byte) (int, error) {
	n, err := s.w.Write(data)
	s.written += int64(n)

	return n, err
}

// Position returns the number of bytes written through the sink,
// including bytes still in the buffer.
func (s *FileSink) Position() int64 { return s.written }

// Close flushes buffered bytes and closes the file.
func (s *FileSink) Close() error {
	flushErr := s.w.Flush()
	closeErr := s.f.Close()
	if flushErr != nil {
		return flushErr
	}

	return closeErr
}

// FileSource is a buffered byte source over an OS file.
type FileSource struct {
	f *os.File
	r *bufio.Reader
}

// OpenFileSource opens the file at path for reading.
func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source file: %w", err)
	}

	return &FileSource{f: f, r: bufio.NewReader(f)}, nil
}

// Read consumes bytes from the file.
func (s *FileSource) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// Position returns the read offset within the file, accounting for
// bytes buffered but not yet consumed.
func (s *FileSource) Position() (int64, error) {
	pos, err := s.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	return pos - int64(s.r.Buffered()), nil
}

// SeekStart repositions the source at the given offset from the start
// of the file and discards buffered bytes. Decoding is strictly
// sequential, so repositioning is only useful for handing the source
// to a fresh Decoder.
func (s *FileSource) SeekStart(offset int64) error {
	if _, err := s.f.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	s.r.Reset(s.f)

	return nil
}

// Close closes the file.
func (s *FileSource) Close() error {
	return s.f.Close()
}
