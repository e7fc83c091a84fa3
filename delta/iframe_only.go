package delta

import (
	"fmt"

	"github.com/arloliu/keyframe/errs"
	"github.com/arloliu/keyframe/value"
)

// IFrameOnly carries a field forward verbatim through P-frames: the
// field is written only in I-frame entries and contributes zero bytes
// to every P-frame.
//
// Any block kind can use it, including variable-length blocks.
type IFrameOnly struct{}

// NewIFrameOnly creates a carry-forward delta codec.
func NewIFrameOnly() *IFrameOnly { return &IFrameOnly{} }

func (c *IFrameOnly) Kind() string            { return KindIFrameOnly }
func (c *IFrameOnly) PFrameByteLength() int   { return 0 }
func (c *IFrameOnly) CustomPayload() []string { return []string{} }

// Compress produces zero bytes; the current value is discarded.
func (c *IFrameOnly) Compress(_, _ value.Value) ([]byte, error) {
	return nil, nil
}

// Decompress returns the previous entry's value unchanged.
func (c *IFrameOnly) Decompress(prev value.Value, data []byte) (value.Value, error) {
	if len(data) != 0 {
		return value.Value{}, fmt.Errorf("%w: IFrameOnly expects no p-frame bytes, got %d", errs.ErrLengthMismatch, len(data))
	}

	return prev, nil
}
