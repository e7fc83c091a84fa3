package compress

// ZstdCompressor provides Zstandard compression for encoded streams.
//
// Best suited when compression ratio matters more than speed: archival
// of record streams, long-term retention, bandwidth-limited transport.
//
// Two implementations are selected at build time: a cgo binding
// (valyala/gozstd) when cgo is available, and a pure-Go fallback
// (klauspost/compress/zstd) otherwise. The wire formats are
// interchangeable.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
