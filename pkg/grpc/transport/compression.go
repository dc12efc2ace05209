package transport

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"google.golang.org/grpc/encoding"

	"github.com/scalien/sdbp-go/pkg/transport"
)

// Compressors are registered with gRPC under the names of the matching
// transport.CompressionType so a client can pass the option straight through.
func init() {
	encoding.RegisterCompressor(gzipCompressor{})
	encoding.RegisterCompressor(snappyCompressor{})
	encoding.RegisterCompressor(newZstdCompressor())
	encoding.RegisterCompressor(lz4Compressor{})
}

type gzipCompressor struct{}

func (gzipCompressor) Name() string { return string(transport.CompressionGzip) }

func (gzipCompressor) Compress(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

func (gzipCompressor) Decompress(r io.Reader) (io.Reader, error) {
	return gzip.NewReader(r)
}

type snappyCompressor struct{}

func (snappyCompressor) Name() string { return string(transport.CompressionSnappy) }

func (snappyCompressor) Compress(w io.Writer) (io.WriteCloser, error) {
	return snappy.NewBufferedWriter(w), nil
}

func (snappyCompressor) Decompress(r io.Reader) (io.Reader, error) {
	return snappy.NewReader(r), nil
}

// zstdCompressor decodes whole messages with a shared decoder; streaming
// decoders own goroutines that would outlive the message.
type zstdCompressor struct {
	decoder *zstd.Decoder
}

func newZstdCompressor() *zstdCompressor {
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		panic(err)
	}
	return &zstdCompressor{decoder: decoder}
}

func (*zstdCompressor) Name() string { return string(transport.CompressionZstd) }

func (*zstdCompressor) Compress(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
}

func (c *zstdCompressor) Decompress(r io.Reader) (io.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	out, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(out), nil
}

type lz4Compressor struct{}

func (lz4Compressor) Name() string { return string(transport.CompressionLZ4) }

func (lz4Compressor) Compress(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

func (lz4Compressor) Decompress(r io.Reader) (io.Reader, error) {
	return lz4.NewReader(r), nil
}

// compressorName returns the registered compressor for c, or "" for none
func compressorName(c transport.CompressionType) string {
	if c == "" || c == transport.CompressionNone {
		return ""
	}
	return string(c)
}
