package transport

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"

	"github.com/scalien/sdbp-go/pkg/transport"
)

func TestCompressorsRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat(`{"key":"user:0001","value":"alice"},`, 200))

	for _, c := range []transport.CompressionType{
		transport.CompressionGzip,
		transport.CompressionSnappy,
		transport.CompressionZstd,
		transport.CompressionLZ4,
	} {
		t.Run(string(c), func(t *testing.T) {
			compressor := encoding.GetCompressor(compressorName(c))
			require.NotNil(t, compressor)

			var buf bytes.Buffer
			w, err := compressor.Compress(&buf)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			assert.Less(t, buf.Len(), len(payload))

			r, err := compressor.Decompress(&buf)
			require.NoError(t, err)
			out, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, out)
		})
	}

	assert.Empty(t, compressorName(transport.CompressionNone))
	assert.Empty(t, compressorName(""))
}

func TestPoolPick(t *testing.T) {
	pool := &connectionPool{}
	_, err := pool.pick([]byte("x"))
	assert.ErrorIs(t, err, ErrPoolClosed)

	pool.conns = []*GRPCConnection{{address: "a"}, {address: "b"}, {address: "c"}}
	first, err := pool.pick([]byte("payload"))
	require.NoError(t, err)
	again, err := pool.pick([]byte("payload"))
	require.NoError(t, err)
	assert.Same(t, first, again)
}
