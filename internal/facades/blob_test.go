package facades

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGzipBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "image bytes", data: bytes.Repeat([]byte{0x89, 'P', 'N', 'G'}, 256)},
		{name: "empty", data: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := gzipBytes(tt.data)
			require.NoError(t, err)
			assert.NotEmpty(t, compressed)

			zr, err := gzip.NewReader(bytes.NewReader(compressed))
			require.NoError(t, err)
			defer zr.Close()

			got, err := io.ReadAll(zr)
			require.NoError(t, err)
			assert.Equal(t, tt.data, got)
		})
	}
}
