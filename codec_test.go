// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDecompressor_Identity(t *testing.T) {
	rc, err := newDecompressor(CompressionNone, strings.NewReader("plain"))
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "plain", string(data))
}

func TestNewDecompressor_Unknown(t *testing.T) {
	_, err := newDecompressor(Compression(42), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnrecognizedFormat)
}

func TestNewDecompressor_Gzip(t *testing.T) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(strings.Repeat("gzip content ", 1024)))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	compressed := buf.Bytes()

	t.Run("valid", func(t *testing.T) {
		rc, err := newDecompressor(CompressionGzip, bytes.NewReader(compressed))
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("gzip content ", 1024), string(data))
	})

	t.Run("invalid header", func(t *testing.T) {
		_, err := newDecompressor(CompressionGzip, strings.NewReader("not gzip data"))
		assert.ErrorIs(t, err, ErrCodec)
	})

	t.Run("truncated", func(t *testing.T) {
		rc, err := newDecompressor(CompressionGzip, bytes.NewReader(compressed[:len(compressed)/2]))
		require.NoError(t, err)
		defer rc.Close()
		_, err = io.ReadAll(rc)
		assert.ErrorIs(t, err, ErrCodec)
	})
}

func TestNewDecompressor_Zstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll([]byte("zstd content"), nil)
	require.NoError(t, enc.Close())

	rc, err := newDecompressor(CompressionZstd, bytes.NewReader(compressed))
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "zstd content", string(data))

	// zstd validates lazily, corruption surfaces on read
	rc, err = newDecompressor(CompressionZstd, strings.NewReader("not zstd data"))
	if err == nil {
		defer rc.Close()
		_, err = io.ReadAll(rc)
	}
	assert.ErrorIs(t, err, ErrCodec)
}
