// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

const (
	// fileExtensionZstd is the file extension for zstandard files.
	fileExtensionZstd = "zst"

	// fileExtensionZstdLong is the alternative file extension for zstandard files.
	fileExtensionZstdLong = "zstd"
)

// decompressZstdStream returns an io.ReadCloser that decompresses src with zstandard algorithm.
// The decoder runs synchronously on the reading goroutine and keeps its buffers small.
func decompressZstdStream(src io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(src,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}
