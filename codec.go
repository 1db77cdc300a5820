// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"fmt"
	"io"
)

// decompressor wraps src and returns a stream with the decompressed content of src.
type decompressor func(src io.Reader) (io.ReadCloser, error)

// decompressors holds the codec adapter for each supported compression.
var decompressors = map[Compression]decompressor{
	CompressionNone:  decompressIdentity,
	CompressionGzip:  decompressGZipStream,
	CompressionXz:    decompressXzStream,
	CompressionBzip2: decompressBzip2Stream,
	CompressionZstd:  decompressZstdStream,
}

// newDecompressor returns the decompressed stream of src. Decoders that inspect
// their input eagerly fail here, every other corruption surfaces as [ErrCodec]
// on the read that hits it.
func newDecompressor(c Compression, src io.Reader) (io.ReadCloser, error) {
	dec, ok := decompressors[c]
	if !ok {
		return nil, fmt.Errorf("%w: no decompressor for %q", ErrUnrecognizedFormat, c)
	}
	if c == CompressionNone {
		return dec(src)
	}
	rc, err := dec(src)
	if err != nil {
		return nil, codecError(fmt.Errorf("cannot start %s decompression: %w", c, err))
	}
	return &codecReader{rc: rc}, nil
}

// decompressIdentity passes src through unchanged.
func decompressIdentity(src io.Reader) (io.ReadCloser, error) {
	return &noopReaderCloser{src}, nil
}

// codecReader marks every failure of the underlying decoder as [ErrCodec].
type codecReader struct {
	rc io.ReadCloser
}

// Read reads decompressed data into p.
func (c *codecReader) Read(p []byte) (int, error) {
	n, err := c.rc.Read(p)
	if err != nil && err != io.EOF {
		err = codecError(err)
	}
	return n, err
}

// Close releases the decoder state.
func (c *codecReader) Close() error {
	return c.rc.Close()
}
