// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

const (
	// fileExtensionGZip is the file extension for gzip files.
	fileExtensionGZip = "gz"

	// fileExtensionTarGZip is the file extension for tgz files, which are tar archives compressed with gzip.
	fileExtensionTarGZip = "tgz"
)

// decompressGZipStream returns an io.ReadCloser that decompresses src with gzip algorithm.
// The gzip header is read immediately.
func decompressGZipStream(src io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(src)
}
