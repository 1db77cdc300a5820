// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

// fileExtensionBzip2 is the file extension for bzip2 files
const fileExtensionBzip2 = "bz2"

// decompressBzip2Stream returns an io.ReadCloser that decompresses src with bzip2 algorithm
func decompressBzip2Stream(src io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(src, nil)
}
