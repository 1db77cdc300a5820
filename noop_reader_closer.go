// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import "io"

// noopReaderCloser is a struct that implements the io.ReadCloser interface with a no-op Close method.
// It is used where the lifetime of the reader is owned by someone else, e.g. the content of
// a tar entry, which belongs to the tar stream.
type noopReaderCloser struct {
	io.Reader
}

// Close is a no-op method that satisfies the io.Closer interface.
func (n *noopReaderCloser) Close() error {
	return nil
}
