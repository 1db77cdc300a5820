// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that the source path or URL does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrUnrecognizedFormat indicates that the source name has no suffix known to the
	// resolver. Formats that are disabled in the [Config] yield the same error.
	ErrUnrecognizedFormat = errors.New("unrecognized archive format")

	// ErrTransport indicates a failure while fetching a remote archive.
	ErrTransport = errors.New("transport error")

	// ErrCodec indicates corrupt or truncated compressed data.
	ErrCodec = errors.New("codec error")

	// ErrContainer indicates a malformed or truncated container structure.
	ErrContainer = errors.New("container error")

	// ErrPathTraversal indicates an entry whose path would escape the destination root.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrIO indicates a filesystem failure during unpack.
	ErrIO = errors.New("i/o error")

	// ErrAlreadyConsumed is returned when a single-pass source is iterated a second time.
	ErrAlreadyConsumed = errors.New("archive stream already consumed")

	// ErrEntryNotFound is returned if the requested entry is not part of the archive.
	ErrEntryNotFound = errors.New("entry not found in archive")

	// ErrUnsupportedEntry is returned for devices, fifos and other special entries,
	// and for symlinks if symlink extraction is denied.
	ErrUnsupportedEntry = errors.New("unsupported entry type")

	// ErrMaxFilesExceeded indicates that the maximum number of entries is exceeded.
	ErrMaxFilesExceeded = errors.New("maximum files exceeded")

	// ErrMaxExtractionSizeExceeded indicates that the maximum extraction size is exceeded.
	ErrMaxExtractionSizeExceeded = errors.New("maximum extraction size exceeded")

	// ErrMaxInputSizeExceeded indicates that the maximum input size is exceeded.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")

	// ErrClosed is returned when an archive is used after Close.
	ErrClosed = errors.New("archive is closed")
)

// codecError wraps err as an [ErrCodec] unless it already is one.
func codecError(err error) error {
	if err == nil || errors.Is(err, ErrCodec) || errors.Is(err, ErrMaxInputSizeExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCodec, err)
}

// containerError wraps err as an [ErrContainer], keeping codec and limit errors as they are.
func containerError(err error) error {
	if err == nil || errors.Is(err, ErrContainer) || errors.Is(err, ErrCodec) || errors.Is(err, ErrMaxInputSizeExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrContainer, err)
}

// ioError wraps err as an [ErrIO] unless it carries a more specific sentinel.
func ioError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrIO),
		errors.Is(err, ErrPathTraversal),
		errors.Is(err, ErrCodec),
		errors.Is(err, ErrContainer),
		errors.Is(err, ErrMaxExtractionSizeExceeded),
		errors.Is(err, ErrMaxInputSizeExceeded):
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
