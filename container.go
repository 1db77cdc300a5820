// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"fmt"
	"io"
)

// container reads the entries of an archive structure on top of a decompressed stream.
type container interface {
	// restartable returns true if walk can be called again after an iteration
	// started, without reading the source a second time.
	restartable() bool

	// walk starts a new iteration over all entries. Only the walker returned by
	// the latest call is valid.
	walk() (walker, error)

	// inputSize returns the number of bytes consumed from the source
	inputSize() int64

	Close() error
}

// walker iterates the entries of a container in archive order.
type walker interface {
	// next returns the next entry or io.EOF
	next() (*Entry, error)

	// open returns the content of the entry last returned by next
	open() (io.ReadCloser, error)
}

// indexedContainer is implemented by containers that locate entries by name
// without scanning.
type indexedContainer interface {
	seek(name string) (walker, *Entry, error)
}

// newContainer returns the container reader for f on src.
func newContainer(f Format, src *source, cfg *Config) (container, error) {
	switch f.Container {
	case ContainerTar:
		return newTarContainer(src, f.Compression, cfg)
	case ContainerZip:
		return newZipContainer(src, cfg)
	default:
		return nil, fmt.Errorf("%w: %s is not an archive format", ErrUnrecognizedFormat, f)
	}
}

// seekEntry returns a walker positioned at the entry called name.
func seekEntry(c container, name string) (walker, *Entry, error) {
	if ic, ok := c.(indexedContainer); ok {
		return ic.seek(name)
	}

	w, err := c.walk()
	if err != nil {
		return nil, nil, err
	}
	for {
		e, err := w.next()
		if err == io.EOF {
			return nil, nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
		}
		if err != nil {
			return nil, nil, err
		}
		if e.Name() == name {
			return w, e, nil
		}
	}
}
