// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// source is the byte stream an archive is read from. File sources can be
// rewound, stream sources are read once.
type source struct {
	name string

	// file is set for sources on the local filesystem
	file *os.File
	size int64

	// stream is set for sources that are read once
	stream   io.Reader
	consumed bool

	// staging is removed on close, if set
	staging string
}

// openFileSource opens the file at path. A missing file fails with [ErrNotFound].
func openFileSource(path string) (*source, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s: %w", ErrIO, path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: cannot stat %s: %w", ErrIO, path, err)
	}
	if stat.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrIO, path)
	}

	return &source{name: path, file: f, size: stat.Size()}, nil
}

// streamSource wraps r, which can be read exactly once.
func streamSource(r io.Reader, name string) *source {
	return &source{name: name, stream: r, size: -1}
}

// rewindable returns true if reader can be called more than once.
func (s *source) rewindable() bool {
	return s.file != nil
}

// reader returns the content of the source from the beginning.
func (s *source) reader() (io.Reader, error) {
	if s.file != nil {
		if _, err := s.file.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w: cannot rewind %s: %w", ErrIO, s.name, err)
		}
		return s.file, nil
	}
	if s.consumed {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyConsumed, s.name)
	}
	s.consumed = true
	return s.stream, nil
}

// readerAt returns random access to the source. Streams are spooled into a
// temporary file first, at most maxSize bytes are accepted (-1 for no limit).
func (s *source) readerAt(maxSize int64) (io.ReaderAt, int64, error) {
	if s.file != nil {
		return s.file, s.size, nil
	}

	r, err := s.reader()
	if err != nil {
		return nil, 0, err
	}
	dir, err := os.MkdirTemp("", "arkiv-spool-*")
	if err != nil {
		return nil, 0, fmt.Errorf("%w: cannot create spool directory: %w", ErrIO, err)
	}
	s.staging = dir

	f, err := os.Create(filepath.Join(dir, "archive"))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: cannot create spool file: %w", ErrIO, err)
	}
	s.file = f

	n, err := io.Copy(f, newLimitErrorReader(r, maxSize))
	if err != nil {
		if errors.Is(err, ErrMaxInputSizeExceeded) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("%w: cannot spool %s: %w", ErrIO, s.name, err)
	}
	s.size = n
	return f, n, nil
}

// Close releases the file handle and removes staged data. Streams are owned
// by the caller and stay open.
func (s *source) Close() error {
	var errs []error
	if s.file != nil {
		if err := s.file.Close(); err != nil && !errors.Is(err, fs.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if s.staging != "" {
		errs = append(errs, os.RemoveAll(s.staging))
	}
	return errors.Join(errs...)
}
