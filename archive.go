// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"errors"
	"fmt"
	"io"
)

// Archive is an opened archive of any supported [Format]. An Archive is not safe
// for concurrent use.
type Archive struct {
	format    Format
	cfg       *Config
	src       *source
	container container
	closed    bool
}

// Open opens the archive at path. The format is derived from the file name, see
// [Resolver]. Codec and container headers are validated before Open returns, but
// corruption further into the archive is only reported when the data is read.
func Open(path string, opts ...ConfigOption) (*Archive, error) {
	cfg := NewConfig(opts...)
	f, err := cfg.Resolver().Resolve(path)
	if err != nil {
		return nil, err
	}

	src, err := openFileSource(path)
	if err != nil {
		return nil, err
	}
	return newArchive(f, src, cfg)
}

// OpenReader opens the archive provided as stream r. The name is used to derive
// the format. Tar based archives are decoded directly from r and can be iterated
// once, zip archives are spooled to a temporary file. The caller keeps ownership
// of r.
func OpenReader(r io.Reader, name string, opts ...ConfigOption) (*Archive, error) {
	cfg := NewConfig(opts...)
	f, err := cfg.Resolver().Resolve(name)
	if err != nil {
		return nil, err
	}
	return newArchive(f, streamSource(r, name), cfg)
}

// newArchive binds the container reader for f to src. src is closed on failure.
func newArchive(f Format, src *source, cfg *Config) (*Archive, error) {
	c, err := newContainer(f, src, cfg)
	if err != nil {
		src.Close()
		cfg.Logger().Debug("cannot open archive", "name", src.name, "format", f.String(), "error", err)
		return nil, err
	}
	cfg.Logger().Debug("opened archive", "name", src.name, "format", f.String())
	return &Archive{format: f, cfg: cfg, src: src, container: c}, nil
}

// Format returns the format of the archive.
func (a *Archive) Format() Format {
	return a.format
}

// Restartable returns true if [Archive.Entries] can be called repeatedly. Zip
// archives and archives opened from a file are restartable, tar streams from
// [OpenReader] are not.
func (a *Archive) Restartable() bool {
	return a.container.restartable()
}

// Close releases the archive and removes temporary files, including the
// staging area of [Download]. Close is idempotent.
func (a *Archive) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	return errors.Join(a.container.Close(), a.src.Close())
}

// List returns the metadata of all entries in archive order.
func (a *Archive) List() ([]*Entry, error) {
	return a.Find(func(*Entry) bool { return true })
}

// Find returns all entries for which match returns true, in archive order.
func (a *Archive) Find(match func(*Entry) bool) ([]*Entry, error) {
	it, err := a.Entries()
	if err != nil {
		return nil, err
	}

	var found []*Entry
	for e, err := range it.All() {
		if err != nil {
			return nil, err
		}
		if match(e) {
			found = append(found, e)
		}
	}
	return found, nil
}

// EntryByName returns the entry with the exact name, as listed by
// [Archive.List]. Directories usually carry a trailing slash.
func (a *Archive) EntryByName(name string) (*Entry, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	_, e, err := seekEntry(a.container, name)
	return e, err
}

// OpenEntry returns the content of e. For tar archives the stream is scanned up
// to the entry and the reader is valid until the archive is iterated again.
func (a *Archive) OpenEntry(e *Entry) (io.ReadCloser, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%w: nil entry", ErrEntryNotFound)
	}
	w, _, err := seekEntry(a.container, e.Name())
	if err != nil {
		return nil, err
	}
	return w.open()
}

// check fails if the archive is closed
func (a *Archive) check() error {
	if a.closed {
		return ErrClosed
	}
	return nil
}
