// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"fmt"
	"io"
	"iter"
)

// Entries is a lazy, single pass iteration over the entries of an [Archive].
// Entries are produced in archive order, nothing is read ahead.
type Entries struct {
	a       *Archive
	w       walker
	current *Entry
	err     error
}

// Entries starts a new iteration over all entries. For restartable archives
// every call starts from the first entry. Tar streams opened with [OpenReader]
// can only be iterated once, the second call fails with [ErrAlreadyConsumed].
func (a *Archive) Entries() (*Entries, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	w, err := a.container.walk()
	if err != nil {
		return nil, err
	}
	return &Entries{a: a, w: w}, nil
}

// Next returns the next entry, or io.EOF after the last one. Once Next returned
// an error, it keeps returning it. After [Archive.Close], Next fails with [ErrClosed].
func (it *Entries) Next() (*Entry, error) {
	if it.err != nil {
		return nil, it.err
	}
	if err := it.a.check(); err != nil {
		it.err = err
		it.current = nil
		return nil, err
	}
	e, err := it.w.next()
	if err != nil {
		it.err = err
		it.current = nil
		return nil, err
	}
	it.current = e
	return e, nil
}

// Open returns the content of the entry last returned by Next. For tar archives
// the reader is valid until the next call of Next.
func (it *Entries) Open() (io.ReadCloser, error) {
	if err := it.a.check(); err != nil {
		return nil, err
	}
	if it.current == nil {
		return nil, fmt.Errorf("%w: no current entry", ErrEntryNotFound)
	}
	return it.w.open()
}

// All returns an iterator over the remaining entries. The iteration stops after
// the first error, which is yielded with a nil entry.
func (it *Entries) All() iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		for {
			e, err := it.Next()
			if err == io.EOF {
				return
			}
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}
