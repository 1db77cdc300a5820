// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
)

// fileExtensionTar is the file extension for tar files
const fileExtensionTar = "tar"

// tarContainer reads a tar stream, optionally wrapped in a compression codec.
// Tar has no index, every iteration decodes the stream from the start.
type tarContainer struct {
	src         *source
	compression Compression
	cfg         *Config

	// state of the current pass over the source
	input   *limitErrorReader
	decoder io.ReadCloser
	pass    int

	// pending is the walker prepared by open, handed out by the first walk
	pending *tarWalker
}

// newTarContainer starts decoding src. Codec headers are validated here.
func newTarContainer(src *source, compression Compression, cfg *Config) (*tarContainer, error) {
	t := &tarContainer{src: src, compression: compression, cfg: cfg}
	w, err := t.start()
	if err != nil {
		return nil, err
	}
	t.pending = w
	return t, nil
}

// start begins a new pass over the source and invalidates older walkers.
func (t *tarContainer) start() (*tarWalker, error) {
	r, err := t.src.reader()
	if err != nil {
		return nil, err
	}
	if t.decoder != nil {
		t.decoder.Close()
		t.decoder = nil
	}

	t.input = newLimitErrorReader(r, t.cfg.MaxInputSize())
	dec, err := newDecompressor(t.compression, t.input)
	if err != nil {
		return nil, err
	}
	t.decoder = dec
	t.pass++
	return &tarWalker{c: t, pass: t.pass, tr: tar.NewReader(dec)}, nil
}

// restartable returns true if the source can be read again.
func (t *tarContainer) restartable() bool {
	return t.src.rewindable()
}

// walk returns a walker from the beginning of the archive. For file sources
// the stream is decoded again, stream sources fail with [ErrAlreadyConsumed].
func (t *tarContainer) walk() (walker, error) {
	if w := t.pending; w != nil {
		t.pending = nil
		return w, nil
	}
	t.cfg.Logger().Debug("restart tar stream", "name", t.src.name)
	return t.start()
}

// inputSize returns the number of bytes consumed by the current pass.
func (t *tarContainer) inputSize() int64 {
	if t.input == nil {
		return 0
	}
	return t.input.ReadBytes()
}

// Close releases the decoder.
func (t *tarContainer) Close() error {
	t.pending = nil
	if t.decoder == nil {
		return nil
	}
	err := t.decoder.Close()
	t.decoder = nil
	return err
}

// tarWalker walks the headers of one pass over a tar stream
type tarWalker struct {
	c       *tarContainer
	pass    int
	tr      *tar.Reader
	current *Entry
}

// valid returns an error if a newer pass replaced the stream of the walker.
func (w *tarWalker) valid() error {
	if w.pass != w.c.pass || w.c.decoder == nil {
		return fmt.Errorf("%w: tar iteration was restarted or closed", ErrAlreadyConsumed)
	}
	return nil
}

// next returns the next entry in the tar archive. PAX global headers carry no
// entry and are skipped.
func (w *tarWalker) next() (*Entry, error) {
	if err := w.valid(); err != nil {
		return nil, err
	}
	for {
		hdr, err := w.tr.Next()
		if err == io.EOF {
			w.current = nil
			return nil, io.EOF
		}
		if err != nil {
			w.current = nil
			return nil, containerError(fmt.Errorf("cannot read tar header: %w", err))
		}
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}
		w.current = tarEntry(hdr)
		return w.current, nil
	}
}

// open returns the content of the current entry. The reader is valid until
// the next call of next.
func (w *tarWalker) open() (io.ReadCloser, error) {
	if err := w.valid(); err != nil {
		return nil, err
	}
	if w.current == nil {
		return nil, fmt.Errorf("no current tar entry")
	}
	return &noopReaderCloser{&tarContentReader{tr: w.tr}}, nil
}

// tarContentReader classifies errors while reading entry content
type tarContentReader struct {
	tr *tar.Reader
}

// Read reads from the current tar entry.
func (r *tarContentReader) Read(p []byte) (int, error) {
	n, err := r.tr.Read(p)
	if err != nil && err != io.EOF {
		err = containerError(err)
	}
	return n, err
}

// tarEntry converts a tar header into an [Entry]
func tarEntry(hdr *tar.Header) *Entry {
	e := &Entry{
		name:    hdr.Name,
		size:    hdr.Size,
		mode:    fs.FileMode(hdr.Mode).Perm(),
		modTime: hdr.ModTime,
	}
	switch hdr.Typeflag {
	case tar.TypeReg:
		e.kind = KindFile
	case tar.TypeDir:
		e.kind = KindDir
		e.size = 0
	case tar.TypeSymlink:
		e.kind = KindSymlink
		e.linkname = hdr.Linkname
	case tar.TypeLink:
		e.kind = KindHardlink
		e.linkname = hdr.Linkname
		e.size = 0
	default:
		e.kind = KindOther
		e.linkname = hdr.Linkname
	}
	return e
}
