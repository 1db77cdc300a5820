// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// fileExtensionZip is the file extension for zip files.
const fileExtensionZip = "zip"

// maxZipLinknameSize is the maximum size of a symlink target stored as zip entry content
const maxZipLinknameSize = 4096

// zipContainer reads a zip archive through its central directory.
type zipContainer struct {
	zr    *zip.Reader
	size  int64
	index map[string]int
}

// newZipContainer reads the central directory of src. Streams are spooled
// to a temporary file first.
func newZipContainer(src *source, cfg *Config) (*zipContainer, error) {
	ra, size, err := src.readerAt(cfg.MaxInputSize())
	if err != nil {
		return nil, err
	}
	if cfg.MaxInputSize() != -1 && size > cfg.MaxInputSize() {
		return nil, fmt.Errorf("%w: zip archive has %d bytes", ErrMaxInputSizeExceeded, size)
	}

	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, containerError(fmt.Errorf("cannot read zip directory: %w", err))
	}

	// first occurrence wins for duplicate names
	index := make(map[string]int, len(zr.File))
	for i, f := range zr.File {
		if _, ok := index[f.Name]; !ok {
			index[f.Name] = i
		}
	}

	return &zipContainer{zr: zr, size: size, index: index}, nil
}

// restartable is always true, the central directory is held in memory.
func (z *zipContainer) restartable() bool {
	return true
}

// walk returns a walker over the central directory.
func (z *zipContainer) walk() (walker, error) {
	return &zipWalker{zr: z.zr, fp: -1}, nil
}

// seek returns a walker positioned at the entry called name.
func (z *zipContainer) seek(name string) (walker, *Entry, error) {
	i, ok := z.index[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	w := &zipWalker{zr: z.zr, fp: i - 1}
	e, err := w.next()
	if err != nil {
		return nil, nil, err
	}
	return w, e, nil
}

// inputSize returns the size of the zip archive.
func (z *zipContainer) inputSize() int64 {
	return z.size
}

// Close is a no-op, the source owns the file.
func (z *zipContainer) Close() error {
	return nil
}

// zipWalker is a walker for zip files
type zipWalker struct {
	zr *zip.Reader
	fp int
}

// next returns the next entry in the zip archive
func (w *zipWalker) next() (*Entry, error) {
	if w.fp+1 >= len(w.zr.File) {
		return nil, io.EOF
	}
	w.fp++
	return zipEntry(w.zr.File[w.fp])
}

// open returns the decompressed content of the current entry. Entries can be
// opened in any order, each reader is independent.
func (w *zipWalker) open() (io.ReadCloser, error) {
	if w.fp < 0 || w.fp >= len(w.zr.File) {
		return nil, fmt.Errorf("no current zip entry")
	}
	return openZipFile(w.zr.File[w.fp])
}

// openZipFile opens the content of f and classifies read errors.
func openZipFile(f *zip.File) (io.ReadCloser, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, zipContentError(fmt.Errorf("cannot open %s: %w", f.Name, err))
	}
	return &zipContentReader{rc: rc}, nil
}

// zipContentReader classifies errors while reading entry content
type zipContentReader struct {
	rc io.ReadCloser
}

// Read reads decompressed content.
func (r *zipContentReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if err != nil && err != io.EOF {
		err = zipContentError(err)
	}
	return n, err
}

// Close closes the entry reader.
func (r *zipContentReader) Close() error {
	return r.rc.Close()
}

// zipContentError classifies corrupt deflate data as [ErrCodec], everything
// else, e.g. checksum mismatches or unknown methods, as [ErrContainer].
func zipContentError(err error) error {
	var corrupt flate.CorruptInputError
	if errors.As(err, &corrupt) || errors.Is(err, io.ErrUnexpectedEOF) {
		return codecError(err)
	}
	return containerError(err)
}

// zipEntry converts a zip file header into an [Entry]. The target of a symlink
// is stored as content and read here.
func zipEntry(f *zip.File) (*Entry, error) {
	mode := f.Mode()
	e := &Entry{
		name:    f.Name,
		size:    int64(f.UncompressedSize64),
		mode:    mode.Perm(),
		modTime: f.Modified,
	}
	switch {
	case mode.IsDir():
		e.kind = KindDir
		e.size = 0
	case mode&fs.ModeSymlink != 0:
		e.kind = KindSymlink
		target, err := readZipLinkname(f)
		if err != nil {
			return nil, err
		}
		e.linkname = target
	case mode.IsRegular():
		e.kind = KindFile
	default:
		e.kind = KindOther
	}
	return e, nil
}

// readZipLinkname reads the symlink target stored as content of f
func readZipLinkname(f *zip.File) (string, error) {
	rc, err := openZipFile(f)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	target, err := io.ReadAll(io.LimitReader(rc, maxZipLinknameSize+1))
	if err != nil {
		return "", fmt.Errorf("cannot read symlink target of %s: %w", f.Name, err)
	}
	if len(target) > maxZipLinknameSize {
		return "", fmt.Errorf("%w: symlink target of %s is too long", ErrContainer, f.Name)
	}
	return string(target), nil
}
