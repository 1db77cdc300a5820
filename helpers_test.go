// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv_test

import (
	"archive/tar"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	arkiv "github.com/hashicorp/go-arkiv"
)

// testModTime is the modification time of all generated entries
var testModTime = time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

// archiveContent describes one entry of a generated archive
type archiveContent struct {
	Name       string
	Content    []byte
	Mode       fs.FileMode
	Filetype   byte
	Linktarget string
}

// sampleContent is the content of the sample archives used throughout the tests
func sampleContent() []archiveContent {
	return []archiveContent{
		{Name: "sample/", Mode: 0755, Filetype: tar.TypeDir},
		{Name: "sample/sample.txt", Content: []byte("hello world\n"), Mode: 0644, Filetype: tar.TypeReg},
		{Name: "sample/run.sh", Content: []byte("#!/bin/sh\necho hello\n"), Mode: 0755, Filetype: tar.TypeReg},
		{Name: "sample/link", Filetype: tar.TypeSymlink, Linktarget: "sample.txt"},
	}
}

// sampleNames are the entry names of the sample archives in archive order
var sampleNames = []string{"sample/", "sample/sample.txt", "sample/run.sh", "sample/link"}

// archiveNames are file names for every supported archive format
var archiveNames = []string{
	"sample.zip",
	"sample.tar",
	"sample.tar.gz",
	"sample.tgz",
	"sample.tar.xz",
	"sample.tar.bz2",
	"sample.tar.zst",
	"sample.tar.zstd",
}

// packTar creates a tar archive with the given content
func packTar(t *testing.T, content []archiveContent) []byte {
	t.Helper()

	// create tar writer
	writeBuffer := bytes.NewBuffer([]byte{})
	tw := tar.NewWriter(writeBuffer)

	// write content
	for _, c := range content {
		hdr := &tar.Header{
			Name:     c.Name,
			Mode:     int64(c.Mode),
			Size:     int64(len(c.Content)),
			Linkname: c.Linktarget,
			Typeflag: c.Filetype,
			ModTime:  testModTime,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("error writing tar header: %v", err)
		}
		if _, err := tw.Write(c.Content); err != nil {
			t.Fatalf("error writing tar data: %v", err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("error closing tar writer: %v", err)
	}
	return writeBuffer.Bytes()
}

// packZip creates a zip archive with the given content. Symlink targets are
// stored as entry content.
func packZip(t *testing.T, content []archiveContent) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, c := range content {
		hdr := &zip.FileHeader{Name: c.Name, Method: zip.Deflate, Modified: testModTime}
		data := c.Content
		switch c.Filetype {
		case tar.TypeDir:
			hdr.SetMode(fs.ModeDir | c.Mode)
		case tar.TypeSymlink:
			hdr.SetMode(fs.ModeSymlink | 0777)
			data = []byte(c.Linktarget)
		default:
			hdr.SetMode(c.Mode)
		}

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("error creating zip entry: %v", err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("error writing zip data: %v", err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("error closing zip writer: %v", err)
	}
	return buf.Bytes()
}

// compressGzip compresses data with gzip algorithm
func compressGzip(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("error writing data to gzip writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("error closing gzip writer: %v", err)
	}
	return buf.Bytes()
}

// compressXz compresses data with xz algorithm
func compressXz(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("error creating xz writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("error writing data to xz writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("error closing xz writer: %v", err)
	}
	return buf.Bytes()
}

// compressBzip2 compresses data with bzip2 algorithm
func compressBzip2(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
	if err != nil {
		t.Fatalf("error creating bzip2 writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("error writing data to bzip2 writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("error closing bzip2 writer: %v", err)
	}
	return buf.Bytes()
}

// compressZstd compresses data with zstandard algorithm
func compressZstd(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		t.Fatalf("error creating zstd writer: %v", err)
	}
	if _, err := enc.Write(data); err != nil {
		t.Fatalf("error writing data to zstd writer: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("error closing zstd writer: %v", err)
	}
	return buf.Bytes()
}

// packArchive packs content in the format given by the suffix of name
func packArchive(t *testing.T, name string, content []archiveContent) []byte {
	t.Helper()
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return packZip(t, content)
	case strings.HasSuffix(lower, ".tar"):
		return packTar(t, content)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return compressGzip(t, packTar(t, content))
	case strings.HasSuffix(lower, ".tar.xz"):
		return compressXz(t, packTar(t, content))
	case strings.HasSuffix(lower, ".tar.bz2"):
		return compressBzip2(t, packTar(t, content))
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tar.zstd"):
		return compressZstd(t, packTar(t, content))
	}
	t.Fatalf("no packer for %s", name)
	return nil
}

// createArchive writes an archive with content to dir and returns its path
func createArchive(t *testing.T, dir string, name string, content []archiveContent) string {
	t.Helper()
	return writeFile(t, dir, name, packArchive(t, name, content))
}

// writeFile writes data to dir/name and returns the path
func writeFile(t *testing.T, dir string, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0640); err != nil {
		t.Fatalf("error writing %s: %v", path, err)
	}
	return path
}

// entryNames returns the names of entries
func entryNames(t *testing.T, entries []*arkiv.Entry) []string {
	t.Helper()
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
