// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import "strings"

// ContainerKind is the structure that describes entry boundaries and metadata.
type ContainerKind int

const (
	// ContainerNone is used for bare compressed files and unknown formats.
	ContainerNone ContainerKind = iota

	// ContainerTar is a sequential container, entries are discovered by
	// scanning the stream in order.
	ContainerTar

	// ContainerZip is a random-access container with a central directory.
	ContainerZip
)

// String returns the file extension of the container kind.
func (k ContainerKind) String() string {
	switch k {
	case ContainerTar:
		return fileExtensionTar
	case ContainerZip:
		return fileExtensionZip
	default:
		return ""
	}
}

// Compression is the outer compression applied to a container stream.
type Compression int

const (
	// CompressionNone is a container stored as is.
	CompressionNone Compression = iota

	// CompressionGzip is gzip, e.g. ".tar.gz" and ".tgz".
	CompressionGzip

	// CompressionXz is xz, e.g. ".tar.xz".
	CompressionXz

	// CompressionBzip2 is bzip2, e.g. ".tar.bz2".
	CompressionBzip2

	// CompressionZstd is zstandard, e.g. ".tar.zst" and ".tar.zstd".
	CompressionZstd
)

// String returns the canonical file extension of the compression.
func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return fileExtensionGZip
	case CompressionXz:
		return fileExtensionXz
	case CompressionBzip2:
		return fileExtensionBzip2
	case CompressionZstd:
		return fileExtensionZstd
	default:
		return ""
	}
}

// Format describes an archive file format as a container kind and an optional
// outer compression. A Format is derived once, when an archive is opened.
type Format struct {
	Container   ContainerKind
	Compression Compression
}

var (
	// FormatUnknown is returned by [InferFormat] for names without a known suffix.
	FormatUnknown = Format{}

	FormatZip      = Format{Container: ContainerZip}
	FormatTar      = Format{Container: ContainerTar}
	FormatTarGzip  = Format{Container: ContainerTar, Compression: CompressionGzip}
	FormatTarXz    = Format{Container: ContainerTar, Compression: CompressionXz}
	FormatTarBzip2 = Format{Container: ContainerTar, Compression: CompressionBzip2}
	FormatTarZstd  = Format{Container: ContainerTar, Compression: CompressionZstd}

	// bare compressed files, recognized by InferFormat but never opened as archives
	FormatGzip  = Format{Compression: CompressionGzip}
	FormatXz    = Format{Compression: CompressionXz}
	FormatBzip2 = Format{Compression: CompressionBzip2}
	FormatZstd  = Format{Compression: CompressionZstd}
)

// IsArchive returns true if the format is a collection of files, as opposed to a
// single compressed file.
func (f Format) IsArchive() bool {
	return f.Container != ContainerNone
}

// IsCompressed returns true if the content is compressed. Zip archives compress
// each entry and are always considered compressed.
func (f Format) IsCompressed() bool {
	return f.Compression != CompressionNone || f.Container == ContainerZip
}

// String returns the format as file extension, e.g. "tar.gz".
func (f Format) String() string {
	switch {
	case f == FormatUnknown:
		return "unknown"
	case f.Container == ContainerNone:
		return f.Compression.String()
	case f.Compression == CompressionNone:
		return f.Container.String()
	default:
		return f.Container.String() + "." + f.Compression.String()
	}
}

// suffixes maps file name suffixes to formats. The order matters: compound
// suffixes must be checked before their single suffix counterparts.
var suffixes = []struct {
	suffix string
	format Format
}{
	{".tar." + fileExtensionGZip, FormatTarGzip},
	{"." + fileExtensionTarGZip, FormatTarGzip},
	{".tar." + fileExtensionXz, FormatTarXz},
	{".tar." + fileExtensionBzip2, FormatTarBzip2},
	{".tar." + fileExtensionZstd, FormatTarZstd},
	{".tar." + fileExtensionZstdLong, FormatTarZstd},
	{"." + fileExtensionTar, FormatTar},
	{"." + fileExtensionZip, FormatZip},
	{"." + fileExtensionGZip, FormatGzip},
	{"." + fileExtensionXz, FormatXz},
	{"." + fileExtensionBzip2, FormatBzip2},
	{"." + fileExtensionZstd, FormatZstd},
	{"." + fileExtensionZstdLong, FormatZstd},
}

// InferFormat infers the format from the suffix of name. The comparison is
// case-insensitive. The content is never inspected. If no suffix matches,
// [FormatUnknown] is returned.
func InferFormat(name string) Format {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		// a suffix without a stem, e.g. ".tar", is a hidden file and not an extension
		if len(lower) > len(s.suffix) && strings.HasSuffix(lower, s.suffix) {
			return s.format
		}
	}
	return FormatUnknown
}
