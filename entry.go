// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"io/fs"
	"path"
	"strings"
	"time"
)

// EntryKind is the type of an archive entry.
type EntryKind int

const (
	// KindFile is a regular file.
	KindFile EntryKind = iota

	// KindDir is a directory.
	KindDir

	// KindSymlink is a symbolic link.
	KindSymlink

	// KindOther is any other entry, e.g. devices or fifos.
	KindOther

	// KindHardlink is a hard link to a file stored earlier in the archive.
	KindHardlink
)

// String returns the name of the kind.
func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	case KindHardlink:
		return "hardlink"
	default:
		return "other"
	}
}

// Entry is the metadata of a single archive member. The name is kept as stored in
// the archive, directories usually carry a trailing slash. An Entry never holds
// content, use [Archive.OpenEntry] or [Entries.Open] to read it.
type Entry struct {
	name     string
	size     int64
	kind     EntryKind
	mode     fs.FileMode
	modTime  time.Time
	linkname string
}

// Name returns the path of the entry as stored in the archive.
func (e *Entry) Name() string {
	return e.name
}

// Size returns the uncompressed size of the entry in bytes.
func (e *Entry) Size() int64 {
	return e.size
}

// Kind returns the type of the entry.
func (e *Entry) Kind() EntryKind {
	return e.kind
}

// Mode returns the permission bits of the entry.
func (e *Entry) Mode() fs.FileMode {
	return e.mode
}

// ModTime returns the modification time of the entry.
func (e *Entry) ModTime() time.Time {
	return e.modTime
}

// Linkname returns the target of a symlink or hard link entry. Symlink targets
// are relative to the directory of the entry, hard link targets to the archive root.
func (e *Entry) Linkname() string {
	return e.linkname
}

// IsDir returns true if the entry is a directory.
func (e *Entry) IsDir() bool {
	return e.kind == KindDir
}

// IsFile returns true if the entry is a regular file.
func (e *Entry) IsFile() bool {
	return e.kind == KindFile
}

// IsSymlink returns true if the entry is a symlink.
func (e *Entry) IsSymlink() bool {
	return e.kind == KindSymlink
}

// IsHardlink returns true if the entry is a hard link.
func (e *Entry) IsHardlink() bool {
	return e.kind == KindHardlink
}

// Path returns the cleaned, slash separated name of the entry without a
// trailing slash.
func (e *Entry) Path() string {
	return path.Clean(strings.TrimSuffix(e.name, "/"))
}

// String returns the name of the entry.
func (e *Entry) String() string {
	return e.name
}
