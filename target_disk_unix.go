// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package arkiv

import (
	"time"

	"golang.org/x/sys/unix"
)

// lchtimes modifies the access and modified timestamps on a symlink.
func lchtimes(path string, atime, mtime time.Time) error {
	return unix.Lutimes(path, []unix.Timeval{
		unixTimeval(atime),
		unixTimeval(mtime),
	})
}

// unixTimeval converts a time.Time to a unix.Timeval, rounded up to the
// next microsecond (see unix.NsecToTimeval).
func unixTimeval(t time.Time) unix.Timeval {
	return unix.NsecToTimeval(t.UnixNano())
}

// canMaintainSymlinkTimestamps reports whether symlink timestamps can be set.
// os.Chtimes follows symlinks, unix.Lutimes does not.
const canMaintainSymlinkTimestamps = true

// applyPermissions is true where unix permission bits are meaningful.
const applyPermissions = true
