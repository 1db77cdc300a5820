// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package arkiv

import (
	"fmt"
	"runtime"
	"time"
)

// lchtimes is not available on this platform.
func lchtimes(_ string, _, _ time.Time) error {
	return fmt.Errorf("Lchtimes is not supported on this platform (%s)", runtime.GOOS)
}

// canMaintainSymlinkTimestamps reports whether symlink timestamps can be set.
const canMaintainSymlinkTimestamps = false

// applyPermissions is true where unix permission bits are meaningful.
const applyPermissions = false
