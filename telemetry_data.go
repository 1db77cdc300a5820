// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"context"
	"encoding/json"
	"time"
)

// TelemetryData holds all telemetry data of an unpack operation.
type TelemetryData struct {
	// Format is the archive format, e.g. "tar.gz"
	Format string `json:"format"`

	// UnpackedDirs is the number of created directories
	UnpackedDirs int64 `json:"unpacked_dirs"`

	// UnpackedFiles is the number of written files
	UnpackedFiles int64 `json:"unpacked_files"`

	// UnpackedSymlinks is the number of created symlinks
	UnpackedSymlinks int64 `json:"unpacked_symlinks"`

	// UnpackedSize is the number of bytes written to the destination
	UnpackedSize int64 `json:"unpacked_size"`

	// UnpackDuration is the time it took to unpack the archive
	UnpackDuration time.Duration `json:"unpack_duration"`

	// UnpackErrors is the number of errors during unpack
	UnpackErrors int64 `json:"unpack_errors"`

	// LastUnpackError is the last error during unpack
	LastUnpackError error `json:"last_unpack_error"`

	// InputSize is the number of archive bytes consumed
	InputSize int64 `json:"input_size"`

	// PatternMismatches is the number of entries skipped by pattern
	PatternMismatches int64 `json:"pattern_mismatches"`

	// UnsupportedEntries is the number of skipped unsupported entries
	UnsupportedEntries int64 `json:"unsupported_entries"`

	// LastUnsupportedEntry is the name of the last skipped unsupported entry
	LastUnsupportedEntry string `json:"last_unsupported_entry"`
}

// String returns a string representation of [TelemetryData].
func (td TelemetryData) String() string {
	b, _ := json.Marshal(td)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (td TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if td.LastUnpackError != nil {
		lastError = td.LastUnpackError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastUnpackError string `json:"last_unpack_error"`
		*Alias
	}{
		LastUnpackError: lastError,
		Alias:           (*Alias)(&td),
	})
}

// TelemetryHook is a function type that performs operations on [TelemetryData]
// after an unpack has finished, e.g. to submit the [TelemetryData] to a
// metrics backend. See the telemetry/promhook package for a Prometheus hook.
type TelemetryHook func(context.Context, *TelemetryData)
