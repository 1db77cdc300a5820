// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv_test

import (
	"testing"

	arkiv "github.com/hashicorp/go-arkiv"
)

func TestInferFormat(t *testing.T) {
	tests := []struct {
		name string
		want arkiv.Format
	}{
		{name: "a.zip", want: arkiv.FormatZip},
		{name: "a.tar", want: arkiv.FormatTar},
		{name: "a.tar.gz", want: arkiv.FormatTarGzip},
		{name: "a.tgz", want: arkiv.FormatTarGzip},
		{name: "a.tar.xz", want: arkiv.FormatTarXz},
		{name: "a.tar.bz2", want: arkiv.FormatTarBzip2},
		{name: "a.tar.zst", want: arkiv.FormatTarZstd},
		{name: "a.tar.zstd", want: arkiv.FormatTarZstd},
		{name: "A.TAR.GZ", want: arkiv.FormatTarGzip},
		{name: "Release.Zip", want: arkiv.FormatZip},
		{name: "dir/sub.d/a.tar.xz", want: arkiv.FormatTarXz},
		{name: "a.gz", want: arkiv.FormatGzip},
		{name: "a.xz", want: arkiv.FormatXz},
		{name: "a.bz2", want: arkiv.FormatBzip2},
		{name: "a.zst", want: arkiv.FormatZstd},
		{name: "a.zstd", want: arkiv.FormatZstd},
		{name: "sample.rar", want: arkiv.FormatUnknown},
		{name: "a.7z", want: arkiv.FormatUnknown},
		{name: "tar", want: arkiv.FormatUnknown},
		{name: ".tar", want: arkiv.FormatUnknown},
		{name: "a.tar.gz.part", want: arkiv.FormatUnknown},
		{name: "", want: arkiv.FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := arkiv.InferFormat(tt.name); got != tt.want {
				t.Errorf("InferFormat(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestFormatProperties(t *testing.T) {
	tests := []struct {
		format     arkiv.Format
		str        string
		archive    bool
		compressed bool
	}{
		{format: arkiv.FormatZip, str: "zip", archive: true, compressed: true},
		{format: arkiv.FormatTar, str: "tar", archive: true, compressed: false},
		{format: arkiv.FormatTarGzip, str: "tar.gz", archive: true, compressed: true},
		{format: arkiv.FormatTarXz, str: "tar.xz", archive: true, compressed: true},
		{format: arkiv.FormatTarBzip2, str: "tar.bz2", archive: true, compressed: true},
		{format: arkiv.FormatTarZstd, str: "tar.zst", archive: true, compressed: true},
		{format: arkiv.FormatGzip, str: "gz", archive: false, compressed: true},
		{format: arkiv.FormatZstd, str: "zst", archive: false, compressed: true},
		{format: arkiv.FormatUnknown, str: "unknown", archive: false, compressed: false},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			if got := tt.format.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
			if got := tt.format.IsArchive(); got != tt.archive {
				t.Errorf("IsArchive() = %v, want %v", got, tt.archive)
			}
			if got := tt.format.IsCompressed(); got != tt.compressed {
				t.Errorf("IsCompressed() = %v, want %v", got, tt.compressed)
			}
		})
	}
}
