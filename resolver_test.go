// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv_test

import (
	"errors"
	"testing"

	arkiv "github.com/hashicorp/go-arkiv"
)

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		formats    []arkiv.Format
		identifier string
		want       arkiv.Format
		wantErr    error
	}{
		{name: "default zip", identifier: "a.zip", want: arkiv.FormatZip},
		{name: "default tgz", identifier: "a.tgz", want: arkiv.FormatTarGzip},
		{name: "default tar.zstd", identifier: "a.tar.zstd", want: arkiv.FormatTarZstd},
		{name: "rar", identifier: "sample.rar", wantErr: arkiv.ErrUnrecognizedFormat},
		{name: "bare gzip", identifier: "a.gz", wantErr: arkiv.ErrUnrecognizedFormat},
		{name: "bare zstd", identifier: "a.zst", wantErr: arkiv.ErrUnrecognizedFormat},
		{name: "no suffix", identifier: "archive", wantErr: arkiv.ErrUnrecognizedFormat},
		{name: "url", identifier: "https://example.com/dl/a.tar.xz", want: arkiv.FormatTarXz},
		{name: "url with query", identifier: "https://example.com/dl/a.tar.xz?token=abc.zip", want: arkiv.FormatTarXz},
		{name: "url without suffix", identifier: "https://example.com/download?file=a.zip", wantErr: arkiv.ErrUnrecognizedFormat},
		{name: "s3 url", identifier: "s3://bucket/key/a.tar.bz2", want: arkiv.FormatTarBzip2},
		{
			name:       "enabled subset",
			formats:    []arkiv.Format{arkiv.FormatZip, arkiv.FormatTarGzip},
			identifier: "a.tgz",
			want:       arkiv.FormatTarGzip,
		},
		{
			name:       "disabled format",
			formats:    []arkiv.Format{arkiv.FormatZip},
			identifier: "a.tar.gz",
			wantErr:    arkiv.ErrUnrecognizedFormat,
		},
		{
			name:       "bare compression cannot be enabled",
			formats:    []arkiv.Format{arkiv.FormatGzip},
			identifier: "a.gz",
			wantErr:    arkiv.ErrUnrecognizedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := arkiv.NewResolver(tt.formats...)
			got, err := r.Resolve(tt.identifier)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.identifier, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.identifier, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.identifier, got, tt.want)
			}
		})
	}
}

func TestNewResolver_Defaults(t *testing.T) {
	r := arkiv.NewResolver()
	for _, f := range arkiv.DefaultFormats() {
		if !r.Enabled(f) {
			t.Errorf("format %s should be enabled by default", f)
		}
	}
	if r.Enabled(arkiv.FormatGzip) {
		t.Errorf("bare gzip must not be enabled")
	}
}
