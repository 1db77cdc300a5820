// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultFormats returns all archive formats that can be opened.
func DefaultFormats() []Format {
	return []Format{
		FormatZip,
		FormatTar,
		FormatTarGzip,
		FormatTarXz,
		FormatTarBzip2,
		FormatTarZstd,
	}
}

// Resolver selects the [Format] of a source from its name. Only formats that
// are enabled at construction are resolved.
type Resolver struct {
	enabled map[Format]struct{}
}

// NewResolver returns a resolver for the given formats. Without formats, all
// [DefaultFormats] are enabled.
func NewResolver(formats ...Format) *Resolver {
	if len(formats) == 0 {
		formats = DefaultFormats()
	}
	r := &Resolver{enabled: make(map[Format]struct{}, len(formats))}
	for _, f := range formats {
		if f.IsArchive() {
			r.enabled[f] = struct{}{}
		}
	}
	return r
}

// Enabled returns true if f can be resolved.
func (r *Resolver) Enabled(f Format) bool {
	_, ok := r.enabled[f]
	return ok
}

// Resolve returns the format for identifier, which is either a file name or an
// URL. For URLs, only the path is considered. Unknown suffixes, bare compressed
// files and disabled formats all fail with [ErrUnrecognizedFormat].
func (r *Resolver) Resolve(identifier string) (Format, error) {
	name := identifier
	if strings.Contains(identifier, "://") {
		if u, err := url.Parse(identifier); err == nil {
			name = u.Path
		}
	}

	f := InferFormat(name)
	if !r.Enabled(f) {
		return FormatUnknown, fmt.Errorf("%w: %s", ErrUnrecognizedFormat, identifier)
	}
	return f, nil
}
