// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"context"
	"io"
)

//go:generate mockgen -destination=internal/mocks/mock_fetcher.go -package=mocks github.com/hashicorp/go-arkiv Fetcher

// Fetcher retrieves the bytes behind a URL. Implementations report a missing
// resource with [ErrNotFound] and every other failure with [ErrTransport].
type Fetcher interface {
	// Fetch returns the content of rawURL. The caller closes the returned reader.
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// FetcherFunc adapts a function to the [Fetcher] interface.
type FetcherFunc func(ctx context.Context, rawURL string) (io.ReadCloser, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	return f(ctx, rawURL)
}
