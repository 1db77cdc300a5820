// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Downloader fetches remote archives into a local staging area and opens them.
type Downloader struct {
	fetchers map[string]Fetcher
	dir      string
}

// DownloaderOption configures a [Downloader].
type DownloaderOption func(*Downloader)

// WithFetcher registers f for URLs with the given scheme.
func WithFetcher(scheme string, f Fetcher) DownloaderOption {
	return func(d *Downloader) {
		d.fetchers[strings.ToLower(scheme)] = f
	}
}

// WithHTTPClient sets the client for http and https URLs.
func WithHTTPClient(client *http.Client) DownloaderOption {
	return func(d *Downloader) {
		f := NewHTTPFetcher(client)
		d.fetchers["http"] = f
		d.fetchers["https"] = f
	}
}

// WithDownloadDir stores downloads in dir instead of a temporary directory.
// Files in dir are kept when the archive is closed.
func WithDownloadDir(dir string) DownloaderOption {
	return func(d *Downloader) {
		d.dir = dir
	}
}

// NewDownloader returns a downloader for http, https and s3 URLs.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	hf := NewHTTPFetcher(nil)
	d := &Downloader{
		fetchers: map[string]Fetcher{
			"http":  hf,
			"https": hf,
			"s3":    NewS3Fetcher(),
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches rawURL with a default [Downloader] and opens it.
func Download(ctx context.Context, rawURL string, opts ...ConfigOption) (*Archive, error) {
	return NewDownloader().Download(ctx, rawURL, opts...)
}

// Download fetches rawURL and opens it as [Archive]. The format is derived
// from the URL path before anything is fetched. The downloaded file lives in a
// temporary staging directory, which is removed by [Archive.Close].
func (d *Downloader) Download(ctx context.Context, rawURL string, opts ...ConfigOption) (*Archive, error) {
	cfg := NewConfig(opts...)
	f, err := cfg.Resolver().Resolve(rawURL)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %q: %w", ErrTransport, rawURL, err)
	}
	fetcher, ok := d.fetchers[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrTransport, u.Scheme)
	}
	name := path.Base(u.Path)

	// prepare staging area
	dir, staging, err := d.stagingDir()
	if err != nil {
		return nil, err
	}
	cleanup := func() {
		if staging != "" {
			os.RemoveAll(staging)
		}
	}

	cfg.Logger().Info("download archive", "url", rawURL, "format", f.String())
	dst := filepath.Join(dir, name)
	if err := fetchToFile(ctx, fetcher, rawURL, dst, cfg.MaxInputSize()); err != nil {
		cleanup()
		return nil, err
	}

	src, err := openFileSource(dst)
	if err != nil {
		cleanup()
		return nil, err
	}
	src.staging = staging
	return newArchive(f, src, cfg)
}

// stagingDir returns the directory to download into and, if it is temporary,
// the directory to remove on close.
func (d *Downloader) stagingDir() (string, string, error) {
	if d.dir != "" {
		if err := os.MkdirAll(d.dir, 0750); err != nil {
			return "", "", fmt.Errorf("%w: cannot create download directory: %w", ErrIO, err)
		}
		return d.dir, "", nil
	}
	dir, err := os.MkdirTemp("", "arkiv-download-*")
	if err != nil {
		return "", "", fmt.Errorf("%w: cannot create staging directory: %w", ErrIO, err)
	}
	return dir, dir, nil
}

// fetchToFile streams the content of rawURL into the file dst.
func fetchToFile(ctx context.Context, fetcher Fetcher, rawURL string, dst string, maxSize int64) error {
	body, err := fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: cannot create %s: %w", ErrIO, dst, err)
	}
	defer out.Close()

	_, err = io.Copy(out, newLimitErrorReader(&transportReader{r: body}, maxSize))
	if err != nil {
		if errors.Is(err, ErrTransport) || errors.Is(err, ErrMaxInputSizeExceeded) {
			return err
		}
		return fmt.Errorf("%w: cannot write %s: %w", ErrIO, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: cannot write %s: %w", ErrIO, dst, err)
	}
	return nil
}

// transportReader marks read errors of a response body as [ErrTransport]
type transportReader struct {
	r io.Reader
}

// Read reads from the response body.
func (t *transportReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && !errors.Is(err, ErrTransport) {
		err = fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return n, err
}
