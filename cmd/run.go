// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	arkiv "github.com/hashicorp/go-arkiv"
	"github.com/hashicorp/go-arkiv/telemetry/promhook"
)

// CLI are the cli parameters for the arkiv binary
type CLI struct {
	Verbose bool             `short:"v" optional:"" help:"Verbose logging."`
	Version kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`

	List     ListCmd     `cmd:"" help:"List the entries of one or more archives."`
	Unpack   UnpackCmd   `cmd:"" help:"Unpack an archive into a directory."`
	Download DownloadCmd `cmd:"" help:"Download an archive and unpack it into a directory."`
}

// UnpackFlags are the options shared by all commands that write to disk
type UnpackFlags struct {
	DenySymlinks      bool     `short:"D" help:"Deny symlink extraction."`
	FollowSymlinks    bool     `short:"F" help:"[Dangerous!] Follow symlinks to directories during extraction."`
	MaxFiles          int64    `optional:"" default:"100000" help:"Maximum entries that are unpacked before stop. (disable check: -1)"`
	MaxExtractionSize int64    `optional:"" default:"1073741824" help:"Maximum extraction size that allowed is (in bytes). (disable check: -1)"`
	MaxExtractionTime int64    `optional:"" default:"60" help:"Maximum time that an unpack should take (in seconds). (disable check: -1)"`
	MaxInputSize      int64    `optional:"" default:"1073741824" help:"Maximum input size that allowed is (in bytes). (disable check: -1)"`
	Metrics           bool     `short:"M" optional:"" default:"false" help:"Print metrics to log after unpack."`
	MetricsFile       string   `optional:"" type:"path" help:"Write Prometheus metrics to this file after unpack (textfile collector format)."`
	NoOverwrite       bool     `short:"N" help:"Fail if a file already exists."`
	Pattern           []string `short:"P" optional:"" name:"pattern" help:"Unpack only entries matching the pattern. (repeatable)"`
	SkipUnsupported   bool     `short:"S" help:"Skip unsupported entries instead of failing."`
}

// globals are bound to every command
type globals struct {
	logger *slog.Logger
	stdout io.Writer
}

// Run the entrypoint into arkiv as a cli tool
func Run(version, commit, date string) {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("arkiv"),
		kong.Description("Inspect, unpack and download zip and tar archives"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	err := kctx.Run(&globals{logger: logger, stdout: os.Stdout})
	kctx.FatalIfErrorf(err)
}

// ListCmd lists the entries of archives
type ListCmd struct {
	Archives []string `arg:"" name:"archive" help:"Path to archive."`
	Long     bool     `short:"l" help:"Show kind, mode, size and modification time."`
	Jobs     int      `short:"j" default:"4" help:"Number of archives that are read concurrently."`
}

// Run lists all archives concurrently and prints them in argument order.
func (l *ListCmd) Run(g *globals) error {
	listings := make([][]*arkiv.Entry, len(l.Archives))

	eg := &errgroup.Group{}
	eg.SetLimit(max(l.Jobs, 1))
	for i, name := range l.Archives {
		eg.Go(func() error {
			a, err := arkiv.Open(name, arkiv.WithLogger(g.logger))
			if err != nil {
				return errors.Wrapf(err, "cannot open %s", name)
			}
			defer a.Close()

			entries, err := a.List()
			if err != nil {
				return errors.Wrapf(err, "cannot list %s", name)
			}
			listings[i] = entries
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, entries := range listings {
		if len(l.Archives) > 1 {
			fmt.Fprintf(g.stdout, "%s:\n", l.Archives[i])
		}
		for _, e := range entries {
			printEntry(g.stdout, e, l.Long)
		}
	}
	return nil
}

// printEntry writes one line per entry
func printEntry(w io.Writer, e *arkiv.Entry, long bool) {
	if !long {
		fmt.Fprintln(w, e.Name())
		return
	}
	name := e.Name()
	if e.IsSymlink() {
		name = fmt.Sprintf("%s -> %s", name, e.Linkname())
	}
	fmt.Fprintf(w, "%-7s %s %10d %s %s\n", e.Kind(), e.Mode(), e.Size(), e.ModTime().Format(time.RFC3339), name)
}

// UnpackCmd unpacks a local archive
type UnpackCmd struct {
	Archive     string `arg:"" name:"archive" help:"Path to archive."`
	Destination string `arg:"" name:"destination" default:"." help:"Output directory."`

	UnpackFlags
}

// Run opens and unpacks the archive.
func (u *UnpackCmd) Run(g *globals) error {
	opts, flush, err := u.options(g.logger)
	if err != nil {
		return err
	}

	a, err := arkiv.Open(u.Archive, opts...)
	if err != nil {
		return errors.Wrapf(err, "cannot open %s", u.Archive)
	}
	defer a.Close()

	return unpack(a, u.Destination, u.MaxExtractionTime, flush)
}

// DownloadCmd downloads and unpacks a remote archive
type DownloadCmd struct {
	URL         string        `arg:"" name:"url" help:"URL of the archive (http, https or s3)."`
	Destination string        `arg:"" name:"destination" default:"." help:"Output directory."`
	Keep        string        `optional:"" type:"path" help:"Keep the downloaded archive in this directory."`
	Timeout     time.Duration `optional:"" default:"5m" help:"Timeout for the download."`
	S3Region    string        `optional:"" name:"s3-region" help:"AWS region for s3 URLs."`
	S3Endpoint  string        `optional:"" name:"s3-endpoint" help:"Custom endpoint for s3 URLs, e.g. MinIO."`

	UnpackFlags
}

// Run downloads the archive and unpacks it.
func (d *DownloadCmd) Run(g *globals) error {
	opts, flush, err := d.options(g.logger)
	if err != nil {
		return err
	}

	dlOpts := []arkiv.DownloaderOption{
		arkiv.WithFetcher("s3", arkiv.NewS3Fetcher(arkiv.WithS3Region(d.S3Region), arkiv.WithS3Endpoint(d.S3Endpoint))),
	}
	if len(d.Keep) > 0 {
		dlOpts = append(dlOpts, arkiv.WithDownloadDir(d.Keep))
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
	defer cancel()
	a, err := arkiv.NewDownloader(dlOpts...).Download(ctx, d.URL, opts...)
	if err != nil {
		return errors.Wrapf(err, "cannot download %s", d.URL)
	}
	defer a.Close()

	return unpack(a, d.Destination, d.MaxExtractionTime, flush)
}

// unpack unpacks a into dst within maxSeconds and writes metrics.
func unpack(a *arkiv.Archive, dst string, maxSeconds int64, flush func() error) error {
	ctx := context.Background()
	if maxSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second*time.Duration(maxSeconds))
		defer cancel()
	}

	if err := a.Unpack(ctx, dst); err != nil {
		return errors.Wrap(err, "error during unpack")
	}
	return flush()
}

// options converts the flags into config options. The returned function writes
// the metrics file, if requested.
func (f *UnpackFlags) options(logger *slog.Logger) ([]arkiv.ConfigOption, func() error, error) {
	flush := func() error { return nil }

	hooks := []arkiv.TelemetryHook{
		func(ctx context.Context, td *arkiv.TelemetryData) {
			if f.Metrics {
				logger.Info("unpack finished", "metrics", td)
			}
		},
	}

	if len(f.MetricsFile) > 0 {
		reg := prometheus.NewRegistry()
		hook, err := promhook.New(reg)
		if err != nil {
			return nil, nil, errors.Wrap(err, "cannot register metrics")
		}
		hooks = append(hooks, hook.TelemetryHook())
		flush = func() error {
			return errors.Wrap(prometheus.WriteToTextfile(f.MetricsFile, reg), "cannot write metrics")
		}
	}

	opts := []arkiv.ConfigOption{
		arkiv.WithContinueOnUnsupportedFiles(f.SkipUnsupported),
		arkiv.WithDenySymlinkExtraction(f.DenySymlinks),
		arkiv.WithInsecureTraverseSymlinks(f.FollowSymlinks),
		arkiv.WithLogger(logger),
		arkiv.WithMaxExtractionSize(f.MaxExtractionSize),
		arkiv.WithMaxFiles(f.MaxFiles),
		arkiv.WithMaxInputSize(f.MaxInputSize),
		arkiv.WithOverwrite(!f.NoOverwrite),
		arkiv.WithPatterns(f.Pattern...),
		arkiv.WithTelemetryHook(func(ctx context.Context, td *arkiv.TelemetryData) {
			for _, h := range hooks {
				h(ctx, td)
			}
		}),
	}
	return opts, flush, nil
}
