// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"
)

// now is overwritten in tests
var now = time.Now

// defaultFileMode is used for files without permission bits and if file attributes are dropped
const defaultFileMode fs.FileMode = 0640

// Unpack writes all entries of the archive below dst, which is created if it does
// not exist. Content is streamed to disk. Entries that would escape dst fail with
// [ErrPathTraversal] before anything is written for them. Unpack stops at the
// first error, entries written before stay on disk.
func (a *Archive) Unpack(ctx context.Context, dst string) error {
	return a.UnpackTo(ctx, NewTargetDisk(), dst)
}

// UnpackTo is [Archive.Unpack] with a custom [Target].
func (a *Archive) UnpackTo(ctx context.Context, t Target, dst string) error {
	if err := a.check(); err != nil {
		return err
	}
	u := newUnpacker(a, t, dst)
	defer u.emit(ctx)

	w, err := a.container.walk()
	if err != nil {
		return u.handleError("cannot read archive", err)
	}
	if err := u.prepare(); err != nil {
		return err
	}

	a.cfg.Logger().Info("unpack archive", "name", a.src.name, "format", a.format.String(), "dst", dst)
	for {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			return err
		}

		e, err := w.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return u.handleError("error reading", err)
		}
		if err := u.entry(w, e); err != nil {
			return err
		}
	}
	return u.finish()
}

// UnpackEntry writes the single entry e below dst. Missing parent directories
// are created. Calling it twice for the same entry replaces the file, unless
// overwriting is disabled.
func (a *Archive) UnpackEntry(ctx context.Context, e *Entry, dst string) error {
	if err := a.check(); err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("%w: nil entry", ErrEntryNotFound)
	}
	u := newUnpacker(a, NewTargetDisk(), dst)
	defer u.emit(ctx)

	if err := ctx.Err(); err != nil {
		return err
	}
	w, found, err := seekEntry(a.container, e.Name())
	if err != nil {
		return u.handleError("cannot find entry", err)
	}
	if err := u.prepare(); err != nil {
		return err
	}
	if err := u.entry(w, found); err != nil {
		return err
	}
	return u.finish()
}

// unpacker holds the state of a single unpack operation
type unpacker struct {
	cfg       *Config
	t         Target
	dst       string
	container container
	td        *TelemetryData
	start     time.Time

	files int64
	bytes int64

	// dirs are finalized after all content is written
	dirs []*dirAttributes
}

// dirAttributes are the attributes applied to a directory after unpack
type dirAttributes struct {
	path    string
	mode    fs.FileMode
	modTime time.Time
}

// newUnpacker prepares an unpack of a into dst
func newUnpacker(a *Archive, t Target, dst string) *unpacker {
	return &unpacker{
		cfg:       a.cfg,
		t:         t,
		dst:       dst,
		container: a.container,
		td:        &TelemetryData{Format: a.format.String()},
		start:     now(),
	}
}

// prepare creates the destination directory if it does not exist.
func (u *unpacker) prepare() error {
	if err := u.t.CreateDir(u.dst, u.cfg.CustomCreateDirMode()); err != nil {
		return u.handleError("cannot create destination", ioError(err))
	}
	stat, err := u.t.Lstat(u.dst)
	if err != nil {
		return u.handleError("cannot access destination", ioError(err))
	}

	// a symlinked destination is resolved once, symlinks below it are still rejected
	if stat.Mode()&fs.ModeSymlink != 0 {
		root, err := filepath.EvalSymlinks(u.dst)
		if err != nil {
			return u.handleError("cannot resolve destination", ioError(err))
		}
		if stat, err = u.t.Lstat(root); err != nil {
			return u.handleError("cannot access destination", ioError(err))
		}
		u.dst = root
	}
	if !stat.IsDir() {
		return u.handleError("cannot unpack", fmt.Errorf("%w: destination %s is not a directory", ErrIO, u.dst))
	}
	return nil
}

// entry writes e, the current entry of w.
func (u *unpacker) entry(w walker, e *Entry) error {
	cfg := u.cfg

	// check if maximum of objects is exceeded
	u.files++
	if err := cfg.CheckMaxFiles(u.files); err != nil {
		return u.handleError("max objects check failed", err)
	}

	// check if file needs to match patterns
	match, err := checkPatterns(cfg.Patterns(), e.Path())
	if err != nil {
		return u.handleError("cannot check pattern", err)
	}
	if !match {
		cfg.Logger().Info("skipping entry (pattern mismatch)", "name", e.Name())
		u.td.PatternMismatches++
		return nil
	}

	// validate the name before anything is written
	name, err := localName(e.Name())
	if err != nil {
		return u.handleError("invalid entry name", err)
	}

	cfg.Logger().Debug("unpack", "name", e.Name(), "kind", e.Kind().String())
	switch e.Kind() {

	case KindDir:
		if err := createDir(u.t, u.dst, name, cfg.CustomCreateDirMode(), cfg); err != nil {
			return u.handleError("failed to create safe directory", ioError(err))
		}
		u.dirs = append(u.dirs, &dirAttributes{
			path:    filepath.Join(u.dst, name),
			mode:    e.Mode(),
			modTime: e.ModTime(),
		})
		u.td.UnpackedDirs++
		return nil

	case KindFile:
		// check extraction size
		if err := cfg.CheckExtractionSize(u.bytes + e.Size()); err != nil {
			return u.handleError("max extraction size exceeded", err)
		}

		fin, err := w.open()
		if err != nil {
			return u.handleError("failed to open entry", err)
		}
		defer fin.Close()

		maxSize := int64(-1)
		if cfg.MaxExtractionSize() != -1 {
			maxSize = cfg.MaxExtractionSize() - u.bytes
		}
		written, err := createFile(u.t, u.dst, name, fin, u.fileMode(e), maxSize, cfg)
		u.bytes += written
		u.td.UnpackedSize = u.bytes
		if err != nil {
			return u.handleError("failed to create file", ioError(err))
		}
		if err := u.attributes(filepath.Join(u.dst, name), e); err != nil {
			return u.handleError("failed to set file attributes", ioError(err))
		}
		u.td.UnpackedFiles++
		return nil

	case KindSymlink:
		if cfg.DenySymlinkExtraction() {
			return u.unsupported(e)
		}
		if err := createSymlink(u.t, u.dst, name, e.Linkname(), cfg); err != nil {
			return u.handleError("failed to create symlink", ioError(err))
		}
		if !cfg.DropFileAttributes() && !e.ModTime().IsZero() {
			if err := u.t.Lchtimes(filepath.Join(u.dst, name), e.ModTime(), e.ModTime()); err != nil {
				return u.handleError("failed to set symlink times", ioError(err))
			}
		}
		u.td.UnpackedSymlinks++
		return nil

	case KindHardlink:
		if err := createHardlink(u.t, u.dst, name, e.Linkname(), cfg); err != nil {
			return u.handleError("failed to create hard link", ioError(err))
		}
		u.td.UnpackedFiles++
		return nil

	default:
		return u.unsupported(e)
	}
}

// unsupported skips e or fails, depending on the configuration
func (u *unpacker) unsupported(e *Entry) error {
	if u.cfg.ContinueOnUnsupportedFiles() {
		u.cfg.Logger().Info("skipped unsupported entry", "name", e.Name(), "kind", e.Kind().String())
		u.td.UnsupportedEntries++
		u.td.LastUnsupportedEntry = e.Name()
		return nil
	}
	return u.handleError("cannot unpack entry", fmt.Errorf("%w: %s (%s)", ErrUnsupportedEntry, e.Name(), e.Kind()))
}

// fileMode is the mode a file is created with
func (u *unpacker) fileMode(e *Entry) fs.FileMode {
	if u.cfg.DropFileAttributes() || e.Mode().Perm() == 0 {
		return defaultFileMode
	}
	return e.Mode().Perm()
}

// attributes applies permission bits and modification time of e to path.
func (u *unpacker) attributes(path string, e *Entry) error {
	if u.cfg.DropFileAttributes() {
		return nil
	}
	if applyPermissions && e.Mode().Perm() != 0 {
		if err := u.t.Chmod(path, e.Mode().Perm()); err != nil {
			return err
		}
	}
	if !e.ModTime().IsZero() {
		if err := u.t.Chtimes(path, e.ModTime(), e.ModTime()); err != nil {
			return err
		}
	}
	return nil
}

// finish applies directory attributes, deepest directories first, so that
// restrictive modes and modification times are not changed by later writes.
func (u *unpacker) finish() error {
	if u.cfg.DropFileAttributes() {
		return nil
	}
	for i := len(u.dirs) - 1; i >= 0; i-- {
		d := u.dirs[i]
		if applyPermissions && d.mode.Perm() != 0 {
			if err := u.t.Chmod(d.path, d.mode.Perm()); err != nil {
				return u.handleError("failed to set directory mode", ioError(err))
			}
		}
		if !d.modTime.IsZero() {
			if err := u.t.Chtimes(d.path, d.modTime, d.modTime); err != nil {
				return u.handleError("failed to set directory times", ioError(err))
			}
		}
	}
	return nil
}

// handleError records err in the telemetry data and returns it with msg as context.
func (u *unpacker) handleError(msg string, err error) error {
	u.td.UnpackErrors++
	u.td.LastUnpackError = fmt.Errorf("%s: %w", msg, err)
	u.cfg.Logger().Error(msg, "error", err)
	return u.td.LastUnpackError
}

// emit completes the telemetry data and passes it to the hook
func (u *unpacker) emit(ctx context.Context) {
	u.td.UnpackDuration = now().Sub(u.start)
	u.td.InputSize = u.container.inputSize()
	u.cfg.TelemetryHook()(ctx, u.td)
}

// checkPatterns checks if the given path matches any of the given patterns.
// Without patterns, every path matches.
func checkPatterns(patterns []string, path string) (bool, error) {
	if len(patterns) == 0 {
		return true, nil
	}

	for _, pattern := range patterns {
		if match, err := filepath.Match(pattern, path); err != nil {
			return false, fmt.Errorf("failed to match pattern: %w", err)
		} else if match {
			return true, nil
		}
	}
	return false, nil
}
