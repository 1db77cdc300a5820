// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Target specifies all functions needed to write the entries of an archive to a destination.
type Target interface {
	// CreateFile creates a file at the specified path with src as content. The mode parameter is the file mode that
	// should be set on the file. If the file already exists and overwrite is false, an error should be returned. If the
	// file does not exist, it should be created. The size of the file should not exceed maxSize. If the file is created
	// successfully, the number of bytes written should be returned. If an error occurs, the number of bytes written
	// should be returned along with the error. If maxSize < 0, the file size is not limited.
	CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir creates at the specified path with the specified mode. If the directory already exists, nothing is done.
	CreateDir(path string, mode fs.FileMode) error

	// CreateSymlink creates a symbolic link from newname to oldname. If newname already exists and overwrite is false,
	// the function returns an error. If newname already exists and overwrite is true, the existing entry is replaced.
	CreateSymlink(oldname string, newname string, overwrite bool) error

	// CreateHardlink creates newname as hard link to the existing file oldname. If newname already exists and
	// overwrite is false, the function returns an error.
	CreateHardlink(oldname string, newname string, overwrite bool) error

	// Lstat see docs for os.Lstat. Main purpose is to check for symlinks in the extraction path.
	Lstat(path string) (fs.FileInfo, error)

	// Chmod see docs for os.Chmod. Main purpose is to set the file mode of a file or directory.
	Chmod(name string, mode fs.FileMode) error

	// Chtimes see docs for os.Chtimes. Main purpose is to set the file times of a file or directory.
	Chtimes(name string, atime, mtime time.Time) error

	// Lchtimes see docs for os.Lchtimes. Main purpose is to set the file times of a symlink.
	Lchtimes(name string, atime, mtime time.Time) error
}

// localName converts the archive entry name to a relative, os specific path below
// the destination. Absolute names and names that climb above the destination fail
// with [ErrPathTraversal].
func localName(name string) (string, error) {
	if len(name) == 0 {
		return "", fmt.Errorf("%w: empty entry name", ErrContainer)
	}
	if path.IsAbs(name) || filepath.IsAbs(name) || len(filepath.VolumeName(name)) > 0 {
		return "", fmt.Errorf("%w: absolute path %q", ErrPathTraversal, name)
	}
	local := filepath.Join(strings.Split(name, "/")...)
	if local == "." {
		return local, nil
	}
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}
	return local, nil
}

// createFile writes src below dst. Missing parent directories are created with
// cfg.CustomCreateDirMode(). Symlinks in the path are rejected unless
// cfg.TraverseSymlinks() returns true.
func createFile(t Target, dst string, name string, src io.Reader, mode fs.FileMode, maxSize int64, cfg *Config) (int64, error) {
	// ensures that the parent directory exists and is safe to write to
	if err := createDir(t, dst, filepath.Dir(name), cfg.CustomCreateDirMode(), cfg); err != nil {
		return 0, fmt.Errorf("cannot create directory: %w", err)
	}

	// ensure that if the file exist that it is not a symlink
	if err := securityCheck(t, dst, name, cfg); err != nil {
		return 0, err
	}
	return t.CreateFile(filepath.Join(dst, name), src, mode, cfg.Overwrite(), maxSize)
}

// createDir creates the directory name below dst, including all parents.
func createDir(t Target, dst string, name string, mode fs.FileMode, cfg *Config) error {
	// no action needed
	if name == "." {
		return nil
	}

	// perform security check to ensure that the path is safe to write to
	if err := securityCheck(t, dst, name, cfg); err != nil {
		return err
	}

	return t.CreateDir(filepath.Join(dst, name), mode)
}

// createSymlink creates the symlink name below dst pointing to linkTarget. Absolute
// link targets and targets that resolve outside of dst fail with [ErrPathTraversal].
func createSymlink(t Target, dst string, name string, linkTarget string, cfg *Config) error {
	// check if link target is absolute path
	if path.IsAbs(linkTarget) || filepath.IsAbs(linkTarget) {
		return fmt.Errorf("%w: symlink %q with absolute target %q", ErrPathTraversal, name, linkTarget)
	}

	// create link directory && check for traversal in file name
	linkDirectory := filepath.Dir(name)
	if err := createDir(t, dst, linkDirectory, cfg.CustomCreateDirMode(), cfg); err != nil {
		return fmt.Errorf("cannot create directory for symlink: %w", err)
	}

	// check link target for traversal
	targetCleaned := filepath.Join(linkDirectory, filepath.FromSlash(linkTarget))
	if err := securityCheck(t, dst, targetCleaned, cfg); err != nil {
		return fmt.Errorf("symlink %q target: %w", name, err)
	}

	return t.CreateSymlink(linkTarget, filepath.Join(dst, name), cfg.Overwrite())
}

// createHardlink creates the hard link name below dst to linkTarget, a file that
// was unpacked before. Tar stores the target relative to the archive root, it
// must not leave dst.
func createHardlink(t Target, dst string, name string, linkTarget string, cfg *Config) error {
	target, err := localName(linkTarget)
	if err != nil {
		return fmt.Errorf("hard link %q target: %w", name, err)
	}
	if target == "." || target == name {
		return fmt.Errorf("%w: hard link %q with invalid target %q", ErrContainer, name, linkTarget)
	}
	if err := securityCheck(t, dst, target, cfg); err != nil {
		return fmt.Errorf("hard link %q target: %w", name, err)
	}

	if err := createDir(t, dst, filepath.Dir(name), cfg.CustomCreateDirMode(), cfg); err != nil {
		return fmt.Errorf("cannot create directory for hard link: %w", err)
	}
	if err := securityCheck(t, dst, name, cfg); err != nil {
		return err
	}

	return t.CreateHardlink(filepath.Join(dst, target), filepath.Join(dst, name), cfg.Overwrite())
}

// securityCheck checks if path, relative to dst, contains path traversal or
// an existing symlink.
//
// If the path contains a symlink and cfg.TraverseSymlinks() returns true,
// a warning is logged and the function continues.
func securityCheck(t Target, dst string, path string, cfg *Config) error {
	// get relative path from base to new directory target
	rel, err := filepath.Rel(dst, filepath.Join(dst, path))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPathTraversal, err)
	}
	// check if the relative path is local
	if rel != "." && !filepath.IsLocal(rel) {
		return fmt.Errorf("%w: %q", ErrPathTraversal, path)
	}
	if rel == "." {
		return nil
	}

	// check each dir in path
	elements := strings.Split(rel, string(os.PathSeparator))
	for i := range elements {
		subDirs := filepath.Join(elements[0 : i+1]...)
		symlink, err := isSymlink(t, filepath.Join(dst, subDirs))
		if err != nil {
			return fmt.Errorf("failed to check symlink: %w", err)
		}
		if symlink {
			if cfg.TraverseSymlinks() {
				cfg.Logger().Warn("traverse symlink", "sub-dir", subDirs)
				continue
			}
			return fmt.Errorf("%w: symlink in path %q", ErrPathTraversal, subDirs)
		}
	}

	return nil
}

// isSymlink checks if path is an existing symlink
func isSymlink(t Target, path string) (bool, error) {
	stat, err := t.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check path: %w", err)
	}
	return stat.Mode()&fs.ModeSymlink == fs.ModeSymlink, nil
}
