// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLocalName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr error
	}{
		{name: "file.txt", want: "file.txt"},
		{name: "dir/", want: "dir"},
		{name: "./dir/file.txt", want: filepath.Join("dir", "file.txt")},
		{name: "dir/../file.txt", want: "file.txt"},
		{name: ".", want: "."},
		{name: "./", want: "."},
		{name: "", wantErr: ErrContainer},
		{name: "/etc/passwd", wantErr: ErrPathTraversal},
		{name: "../file.txt", wantErr: ErrPathTraversal},
		{name: "dir/../../file.txt", wantErr: ErrPathTraversal},
		{name: "..", wantErr: ErrPathTraversal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := localName(test.name)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("localName(%q) error = %v, want %v", test.name, err, test.wantErr)
			}
			if got != test.want {
				t.Errorf("localName(%q) = %q, want %q", test.name, got, test.want)
			}
		})
	}
}

func TestSecurityCheck(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		traverse bool
		prep     func(t *testing.T, dst string)
		wantErr  error
	}{
		{name: "destination itself", path: "."},
		{name: "plain path", path: filepath.Join("foo", "bar")},
		{name: "traversal", path: filepath.Join("..", "bar"), wantErr: ErrPathTraversal},
		{name: "traversal after dir", path: filepath.Join("foo", "..", "..", "bar"), wantErr: ErrPathTraversal},
		{
			name:    "symlink in path",
			path:    filepath.Join("link", "bar"),
			prep:    linkTo("link", "foo"),
			wantErr: ErrPathTraversal,
		},
		{
			name:     "symlink in path with traversal allowed",
			path:     filepath.Join("link", "bar"),
			traverse: true,
			prep:     linkTo("link", "foo"),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if runtime.GOOS == "windows" && test.prep != nil {
				t.Skip("symlinks require elevated privileges on windows")
			}
			dst := t.TempDir()
			if test.prep != nil {
				test.prep(t, dst)
			}
			cfg := NewConfig(WithInsecureTraverseSymlinks(test.traverse))
			err := securityCheck(NewTargetDisk(), dst, test.path, cfg)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("securityCheck(%q) error = %v, want %v", test.path, err, test.wantErr)
			}
		})
	}
}

func TestCreateSymlink_Target(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}

	tests := []struct {
		name    string
		link    string
		target  string
		wantErr error
	}{
		{name: "sibling", link: "link", target: "file"},
		{name: "nested", link: filepath.Join("dir", "link"), target: filepath.Join("..", "file")},
		{name: "absolute", link: "link", target: "/etc/passwd", wantErr: ErrPathTraversal},
		{name: "escaping", link: "link", target: "../outside", wantErr: ErrPathTraversal},
		{name: "nested escaping", link: filepath.Join("dir", "link"), target: "../../outside", wantErr: ErrPathTraversal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dst := t.TempDir()
			err := createSymlink(NewTargetDisk(), dst, test.link, test.target, NewConfig())
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("createSymlink(%q -> %q) error = %v, want %v", test.link, test.target, err, test.wantErr)
			}
			if err != nil {
				return
			}
			got, err := os.Readlink(filepath.Join(dst, test.link))
			if err != nil {
				t.Fatalf("Readlink() failed: %v", err)
			}
			if got != test.target {
				t.Errorf("symlink target = %q, want %q", got, test.target)
			}
		})
	}
}

func TestCreateFile_NoOverwrite(t *testing.T) {
	dst := t.TempDir()
	cfg := NewConfig(WithOverwrite(false))

	if _, err := createFile(NewTargetDisk(), dst, filepath.Join("dir", "file"), bytes.NewReader([]byte("one")), 0644, -1, cfg); err != nil {
		t.Fatalf("createFile() failed: %v", err)
	}
	if _, err := createFile(NewTargetDisk(), dst, filepath.Join("dir", "file"), bytes.NewReader([]byte("two")), 0644, -1, cfg); err == nil {
		t.Fatalf("createFile() should fail for an existing file without overwrite")
	}

	data, err := os.ReadFile(filepath.Join(dst, "dir", "file"))
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if string(data) != "one" {
		t.Errorf("content = %q, want %q", data, "one")
	}
}

func TestCreateFile_MaxSize(t *testing.T) {
	dst := t.TempDir()
	n, err := createFile(NewTargetDisk(), dst, "file", bytes.NewReader([]byte("12345")), 0644, 3, NewConfig())
	if !errors.Is(err, ErrMaxExtractionSizeExceeded) {
		t.Fatalf("createFile() error = %v, want %v", err, ErrMaxExtractionSizeExceeded)
	}
	if n != 3 {
		t.Errorf("createFile() = %d, want 3", n)
	}
}

// linkTo prepares a directory target and a symlink name pointing to it
func linkTo(name, target string) func(t *testing.T, dst string) {
	return func(t *testing.T, dst string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Join(dst, target), 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.Symlink(target, filepath.Join(dst, name)); err != nil {
			t.Fatal(err)
		}
	}
}

// FuzzSecurityCheck is a fuzzer for the securityCheck function
func FuzzSecurityCheck(f *testing.F) {
	f.Add("name")
	f.Add("../name")
	d := NewTargetDisk()
	f.Fuzz(func(t *testing.T, name string) {
		tmp := t.TempDir()
		_ = securityCheck(d, tmp, name, NewConfig())
	})
}
