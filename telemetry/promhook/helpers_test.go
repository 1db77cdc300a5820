// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package promhook_test

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"
)

// tarStream returns a tar archive with a single file
func tarStream(t *testing.T) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	content := []byte("hello world\n")
	if err := tw.WriteHeader(&tar.Header{Name: "hello.txt", Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf
}
