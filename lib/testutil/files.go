// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t T, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// WriteSizedFile writes size bytes of a repeating, non-zero pattern to
// path. The pattern keeps content distinguishable from zero padding
// when a test compares bytes.
func WriteSizedFile(t T, path string, size int) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i%251) + 1
	}
	return WriteFile(t, path, data)
}

// ReadFile reads path or fails the test.
func ReadFile(t T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return data
}
