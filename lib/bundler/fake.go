// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package bundler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
)

// FakeCompiler is a deterministic [Compiler] for tests. By default it
// writes an ArtifactSize-byte artifact to OutputDir/BundleName. Set
// Omit to simulate a compiler that reports success without output,
// or Err to simulate a reported failure.
type FakeCompiler struct {
	// ArtifactSize is the size of the emitted artifact in bytes.
	ArtifactSize int

	// Omit skips writing the artifact while still reporting success.
	Omit bool

	// Err is returned instead of compiling.
	Err error

	// Output is returned as the compiler's console output.
	Output string

	// Extra names additional small files written into the output
	// directory, the way engine compilers emit manifests beside the
	// bundle.
	Extra []string

	// OnCompile, if set, runs first on every call. A non-nil error is
	// returned as the compiler's failure.
	OnCompile func(Request) error

	mu       sync.Mutex
	requests []Request
}

// Compile records the request and simulates a compilation.
func (f *FakeCompiler) Compile(_ context.Context, request Request) (Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, request)
	f.mu.Unlock()

	response := Response{Output: f.Output}
	if f.OnCompile != nil {
		if err := f.OnCompile(request); err != nil {
			return response, err
		}
	}
	if f.Err != nil {
		return response, f.Err
	}

	for _, name := range f.Extra {
		if err := os.WriteFile(filepath.Join(request.OutputDir, name), []byte("manifest\n"), 0o644); err != nil {
			return response, err
		}
	}
	if f.Omit {
		return response, nil
	}
	if err := os.WriteFile(filepath.Join(request.OutputDir, request.BundleName), FakeArtifact(f.ArtifactSize), 0o644); err != nil {
		return response, err
	}
	return response, nil
}

// Requests returns the requests seen so far.
func (f *FakeCompiler) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// FakeArtifact returns the bytes a FakeCompiler writes for a bundle of
// the given size.
func FakeArtifact(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}
	return data
}
