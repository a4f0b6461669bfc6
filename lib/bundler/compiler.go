// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package bundler

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/capucosmetics/capucosmetic/lib/builderr"
	"github.com/capucosmetics/capucosmetic/lib/cosmetic"
	"github.com/capucosmetics/capucosmetic/lib/staging"
)

// Request is one compilation job as seen by the external compiler.
// The field tags define the CBOR and JSON wire names.
type Request struct {
	// Source is the staged, tagged source asset.
	Source string `cbor:"source" json:"source"`

	// Tag is the sidecar file carrying the bundle assignment.
	Tag string `cbor:"tag" json:"tag"`

	// BundleName is the bundle the source is assigned to. The
	// compiler must write its artifact to OutputDir/BundleName.
	BundleName string `cbor:"bundle_name" json:"bundle_name"`

	// OutputDir is the directory the compiler writes into.
	OutputDir string `cbor:"output_dir" json:"output_dir"`

	// Target is the build target platform.
	Target Platform `cbor:"target" json:"target"`
}

// Response is what a compiler reports back besides success/failure.
type Response struct {
	// Output is the tail of the compiler's console output, kept for
	// diagnostics.
	Output string
}

// Compiler turns a tagged source asset into a bundle artifact. A
// returned error means the compiler reported failure. A nil error is
// a claim of success that the [Adapter] verifies independently.
type Compiler interface {
	Compile(ctx context.Context, request Request) (Response, error)
}

// Failure is the error returned by [Adapter.Compile]. It wraps a
// [builderr.KindCompilation] (or I/O) error and carries the
// diagnostics collected before the staging area disappears.
type Failure struct {
	Err error

	// Output is the compiler's output tail, if any.
	Output string

	// Listing describes the output directory's contents at the time
	// of failure (see [staging.List]).
	Listing []string
}

func (f *Failure) Error() string { return f.Err.Error() }

func (f *Failure) Unwrap() error { return f.Err }

// Diagnostics returns the listing followed by the compiler output, one
// line per element, for inclusion in a build report.
func (f *Failure) Diagnostics() []string {
	var lines []string
	if len(f.Listing) > 0 {
		lines = append(lines, "Files in bundle output:")
		for _, line := range f.Listing {
			lines = append(lines, "- "+line)
		}
	}
	if f.Output != "" {
		lines = append(lines, "Compiler output:")
		lines = append(lines, f.Output)
	}
	return lines
}

// Adapter drives a [Compiler] for the packaging pipeline.
type Adapter struct {
	compiler Compiler
	logger   *slog.Logger
}

// NewAdapter wraps compiler. A nil logger discards log output.
func NewAdapter(compiler Compiler, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{compiler: compiler, logger: logger}
}

// Compile tags sourcePath with bundleName, runs the compiler, and
// returns the path of the compiled artifact, outputDir/bundleName.
//
// It fails with a [*Failure] wrapping a compilation error when the
// compiler reports failure, or when it reports success but the
// artifact is missing, is not a regular file, or is empty.
func (a *Adapter) Compile(ctx context.Context, sourcePath, bundleName, outputDir string, target Platform) (string, error) {
	if err := cosmetic.ValidateName("bundle name", bundleName); err != nil {
		return "", err
	}

	tagPath, err := WriteTag(sourcePath, bundleName)
	if err != nil {
		return "", err
	}

	request := Request{
		Source:     sourcePath,
		Tag:        tagPath,
		BundleName: bundleName,
		OutputDir:  outputDir,
		Target:     target,
	}
	a.logger.Debug("invoking bundle compiler",
		"bundle", bundleName,
		"target", string(target),
		"source", sourcePath,
	)

	response, err := a.compiler.Compile(ctx, request)
	if err != nil {
		if !builderr.Is(err, builderr.KindCompilation) {
			err = builderr.Wrap(builderr.KindCompilation, err, "compiling bundle %q", bundleName)
		}
		return "", &Failure{Err: err, Output: response.Output, Listing: staging.List(outputDir)}
	}

	artifactPath := filepath.Join(outputDir, bundleName)
	if err := checkArtifact(artifactPath); err != nil {
		a.logger.Error("bundle file not found after successful compile", "path", artifactPath)
		return "", &Failure{Err: err, Output: response.Output, Listing: staging.List(outputDir)}
	}

	if response.Output != "" {
		a.logger.Debug("bundle compiler output", "output", response.Output)
	}
	return artifactPath, nil
}

func checkArtifact(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return builderr.Compilation("compiler reported success but produced no artifact at %s", path)
	}
	if err != nil {
		return builderr.Wrap(builderr.KindCompilation, err, "checking compiled artifact")
	}
	if !info.Mode().IsRegular() {
		return builderr.Compilation("compiled artifact %s is not a regular file", path)
	}
	if info.Size() == 0 {
		return builderr.Compilation("compiled artifact %s is empty", path)
	}
	return nil
}
