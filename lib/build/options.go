// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package build

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/capucosmetics/capucosmetic/lib/builderr"
	"github.com/capucosmetics/capucosmetic/lib/bundler"
	"github.com/capucosmetics/capucosmetic/lib/cosmetic"
)

const (
	// DefaultStagingDir is the scratch directory used when none is
	// configured. It is destroyed and recreated by every build.
	DefaultStagingDir = "Temp/capucosmetic"

	// DefaultOutputDir is where finished archives are written.
	DefaultOutputDir = "Builds/Capucosmetics"

	// DefaultBundleName is the bundle the source asset is assigned to
	// and the name of the bundle entry inside the archive.
	DefaultBundleName = "capucosmetic"
)

// Options locates a build on disk and selects what the compiler
// produces.
type Options struct {
	// StagingDir is the scratch directory. Its previous contents are
	// deleted when the build starts.
	StagingDir string

	// OutputDir receives <name>.capucosmetic. Created if missing.
	OutputDir string

	// BundleName names the compiled bundle and its archive entry.
	BundleName string

	// Target is the platform the compiler builds for.
	Target bundler.Platform
}

// DefaultOptions returns the options the packager uses when nothing is
// configured.
func DefaultOptions() Options {
	return Options{
		StagingDir: DefaultStagingDir,
		OutputDir:  DefaultOutputDir,
		BundleName: DefaultBundleName,
		Target:     bundler.DefaultPlatform,
	}
}

// Validate checks the options without modifying the filesystem.
// Relative directories are resolved against the working directory.
// The staging directory is wiped at the start and end of every build,
// so it must not contain the output directory or the working
// directory.
func (o Options) Validate() error {
	if strings.TrimSpace(o.StagingDir) == "" {
		return builderr.Validation("staging directory is required")
	}
	if strings.TrimSpace(o.OutputDir) == "" {
		return builderr.Validation("output directory is required")
	}
	stagingDir, err := filepath.Abs(o.StagingDir)
	if err != nil {
		return builderr.Validation("resolving staging directory %q: %v", o.StagingDir, err)
	}
	outputDir, err := filepath.Abs(o.OutputDir)
	if err != nil {
		return builderr.Validation("resolving output directory %q: %v", o.OutputDir, err)
	}
	if workingDir, err := os.Getwd(); err == nil && isWithin(stagingDir, workingDir) {
		return builderr.Validation("staging directory %q contains the working directory %q", stagingDir, workingDir)
	}
	if isWithin(stagingDir, outputDir) {
		return builderr.Validation("output directory %q is inside staging directory %q, which is deleted after every build", outputDir, stagingDir)
	}
	if err := cosmetic.ValidateName("bundle name", o.BundleName); err != nil {
		return err
	}
	if o.BundleName == cosmetic.MetadataEntryName {
		return builderr.Validation("bundle name %q collides with the metadata entry", o.BundleName)
	}
	if !slices.Contains(bundler.Platforms, o.Target) {
		platform, err := bundler.ParsePlatform(string(o.Target))
		if err != nil {
			return err
		}
		return builderr.Validation("target platform %q must be spelled %q", o.Target, platform)
	}
	return nil
}

// isWithin reports whether path is root or a descendant of root. Both
// must be absolute and clean.
func isWithin(root, path string) bool {
	relative, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return relative == "." || (relative != ".." && !strings.HasPrefix(relative, ".."+string(filepath.Separator)))
}
