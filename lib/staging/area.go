// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/capucosmetics/capucosmetic/lib/builderr"
)

const (
	sourceDirName    = "source"
	bundleDirName    = "bundle"
	metadataFileName = "metadata.json"

	// SourceExtension is appended to the bundle name to form the
	// staged source asset's file name.
	SourceExtension = ".prefab"
)

// Area is a prepared staging directory. It is owned by exactly one
// build and must be torn down when that build ends.
type Area struct {
	root string
}

// Prepare creates a clean staging area at path. An existing directory
// (or file) at path is removed recursively first. Empty paths and
// filesystem roots are refused. Returns a [builderr.KindIO] error on
// failure.
func Prepare(path string) (*Area, error) {
	root, err := cleanRoot(path)
	if err != nil {
		return nil, err
	}

	if err := os.RemoveAll(root); err != nil {
		return nil, builderr.Wrap(builderr.KindIO, err, "clearing staging directory")
	}

	area := &Area{root: root}
	for _, directory := range []string{area.root, area.sourceDir(), area.BundleDir()} {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return nil, builderr.Wrap(builderr.KindIO, err, "creating staging directory")
		}
	}
	return area, nil
}

// cleanRoot resolves path to an absolute directory and refuses values
// whose recursive deletion would be catastrophic.
func cleanRoot(path string) (string, error) {
	if path == "" {
		return "", builderr.IO("staging path is empty")
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return "", builderr.Wrap(builderr.KindIO, err, "resolving staging path %q", path)
	}
	if filepath.Dir(root) == root {
		return "", builderr.IO("refusing to use filesystem root %q as staging directory", root)
	}
	return root, nil
}

// Root returns the absolute staging root.
func (a *Area) Root() string { return a.root }

func (a *Area) sourceDir() string { return filepath.Join(a.root, sourceDirName) }

// SourcePath returns where the source asset for bundleName is staged.
func (a *Area) SourcePath(bundleName string) string {
	return filepath.Join(a.sourceDir(), bundleName+SourceExtension)
}

// BundleDir returns the directory the compiler writes bundles into.
func (a *Area) BundleDir() string { return filepath.Join(a.root, bundleDirName) }

// MetadataPath returns where the serialized metadata is written.
func (a *Area) MetadataPath() string { return filepath.Join(a.root, metadataFileName) }

// Teardown removes the staging area. It is idempotent: removing an
// area that is already gone succeeds. Callers log a returned error
// rather than letting it replace the build's own outcome.
func (a *Area) Teardown() error {
	if err := os.RemoveAll(a.root); err != nil {
		return builderr.Wrap(builderr.KindIO, err, "removing staging directory")
	}
	return nil
}

// List returns a sorted, human-readable listing of the regular files
// and directories directly inside directory, in the form
// "name (N bytes)" or "name/". A missing directory yields a single
// explanatory line instead of an error: listings are diagnostics and
// must never fail the report they are attached to.
func List(directory string) []string {
	entries, err := os.ReadDir(directory)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{fmt.Sprintf("%s: directory does not exist", directory)}
	}
	if err != nil {
		return []string{fmt.Sprintf("%s: %v", directory, err)}
	}
	if len(entries) == 0 {
		return []string{fmt.Sprintf("%s: directory is empty", directory)}
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			lines = append(lines, entry.Name()+"/")
			continue
		}
		info, err := entry.Info()
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s (%v)", entry.Name(), err))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (%d bytes)", entry.Name(), info.Size()))
	}
	sort.Strings(lines)
	return lines
}
