// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package bundler

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/capucosmetics/capucosmetic/lib/builderr"
)

// Asset is the root object of a cosmetic's hierarchy as handed over by
// the caller. The pipeline never interprets its bytes; it copies them
// into the staging area where the compiler picks them up.
type Asset interface {
	// Name identifies the asset in logs and error messages.
	Name() string

	// Open returns the asset's serialized contents.
	Open() (io.ReadCloser, error)
}

// FileAsset returns an Asset backed by a file on disk, such as a
// prefab exported from the editor.
func FileAsset(path string) Asset { return fileAsset(path) }

type fileAsset string

func (a fileAsset) Name() string { return filepath.Base(string(a)) }

func (a fileAsset) Open() (io.ReadCloser, error) { return os.Open(string(a)) }

// Path returns the file the asset is read from.
func (a fileAsset) Path() string { return string(a) }

// BytesAsset returns an in-memory Asset.
func BytesAsset(name string, data []byte) Asset {
	return &bytesAsset{name: name, data: data}
}

type bytesAsset struct {
	name string
	data []byte
}

func (a *bytesAsset) Name() string { return a.name }

func (a *bytesAsset) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(a.data)), nil
}

// Stage copies asset to destination, replacing any existing file.
// Returns the number of bytes written. An unreadable asset is an I/O
// failure; there is no compiler involvement yet.
func Stage(asset Asset, destination string) (int64, error) {
	source, err := asset.Open()
	if err != nil {
		return 0, builderr.Wrap(builderr.KindIO, err, "opening source asset %s", asset.Name())
	}
	defer source.Close()

	file, err := os.Create(destination)
	if err != nil {
		return 0, builderr.Wrap(builderr.KindIO, err, "creating staged asset")
	}
	written, copyErr := io.Copy(file, source)
	closeErr := file.Close()
	if copyErr != nil {
		return written, builderr.Wrap(builderr.KindIO, copyErr, "staging source asset %s", asset.Name())
	}
	if closeErr != nil {
		return written, builderr.Wrap(builderr.KindIO, closeErr, "staging source asset %s", asset.Name())
	}
	return written, nil
}
