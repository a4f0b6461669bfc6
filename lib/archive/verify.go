// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/klauspost/compress/zip"

	"github.com/capucosmetics/capucosmetic/lib/builderr"
)

// EntryInfo describes one entry of a written archive.
type EntryInfo struct {
	Name           string `json:"name"`
	Size           int64  `json:"size"`
	CompressedSize int64  `json:"compressed_size"`
	Method         string `json:"method"`
	Digest         Digest `json:"digest"`
}

// Manifest describes a whole archive.
type Manifest struct {
	Path    string      `json:"path"`
	Size    int64       `json:"size"`
	Entries []EntryInfo `json:"entries"`
}

// Names returns the entry names in archive order.
func (m Manifest) Names() []string {
	names := make([]string, len(m.Entries))
	for i, entry := range m.Entries {
		names[i] = entry.Name
	}
	return names
}

// Verify reopens the archive at path and checks it against the entries
// it was assembled from: the same names in the same order and nothing
// else, each declared size equal to its source file's size, and each
// entry's content digest equal to its source's digest. Reading every
// entry also checks its CRC-32. Returns the manifest of the archive on
// success and a [builderr.KindArchive] error on any mismatch.
func Verify(path string, entries []Entry) (Manifest, error) {
	manifest, err := Inspect(path)
	if err != nil {
		return Manifest{}, err
	}

	expected := make([]string, len(entries))
	for i, entry := range entries {
		expected[i] = entry.Name
	}
	if got := manifest.Names(); !slices.Equal(got, expected) {
		return Manifest{}, builderr.Archive("archive %s has entries %q, want %q", path, got, expected)
	}

	for i, entry := range entries {
		digest, size, err := HashFile(entry.Path)
		if err != nil {
			return Manifest{}, builderr.Wrap(builderr.KindArchive, err, "reading source for entry %q", entry.Name)
		}
		written := manifest.Entries[i]
		if written.Size != size {
			return Manifest{}, builderr.Archive("entry %q is %d bytes, source is %d bytes", entry.Name, written.Size, size)
		}
		if written.Digest != digest {
			return Manifest{}, builderr.Archive("entry %q content differs from source (digest %s, want %s)", entry.Name, written.Digest.Short(), digest.Short())
		}
	}
	return manifest, nil
}

// Inspect lists the entries of the archive at path, reading each one
// fully to compute its digest.
func Inspect(path string) (Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Manifest{}, builderr.Wrap(builderr.KindArchive, err, "opening archive")
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return Manifest{}, builderr.Wrap(builderr.KindArchive, err, "reading archive %s", path)
	}
	defer reader.Close()

	manifest := Manifest{Path: path, Size: info.Size(), Entries: make([]EntryInfo, 0, len(reader.File))}
	for _, file := range reader.File {
		entry, err := inspectEntry(file)
		if err != nil {
			return Manifest{}, err
		}
		manifest.Entries = append(manifest.Entries, entry)
	}
	return manifest, nil
}

func inspectEntry(file *zip.File) (EntryInfo, error) {
	content, err := file.Open()
	if err != nil {
		return EntryInfo{}, builderr.Wrap(builderr.KindArchive, err, "opening entry %q", file.Name)
	}
	defer content.Close()

	digest, read, err := HashReader(content)
	if err != nil {
		return EntryInfo{}, builderr.Wrap(builderr.KindArchive, err, "reading entry %q", file.Name)
	}
	if uint64(read) != file.UncompressedSize64 {
		return EntryInfo{}, builderr.Archive("entry %q yielded %d bytes, header declares %d", file.Name, read, file.UncompressedSize64)
	}

	return EntryInfo{
		Name:           file.Name,
		Size:           int64(file.UncompressedSize64),
		CompressedSize: int64(file.CompressedSize64),
		Method:         methodName(file.Method),
		Digest:         digest,
	}, nil
}

// ReadEntry returns the content of the named entry.
func ReadEntry(path, name string) ([]byte, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, builderr.Wrap(builderr.KindArchive, err, "reading archive %s", path)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		content, err := file.Open()
		if err != nil {
			return nil, builderr.Wrap(builderr.KindArchive, err, "opening entry %q", name)
		}
		defer content.Close()

		data, err := io.ReadAll(content)
		if err != nil {
			return nil, builderr.Wrap(builderr.KindArchive, err, "reading entry %q", name)
		}
		return data, nil
	}
	return nil, builderr.Archive("archive %s has no entry %q", path, name)
}

func methodName(method uint16) string {
	switch method {
	case zip.Store:
		return "store"
	case zip.Deflate:
		return "deflate"
	default:
		return fmt.Sprintf("method(%d)", method)
	}
}
