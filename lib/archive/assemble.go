// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/capucosmetics/capucosmetic/lib/builderr"
)

// entryTime is the modification time recorded for every entry: the
// earliest time a ZIP header can express.
var entryTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// entryMode is the file mode recorded for every entry.
const entryMode fs.FileMode = 0o644

// Entry pairs an archive entry name with the file supplying its bytes.
type Entry struct {
	Name string
	Path string
}

// Assemble writes entries, in order, into a new archive at outputPath.
// Any existing file at outputPath is deleted first. Every source must
// exist and be a non-empty regular file; this is checked before the
// old archive is touched. On failure a partially written archive is
// removed. Errors are [builderr.KindArchive].
func Assemble(entries []Entry, outputPath string) error {
	if err := checkEntries(entries); err != nil {
		return err
	}

	if err := os.Remove(outputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return builderr.Wrap(builderr.KindArchive, err, "removing previous archive")
	}

	file, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return builderr.Wrap(builderr.KindArchive, err, "creating archive")
	}

	if err := write(file, entries); err != nil {
		file.Close()
		os.Remove(outputPath)
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(outputPath)
		return builderr.Wrap(builderr.KindArchive, err, "flushing archive")
	}
	if err := file.Close(); err != nil {
		os.Remove(outputPath)
		return builderr.Wrap(builderr.KindArchive, err, "closing archive")
	}
	return nil
}

func checkEntries(entries []Entry) error {
	if len(entries) == 0 {
		return builderr.Archive("no entries to archive")
	}
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.Name == "" {
			return builderr.Archive("entry for %s has no name", entry.Path)
		}
		if seen[entry.Name] {
			return builderr.Archive("duplicate entry name %q", entry.Name)
		}
		seen[entry.Name] = true

		info, err := os.Stat(entry.Path)
		if errors.Is(err, fs.ErrNotExist) {
			return builderr.Archive("source for entry %q not found at %s", entry.Name, entry.Path)
		}
		if err != nil {
			return builderr.Wrap(builderr.KindArchive, err, "checking source for entry %q", entry.Name)
		}
		if !info.Mode().IsRegular() {
			return builderr.Archive("source for entry %q is not a regular file: %s", entry.Name, entry.Path)
		}
		if info.Size() == 0 {
			return builderr.Archive("source for entry %q is empty: %s", entry.Name, entry.Path)
		}
	}
	return nil
}

func write(output io.Writer, entries []Entry) error {
	writer := zip.NewWriter(output)
	writer.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	for _, entry := range entries {
		if err := writeEntry(writer, entry); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return builderr.Wrap(builderr.KindArchive, err, "finishing archive")
	}
	return nil
}

func writeEntry(writer *zip.Writer, entry Entry) error {
	source, err := os.Open(entry.Path)
	if err != nil {
		return builderr.Wrap(builderr.KindArchive, err, "opening source for entry %q", entry.Name)
	}
	defer source.Close()

	header := &zip.FileHeader{
		Name:     entry.Name,
		Method:   zip.Deflate,
		Modified: entryTime,
	}
	header.SetMode(entryMode)

	destination, err := writer.CreateHeader(header)
	if err != nil {
		return builderr.Wrap(builderr.KindArchive, err, "adding entry %q", entry.Name)
	}
	if _, err := io.Copy(destination, source); err != nil {
		return builderr.Wrap(builderr.KindArchive, err, "writing entry %q", entry.Name)
	}
	return nil
}
