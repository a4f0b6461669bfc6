// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	stdzip "archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/capucosmetics/capucosmetic/lib/builderr"
	"github.com/capucosmetics/capucosmetic/lib/testutil"
)

// fixture writes a bundle and a metadata file and returns the entries
// that package them.
func fixture(t *testing.T, bundleSize int) []Entry {
	t.Helper()
	directory := t.TempDir()
	bundle := testutil.WriteSizedFile(t, filepath.Join(directory, "bundle", "capucosmetic"), bundleSize)
	metadata := testutil.WriteFile(t, filepath.Join(directory, "metadata.json"), []byte(`{"name": "Top Hat"}`))
	return []Entry{
		{Name: "capucosmetic", Path: bundle},
		{Name: "metadata.json", Path: metadata},
	}
}

func TestAssembleAndVerify(t *testing.T) {
	entries := fixture(t, 4096)
	output := filepath.Join(t.TempDir(), "Top Hat.capucosmetic")

	if err := Assemble(entries, output); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	manifest, err := Verify(output, entries)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if got, want := manifest.Names(), []string{"capucosmetic", "metadata.json"}; !slices.Equal(got, want) {
		t.Errorf("entries = %q, want %q", got, want)
	}
	if manifest.Entries[0].Size != 4096 {
		t.Errorf("bundle entry size = %d, want 4096", manifest.Entries[0].Size)
	}
	if manifest.Entries[1].Size != int64(len(`{"name": "Top Hat"}`)) {
		t.Errorf("metadata entry size = %d", manifest.Entries[1].Size)
	}
	for _, entry := range manifest.Entries {
		if entry.Method != "deflate" {
			t.Errorf("entry %q method = %q, want deflate", entry.Name, entry.Method)
		}
	}
	if manifest.Entries[0].Digest != HashBytes(testutil.ReadFile(t, entries[0].Path)) {
		t.Error("bundle digest does not match source content")
	}
}

func TestArchiveReadableByStandardZip(t *testing.T) {
	entries := fixture(t, 1000)
	output := filepath.Join(t.TempDir(), "hat.capucosmetic")
	if err := Assemble(entries, output); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	reader, err := stdzip.OpenReader(output)
	if err != nil {
		t.Fatalf("archive/zip cannot open the archive: %v", err)
	}
	defer reader.Close()

	for i, file := range reader.File {
		content, err := file.Open()
		if err != nil {
			t.Fatalf("opening %q: %v", file.Name, err)
		}
		data, err := io.ReadAll(content)
		content.Close()
		if err != nil {
			t.Fatalf("reading %q: %v", file.Name, err)
		}
		if !bytes.Equal(data, testutil.ReadFile(t, entries[i].Path)) {
			t.Errorf("entry %q content differs from source", file.Name)
		}
	}
}

func TestAssembleDeterministic(t *testing.T) {
	entries := fixture(t, 8192)
	directory := t.TempDir()
	first := filepath.Join(directory, "first.capucosmetic")
	second := filepath.Join(directory, "second.capucosmetic")

	if err := Assemble(entries, first); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if err := Assemble(entries, second); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !bytes.Equal(testutil.ReadFile(t, first), testutil.ReadFile(t, second)) {
		t.Error("assembling the same entries twice produced different bytes")
	}
}

func TestAssembleReplacesExisting(t *testing.T) {
	output := filepath.Join(t.TempDir(), "hat.capucosmetic")

	previous := fixture(t, 100)
	previous = append(previous, Entry{Name: "leftover.txt", Path: testutil.WriteFile(t, filepath.Join(t.TempDir(), "leftover.txt"), []byte("old"))})
	if err := Assemble(previous, output); err != nil {
		t.Fatalf("first Assemble: %v", err)
	}

	current := fixture(t, 200)
	if err := Assemble(current, output); err != nil {
		t.Fatalf("second Assemble: %v", err)
	}
	manifest, err := Inspect(output)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if got, want := manifest.Names(), []string{"capucosmetic", "metadata.json"}; !slices.Equal(got, want) {
		t.Errorf("entries after replacement = %q, want %q", got, want)
	}
	if manifest.Entries[0].Size != 200 {
		t.Errorf("bundle size = %d, want 200", manifest.Entries[0].Size)
	}
}

func TestAssembleMissingSourceKeepsPreviousArchive(t *testing.T) {
	output := filepath.Join(t.TempDir(), "hat.capucosmetic")
	if err := Assemble(fixture(t, 64), output); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	before := testutil.ReadFile(t, output)

	entries := fixture(t, 64)
	entries[0].Path = filepath.Join(t.TempDir(), "missing")
	err := Assemble(entries, output)
	if !builderr.Is(err, builderr.KindArchive) {
		t.Fatalf("Assemble() error = %v, want archive error", err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want it to mention the missing source", err)
	}
	if !bytes.Equal(testutil.ReadFile(t, output), before) {
		t.Error("previous archive was modified by a failed Assemble")
	}
}

func TestAssembleRejectsBadEntries(t *testing.T) {
	directory := t.TempDir()
	empty := testutil.WriteFile(t, filepath.Join(directory, "empty"), nil)
	full := testutil.WriteFile(t, filepath.Join(directory, "full"), []byte("x"))

	tests := []struct {
		name    string
		entries []Entry
		wantErr string
	}{
		{"no entries", nil, "no entries"},
		{"empty source", []Entry{{Name: "capucosmetic", Path: empty}}, "is empty"},
		{"directory source", []Entry{{Name: "capucosmetic", Path: directory}}, "not a regular file"},
		{"duplicate", []Entry{{Name: "a", Path: full}, {Name: "a", Path: full}}, "duplicate"},
		{"unnamed", []Entry{{Name: "", Path: full}}, "has no name"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "out.capucosmetic")
			err := Assemble(test.entries, output)
			if !builderr.Is(err, builderr.KindArchive) || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Assemble() error = %v, want archive error containing %q", err, test.wantErr)
			}
			if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
				t.Error("Assemble left an output file behind")
			}
		})
	}
}

func TestVerifyDetectsMismatch(t *testing.T) {
	entries := fixture(t, 512)
	output := filepath.Join(t.TempDir(), "hat.capucosmetic")
	if err := Assemble(entries, output); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	t.Run("missing entry", func(t *testing.T) {
		_, err := Verify(output, append(slices.Clone(entries), Entry{Name: "extra", Path: entries[0].Path}))
		if !builderr.Is(err, builderr.KindArchive) {
			t.Errorf("Verify() error = %v, want archive error", err)
		}
	})

	t.Run("reordered", func(t *testing.T) {
		_, err := Verify(output, []Entry{entries[1], entries[0]})
		if !builderr.Is(err, builderr.KindArchive) {
			t.Errorf("Verify() error = %v, want archive error", err)
		}
	})

	t.Run("size differs", func(t *testing.T) {
		grown := testutil.WriteSizedFile(t, filepath.Join(t.TempDir(), "grown"), 513)
		_, err := Verify(output, []Entry{{Name: "capucosmetic", Path: grown}, entries[1]})
		if err == nil || !strings.Contains(err.Error(), "513 bytes") {
			t.Errorf("Verify() error = %v, want size mismatch", err)
		}
	})

	t.Run("content differs", func(t *testing.T) {
		altered := testutil.WriteFile(t, filepath.Join(t.TempDir(), "altered"), make([]byte, 512))
		_, err := Verify(output, []Entry{{Name: "capucosmetic", Path: altered}, entries[1]})
		if err == nil || !strings.Contains(err.Error(), "content differs") {
			t.Errorf("Verify() error = %v, want digest mismatch", err)
		}
	})
}

func TestVerifyCorruptArchive(t *testing.T) {
	entries := fixture(t, 256)
	output := testutil.WriteFile(t, filepath.Join(t.TempDir(), "hat.capucosmetic"), []byte("PK not really"))
	if _, err := Verify(output, entries); !builderr.Is(err, builderr.KindArchive) {
		t.Errorf("Verify() error = %v, want archive error", err)
	}
}

func TestReadEntry(t *testing.T) {
	entries := fixture(t, 16)
	output := filepath.Join(t.TempDir(), "hat.capucosmetic")
	if err := Assemble(entries, output); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	data, err := ReadEntry(output, "metadata.json")
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(data) != `{"name": "Top Hat"}` {
		t.Errorf("ReadEntry() = %q", data)
	}
	if _, err := ReadEntry(output, "nope"); !builderr.Is(err, builderr.KindArchive) {
		t.Errorf("ReadEntry(missing) error = %v, want archive error", err)
	}
}

func TestDigestText(t *testing.T) {
	digest := HashBytes([]byte("capucosmetic"))
	text, err := digest.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var parsed Digest
	if err := parsed.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if parsed != digest {
		t.Errorf("round trip = %s, want %s", parsed, digest)
	}
	if err := parsed.UnmarshalText([]byte("abcd")); err == nil {
		t.Error("UnmarshalText(short) = nil, want error")
	}

	fromReader, size, err := HashReader(strings.NewReader("capucosmetic"))
	if err != nil || size != 12 || fromReader != digest {
		t.Errorf("HashReader() = %s, %d, %v; want %s, 12, nil", fromReader, size, err, digest)
	}
}
