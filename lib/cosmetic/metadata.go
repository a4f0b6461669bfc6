// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package cosmetic

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/capucosmetics/capucosmetic/lib/builderr"
)

// ArchiveExtension is the file extension of packaged cosmetics.
const ArchiveExtension = ".capucosmetic"

// MetadataEntryName is the archive entry that holds the canonical
// metadata JSON.
const MetadataEntryName = "metadata.json"

// Metadata describes a cosmetic. The JSON field order is part of the
// archive format: consumers diff metadata.json across versions.
type Metadata struct {
	// Name is the display name and the output file name stem.
	Name string `json:"name"`

	Author string `json:"author"`

	// Version is the cosmetic's own revision number, starting at 1.
	Version int `json:"version"`

	Description string `json:"description"`

	// SyncToLeftHand attaches the cosmetic to the avatar's left hand.
	SyncToLeftHand bool `json:"syncToLeftHand"`

	// SyncToRightHand attaches the cosmetic to the avatar's right hand.
	SyncToRightHand bool `json:"syncToRightHand"`
}

// Default returns the metadata a new cosmetic starts with.
func Default() Metadata {
	return Metadata{
		Name:        "My cool CapuCosmetic!",
		Author:      "yourname",
		Version:     1,
		Description: "my very cool Capuchin custom cosmetic!",
	}
}

// Validate checks the invariants that must hold before a build touches
// the filesystem. Returns a [builderr.KindValidation] error.
func (m Metadata) Validate() error {
	if err := ValidateName("metadata name", m.Name); err != nil {
		return err
	}
	if m.Version < 1 {
		return builderr.Validation("metadata version must be at least 1, got %d", m.Version)
	}
	if !utf8.ValidString(m.Author) {
		return builderr.Validation("metadata author %q is not valid UTF-8", m.Author)
	}
	if !utf8.ValidString(m.Description) {
		return builderr.Validation("metadata description %q is not valid UTF-8", m.Description)
	}
	return nil
}

// FileName returns the archive file name for this cosmetic:
// "<name>.capucosmetic". The name is not validated.
func (m Metadata) FileName() string {
	return m.Name + ArchiveExtension
}

// ValidateName rejects names that cannot be used as a single path
// element: empty or whitespace-only names, "." and "..", invalid UTF-8,
// and names containing '/', '\' or NUL. Both separators are rejected on every
// platform because archives travel between platforms. kind names the
// value in the error message ("metadata name", "bundle name").
func ValidateName(kind, value string) error {
	if strings.TrimSpace(value) == "" {
		return builderr.Validation("%s is empty", kind)
	}
	if value == "." || value == ".." {
		return builderr.Validation("%s %q is not a valid file name", kind, value)
	}
	if !utf8.ValidString(value) {
		return builderr.Validation("%s %q is not valid UTF-8", kind, value)
	}
	if index := strings.IndexAny(value, "/\\\x00"); index >= 0 {
		return builderr.Validation("%s %q contains forbidden character %q", kind, value, value[index])
	}
	return nil
}

// Marshal encodes metadata in its canonical archive form: 4-space
// indented JSON, every field present, no trailing newline, and no
// HTML escaping of '<', '>' or '&' in descriptions.
func Marshal(m Metadata) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(m); err != nil {
		return nil, builderr.Wrap(builderr.KindIO, err, "encoding metadata")
	}
	return bytes.TrimSuffix(buffer.Bytes(), []byte("\n")), nil
}

// Unmarshal decodes canonical metadata JSON and validates the result.
// Unknown fields are ignored so that archives written by newer tools
// remain readable.
func Unmarshal(data []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, builderr.Validation("decoding metadata: %v", err)
	}
	if err := m.Validate(); err != nil {
		return Metadata{}, err
	}
	return m, nil
}
