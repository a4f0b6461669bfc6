// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package cosmetic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/capucosmetics/capucosmetic/lib/builderr"
)

// Decode strips JSONC comments and trailing commas from data and
// decodes the result over [Default]. Unknown fields are rejected: in an
// authoring file they are almost always typos ("syncLeftHand"). The
// result is not validated, so callers can still override fields.
func Decode(data []byte) (Metadata, error) {
	metadata := Default()

	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&metadata); err != nil {
		return Metadata{}, builderr.Validation("parsing metadata: %v", err)
	}
	return metadata, nil
}

// Parse is [Decode] followed by [Metadata.Validate].
func Parse(data []byte) (Metadata, error) {
	metadata, err := Decode(data)
	if err != nil {
		return Metadata{}, err
	}
	if err := metadata.Validate(); err != nil {
		return Metadata{}, err
	}
	return metadata, nil
}

// LoadFile reads and decodes a JSONC metadata file without validating
// it.
func LoadFile(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, builderr.Wrap(builderr.KindIO, err, "reading metadata")
	}

	metadata, err := Decode(data)
	if err != nil {
		return Metadata{}, fmt.Errorf("%s: %w", path, err)
	}
	return metadata, nil
}

// ReadFile reads, decodes and validates a JSONC metadata file.
func ReadFile(path string) (Metadata, error) {
	metadata, err := LoadFile(path)
	if err != nil {
		return Metadata{}, err
	}
	if err := metadata.Validate(); err != nil {
		return Metadata{}, fmt.Errorf("%s: %w", path, err)
	}
	return metadata, nil
}

// Template returns a commented JSONC authoring file populated with m.
// The output parses back to m with [Parse].
func Template(m Metadata) []byte {
	quote := func(s string) string {
		encoded, _ := json.Marshal(s)
		return string(encoded)
	}

	var buffer bytes.Buffer
	fmt.Fprintf(&buffer, "// Cosmetic metadata. Packaged as metadata.json inside the archive.\n")
	fmt.Fprintf(&buffer, "{\n")
	fmt.Fprintf(&buffer, "    // Display name. Also the archive file name, so no '/' or '\\'.\n")
	fmt.Fprintf(&buffer, "    \"name\": %s,\n", quote(m.Name))
	fmt.Fprintf(&buffer, "    \"author\": %s,\n", quote(m.Author))
	fmt.Fprintf(&buffer, "    // Bump on every release, starting at 1.\n")
	fmt.Fprintf(&buffer, "    \"version\": %d,\n", m.Version)
	fmt.Fprintf(&buffer, "    \"description\": %s,\n", quote(m.Description))
	fmt.Fprintf(&buffer, "    // Attach the cosmetic to the avatar's hands.\n")
	fmt.Fprintf(&buffer, "    \"syncToLeftHand\": %t,\n", m.SyncToLeftHand)
	fmt.Fprintf(&buffer, "    \"syncToRightHand\": %t,\n", m.SyncToRightHand)
	fmt.Fprintf(&buffer, "}\n")
	return buffer.Bytes()
}
