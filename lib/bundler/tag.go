// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package bundler

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/capucosmetics/capucosmetic/lib/builderr"
)

// TagSuffix is appended to a source asset path to form its tag path.
const TagSuffix = ".meta"

// tagFormatVersion is the meta file schema version understood by
// compilers.
const tagFormatVersion = 2

// Tag is the sidecar document that assigns a source asset to a bundle.
// The layout follows engine importer meta files so that compiler
// wrappers can copy it next to the asset inside an engine project.
type Tag struct {
	FileFormatVersion int         `yaml:"fileFormatVersion"`
	Importer          TagImporter `yaml:"importer"`
}

// TagImporter carries the bundle assignment.
type TagImporter struct {
	AssetBundleName    string `yaml:"assetBundleName"`
	AssetBundleVariant string `yaml:"assetBundleVariant"`
}

// WriteTag assigns sourcePath to bundleName by writing
// "<sourcePath>.meta". Returns the tag path.
func WriteTag(sourcePath, bundleName string) (string, error) {
	data, err := yaml.Marshal(Tag{
		FileFormatVersion: tagFormatVersion,
		Importer:          TagImporter{AssetBundleName: bundleName},
	})
	if err != nil {
		return "", builderr.Wrap(builderr.KindIO, err, "encoding bundle tag")
	}

	tagPath := sourcePath + TagSuffix
	if err := os.WriteFile(tagPath, data, 0o644); err != nil {
		return "", builderr.Wrap(builderr.KindIO, err, "tagging source asset")
	}
	return tagPath, nil
}

// ReadTag reads a tag written by [WriteTag].
func ReadTag(tagPath string) (Tag, error) {
	data, err := os.ReadFile(tagPath)
	if err != nil {
		return Tag{}, builderr.Wrap(builderr.KindIO, err, "reading bundle tag")
	}
	var tag Tag
	if err := yaml.Unmarshal(data, &tag); err != nil {
		return Tag{}, builderr.Wrap(builderr.KindIO, err, "decoding bundle tag %s", tagPath)
	}
	return tag, nil
}
