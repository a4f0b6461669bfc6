// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package cosmetic defines the metadata record that describes a
// packaged cosmetic and its JSON forms.
//
// Two encodings exist:
//
//   - The canonical form written into every archive as metadata.json:
//     indented JSON with all six fields always present, produced by
//     [Marshal] and read back by [Unmarshal].
//   - The authoring form: JSONC (JSON with // and /* */ comments and
//     trailing commas) read by [Parse] and [ReadFile]. Fields missing
//     from an authoring file keep their [Default] values.
//
// The metadata name doubles as the output file name, so [Metadata.Validate]
// enforces that it is non-empty and filesystem-safe. [ValidateName] applies
// the same rule to other names that end up on disk (bundle names).
package cosmetic
