// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package build runs the cosmetic packaging pipeline end to end.
//
// A [Builder] performs exactly one build. [Builder.Run] validates the
// metadata, then walks the pipeline strictly in order:
//
//	Idle -> Staging -> Compiling -> SerializingMetadata ->
//	Assembling -> Verifying -> CleaningUp -> Succeeded | Failed
//
// Validation happens while the builder is still Idle and never touches
// the filesystem; a validation failure moves straight to Failed. Every
// other failure aborts the remaining stages and goes through
// CleaningUp, which always tears down the staging area and releases
// the staging lock. A teardown failure becomes a warning on the
// [Result] and never changes the verdict.
//
// The staging directory is guarded by a [staging.Lock] from Staging
// through CleaningUp, so builds sharing a staging path in different
// processes run one at a time.
package build
