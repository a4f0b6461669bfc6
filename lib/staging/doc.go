// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package staging manages the scratch directory a build works in.
//
// A staging area is created fresh for every build by [Prepare], which
// deletes whatever the path held before. Its layout is fixed:
//
//	<root>/source/<bundle>.prefab   staged source asset (plus .meta tag)
//	<root>/bundle/<bundle>          compiler output
//	<root>/metadata.json            serialized metadata
//
// Paths are deterministic, so two builds sharing a staging path would
// destroy each other's work. [Acquire] takes an exclusive flock(2) on
// "<root>.lock" that serializes such builds inside one process and
// across processes. The lock file lives beside the staging root
// because the root itself is deleted and recreated under the lock.
package staging
