// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundler is the boundary to the external asset-bundle compiler.
//
// The compiler itself is not part of this module: it is an engine tool
// that turns a tagged source asset into one opaque binary per bundle
// name. [Compiler] is the capability interface for it. [Adapter] wraps
// a Compiler with the three responsibilities the packaging pipeline
// relies on:
//
//  1. Tag the staged source asset with the bundle name (a YAML
//     "<source>.meta" sidecar, mirroring engine importer meta files).
//  2. Invoke the compiler synchronously.
//  3. Resolve "<outputDir>/<bundleName>" and confirm a non-empty
//     regular file is there.
//
// Step 3 is the most important check in the pipeline. Compilers can
// report success while silently writing nothing (degenerate or empty
// input assets), so a missing artifact is a compilation failure even
// without a compiler error. Failures carry a listing of the output
// directory and the compiler's output tail via [Failure].
//
// Two Compiler implementations ship here: [ExecCompiler] runs an
// external command, and [FakeCompiler] is a deterministic double for
// tests.
package bundler
