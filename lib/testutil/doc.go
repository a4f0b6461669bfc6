// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for capucosmetic
// packages.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (select with a time.After fallback) so that tests waiting on a
// goroutine cannot hang the suite.
//
// [WriteFile] and [WriteSizedFile] create fixture files, including the
// parent directories, and [ReadFile] reads them back.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no capucosmetic-internal dependencies.
package testutil
