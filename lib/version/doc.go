// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the capucosmetic
// binary.
//
// Release builds inject values with -ldflags -X:
//
//	go build -ldflags "-X github.com/capucosmetics/capucosmetic/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Builds without injected values fall back to the VCS stamp the Go
// toolchain records in the binary, when there is one.
package version
