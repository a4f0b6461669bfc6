// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding used on the external
// compiler boundary.
//
// Requests sent to an out-of-process bundle compiler are encoded with
// Core Deterministic Encoding (RFC 8949 §4.2) so the same request
// always produces the same bytes; a compiler wrapper can hash its
// stdin to cache builds. Consumers import this package rather than
// fxamacker/cbor directly so the encoding options stay in one place.
package codec
