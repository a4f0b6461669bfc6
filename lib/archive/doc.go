// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive writes, verifies, and inspects .capucosmetic
// containers.
//
// A container is a standard ZIP archive. [Assemble] streams each
// [Entry]'s source file into a named, Deflate-compressed entry in the
// order given. Entry timestamps are pinned to 1980-01-01 UTC (the ZIP
// epoch) and file modes are fixed, so the archive bytes are a pure
// function of the entry names and contents.
//
// [Verify] is the acceptance gate after writing: it reopens the
// archive and checks that exactly the expected entries are present in
// order, that each declared size equals the source file size, and
// that each entry's BLAKE3 digest equals the source file's digest.
// [Inspect] lists any archive's entries with their digests.
//
// Replacing an existing archive is delete-then-create, not an atomic
// rename. A crash between the two leaves no file at the output path.
package archive
