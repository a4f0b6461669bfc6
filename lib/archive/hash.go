// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 keyed digest of an entry's content.
type Digest [32]byte

// entryDomainKey keys every entry digest. It is the ASCII domain name
// zero-padded to 32 bytes; changing it changes every reported digest.
var entryDomainKey = [32]byte{
	'c', 'a', 'p', 'u', 'c', 'o', 's', 'm', 'e', 't', 'i', 'c', '.', 'e', 'n', 't',
	'r', 'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// String returns the lowercase hex encoding.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// MarshalText encodes the digest as hex for JSON reports.
func (d Digest) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText parses a hex digest.
func (d *Digest) UnmarshalText(text []byte) error {
	decoded, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != len(d) {
		return fmt.Errorf("parsing digest: got %d bytes, want %d", len(decoded), len(d))
	}
	copy(d[:], decoded)
	return nil
}

// Short returns the first 12 hex characters, enough to tell entries
// apart in human-readable output.
func (d Digest) Short() string { return d.String()[:12] }

// HashReader digests everything r yields and returns the digest and
// the number of bytes read.
func HashReader(r io.Reader) (Digest, int64, error) {
	hasher, err := blake3.NewKeyed(entryDomainKey[:])
	if err != nil {
		panic("archive: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	count, err := io.Copy(hasher, r)
	if err != nil {
		return Digest{}, count, err
	}
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, count, nil
}

// HashBytes digests data.
func HashBytes(data []byte) Digest {
	hasher, err := blake3.NewKeyed(entryDomainKey[:])
	if err != nil {
		panic("archive: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// HashFile digests the file at path and returns its size.
func HashFile(path string) (Digest, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, 0, err
	}
	defer file.Close()
	return HashReader(file)
}
