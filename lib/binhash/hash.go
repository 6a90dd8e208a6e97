// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// ChunkSize is the read size used when streaming a file.
const ChunkSize = 64 * 1024

// ErrorDigest is returned by Fingerprint in place of a digest when the
// file cannot be hashed.
const ErrorDigest = "error"

// Algorithm selects the hash function.
type Algorithm uint8

const (
	SHA256 Algorithm = iota
	BLAKE3
)

func (a Algorithm) String() string {
	switch a {
	case SHA256:
		return "sha256"
	case BLAKE3:
		return "blake3"
	default:
		return fmt.Sprintf("algorithm(%d)", a)
	}
}

// ParseAlgorithm maps a configuration name to an Algorithm. The empty
// string selects SHA256.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "", "sha256":
		return SHA256, nil
	case "blake3":
		return BLAKE3, nil
	default:
		return 0, fmt.Errorf("unknown hash algorithm %q (want sha256 or blake3)", name)
	}
}

func (a Algorithm) MarshalText() ([]byte, error) {
	if a != SHA256 && a != BLAKE3 {
		return nil, fmt.Errorf("cannot marshal %s", a)
	}
	return []byte(a.String()), nil
}

func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Algorithm) newHash() hash.Hash {
	if a == BLAKE3 {
		return blake3.New()
	}
	return sha256.New()
}

// HashFile computes the SHA-256 digest of the file at path.
func HashFile(path string) ([32]byte, error) {
	return HashFileWith(path, SHA256)
}

// HashFileWith computes the digest of the file at path with algorithm.
func HashFileWith(path string, algorithm Algorithm) ([32]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return [32]byte{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := algorithm.newHash()
	buffer := make([]byte, ChunkSize)
	for {
		count, err := file.Read(buffer)
		if count > 0 {
			hasher.Write(buffer[:count])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return [32]byte{}, fmt.Errorf("hashing %s: %w", path, err)
		}
	}

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// Fingerprint returns the hex SHA-256 digest of the file at path, or
// ErrorDigest if the file cannot be opened or read.
func Fingerprint(path string) string {
	return FingerprintWith(path, SHA256)
}

// FingerprintWith is Fingerprint with a chosen algorithm.
func FingerprintWith(path string, algorithm Algorithm) string {
	digest, err := HashFileWith(path, algorithm)
	if err != nil {
		return ErrorDigest
	}
	return FormatDigest(digest)
}

// FormatDigest returns the lowercase hex encoding of a digest.
func FormatDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a 64-character hex digest.
func ParseDigest(hexString string) ([32]byte, error) {
	var digest [32]byte
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing hash digest: %w", err)
	}
	if len(decoded) != 32 {
		return digest, fmt.Errorf("hash digest is %d bytes, want 32", len(decoded))
	}
	copy(digest[:], decoded)
	return digest, nil
}
