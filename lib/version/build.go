// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"os"
	"runtime"

	"github.com/memgrid/memgrid/lib/binhash"
)

// Build identifies the binary that produced a result. Export manifests
// and `memgrid version --json` carry it.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`

	// BinaryPath and BinaryDigest identify the running executable.
	// Empty when the executable could not be resolved.
	BinaryPath   string            `json:"binary_path,omitempty"`
	BinaryDigest string            `json:"binary_digest,omitempty"`
	Algorithm    binhash.Algorithm `json:"algorithm"`
}

// Stamp returns the build information without hashing the binary.
func Stamp() Build {
	return Build{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Current returns the stamp plus the digest of the running binary. On
// error the stamp is still returned, without a digest.
func Current(algorithm binhash.Algorithm) (Build, error) {
	build := Stamp()
	build.Algorithm = algorithm

	digest, path, err := ComputeSelfHash(algorithm)
	if err != nil {
		return build, err
	}
	build.BinaryPath = path
	build.BinaryDigest = digest
	return build, nil
}

// String formats the build as "0.1.0 (abc1234-dirty, 2026-01-02T03:04:05Z)".
func (b Build) String() string {
	dirty := ""
	if b.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", b.Version, b.Commit, dirty, b.BuildTime)
}

// Details is String followed by the toolchain and platform lines
// printed by `memgrid version`.
func (b Build) Details() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s", b, b.GoVersion, b.Platform)
}

// ComputeSelfHash returns the hex digest and absolute filesystem path
// of the currently running binary. On Linux os.Executable reads
// /proc/self/exe, which names the original binary even if it has been
// replaced on disk since the process started.
func ComputeSelfHash(algorithm binhash.Algorithm) (hash string, binaryPath string, err error) {
	executable, err := os.Executable()
	if err != nil {
		return "", "", fmt.Errorf("resolving own executable path: %w", err)
	}
	digest, err := binhash.HashFileWith(executable, algorithm)
	if err != nil {
		return "", "", fmt.Errorf("hashing own binary at %s: %w", executable, err)
	}
	return binhash.FormatDigest(digest), executable, nil
}
