// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/memgrid/memgrid/lib/binhash"
	"github.com/memgrid/memgrid/lib/clock"
	"github.com/memgrid/memgrid/lib/outputfile"
	"github.com/memgrid/memgrid/lib/version"
)

// ManifestName is the file WriteManifest commits.
const ManifestName = "manifest.json"

// ErrNoName is returned by Write when the export name is empty.
var ErrNoName = errors.New("export name is empty")

// Options configure a Writer.
type Options struct {
	Format      Format
	Compression Compression
	Algorithm   binhash.Algorithm

	// Logger receives one event per committed export. Nil selects
	// slog.Default().
	Logger *slog.Logger

	// Clock stamps artifacts and the manifest. Nil selects clock.Real().
	Clock clock.Clock

	// RunID is copied into every artifact and the manifest.
	RunID string

	// Build, when set, is recorded in the manifest.
	Build *version.Build
}

// Artifact describes one committed export.
type Artifact struct {
	Name        string            `json:"name"`
	Path        string            `json:"path"`
	Format      Format            `json:"format"`
	Compression Compression       `json:"compression"`
	Size        int64             `json:"size"`
	Digest      string            `json:"digest"`
	Algorithm   binhash.Algorithm `json:"algorithm"`
	RunID       string            `json:"run_id,omitempty"`
	CommittedAt time.Time         `json:"committed_at"`
}

// Manifest lists every artifact a Writer committed.
type Manifest struct {
	RunID     string         `json:"run_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Build     *version.Build `json:"build,omitempty"`
	Artifacts []Artifact     `json:"artifacts"`
}

// Writer serializes analysis results into an output directory. Every
// export goes through an outputfile.File, so a partially written
// export is never visible under its final name. Safe for concurrent
// use.
type Writer struct {
	handler *outputfile.Handler
	options Options
	logger  *slog.Logger
	clock   clock.Clock

	mu        sync.Mutex
	artifacts []Artifact
}

func NewWriter(handler *outputfile.Handler, options Options) *Writer {
	writer := &Writer{
		handler: handler,
		options: options,
		logger:  options.Logger,
		clock:   options.Clock,
	}
	if writer.logger == nil {
		writer.logger = slog.Default()
	}
	if writer.clock == nil {
		writer.clock = clock.Real()
	}
	return writer
}

// Write encodes value and commits it as name plus the format and
// compression extensions. If ctx is done before the file is committed,
// the temporary file is removed and ctx's error is returned.
func (w *Writer) Write(ctx context.Context, name string, value any) (*Artifact, error) {
	if name == "" {
		return nil, ErrNoName
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := w.options.Format.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", name, err)
	}

	compression := w.options.Compression
	if compression == CompressionAuto {
		compression = SelectCompression(data)
	}

	file, err := w.handler.Open(name + w.options.Format.Extension() + compression.Extension())
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", name, err)
	}

	if err := writeCompressed(file, compression, data); err != nil {
		file.Abort()
		return nil, fmt.Errorf("export %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		file.Abort()
		return nil, fmt.Errorf("export %s cancelled: %w", name, err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("export %s: %w", name, err)
	}

	artifact, err := w.describe(name, file.Path(), compression)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.artifacts = append(w.artifacts, artifact)
	w.mu.Unlock()

	w.logger.Info("export committed",
		"name", artifact.Name,
		"path", artifact.Path,
		"format", artifact.Format.String(),
		"compression", artifact.Compression.String(),
		"size", artifact.Size,
		"digest", artifact.Digest,
	)
	return &artifact, nil
}

func writeCompressed(file *outputfile.File, compression Compression, data []byte) error {
	sink, err := Compress(file, compression)
	if err != nil {
		return err
	}
	if _, err := sink.Write(data); err != nil {
		sink.Close()
		return fmt.Errorf("writing: %w", err)
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("flushing %s frame: %w", compression, err)
	}
	return nil
}

func (w *Writer) describe(name, path string, compression Compression) (Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("export %s: %w", name, err)
	}
	digest, err := binhash.HashFileWith(path, w.options.Algorithm)
	if err != nil {
		return Artifact{}, fmt.Errorf("export %s: fingerprint: %w", name, err)
	}
	return Artifact{
		Name:        name,
		Path:        path,
		Format:      w.options.Format,
		Compression: compression,
		Size:        info.Size(),
		Digest:      binhash.FormatDigest(digest),
		Algorithm:   w.options.Algorithm,
		RunID:       w.options.RunID,
		CommittedAt: w.clock.Now().UTC(),
	}, nil
}

// Artifacts returns a copy of the artifacts committed so far, in commit
// order.
func (w *Writer) Artifacts() []Artifact {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Artifact(nil), w.artifacts...)
}

// WriteManifest commits ManifestName listing every artifact written so
// far. The manifest is always uncompressed JSON and is not itself
// listed.
func (w *Writer) WriteManifest(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	manifest := Manifest{
		RunID:     w.options.RunID,
		CreatedAt: w.clock.Now().UTC(),
		Build:     w.options.Build,
		Artifacts: w.Artifacts(),
	}
	if manifest.Artifacts == nil {
		manifest.Artifacts = []Artifact{}
	}
	data, err := JSON.Encode(manifest)
	if err != nil {
		return "", fmt.Errorf("manifest: %w", err)
	}

	file, err := w.handler.Open(ManifestName)
	if err != nil {
		return "", fmt.Errorf("manifest: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Abort()
		return "", fmt.Errorf("manifest: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("manifest: %w", err)
	}
	return file.Path(), nil
}
