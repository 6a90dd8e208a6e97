// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package outputfile gives the analysis engine writable sinks for its
// large output files (dumped processes, extracted files, memory maps)
// such that no file is ever visible under its final name until it is
// complete.
//
// The engine asks for a file by its preferred name before it knows the
// content. [Handler.Open] creates a uniquely named temporary file
// (tmp_*.vol3) in the output directory and returns a [File]. Writes go
// to the temporary file. The first [File.Close] syncs and closes it,
// applies the configured permissions, replaces any existing file with
// the preferred name, and renames the temporary file into place. The
// rename is the only transition a concurrent reader can observe.
// Further Close calls do nothing.
//
// The directory must be on one filesystem with its temporary files,
// which holds by construction: temporaries are created in the output
// directory itself.
package outputfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

const (
	// TempPrefix and TempSuffix bracket the random part of temporary
	// file names.
	TempPrefix = "tmp_"
	TempSuffix = ".vol3"

	// DefaultFileMode is applied to committed files: readable by
	// everyone, so the service that serves results can read files the
	// worker wrote.
	DefaultFileMode os.FileMode = 0o644
)

var (
	// ErrNoDirectory is returned by NewHandler when no output directory
	// is given.
	ErrNoDirectory = errors.New("no output directory")

	// ErrNoName is returned by Open when the preferred name has no
	// usable base name.
	ErrNoName = errors.New("no usable output file name")
)

// Options configure a Handler.
type Options struct {
	// FileMode is applied to each committed file. Zero selects
	// DefaultFileMode.
	FileMode os.FileMode

	// Logger receives commit and cleanup events. Nil selects
	// slog.Default().
	Logger *slog.Logger
}

// Handler allocates output files in one directory. It is safe for
// concurrent use.
type Handler struct {
	directory string
	fileMode  os.FileMode
	logger    *slog.Logger
}

// NewHandler prepares directory (creating it and its parents) and
// returns a handler for it. It fails before any file is allocated when
// directory is empty or cannot be created.
func NewHandler(directory string, options Options) (*Handler, error) {
	if directory == "" {
		return nil, ErrNoDirectory
	}
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", directory, err)
	}

	handler := &Handler{
		directory: directory,
		fileMode:  options.FileMode,
		logger:    options.Logger,
	}
	if handler.fileMode == 0 {
		handler.fileMode = DefaultFileMode
	}
	if handler.logger == nil {
		handler.logger = slog.Default()
	}
	return handler, nil
}

// Directory returns the output directory.
func (h *Handler) Directory() string {
	return h.directory
}

// FinalName reduces a preferred name to the file name used at commit:
// the base name, split at its last dot into stem and extension and
// rejoined. Directory components are dropped so a preferred name can
// never escape the output directory.
func FinalName(preferred string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + preferred))
	if base == "/" || base == "." || base == ".." {
		return "", fmt.Errorf("%w: %q", ErrNoName, preferred)
	}
	separator := strings.LastIndexByte(base, '.')
	if separator <= 0 {
		return base, nil
	}
	stem, extension := base[:separator], base[separator+1:]
	return stem + "." + extension, nil
}

// FinalPath returns where a file opened with preferred is committed.
func (h *Handler) FinalPath(preferred string) (string, error) {
	name, err := FinalName(preferred)
	if err != nil {
		return "", err
	}
	return filepath.Join(h.directory, name), nil
}

// Open creates a temporary file for preferred. The returned File must
// be closed (to commit) or aborted.
func (h *Handler) Open(preferred string) (*File, error) {
	finalPath, err := h.FinalPath(preferred)
	if err != nil {
		return nil, err
	}
	temporary, err := os.CreateTemp(h.directory, TempPrefix+"*"+TempSuffix)
	if err != nil {
		return nil, fmt.Errorf("creating temporary file for %s: %w", preferred, err)
	}
	return &File{
		handler:   h,
		preferred: preferred,
		finalPath: finalPath,
		file:      temporary,
	}, nil
}

// File is a pending output file.
type File struct {
	handler   *Handler
	preferred string
	finalPath string
	file      *os.File

	mutex   sync.Mutex
	closed  bool
	written int64
}

// Write appends to the temporary file.
func (f *File) Write(data []byte) (int, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.closed {
		return 0, fmt.Errorf("writing %s: %w", f.preferred, os.ErrClosed)
	}
	count, err := f.file.Write(data)
	f.written += int64(count)
	return count, err
}

// Name returns the temporary file path.
func (f *File) Name() string { return f.file.Name() }

// PreferredName returns the name the engine asked for.
func (f *File) PreferredName() string { return f.preferred }

// Path returns the path the file is committed to.
func (f *File) Path() string { return f.finalPath }

// Closed reports whether Close or Abort has run.
func (f *File) Closed() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.closed
}

// Close commits the file under its final name. Only the first call
// does anything; later calls return nil. When the commit fails the
// temporary file is removed and the error returned.
func (f *File) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	if err := f.commit(); err != nil {
		os.Remove(f.file.Name())
		f.handler.logger.Error("output file commit failed",
			"preferred", f.preferred,
			"temporary", f.file.Name(),
			"error", err,
		)
		return err
	}

	f.handler.logger.Debug("output file committed",
		"path", f.finalPath,
		"bytes", f.written,
	)
	return nil
}

func (f *File) commit() error {
	temporaryPath := f.file.Name()

	if err := f.file.Sync(); err != nil {
		f.file.Close()
		return fmt.Errorf("syncing %s: %w", temporaryPath, err)
	}
	if err := f.file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", temporaryPath, err)
	}
	if err := os.Chmod(temporaryPath, f.handler.fileMode); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", temporaryPath, err)
	}

	// Rename replaces atomically on its own; the explicit remove clears
	// a directory or read-only entry left under the final name.
	if err := os.Remove(f.finalPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing existing %s: %w", f.finalPath, err)
	}
	if err := os.Rename(temporaryPath, f.finalPath); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", temporaryPath, f.finalPath, err)
	}

	if err := syncDirectory(f.handler.directory); err != nil {
		// The file is in place; only durability across power loss is in
		// question.
		f.handler.logger.Warn("output directory sync failed",
			"directory", f.handler.directory,
			"error", err,
		)
	}
	return nil
}

// Abort discards the temporary file without committing. It is a no-op
// after Close or a previous Abort.
func (f *File) Abort() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	f.file.Close()
	if err := os.Remove(f.file.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", f.file.Name(), err)
	}
	f.handler.logger.Debug("output file aborted", "preferred", f.preferred)
	return nil
}

func syncDirectory(directory string) error {
	descriptor, err := unix.Open(directory, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", directory, err)
	}
	defer unix.Close(descriptor)
	if err := unix.Fsync(descriptor); err != nil {
		return fmt.Errorf("fsync %s: %w", directory, err)
	}
	return nil
}
