// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/memgrid/memgrid/cmd/memgrid/cli"
	"github.com/memgrid/memgrid/lib/clock"
	"github.com/memgrid/memgrid/lib/config"
	"github.com/memgrid/memgrid/lib/export"
	"github.com/memgrid/memgrid/lib/outputfile"
	"github.com/memgrid/memgrid/lib/version"
)

// app holds the process streams so command tests can run the whole
// tree against buffers.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	clock  clock.Clock
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{stdin: stdin, stdout: stdout, stderr: stderr, clock: clock.Real()}
}

func (a *app) root() *cli.Command {
	return &cli.Command{
		Name:    "memgrid",
		Summary: "Convert memory forensics results into storage-ready structures",
		Description: `Convert the output of a memory forensics engine into storage-ready
structures.

Result grids flatten into nested documents, network connection rows
become a process/endpoint graph, and timeliner rows condense into a
date series. Results print to stdout as JSON, or are exported into an
output directory (atomically, optionally compressed, fingerprinted)
with --export or --output-dir.

Configuration is read from --config or $MEMGRID_CONFIG; without
either, built-in defaults apply.`,
		HelpOutput: a.stderr,
		Subcommands: []*cli.Command{
			a.flattenCommand(),
			a.graphCommand(),
			a.timelineCommand(),
			a.recordsCommand(),
			a.hashCommand(),
			a.inspectCommand(),
			a.versionCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Flatten a process tree to JSON on stdout",
				Command:     "memgrid flatten pstree.json",
			},
			{
				Description: "Export a Linux socket graph as zstd-compressed CBOR",
				Command:     "memgrid graph --platform linux --format cbor --compression zstd -o ./out sockstat.json",
			},
		},
	}
}

// commonParams are the flags shared by every command that produces a
// result.
type commonParams struct {
	Config      string `json:"config"       flag:"config"       desc:"path to memgrid.yaml (default: $MEMGRID_CONFIG, else built-in defaults)"`
	Export      bool   `json:"export"       flag:"export"       desc:"export into the configured output directory instead of printing"`
	OutputDir   string `json:"output_dir"   flag:"output-dir,o" desc:"export into this directory (implies --export)"`
	Name        string `json:"name"         flag:"name"         desc:"export file name without extensions (default: input file stem)"`
	Format      string `json:"format"       flag:"format"       desc:"export format, overrides config" choices:"json,cbor"`
	Compression string `json:"compression"  flag:"compression"  desc:"export compression, overrides config" choices:"none,lz4,zstd,auto"`
	Manifest    bool   `json:"manifest"     flag:"manifest"     desc:"write manifest.json after exporting"`
	LogLevel    string `json:"log_level"    flag:"log-level"    desc:"log level, overrides config" choices:"debug,info,warn,error"`
}

// session is the per-invocation state built from commonParams.
type session struct {
	app      *app
	config   *config.Config
	params   commonParams
	logger   *slog.Logger
	runID    string
	exporter *export.Writer
}

func (a *app) loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv(config.EnvironmentVariable) != "" {
		return config.Load()
	}
	return config.Default(), nil
}

func (a *app) logger(level slog.Level) *slog.Logger {
	if a.stderr == os.Stderr {
		return cli.NewCommandLogger(level)
	}
	return cli.NewLogger(a.stderr, false, level)
}

// open loads and validates configuration, applies flag overrides and
// builds the command logger.
func (a *app) open(command string, params commonParams) (*session, error) {
	cfg, err := a.loadConfig(params.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if params.OutputDir != "" {
		cfg.Output.Directory = params.OutputDir
		params.Export = true
	}
	if params.Format != "" {
		cfg.Export.Format = params.Format
	}
	if params.Compression != "" {
		cfg.Export.Compression = params.Compression
	}
	if params.LogLevel != "" {
		cfg.Log.Level = params.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	return &session{
		app:    a,
		config: cfg,
		params: params,
		logger: a.logger(level).With("command", command, "run_id", runID),
		runID:  runID,
	}, nil
}

// readInput returns the content of path, or stdin for "-".
func (a *app) readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// singleInput checks that args holds exactly one input path.
func singleInput(command string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s takes exactly one input file (or - for stdin), got %d arguments", command, len(args))
	}
	return args[0], nil
}

// exportName picks the export file name: --name, else the input file
// stem, else fallback.
func (s *session) exportName(input, fallback string) string {
	if s.params.Name != "" {
		return s.params.Name
	}
	if input == "" || input == "-" {
		return fallback
	}
	base := filepath.Base(input)
	for {
		extension := filepath.Ext(base)
		if extension == "" || extension == base {
			return base
		}
		base = strings.TrimSuffix(base, extension)
	}
}

// emit writes value to stdout as JSON, or exports it when exporting is
// enabled and prints the resulting artifact instead.
func (s *session) emit(ctx context.Context, name string, value any) error {
	if !s.params.Export {
		return cli.WriteJSON(s.app.stdout, value)
	}

	writer, err := s.writer()
	if err != nil {
		return err
	}
	artifact, err := writer.Write(ctx, name, value)
	if err != nil {
		return err
	}
	return cli.WriteJSON(s.app.stdout, artifact)
}

func (s *session) writer() (*export.Writer, error) {
	if s.exporter != nil {
		return s.exporter, nil
	}

	fileMode, err := s.config.FileMode()
	if err != nil {
		return nil, err
	}
	handler, err := outputfile.NewHandler(s.config.Output.Directory, outputfile.Options{
		FileMode: fileMode,
		Logger:   s.logger,
	})
	if err != nil {
		return nil, err
	}

	options, err := s.config.ExportOptions()
	if err != nil {
		return nil, err
	}
	options.Logger = s.logger
	options.Clock = s.app.clock
	options.RunID = s.runID
	build, err := version.Current(options.Algorithm)
	if err != nil {
		s.logger.Warn("binary digest unavailable for manifest", "error", err)
	}
	options.Build = &build
	s.exporter = export.NewWriter(handler, options)
	return s.exporter, nil
}

// finish writes the manifest when one was requested and something was
// exported.
func (s *session) finish(ctx context.Context) error {
	if !s.params.Manifest || s.exporter == nil {
		return nil
	}
	path, err := s.exporter.WriteManifest(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("manifest committed", "path", path, "version", version.Short())
	return nil
}
