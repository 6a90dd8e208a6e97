// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Platform string        `flag:"platform" desc:"connection schema"`
		Tree     bool          `flag:"tree,t" desc:"omit level fields"`
		Start    int           `flag:"start" desc:"first record"`
		PID      int64         `flag:"pid" desc:"process id"`
		Ratio    float64       `flag:"ratio" desc:"compression ratio"`
		Timeout  time.Duration `flag:"timeout" desc:"export timeout"`
		Fields   []string      `flag:"fields" desc:"field list"`
		Untagged string
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	err := flagSet.Parse([]string{
		"--platform", "linux",
		"-t",
		"--start", "20",
		"--pid", "4294967296",
		"--ratio", "1.5",
		"--timeout", "30s",
		"--fields", "PID,Process ID",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Platform != "linux" {
		t.Errorf("Platform = %q, want %q", p.Platform, "linux")
	}
	if !p.Tree {
		t.Error("Tree = false, want true")
	}
	if p.Start != 20 {
		t.Errorf("Start = %d, want 20", p.Start)
	}
	if p.PID != 4294967296 {
		t.Errorf("PID = %d, want 4294967296", p.PID)
	}
	if p.Ratio != 1.5 {
		t.Errorf("Ratio = %f, want 1.5", p.Ratio)
	}
	if p.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", p.Timeout)
	}
	if len(p.Fields) != 2 || p.Fields[0] != "PID" || p.Fields[1] != "Process ID" {
		t.Errorf("Fields = %v, want [PID Process ID]", p.Fields)
	}
	if p.Untagged != "" {
		t.Errorf("Untagged = %q, want empty (should be skipped)", p.Untagged)
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		SkipPlugin string        `flag:"skip-plugin" desc:"plugin to ignore" default:"MFTScan"`
		Length     int           `flag:"length" desc:"page length" default:"50"`
		PID        int64         `flag:"pid" desc:"process id" default:"-1"`
		Ratio      float64       `flag:"ratio" desc:"ratio" default:"1.1"`
		Timeout    time.Duration `flag:"timeout" desc:"timeout" default:"10s"`
		Manifest   bool          `flag:"manifest" desc:"write manifest" default:"true"`
		Fields     []string      `flag:"fields" desc:"fields" default:"PID,Owner"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.SkipPlugin != "MFTScan" {
		t.Errorf("SkipPlugin = %q, want MFTScan", p.SkipPlugin)
	}
	if p.Length != 50 {
		t.Errorf("Length = %d, want 50", p.Length)
	}
	if p.PID != -1 {
		t.Errorf("PID = %d, want -1", p.PID)
	}
	if p.Ratio != 1.1 {
		t.Errorf("Ratio = %f, want 1.1", p.Ratio)
	}
	if p.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", p.Timeout)
	}
	if !p.Manifest {
		t.Error("Manifest = false, want true")
	}
	if len(p.Fields) != 2 || p.Fields[0] != "PID" || p.Fields[1] != "Owner" {
		t.Errorf("Fields = %v, want [PID Owner]", p.Fields)
	}
}

type outputFlags struct {
	directory string
}

func (o *outputFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.directory, "output-dir", "", "export directory")
}

func TestBindFlags_FlagBinder(t *testing.T) {
	type params struct {
		outputFlags
		Named outputFlags
		Tree  bool `flag:"tree" desc:"tree mode"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	// The unexported embedded binder cannot be reached through
	// reflection, so BindFlags recurses into it and finds no tags.
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--output-dir", "/cases/out", "--tree"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Named.directory != "/cases/out" {
		t.Errorf("Named.directory = %q, want /cases/out", p.Named.directory)
	}
	if !p.Tree {
		t.Error("Tree = false, want true")
	}
}

func TestBindFlags_EmbeddedStructRecursion(t *testing.T) {
	type Common struct {
		Config string `flag:"config" desc:"config file"`
	}
	type params struct {
		Common
		Platform string `flag:"platform" desc:"schema" default:"windows"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--config", "/etc/memgrid.yaml"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Config != "/etc/memgrid.yaml" {
		t.Errorf("Config = %q", p.Config)
	}
	if p.Platform != "windows" {
		t.Errorf("Platform = %q, want windows", p.Platform)
	}
}

func TestBindFlags_Choices(t *testing.T) {
	type params struct {
		Platform string `flag:"platform" desc:"schema" default:"windows" choices:"windows,linux"`
		Format   string `flag:"format" desc:"export format" choices:"json,cbor"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if p.Platform != "windows" || p.Format != "" {
		t.Errorf("defaults = %q, %q", p.Platform, p.Format)
	}

	if err := flagSet.Parse([]string{"--platform", "linux", "--format", "cbor"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Platform != "linux" || p.Format != "cbor" {
		t.Errorf("parsed = %q, %q", p.Platform, p.Format)
	}

	rejecting := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, rejecting); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	err := rejecting.Parse([]string{"--platform", "macos"})
	if err == nil || !strings.Contains(err.Error(), "windows, linux") {
		t.Errorf("Parse(--platform macos) = %v, want a choices error", err)
	}
}

func TestBindFlags_ChoicesErrors(t *testing.T) {
	type badDefault struct {
		Format string `flag:"format" default:"xml" choices:"json,cbor"`
	}
	if err := BindFlags(&badDefault{}, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted a default outside choices")
	}

	type notString struct {
		Level int `flag:"level" choices:"1,2"`
	}
	if err := BindFlags(&notString{}, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted choices on an int field")
	}
}

func TestBindFlags_Shorthand(t *testing.T) {
	type params struct {
		Output string `flag:"output-dir,o" desc:"export directory"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"-o", "/tmp/out"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Output != "/tmp/out" {
		t.Errorf("Output = %q, want /tmp/out", p.Output)
	}
}

func TestBindFlags_Errors(t *testing.T) {
	type params struct {
		Name string `flag:"name"`
	}
	if err := BindFlags(params{}, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted a non-pointer")
	}

	name := "x"
	if err := BindFlags(&name, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted a pointer to a non-struct")
	}

	type badDefault struct {
		Count int `flag:"count" default:"many"`
	}
	if err := BindFlags(&badDefault{}, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted an unparseable default")
	}

	type unsupported struct {
		Ports []int `flag:"ports"`
	}
	if err := BindFlags(&unsupported{}, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted an unsupported field type")
	}
}

func TestFlagsFromParams_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FlagsFromParams did not panic for invalid params")
		}
	}()
	FlagsFromParams("test", "not a struct")
}

func TestBindFlags_PositionalArgsRemain(t *testing.T) {
	type params struct {
		Tree bool `flag:"tree" desc:"tree mode"`
	}

	var p params
	flagSet := FlagsFromParams("flatten", &p)
	if err := flagSet.Parse([]string{"pstree.json", "--tree", "extra"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	args := flagSet.Args()
	if len(args) != 2 || args[0] != "pstree.json" || args[1] != "extra" {
		t.Errorf("Args = %v, want [pstree.json extra]", args)
	}
	if !p.Tree {
		t.Error("Tree = false, want true")
	}
}
