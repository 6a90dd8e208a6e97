// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const pstreeGrid = `{
  // windows.pstree excerpt
  "columns": [
    {"name": "PID", "type": "int"},
    {"name": "ImageFileName", "type": "str"},
    {"name": "CreateTime", "type": "datetime"},
    {"name": "Header", "type": "bytes"},
    {"name": "Wow64", "type": "bool"},
  ],
  "nodes": [
    {"path": "0", "depth": 1, "values": [4, "System", "2024-03-01T08:00:00Z", "4d5a", false]},
    {"path": "0|0", "parent": "0", "depth": 2,
     "values": [300, "smss.exe", null, {"$absent": "unreadable"}, false]},
  ],
}`

func TestDecodeGrid(t *testing.T) {
	grid, err := DecodeGrid([]byte(pstreeGrid))
	if err != nil {
		t.Fatalf("DecodeGrid: %v", err)
	}
	if grid.Len() != 2 {
		t.Fatalf("grid has %d nodes, want 2", grid.Len())
	}
	columns := grid.Columns()
	if columns[2].Type != KindDateTime || columns[3].Type != KindBytes {
		t.Errorf("column kinds = %v, %v", columns[2].Type, columns[3].Type)
	}

	roots, err := FlattenTable(grid)
	if err != nil {
		t.Fatalf("FlattenTable: %v", err)
	}
	system := roots[0]
	if pid, _ := system.Get("PID"); pid != int64(4) {
		t.Errorf("PID = %#v, want int64(4)", pid)
	}
	if created, _ := system.Get("CreateTime"); created != "2024-03-01T08:00:00+00:00" {
		t.Errorf("CreateTime = %#v", created)
	}
	if header, _ := system.Get("Header"); header != "4d 5a" {
		t.Errorf("Header = %#v, want %q", header, "4d 5a")
	}

	smss := system.Children[0]
	if smss.Level != "*" {
		t.Errorf("child level = %q, want %q", smss.Level, "*")
	}
	for _, name := range []string{"CreateTime", "Header"} {
		if value, ok := smss.Get(name); !ok || value != nil {
			t.Errorf("%s = %#v (present=%v), want nil", name, value, ok)
		}
	}
}

func TestDecodeGridRichValues(t *testing.T) {
	data := `{
	  "columns": [
	    {"name": "Disasm", "type": "disassembly"},
	    {"name": "Value", "type": "multitypedata"},
	    {"name": "Raw", "type": "multitypedata"},
	    {"name": "Extra", "type": "Pointer"}
	  ],
	  "nodes": [
	    {"path": "0", "depth": 1, "values": [
	      {"data": "c3", "offset": 4096, "architecture": "intel64"},
	      "C:\\Windows",
	      {"data": "6100620000006300", "encoding": "utf-16-le", "split_nulls": true},
	      {"offset": 12, "ratio": 0.5}
	    ]}
	  ]
	}`
	grid, err := DecodeGrid([]byte(data))
	if err != nil {
		t.Fatalf("DecodeGrid: %v", err)
	}
	roots, err := FlattenTree(grid)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	document := roots[0]

	disasm, _ := document.Get("Disasm")
	if text, _ := disasm.(string); !strings.HasPrefix(text, "\"0x1000:\t") || !strings.Contains(text, "ret") {
		t.Errorf("Disasm = %q", disasm)
	}
	if value, _ := document.Get("Value"); value != `"C:\Windows"` {
		t.Errorf("Value = %q", value)
	}
	if raw, _ := document.Get("Raw"); raw != `"ab"` {
		t.Errorf("Raw = %q", raw)
	}
	extra, _ := document.Get("Extra")
	fields, ok := extra.(map[string]any)
	if !ok {
		t.Fatalf("Extra = %#v, want map", extra)
	}
	if fields["offset"] != int64(12) || fields["ratio"] != 0.5 {
		t.Errorf("Extra = %#v", fields)
	}
}

func TestDecodeGridErrors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		structure bool
	}{
		{name: "malformed", data: `{"columns": [`},
		{name: "unnamed column", data: `{"columns": [{"type": "int"}], "nodes": []}`},
		{name: "missing path", data: `{"columns": [{"name": "PID"}], "nodes": [{"values": [1]}]}`},
		{
			name:      "value count",
			data:      `{"columns": [{"name": "PID"}], "nodes": [{"path": "0", "values": [1, 2]}]}`,
			structure: true,
		},
		{name: "bad hex", data: `{"columns": [{"name": "B", "type": "bytes"}], "nodes": [{"path": "0", "values": ["zz"]}]}`},
		{name: "bad timestamp", data: `{"columns": [{"name": "T", "type": "datetime"}], "nodes": [{"path": "0", "values": ["yesterday"]}]}`},
		{name: "bad absent reason", data: `{"columns": [{"name": "T"}], "nodes": [{"path": "0", "values": [{"$absent": "lost"}]}]}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeGrid([]byte(test.data))
			if err == nil {
				t.Fatal("DecodeGrid succeeded, want error")
			}
			if errors.Is(err, ErrStructure) != test.structure {
				t.Errorf("errors.Is(%v, ErrStructure) = %v, want %v", err, !test.structure, test.structure)
			}
		})
	}
}

func TestReadGridFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pstree.jsonc")
	if err := os.WriteFile(path, []byte(pstreeGrid), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	grid, err := ReadGridFile(path)
	if err != nil {
		t.Fatalf("ReadGridFile: %v", err)
	}
	if grid.Len() != 2 {
		t.Errorf("grid has %d nodes, want 2", grid.Len())
	}

	if _, err := ReadGridFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadGridFile on missing file succeeded")
	}
}
