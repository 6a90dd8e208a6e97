// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

var processColumns = []Column{
	{Name: "PID", Type: KindInt},
	{Name: "ImageFileName", Type: KindString},
	{Name: "CreateTime", Type: KindDateTime},
}

// processTree returns the grid System(4) -> smss(300) -> csrss(400),
// System(4) -> lsass(500), plus a second root explorer(900).
func processTree() *TreeGrid {
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return NewTreeGrid(processColumns,
		Node{Path: "0", Depth: 1, Values: []any{int64(4), "System", created}},
		Node{Path: "0|0", Parent: "0", Depth: 2, Values: []any{int64(300), "smss.exe", created}},
		Node{Path: "0|0|0", Parent: "0|0", Depth: 3, Values: []any{int64(400), "csrss.exe", Absent{Reason: Unreadable}}},
		Node{Path: "0|1", Parent: "0", Depth: 2, Values: []any{int64(500), "lsass.exe", created}},
		Node{Path: "1", Depth: 1, Values: []any{int64(900), "explorer.exe", nil}},
	)
}

func totalCount(documents []*Document) int {
	total := 0
	for _, document := range documents {
		total += document.Count()
	}
	return total
}

func TestFlattenTableStructure(t *testing.T) {
	grid := processTree()
	roots, err := FlattenTable(grid)
	if err != nil {
		t.Fatalf("FlattenTable: %v", err)
	}

	if len(roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(roots))
	}
	if total := totalCount(roots); total != grid.Len() {
		t.Errorf("total documents = %d, want %d", total, grid.Len())
	}

	system := roots[0]
	if pid, _ := system.Get("PID"); pid != int64(4) {
		t.Errorf("first root PID = %v, want 4", pid)
	}
	if system.Level != "" || !system.HasLevel {
		t.Errorf("root level = %q (HasLevel=%v), want empty string present", system.Level, system.HasLevel)
	}
	if len(system.Children) != 2 {
		t.Fatalf("System has %d children, want 2", len(system.Children))
	}
	if name, _ := system.Children[0].Get("ImageFileName"); name != "smss.exe" {
		t.Errorf("first child = %v, want smss.exe", name)
	}
	if name, _ := system.Children[1].Get("ImageFileName"); name != "lsass.exe" {
		t.Errorf("second child = %v, want lsass.exe", name)
	}

	csrss := system.Children[0].Children[0]
	if csrss.Level != "**" {
		t.Errorf("depth 3 level = %q, want %q", csrss.Level, "**")
	}
	if created, ok := csrss.Get("CreateTime"); !ok || created != nil {
		t.Errorf("absent CreateTime = %#v (present=%v), want nil present", created, ok)
	}
	if created, _ := system.Get("CreateTime"); created != "2024-03-01T08:00:00+00:00" {
		t.Errorf("CreateTime = %#v", created)
	}
	if len(csrss.Children) != 0 || csrss.Children == nil {
		t.Errorf("leaf children = %#v, want empty non-nil slice", csrss.Children)
	}
}

func TestFlattenTreeOmitsLevel(t *testing.T) {
	roots, err := FlattenTree(processTree())
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	encoded, err := json.Marshal(roots[1])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"PID":900,"ImageFileName":"explorer.exe","CreateTime":null,"__children":[]}`
	if string(encoded) != want {
		t.Errorf("encoded = %s, want %s", encoded, want)
	}
}

func TestFlattenTableJSONOrder(t *testing.T) {
	grid := NewTreeGrid([]Column{{Name: "PID", Type: KindInt}},
		Node{Path: "0", Depth: 1, Values: []any{int64(1)}},
		Node{Path: "0|0", Parent: "0", Depth: 2, Values: []any{int64(2)}},
	)
	roots, err := FlattenTable(grid)
	if err != nil {
		t.Fatalf("FlattenTable: %v", err)
	}
	encoded, err := json.Marshal(roots)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[{"level":"","PID":1,"__children":[{"level":"*","PID":2,"__children":[]}]}]`
	if string(encoded) != want {
		t.Errorf("encoded = %s, want %s", encoded, want)
	}
}

func TestFlattenEmptyGrid(t *testing.T) {
	roots, err := FlattenTable(NewTreeGrid(processColumns))
	if err != nil {
		t.Fatalf("FlattenTable: %v", err)
	}
	if roots == nil || len(roots) != 0 {
		t.Errorf("roots = %#v, want empty non-nil slice", roots)
	}
}

func TestFlattenColumnShadowsReservedKey(t *testing.T) {
	grid := NewTreeGrid([]Column{{Name: "level", Type: KindString}},
		Node{Path: "0", Depth: 3, Values: []any{"kernel"}},
	)
	roots, err := FlattenTable(grid)
	if err != nil {
		t.Fatalf("FlattenTable: %v", err)
	}
	encoded, err := json.Marshal(roots[0])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `{"level":"kernel","__children":[]}`; string(encoded) != want {
		t.Errorf("encoded = %s, want %s", encoded, want)
	}
	if value := roots[0].Map()[LevelKey]; value != "kernel" {
		t.Errorf("Map()[level] = %v, want kernel", value)
	}
}

func TestRendererLevelMarker(t *testing.T) {
	renderer := Renderer{LevelMarker: "-"}
	tests := []struct {
		depth int
		want  string
	}{
		{depth: -1, want: ""},
		{depth: 0, want: ""},
		{depth: 1, want: ""},
		{depth: 2, want: "-"},
		{depth: 5, want: "----"},
	}
	for _, test := range tests {
		if got := renderer.Level(test.depth); got != test.want {
			t.Errorf("Level(%d) = %q, want %q", test.depth, got, test.want)
		}
	}
	if got := (Renderer{}).Level(3); got != "**" {
		t.Errorf("default Level(3) = %q, want %q", got, "**")
	}
}

func TestFlattenStructureErrors(t *testing.T) {
	columns := []Column{{Name: "PID", Type: KindInt}}
	tests := []struct {
		name  string
		nodes []Node
	}{
		{
			name: "child before parent",
			nodes: []Node{
				{Path: "0|0", Parent: "0", Depth: 2, Values: []any{int64(2)}},
				{Path: "0", Depth: 1, Values: []any{int64(1)}},
			},
		},
		{
			name: "unknown parent",
			nodes: []Node{
				{Path: "0", Depth: 1, Values: []any{int64(1)}},
				{Path: "1|0", Parent: "1", Depth: 2, Values: []any{int64(2)}},
			},
		},
		{
			name: "duplicate path",
			nodes: []Node{
				{Path: "0", Depth: 1, Values: []any{int64(1)}},
				{Path: "0", Depth: 1, Values: []any{int64(2)}},
			},
		},
		{
			name: "value count mismatch",
			nodes: []Node{
				{Path: "0", Depth: 1, Values: []any{int64(1), "extra"}},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := FlattenTable(NewTreeGrid(columns, test.nodes...))
			if !errors.Is(err, ErrStructure) {
				t.Fatalf("FlattenTable error = %v, want ErrStructure", err)
			}
			var structure *StructureError
			if !errors.As(err, &structure) {
				t.Fatalf("error %v is not a *StructureError", err)
			}
		})
	}
}

func TestFlattenLazyGridPopulatesOnce(t *testing.T) {
	calls := 0
	grid := NewLazyGrid(processColumns, func(emit func(Node) error) error {
		calls++
		return processTree().Visit(emit)
	})

	if grid.Populated() {
		t.Fatal("new lazy grid reports populated")
	}
	if err := grid.Visit(func(Node) error { return nil }); !errors.Is(err, ErrNotPopulated) {
		t.Errorf("Visit before populate = %v, want ErrNotPopulated", err)
	}

	first, err := FlattenTable(grid)
	if err != nil {
		t.Fatalf("first FlattenTable: %v", err)
	}
	if !grid.Populated() {
		t.Fatal("grid not populated after flatten")
	}
	second, err := FlattenTable(grid)
	if err != nil {
		t.Fatalf("second FlattenTable: %v", err)
	}

	if calls != 1 {
		t.Errorf("producer ran %d times, want 1", calls)
	}
	if totalCount(first) != 5 || totalCount(second) != 5 {
		t.Errorf("counts = %d, %d, want 5, 5", totalCount(first), totalCount(second))
	}
}

func TestFlattenLazyGridProducerError(t *testing.T) {
	failure := errors.New("memory layer unreadable")
	grid := NewLazyGrid(processColumns, func(emit func(Node) error) error {
		return failure
	})
	if _, err := FlattenTable(grid); !errors.Is(err, failure) {
		t.Fatalf("FlattenTable error = %v, want %v", err, failure)
	}
	if grid.Populated() {
		t.Error("grid populated after producer failure")
	}
}
