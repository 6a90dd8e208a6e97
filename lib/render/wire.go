// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
)

// Wire form of a grid:
//
//	{
//	  "columns": [{"name": "PID", "type": "int"}, ...],
//	  "nodes": [
//	    {"path": "0", "depth": 1, "values": [4, ...]},
//	    {"path": "0|1", "parent": "0", "depth": 2, "values": [...]}
//	  ]
//	}
//
// Nodes are listed in pre-order. Values are typed by column kind:
// hexbytes and bytes are hex strings, datetime is RFC 3339,
// disassembly is {"data", "offset", "architecture"} and multitypedata
// is either a string or {"data", "encoding", "show_hex", "split_nulls"}.
// A JSON null is an absent value (not-available); {"$absent": reason}
// selects a specific reason.

type wireGrid struct {
	Columns []wireColumn `json:"columns"`
	Nodes   []wireNode   `json:"nodes"`
}

type wireColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type wireNode struct {
	Path   string            `json:"path"`
	Parent string            `json:"parent"`
	Depth  int               `json:"depth"`
	Values []json.RawMessage `json:"values"`
}

type wireDisassembly struct {
	Data         string `json:"data"`
	Offset       uint64 `json:"offset"`
	Architecture string `json:"architecture"`
}

type wireMultiType struct {
	Data       string `json:"data"`
	Encoding   string `json:"encoding"`
	ShowHex    bool   `json:"show_hex"`
	SplitNulls bool   `json:"split_nulls"`
}

type wireAbsent struct {
	Absent *string `json:"$absent"`
}

// DecodeGrid parses the JSON wire form of a grid. Comments and trailing
// commas (JSONC) are accepted. The result is a populated TreeGrid.
func DecodeGrid(data []byte) (*TreeGrid, error) {
	var wire wireGrid
	if err := json.Unmarshal(jsonc.ToJSON(data), &wire); err != nil {
		return nil, fmt.Errorf("parsing grid: %w", err)
	}

	columns := make([]Column, len(wire.Columns))
	for index, column := range wire.Columns {
		if column.Name == "" {
			return nil, fmt.Errorf("column %d has no name", index)
		}
		columns[index] = Column{Name: column.Name, Type: ParseKind(column.Type)}
	}

	grid := NewTreeGrid(columns)
	for nodeIndex, node := range wire.Nodes {
		if node.Path == "" {
			return nil, fmt.Errorf("node %d has no path", nodeIndex)
		}
		if len(node.Values) != len(columns) {
			return nil, &StructureError{
				Path:   node.Path,
				Parent: node.Parent,
				Reason: fmt.Sprintf("%d values for %d columns", len(node.Values), len(columns)),
			}
		}
		values := make([]any, len(node.Values))
		for position, raw := range node.Values {
			value, err := decodeValue(columns[position].Type, raw)
			if err != nil {
				return nil, fmt.Errorf("node %q column %q: %w", node.Path, columns[position].Name, err)
			}
			values[position] = value
		}
		grid.Append(Node{Path: node.Path, Parent: node.Parent, Depth: node.Depth, Values: values})
	}
	return grid, nil
}

// ReadGridFile reads and decodes a grid file.
func ReadGridFile(path string) (*TreeGrid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	grid, err := DecodeGrid(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return grid, nil
}

func decodeValue(kind Kind, raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Absent{Reason: NotAvailable}, nil
	}
	if trimmed[0] == '{' {
		var marker wireAbsent
		if err := json.Unmarshal(trimmed, &marker); err == nil && marker.Absent != nil {
			reason, err := ParseAbsentReason(*marker.Absent)
			if err != nil {
				return nil, err
			}
			return Absent{Reason: reason}, nil
		}
	}

	switch kind {
	case KindHexBytes, KindBytes:
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, fmt.Errorf("expected hex string: %w", err)
		}
		return decodeHex(text)

	case KindDateTime:
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, fmt.Errorf("expected timestamp string: %w", err)
		}
		return parseTimestamp(text)

	case KindDisassembly:
		var wire wireDisassembly
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			return nil, fmt.Errorf("expected disassembly object: %w", err)
		}
		data, err := decodeHex(wire.Data)
		if err != nil {
			return nil, err
		}
		return Disassembly{Data: data, Offset: wire.Offset, Architecture: wire.Architecture}, nil

	case KindMultiType:
		if trimmed[0] == '"' {
			var text string
			if err := json.Unmarshal(trimmed, &text); err != nil {
				return nil, err
			}
			return text, nil
		}
		var wire wireMultiType
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			return nil, fmt.Errorf("expected multitypedata string or object: %w", err)
		}
		data, err := decodeHex(wire.Data)
		if err != nil {
			return nil, err
		}
		return MultiTypeData{
			Data:       data,
			Encoding:   wire.Encoding,
			ShowHex:    wire.ShowHex,
			SplitNulls: wire.SplitNulls,
		}, nil

	default:
		return decodePlain(trimmed)
	}
}

// decodePlain decodes a scalar or structure with integers kept as
// int64 where they fit.
func decodePlain(raw []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	return normalizeNumbers(value), nil
}

func normalizeNumbers(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if integer, err := typed.Int64(); err == nil {
			return integer
		}
		if float, err := typed.Float64(); err == nil {
			return float
		}
		return typed.String()
	case []any:
		for index := range typed {
			typed[index] = normalizeNumbers(typed[index])
		}
		return typed
	case map[string]any:
		for key := range typed {
			typed[key] = normalizeNumbers(typed[key])
		}
		return typed
	default:
		return value
	}
}

func decodeHex(text string) ([]byte, error) {
	cleaned := strings.Join(strings.Fields(text), "")
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return data, nil
}

func parseTimestamp(text string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05.999999999",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", text)
}
