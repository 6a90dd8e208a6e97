// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

// connection uses json tags, as the exported graph types do.
type connection struct {
	From int64  `json:"from"`
	To   string `json:"to"`
}

type algorithm int

func (a algorithm) MarshalText() ([]byte, error) {
	if a == 1 {
		return []byte("blake3"), nil
	}
	return []byte("sha256"), nil
}

func (a *algorithm) UnmarshalText(text []byte) error {
	*a = 0
	if string(text) == "blake3" {
		*a = 1
	}
	return nil
}

func TestMarshalDeterministicMapOrder(t *testing.T) {
	first, err := Marshal(map[string]any{"PID": 4, "ImageFileName": "System", "__children": []any{}})
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(map[string]any{"__children": []any{}, "ImageFileName": "System", "PID": 4})
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("equal maps encoded differently: %x != %x", first, second)
	}
}

func TestJSONTagNamesKeys(t *testing.T) {
	data, err := Marshal(connection{From: 4, To: "10.0.0.1"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"from"`) || !strings.Contains(notation, `"to"`) {
		t.Errorf("notation %s does not use json tag names", notation)
	}

	var decoded connection
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != (connection{From: 4, To: "10.0.0.1"}) {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestTextMarshalerEncodesAsString(t *testing.T) {
	data, err := Marshal(map[string]algorithm{"hash": 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"blake3"`) {
		t.Errorf("notation %s does not contain the text form", notation)
	}

	var decoded map[string]algorithm
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["hash"] != 1 {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestUnmarshalAnyUsesStringKeyedMaps(t *testing.T) {
	data, err := Marshal(map[string]any{"nodes": []any{map[string]any{"id": "10.0.0.1"}}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	top, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, want map[string]any", decoded)
	}
	nodes, ok := top["nodes"].([]any)
	if !ok || len(nodes) != 1 {
		t.Fatalf("nodes = %#v", top["nodes"])
	}
	if _, ok := nodes[0].(map[string]any); !ok {
		t.Errorf("nested node decoded as %T, want map[string]any", nodes[0])
	}
}

func TestEncoderDecoderStream(t *testing.T) {
	edges := []connection{{From: 4, To: "a"}, {From: 8, To: "b"}}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, edge := range edges {
		if err := encoder.Encode(edge); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for index, want := range edges {
		var got connection
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode %d: %v", index, err)
		}
		if got != want {
			t.Errorf("edge %d = %+v, want %+v", index, got, want)
		}
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var edge connection
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &edge); err == nil {
		t.Error("Unmarshal accepted invalid CBOR")
	}
}
