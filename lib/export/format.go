// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"encoding/json"
	"fmt"

	"github.com/memgrid/memgrid/lib/codec"
)

// Format is the serialization of an exported value.
type Format uint8

const (
	// JSON is indented JSON with a trailing newline.
	JSON Format = iota

	// CBOR is Core Deterministic CBOR via lib/codec.
	CBOR
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case CBOR:
		return "cbor"
	default:
		return fmt.Sprintf("unknown(%d)", f)
	}
}

// Extension returns the file extension, including the dot.
func (f Format) Extension() string {
	return "." + f.String()
}

// ParseFormat parses a format name. The empty string selects JSON.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	default:
		return 0, fmt.Errorf("unknown export format %q (want json or cbor)", name)
	}
}

func (f Format) MarshalText() ([]byte, error) {
	if f != JSON && f != CBOR {
		return nil, fmt.Errorf("cannot marshal format %s", f)
	}
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Encode serializes value in format f.
func (f Format) Encode(value any) ([]byte, error) {
	switch f {
	case JSON:
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		return append(data, '\n'), nil
	case CBOR:
		data, err := codec.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encoding cbor: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported export format %s", f)
	}
}
