// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package artefact handles the flat records the analysis engine emits
// for table-shaped plugins: one string-keyed mapping per row. The graph
// builder and timeline bucketer consume these records; this package
// supplies typed field access, the per-process filter, and paging.
package artefact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

// Record is one flat engine row keyed by column name.
type Record map[string]any

var (
	// ErrMissingField reports a field that is absent or null.
	ErrMissingField = errors.New("missing field")

	// ErrFieldType reports a field whose value has the wrong type.
	ErrFieldType = errors.New("wrong field type")
)

// FieldError describes a field lookup failure. It matches
// ErrMissingField or ErrFieldType under errors.Is.
type FieldError struct {
	Field string
	Err   error
	Value any
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrFieldType) {
		return fmt.Sprintf("field %q: %v (got %T)", e.Field, e.Err, e.Value)
	}
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Has reports whether the field is present with a non-null value.
func (r Record) Has(field string) bool {
	value, ok := r[field]
	return ok && value != nil
}

// String returns the field as a string. Numbers are not converted.
func (r Record) String(field string) (string, error) {
	value, ok := r[field]
	if !ok || value == nil {
		return "", &FieldError{Field: field, Err: ErrMissingField}
	}
	text, ok := value.(string)
	if !ok {
		return "", &FieldError{Field: field, Err: ErrFieldType, Value: value}
	}
	return text, nil
}

// Int returns the field as an integer. Go integers, integral floats
// (JSON decoding produces float64), json.Number and decimal strings
// are accepted.
func (r Record) Int(field string) (int64, error) {
	value, ok := r[field]
	if !ok || value == nil {
		return 0, &FieldError{Field: field, Err: ErrMissingField}
	}
	integer, ok := toInt(value)
	if !ok {
		return 0, &FieldError{Field: field, Err: ErrFieldType, Value: value}
	}
	return integer, nil
}

func toInt(value any) (int64, bool) {
	switch typed := value.(type) {
	case int:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case int64:
		return typed, true
	case uint32:
		return int64(typed), true
	case uint64:
		if typed > math.MaxInt64 {
			return 0, false
		}
		return int64(typed), true
	case float64:
		if typed != math.Trunc(typed) || math.IsInf(typed, 0) || typed >= math.MaxInt64 || typed < math.MinInt64 {
			return 0, false
		}
		return int64(typed), true
	case json.Number:
		integer, err := typed.Int64()
		return integer, err == nil
	case string:
		integer, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		return integer, err == nil
	default:
		return 0, false
	}
}

// DecodeRecords parses a JSON or JSONC array of flat records. Numbers
// are kept as json.Number so large process ids survive intact.
func DecodeRecords(data []byte) ([]Record, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.UseNumber()
	var records []Record
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}
	return records, nil
}

// ReadRecordsFile reads and decodes a records file.
func ReadRecordsFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	records, err := DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
