// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package artefact

// Process id field names used by the engine's per-process plugins.
// Most plugins use PIDField; a few (handles, privileges on some
// profiles) report ProcessIDField instead.
const (
	PIDField       = "PID"
	ProcessIDField = "Process ID"
)

// FilterByPID returns the records whose field holds pid. When field is
// empty, PIDField and ProcessIDField are both consulted. Records where
// the field is missing or not an integer are skipped. The input slice
// is not modified and order is preserved.
func FilterByPID(records []Record, field string, pid int64) []Record {
	fields := []string{field}
	if field == "" {
		fields = []string{PIDField, ProcessIDField}
	}

	matched := []Record{}
	for _, record := range records {
		for _, name := range fields {
			value, err := record.Int(name)
			if err == nil && value == pid {
				matched = append(matched, record)
				break
			}
		}
	}
	return matched
}

// Page returns up to length records starting at start, clamped to the
// slice bounds. A negative or zero length returns everything from
// start. The result shares the input's backing array.
func Page(records []Record, start, length int) []Record {
	if start < 0 {
		start = 0
	}
	if start >= len(records) {
		return []Record{}
	}
	end := len(records)
	if length > 0 && length < end-start {
		end = start + length
	}
	return records[start:end]
}
