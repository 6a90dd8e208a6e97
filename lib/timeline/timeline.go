// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package timeline condenses the engine's timeliner output into a chart
// series: runs of consecutive records sharing a creation date become
// one (date, count) bucket.
//
// Buckets follow input order and are never sorted or merged: the date
// sequence A, A, B, A yields [A 2] [B 1] [A 1]. Records from the noise
// plugin (MFTScan by default, which floods the timeline with filesystem
// entries) are skipped entirely.
package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/memgrid/memgrid/lib/artefact"
)

// Field names of the timeliner rows.
const (
	PluginField = "Plugin"
	DateField   = "Created Date"
)

// DefaultSkipPlugin is the plugin whose rows are left out of the
// series.
const DefaultSkipPlugin = "MFTScan"

// ErrStructure reports input the bucketer cannot interpret: an empty
// record list, or a counted record whose creation date is unreadable.
var ErrStructure = errors.New("timeline input has no readable creation dates")

// Bucket is one run of equal dates. It serializes as a two-element
// array, [date, count], in both JSON and CBOR.
type Bucket struct {
	_     struct{} `cbor:",toarray"`
	Date  string
	Count int
}

func (b Bucket) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{b.Date, b.Count})
}

func (b *Bucket) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("timeline bucket has %d elements, want 2", len(pair))
	}
	if err := json.Unmarshal(pair[0], &b.Date); err != nil {
		return fmt.Errorf("timeline bucket date: %w", err)
	}
	if err := json.Unmarshal(pair[1], &b.Count); err != nil {
		return fmt.Errorf("timeline bucket count: %w", err)
	}
	return nil
}

// Options tune bucketing.
type Options struct {
	// SkipPlugin names the plugin whose rows are ignored. Empty skips
	// nothing.
	SkipPlugin string

	// ByDay compares dates by their calendar day (the YYYY-MM-DD
	// prefix) instead of the full timestamp string.
	ByDay bool

	// DropOpenRun leaves the final run out of the result, matching
	// series produced by earlier releases, which only emitted a run once
	// a later date closed it.
	DropOpenRun bool
}

// DefaultOptions skips DefaultSkipPlugin and emits every run.
func DefaultOptions() Options {
	return Options{SkipPlugin: DefaultSkipPlugin}
}

// Build buckets records with DefaultOptions.
func Build(records []artefact.Record) ([]Bucket, error) {
	return BuildWith(records, DefaultOptions())
}

// BuildWith buckets records. The first record must carry a readable
// creation date even when its plugin is skipped; a record that is
// counted must as well. Records without a Plugin field are counted.
func BuildWith(records []artefact.Record, options Options) ([]Bucket, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrStructure)
	}
	if _, err := dateOf(records[0], options.ByDay); err != nil {
		return nil, fmt.Errorf("%w: record 0: %v", ErrStructure, err)
	}

	buckets := []Bucket{}
	var current Bucket
	open := false
	for index, record := range records {
		if skipped(record, options.SkipPlugin) {
			continue
		}
		date, err := dateOf(record, options.ByDay)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrStructure, index, err)
		}
		if open && date == current.Date {
			current.Count++
			continue
		}
		if open {
			buckets = append(buckets, current)
		}
		current = Bucket{Date: date, Count: 1}
		open = true
	}
	if open && !options.DropOpenRun {
		buckets = append(buckets, current)
	}
	return buckets, nil
}

func skipped(record artefact.Record, plugin string) bool {
	if plugin == "" {
		return false
	}
	name, err := record.String(PluginField)
	return err == nil && name == plugin
}

// dateOf returns the record's creation date as a comparable string.
// Strings are used verbatim; time values are rendered in RFC 3339.
func dateOf(record artefact.Record, byDay bool) (string, error) {
	value, ok := record[DateField]
	if !ok || value == nil {
		return "", &artefact.FieldError{Field: DateField, Err: artefact.ErrMissingField}
	}

	var date string
	switch typed := value.(type) {
	case string:
		date = typed
	case time.Time:
		if byDay {
			return typed.Format(time.DateOnly), nil
		}
		date = typed.Format(time.RFC3339Nano)
	default:
		return "", &artefact.FieldError{Field: DateField, Err: artefact.ErrFieldType, Value: value}
	}
	if byDay {
		date = dayOf(date)
	}
	return date, nil
}

// dayOf returns the YYYY-MM-DD prefix of an ISO timestamp, or the
// input unchanged when it does not start with one.
func dayOf(timestamp string) string {
	if len(timestamp) < len(time.DateOnly) {
		return timestamp
	}
	if _, err := time.Parse(time.DateOnly, timestamp[:len(time.DateOnly)]); err != nil {
		return timestamp
	}
	return timestamp[:len(time.DateOnly)]
}

// Window returns the records whose creation date lies within
// [minimum, maximum], compared lexically as ISO timestamps. An empty
// bound is open. Records without a string date are dropped.
func Window(records []artefact.Record, minimum, maximum string) []artefact.Record {
	selected := []artefact.Record{}
	for _, record := range records {
		date, err := record.String(DateField)
		if err != nil {
			continue
		}
		if minimum != "" && date < minimum {
			continue
		}
		if maximum != "" && date > maximum {
			continue
		}
		selected = append(selected, record)
	}
	return selected
}
