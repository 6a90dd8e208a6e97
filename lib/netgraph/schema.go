// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package netgraph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/memgrid/memgrid/lib/artefact"
)

// Schema maps one platform's connection plugin columns onto a Record.
type Schema struct {
	// Name identifies the platform ("windows", "linux").
	Name string

	PID        string
	Owner      string
	LocalAddr  string
	LocalPort  string
	RemoteAddr string
	RemotePort string
	Family     string

	// Families, when non-empty, restricts the graph to records whose
	// Family field equals one of the listed values.
	Families []string

	// LabelByPID labels process nodes with their process id instead of
	// the owner name. The Linux socket plugin has no owner column.
	LabelByPID bool
}

// Windows reads windows.netscan / windows.netstat rows.
var Windows = Schema{
	Name:       "windows",
	PID:        "PID",
	Owner:      "Owner",
	LocalAddr:  "LocalAddr",
	LocalPort:  "LocalPort",
	RemoteAddr: "ForeignAddr",
	RemotePort: "ForeignPort",
}

// Linux reads linux.sockstat rows. Only IPv4 sockets are graphed.
var Linux = Schema{
	Name:       "linux",
	PID:        "Pid",
	LocalAddr:  "Source Addr",
	LocalPort:  "Source Port",
	RemoteAddr: "Destination Addr",
	RemotePort: "Destination Port",
	Family:     "Family",
	Families:   []string{"AF_INET"},
	LabelByPID: true,
}

// SchemaFor returns the schema registered for platform.
func SchemaFor(platform string) (Schema, error) {
	switch platform {
	case Windows.Name:
		return Windows, nil
	case Linux.Name:
		return Linux, nil
	default:
		return Schema{}, fmt.Errorf("no connection schema for platform %q", platform)
	}
}

// FieldError reports a connection row that cannot be read under a
// schema.
type FieldError struct {
	Schema string
	Row    int
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s connection row %d: %v", e.Schema, e.Row, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Decode reads raw into a Record. It reports false, with no error,
// when the row is excluded by the family filter.
func (s Schema) Decode(raw artefact.Record) (Record, bool, error) {
	if len(s.Families) > 0 {
		family, err := raw.String(s.Family)
		if err != nil {
			return Record{}, false, err
		}
		if !slices.Contains(s.Families, family) {
			return Record{}, false, nil
		}
	}

	var record Record
	var err error
	if record.PID, err = raw.Int(s.PID); err != nil {
		return Record{}, false, err
	}
	if s.Owner != "" {
		// The owner is null for connections whose process exited.
		record.Owner, err = raw.String(s.Owner)
		if err != nil && !errors.Is(err, artefact.ErrMissingField) {
			return Record{}, false, err
		}
	}
	if record.LocalAddr, err = raw.String(s.LocalAddr); err != nil {
		return Record{}, false, err
	}
	if record.LocalPort, err = raw.Int(s.LocalPort); err != nil {
		return Record{}, false, err
	}
	if record.RemoteAddr, err = raw.String(s.RemoteAddr); err != nil {
		return Record{}, false, err
	}
	if record.RemotePort, err = raw.Int(s.RemotePort); err != nil {
		return Record{}, false, err
	}
	if s.Family != "" {
		record.Family, _ = raw.String(s.Family)
	}
	return record, true, nil
}
