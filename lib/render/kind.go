// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package render

import "fmt"

// Kind is the semantic type of a grid column. The set is closed: the
// coercion table in [Coerce] matches on every member.
type Kind uint8

const (
	// KindOther covers column types this package does not know. Values
	// pass through unchanged.
	KindOther Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool

	// KindHexBytes is a binary blob rendered as a hex dump.
	KindHexBytes

	// KindDisassembly is a code region rendered as an instruction
	// listing.
	KindDisassembly

	// KindMultiType is a value that may carry one of several string
	// encodings, or raw bytes shown as hex.
	KindMultiType

	// KindBytes is a raw byte sequence rendered as space-separated
	// octets.
	KindBytes

	// KindDateTime is a timestamp rendered in ISO-8601.
	KindDateTime
)

// kindNames maps each Kind to its wire name. The names match the type
// names the engine reports for its columns.
var kindNames = map[Kind]string{
	KindOther:       "other",
	KindString:      "str",
	KindInt:         "int",
	KindFloat:       "float",
	KindBool:        "bool",
	KindHexBytes:    "hexbytes",
	KindDisassembly: "disassembly",
	KindMultiType:   "multitypedata",
	KindBytes:       "bytes",
	KindDateTime:    "datetime",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", k)
}

// ParseKind maps a wire type name to a Kind. Unknown names map to
// KindOther rather than failing: an engine plugin may report a column
// type this package has never seen, and such values pass through
// unchanged.
func ParseKind(name string) Kind {
	switch name {
	case "str", "string":
		return KindString
	case "int", "hex", "bin":
		return KindInt
	case "float":
		return KindFloat
	case "bool":
		return KindBool
	case "hexbytes":
		return KindHexBytes
	case "disassembly":
		return KindDisassembly
	case "multitypedata":
		return KindMultiType
	case "bytes":
		return KindBytes
	case "datetime":
		return KindDateTime
	default:
		return KindOther
	}
}

// AbsentReason says why the engine could not produce a value.
type AbsentReason uint8

const (
	NotAvailable AbsentReason = iota
	NotApplicable
	Unreadable
	Unparsable
)

var absentReasonNames = map[AbsentReason]string{
	NotAvailable:  "not-available",
	NotApplicable: "not-applicable",
	Unreadable:    "unreadable",
	Unparsable:    "unparsable",
}

func (r AbsentReason) String() string {
	if name, ok := absentReasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", r)
}

// ParseAbsentReason maps a wire reason name to an AbsentReason.
func ParseAbsentReason(name string) (AbsentReason, error) {
	for reason, reasonName := range absentReasonNames {
		if reasonName == name {
			return reason, nil
		}
	}
	return 0, fmt.Errorf("unknown absent reason %q", name)
}

// Absent marks a value the engine could not determine. It is distinct
// from an empty or zero value and always renders as null.
type Absent struct {
	Reason AbsentReason
}

func (a Absent) String() string {
	return "absent(" + a.Reason.String() + ")"
}

// IsAbsent reports whether value is an absent marker.
func IsAbsent(value any) bool {
	switch value.(type) {
	case Absent, *Absent:
		return true
	default:
		return false
	}
}
