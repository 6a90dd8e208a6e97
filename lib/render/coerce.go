// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"strings"
	"time"
)

// Coerce converts a raw engine value to its document form according to
// the column kind:
//
//   - KindHexBytes: quoted hex dump
//   - KindDisassembly: quoted instruction listing
//   - KindMultiType: quoted decoded text
//   - KindBytes: space-separated two-digit hex octets, null when empty
//   - KindDateTime: ISO-8601 string
//   - everything else: unchanged
//
// Absent values are null (a nil interface) under every kind. A value
// whose Go type does not match its column kind passes through
// unchanged.
func Coerce(kind Kind, value any) any {
	if value == nil || IsAbsent(value) {
		return nil
	}

	switch kind {
	case KindHexBytes:
		if data, ok := value.([]byte); ok {
			return quote(HexDump(data))
		}
	case KindDisassembly:
		switch typed := value.(type) {
		case Disassembly:
			return quote(typed.Text())
		case *Disassembly:
			return quote(typed.Text())
		}
	case KindMultiType:
		switch typed := value.(type) {
		case MultiTypeData:
			return quote(typed.Text())
		case *MultiTypeData:
			return quote(typed.Text())
		case string:
			return quote(typed)
		}
	case KindBytes:
		if data, ok := value.([]byte); ok {
			if len(data) == 0 {
				return nil
			}
			return Octets(data)
		}
	case KindDateTime:
		switch typed := value.(type) {
		case time.Time:
			return ISOFormat(typed)
		case *time.Time:
			return ISOFormat(*typed)
		}
	case KindOther, KindString, KindInt, KindFloat, KindBool:
	}
	return value
}

func quote(text string) string {
	return `"` + text + `"`
}

// Octets renders data as space-separated two-digit lowercase hex
// octets ("de ad be ef").
func Octets(data []byte) string {
	const digits = "0123456789abcdef"
	var builder strings.Builder
	builder.Grow(len(data) * 3)
	for index, octet := range data {
		if index > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteByte(digits[octet>>4])
		builder.WriteByte(digits[octet&0x0f])
	}
	return builder.String()
}

// hexDumpWidth is the number of octets per hex dump line.
const hexDumpWidth = 16

// HexDump renders data as lines of 16 space-separated octets, padded
// to full width, followed by a tab and an ASCII gutter in which
// non-printable bytes appear as '.'. Lines are separated by '\n'.
func HexDump(data []byte) string {
	var builder strings.Builder
	for start := 0; start < len(data); start += hexDumpWidth {
		end := min(start+hexDumpWidth, len(data))
		line := data[start:end]

		if start > 0 {
			builder.WriteByte('\n')
		}
		builder.WriteString(Octets(line))
		for padding := len(line); padding < hexDumpWidth; padding++ {
			builder.WriteString("   ")
		}
		builder.WriteByte('\t')
		for _, octet := range line {
			if octet > 0x1f && octet < 0x7f {
				builder.WriteByte(octet)
			} else {
				builder.WriteByte('.')
			}
		}
	}
	return builder.String()
}

// ISOFormat renders t as "2006-01-02T15:04:05[.ffffff]±hh:mm".
// Fractional seconds appear only when the microsecond component is
// non-zero, and the offset is always numeric (UTC is "+00:00").
func ISOFormat(t time.Time) string {
	layout := "2006-01-02T15:04:05"
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		layout += ".000000"
	}
	return t.Format(layout + "-07:00")
}
