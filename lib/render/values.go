// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Disassembly is a code region captured by the engine. Architecture
// uses the engine's names: "intel" (32-bit x86), "intel64" (x86-64)
// and "arm64". Any other architecture renders as a hex dump.
type Disassembly struct {
	Data         []byte
	Offset       uint64
	Architecture string
}

// Text renders the region as one instruction per line in the form
// "0x401000:\tpush rbp". Bytes that do not decode are listed as
// ".byte 0xNN" and decoding resumes at the next byte.
func (d Disassembly) Text() string {
	switch d.Architecture {
	case "intel":
		return d.listX86(32)
	case "intel64":
		return d.listX86(64)
	case "arm64":
		return d.listARM64()
	default:
		return HexDump(d.Data)
	}
}

func (d Disassembly) listX86(mode int) string {
	var lines []string
	address := d.Offset
	remaining := d.Data
	for len(remaining) > 0 {
		instruction, err := x86asm.Decode(remaining, mode)
		if err != nil || instruction.Len == 0 {
			lines = append(lines, fmt.Sprintf("%#x:\t.byte %#02x", address, remaining[0]))
			address++
			remaining = remaining[1:]
			continue
		}
		lines = append(lines, fmt.Sprintf("%#x:\t%s", address, x86asm.IntelSyntax(instruction, address, nil)))
		address += uint64(instruction.Len)
		remaining = remaining[instruction.Len:]
	}
	return strings.Join(lines, "\n")
}

func (d Disassembly) listARM64() string {
	const width = 4
	var lines []string
	address := d.Offset
	remaining := d.Data
	for len(remaining) >= width {
		instruction, err := arm64asm.Decode(remaining[:width])
		if err != nil {
			lines = append(lines, fmt.Sprintf("%#x:\t.inst %s", address, Octets(remaining[:width])))
		} else {
			lines = append(lines, fmt.Sprintf("%#x:\t%s", address, arm64asm.GNUSyntax(instruction)))
		}
		address += width
		remaining = remaining[width:]
	}
	for _, octet := range remaining {
		lines = append(lines, fmt.Sprintf("%#x:\t.byte %#02x", address, octet))
		address++
	}
	return strings.Join(lines, "\n")
}

// MultiTypeData is a value whose bytes carry text in a declared
// encoding, or that should be shown as hex.
type MultiTypeData struct {
	Data []byte

	// Encoding names the text encoding: "utf-8" (the default),
	// "utf-16-le", "utf-16-be" or "latin-1". Unknown encodings render
	// as a hex dump.
	Encoding string

	// ShowHex renders the data as a hex dump instead of text.
	ShowHex bool

	// SplitNulls truncates the decoded text at its first NUL.
	SplitNulls bool
}

// Text renders the value. Invalid sequences in the declared encoding
// are replaced with U+FFFD.
func (m MultiTypeData) Text() string {
	if m.ShowHex {
		return HexDump(m.Data)
	}

	text, ok := decodeText(m.Data, m.Encoding)
	if !ok {
		return HexDump(m.Data)
	}
	if m.SplitNulls {
		if before, _, found := strings.Cut(text, "\x00"); found {
			text = before
		}
	}
	return text
}

func decodeText(data []byte, name string) (string, bool) {
	var decoder encoding.Encoding
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		if utf8.Valid(data) {
			return string(data), true
		}
		return strings.ToValidUTF8(string(data), "\uFFFD"), true
	case "utf-16-le", "utf-16le", "utf16le":
		decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf-16-be", "utf-16be", "utf16be":
		decoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "latin-1", "latin1", "iso-8859-1":
		decoder = charmap.ISO8859_1
	default:
		return "", false
	}

	decoded, err := decoder.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}
