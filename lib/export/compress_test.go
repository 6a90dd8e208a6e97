// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"bytes"
	"io"
	"math/rand/v2"
	"strings"
	"testing"
)

func TestParseCompression(t *testing.T) {
	tests := []struct {
		input string
		want  Compression
	}{
		{"", CompressionNone},
		{"none", CompressionNone},
		{"lz4", CompressionLZ4},
		{"zstd", CompressionZstd},
		{"auto", CompressionAuto},
	}
	for _, test := range tests {
		got, err := ParseCompression(test.input)
		if err != nil {
			t.Errorf("ParseCompression(%q): %v", test.input, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseCompression(%q) = %s, want %s", test.input, got, test.want)
		}
	}

	if _, err := ParseCompression("gzip"); err == nil {
		t.Error("ParseCompression(gzip) succeeded")
	}
}

func TestCompressionTextRoundTrip(t *testing.T) {
	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd, CompressionAuto} {
		text, err := compression.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%s): %v", compression, err)
		}
		var decoded Compression
		if err := decoded.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if decoded != compression {
			t.Errorf("round trip of %s gave %s", compression, decoded)
		}
	}

	if _, err := Compression(9).MarshalText(); err == nil {
		t.Error("MarshalText succeeded for an unknown compression")
	}
}

func TestCompressionExtension(t *testing.T) {
	if CompressionNone.Extension() != "" {
		t.Errorf("none extension = %q", CompressionNone.Extension())
	}
	if CompressionZstd.Extension() != ".zst" {
		t.Errorf("zstd extension = %q", CompressionZstd.Extension())
	}
	if CompressionLZ4.Extension() != ".lz4" {
		t.Errorf("lz4 extension = %q", CompressionLZ4.Extension())
	}

	paths := map[string]Compression{
		"pslist.json":        CompressionNone,
		"pslist.json.zst":    CompressionZstd,
		"netscan.cbor.lz4":   CompressionLZ4,
		"/out/timeline.json": CompressionNone,
		".zst":               CompressionNone,
	}
	for path, want := range paths {
		if got := CompressionForPath(path); got != want {
			t.Errorf("CompressionForPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestSelectCompression(t *testing.T) {
	if got := SelectCompression(nil); got != CompressionNone {
		t.Errorf("empty input selected %s", got)
	}

	repetitive := []byte(strings.Repeat(`{"PID": 4, "ImageFileName": "System"},`, 4096))
	if got := SelectCompression(repetitive); got != CompressionZstd {
		t.Errorf("repetitive JSON selected %s, want zstd", got)
	}

	random := make([]byte, 64*1024)
	source := rand.NewChaCha8([32]byte{7})
	source.Read(random)
	if got := SelectCompression(random); got != CompressionNone {
		t.Errorf("random bytes selected %s, want none", got)
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("0x7ff6a1c20000 svchost.exe 1044\n", 500))

	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			var buffer bytes.Buffer
			sink, err := Compress(&buffer, compression)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			if _, err := sink.Write(payload); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := sink.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			if compression != CompressionNone && buffer.Len() >= len(payload) {
				t.Errorf("%s output is %d bytes, not smaller than %d", compression, buffer.Len(), len(payload))
			}

			reader, err := Decompress(&buffer, compression)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			defer reader.Close()
			decoded, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if !bytes.Equal(decoded, payload) {
				t.Errorf("decompressed %d bytes, want %d identical bytes", len(decoded), len(payload))
			}
		})
	}
}

func TestCompressRejectsAuto(t *testing.T) {
	if _, err := Compress(io.Discard, CompressionAuto); err == nil {
		t.Error("Compress accepted CompressionAuto")
	}
	if _, err := Decompress(strings.NewReader(""), CompressionAuto); err == nil {
		t.Error("Decompress accepted CompressionAuto")
	}
}
