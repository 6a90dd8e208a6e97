// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the stream compression applied to an export.
type Compression uint8

const (
	// CompressionNone writes the serialized bytes unchanged.
	CompressionNone Compression = 0

	// CompressionLZ4 writes an LZ4 frame. Fast, modest ratio.
	CompressionLZ4 Compression = 1

	// CompressionZstd writes a zstd frame at the default level. Better
	// ratios on JSON, which is most exports.
	CompressionZstd Compression = 2

	// CompressionAuto probes each export and picks one of the above.
	// It is an option only; artifacts record the concrete choice.
	CompressionAuto Compression = 255
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	case CompressionAuto:
		return "auto"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// Extension returns the file extension for compressed output, or ""
// for CompressionNone.
func (c Compression) Extension() string {
	switch c {
	case CompressionLZ4:
		return ".lz4"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

// ParseCompression parses a compression name. The empty string selects
// CompressionNone.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	case "auto":
		return CompressionAuto, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, lz4, zstd or auto)", name)
	}
}

func (c Compression) MarshalText() ([]byte, error) {
	switch c {
	case CompressionNone, CompressionLZ4, CompressionZstd, CompressionAuto:
		return []byte(c.String()), nil
	default:
		return nil, fmt.Errorf("cannot marshal compression %s", c)
	}
}

func (c *Compression) UnmarshalText(text []byte) error {
	parsed, err := ParseCompression(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// probeEncoder is only used by SelectCompression. zstd.Encoder is safe
// for concurrent EncodeAll calls.
var probeEncoder *zstd.Encoder

func init() {
	var err error
	probeEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("export: zstd encoder initialization failed: " + err.Error())
	}
}

// SelectCompression compresses a prefix of data with zstd and picks by
// ratio: zstd at 1.5x or better, LZ4 from 1.1x, otherwise none.
func SelectCompression(data []byte) Compression {
	const probeSize = 256 * 1024
	if len(data) == 0 {
		return CompressionNone
	}
	sample := data[:min(len(data), probeSize)]
	compressed := probeEncoder.EncodeAll(sample, nil)
	ratio := float64(len(sample)) / float64(len(compressed))

	switch {
	case ratio >= 1.5:
		return CompressionZstd
	case ratio >= 1.1:
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Compress wraps w so that writes are compressed with c. Closing the
// returned writer flushes the frame but does not close w.
func Compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZstd:
		encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return encoder, nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}

// Decompress returns a reader over the decompressed content of r.
func Decompress(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionZstd:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return decoder.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}

// CompressionForPath infers the compression of an exported file from
// its extension.
func CompressionForPath(path string) Compression {
	for _, c := range []Compression{CompressionZstd, CompressionLZ4} {
		extension := c.Extension()
		if len(path) > len(extension) && path[len(path)-len(extension):] == extension {
			return c
		}
	}
	return CompressionNone
}
