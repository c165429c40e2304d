// Package writer encodes reports as JSON, optionally gzip or zstd compressed.
package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression selects the stream compression applied after JSON encoding.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// ParseCompression maps a config value onto a Compression. Empty means none.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionGzip:
		return CompressionGzip, nil
	case CompressionZstd:
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("unsupported compression: %s", s)
	}
}

// Extension returns the file suffix for encoded output.
func (c Compression) Extension() string {
	switch c {
	case CompressionGzip:
		return ".json.gz"
	case CompressionZstd:
		return ".json.zst"
	default:
		return ".json"
	}
}

// ContentType returns the MIME type for encoded output.
func (c Compression) ContentType() string {
	switch c {
	case CompressionGzip:
		return "application/gzip"
	case CompressionZstd:
		return "application/zstd"
	default:
		return "application/json"
	}
}

// JSONWriter writes values of T as JSON.
type JSONWriter[T any] struct {
	// Indent specifies the indentation for pretty printing.
	// Empty string means compact output.
	Indent      string
	Compression Compression
}

// NewJSONWriter creates a writer with compact, uncompressed output.
func NewJSONWriter[T any]() *JSONWriter[T] {
	return &JSONWriter[T]{Compression: CompressionNone}
}

// NewPrettyJSONWriter creates a writer with indented, uncompressed output.
func NewPrettyJSONWriter[T any]() *JSONWriter[T] {
	return &JSONWriter[T]{Indent: "  ", Compression: CompressionNone}
}

// NewCompressedWriter creates a compact writer with the given compression.
func NewCompressedWriter[T any](c Compression) *JSONWriter[T] {
	return &JSONWriter[T]{Compression: c}
}

// Write encodes data to w.
func (jw *JSONWriter[T]) Write(data T, w io.Writer) error {
	switch jw.Compression {
	case CompressionGzip:
		gz := gzip.NewWriter(w)
		if err := jw.encode(data, gz); err != nil {
			gz.Close()
			return err
		}
		return gz.Close()

	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("failed to create zstd writer: %w", err)
		}
		if err := jw.encode(data, zw); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()

	default:
		return jw.encode(data, w)
	}
}

// Bytes encodes data into memory.
func (jw *JSONWriter[T]) Bytes(data T) ([]byte, error) {
	var buf bytes.Buffer
	if err := jw.Write(data, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteToFile encodes data into a new file at path.
func (jw *JSONWriter[T]) WriteToFile(data T, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := jw.Write(data, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (jw *JSONWriter[T]) encode(data T, w io.Writer) error {
	enc := json.NewEncoder(w)
	if jw.Indent != "" {
		enc.SetIndent("", jw.Indent)
	}
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}
	return nil
}

// Read decodes a value written by JSONWriter with the given compression.
func Read[T any](r io.Reader, c Compression) (T, error) {
	var out T
	switch c {
	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return out, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz

	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return out, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return out, fmt.Errorf("failed to decode data: %w", err)
	}
	return out, nil
}
