// Package export turns a raw store export payload into a named file ready to
// be written to disk.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Format is a store export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	return f == FormatCSV || f == FormatJSON
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !f.Valid() {
		return "", fmt.Errorf("unsupported export format %q (want csv or json)", s)
	}
	return f, nil
}

// File is a downloadable export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Encode builds the downloadable file for payload. CSV payloads are already
// encoded text and pass through untouched. JSON payloads are re-indented with
// two spaces so the same payload always produces the same bytes.
func Encode(format Format, payload []byte) (*File, error) {
	switch format {
	case FormatCSV:
		return &File{Name: "tasks.csv", ContentType: "text/csv", Data: payload}, nil
	case FormatJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, bytes.TrimSpace(payload), "", "  "); err != nil {
			return nil, fmt.Errorf("format json export: %w", err)
		}
		return &File{Name: "tasks.json", ContentType: "application/json", Data: buf.Bytes()}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// Save writes f into dir, creating dir if needed, and returns the file path.
func Save(dir string, f *File) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, f.Name)
	if err := os.WriteFile(path, f.Data, 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
