package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Read parses an artifact document from r.
//
// Two shapes are accepted: the structured document this package writes,
// and the legacy bare array of flat rows produced by earlier exports.
// Legacy input yields a Document with only Flat populated.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []Row
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("failed to parse legacy artifact: %w", err)
		}
		return &Document{Flat: rows}, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}
	return &doc, nil
}

// ReadFile parses the artifact document at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided artifact path is intentional
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
