package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// JSONWriter emits artifact documents as indented JSON.
// Output is deterministic: field order is fixed by the struct layout and
// indentation never varies, so identical documents yield identical bytes.
type JSONWriter struct {
	output io.Writer
}

// NewJSONWriter creates a JSONWriter that writes to output.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{output: output}
}

// Write serializes the document and reports the bytes written.
func (w *JSONWriter) Write(doc *Document) (int, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to serialize document: %w", err)
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

// WriteFile serializes the document to path, creating parent directories
// as needed. The write goes through a rename-free simple create: a
// partially written artifact is harmless because the ledger entry is
// only appended after this function returns.
func WriteFile(path string, doc *Document) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // Artifact path derives from sanitized target ID
	if err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}

	if _, err := NewJSONWriter(f).Write(doc); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	return nil
}
