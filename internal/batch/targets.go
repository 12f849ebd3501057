package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nholik/sharecrawl/internal/model"
)

// Target-list loading errors.
var (
	// ErrMissingColumn indicates the header row lacks a required column.
	ErrMissingColumn = errors.New("target list is missing a required column")

	// ErrEmptyTargetList indicates the file has a header but no usable rows.
	ErrEmptyTargetList = errors.New("target list has no usable rows")
)

// LoadTargets reads the target list from the CSV file at path. The
// first row is the header; idColumn and locatorColumn name the columns
// holding the target identifier and the share link. Rows with an empty
// identifier or locator are skipped. Source order is preserved, because
// the orchestrator processes targets in that order.
func LoadTargets(path, idColumn, locatorColumn string) ([]model.Target, error) {
	f, err := os.Open(path) //nolint:gosec // Target-list path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open target list: %w", err)
	}
	defer f.Close()

	return ReadTargets(f, idColumn, locatorColumn)
}

// ReadTargets parses the target list from r. See LoadTargets.
func ReadTargets(r io.Reader, idColumn, locatorColumn string) ([]model.Target, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyTargetList
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read target-list header: %w", err)
	}
	if len(header) > 0 {
		// Spreadsheet exports routinely carry a UTF-8 BOM.
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	idIdx, locatorIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case idColumn:
			idIdx = i
		case locatorColumn:
			locatorIdx = i
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, idColumn)
	}
	if locatorIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, locatorColumn)
	}

	var targets []model.Target
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read target-list row: %w", err)
		}
		if idIdx >= len(record) || locatorIdx >= len(record) {
			continue
		}

		id := strings.TrimSpace(record[idIdx])
		locator := strings.TrimSpace(record[locatorIdx])
		if id == "" || locator == "" {
			continue
		}

		targets = append(targets, model.Target{ID: id, Locator: locator})
	}

	if len(targets) == 0 {
		return nil, ErrEmptyTargetList
	}
	return targets, nil
}
