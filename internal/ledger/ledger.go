package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// timestampFormat is the first column of every appended line: UTC at
// second precision with an explicit Z suffix.
const timestampFormat = "2006-01-02T15:04:05Z"

// Ledger is the append-only record of completed targets. One line per
// completed target, appended after the target's artifact is durable.
// The file doubles as the resume state: membership is what makes a
// rerun skip a target.
type Ledger struct {
	path string
}

// New creates a Ledger backed by the file at path. The file is not
// touched until the first Append.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the backing file path.
func (l *Ledger) Path() string {
	return l.path
}

// Load reads the set of completed target identifiers.
//
// A missing file is an empty ledger, not an error. Blank lines are
// ignored. Each line carries a timestamp column and an identifier
// column separated by a tab; lines without a tab are treated as a bare
// identifier, which older exports wrote.
func (l *Ledger) Load() (map[string]struct{}, error) {
	f, err := os.Open(l.path) //nolint:gosec // Ledger path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	done := map[string]struct{}{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		id := line
		if _, rest, found := strings.Cut(line, "\t"); found {
			id = rest
		}
		if id != "" {
			done[id] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return done, nil
}

// Append records one completed target. The line is flushed to stable
// storage before Append returns; an error here means the record may be
// lost and the caller must treat the run as compromised.
func (l *Ledger) Append(id string) error {
	if dir := filepath.Dir(l.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) //nolint:gosec // Ledger path comes from configuration
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}

	line := time.Now().UTC().Format(timestampFormat) + "\t" + id + "\n"
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to ledger: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close ledger: %w", err)
	}
	return nil
}
