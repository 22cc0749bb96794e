// Package export persists pipeline checkpoints: CSV snapshots of the review
// table and the aggregate tables, plus the word-cloud image.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes rows (a pointer to a slice of csv-tagged structs) to path,
// creating parent directories as needed. Snapshots are immutable: an
// existing file is replaced wholesale, never appended to.
func WriteCSV(path string, rows any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// ReadCSV loads a snapshot back into rows (a pointer to a slice of
// csv-tagged structs).
func ReadCSV(path string, rows any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, rows); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}
