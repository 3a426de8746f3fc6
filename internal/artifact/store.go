// Package artifact persists stage outputs between pipeline runs so each
// stage can be re-invoked or inspected independently.
package artifact

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ikkim/retail-etl/internal/app/model"
	apperrors "github.com/ikkim/retail-etl/internal/errors"
	"github.com/ikkim/retail-etl/pkg/logger"
)

const (
	flatRowsFile       = "flat_rows.jsonl"
	normalizedRowsFile = "normalized_rows.jsonl"
)

// Store reads and writes stage-boundary artifacts as JSON lines under a
// data directory. JSON lines round-trip every declared type including
// nulls, which the columnar contract requires.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// SaveFlatRows persists the flatten-stage output.
func (s *Store) SaveFlatRows(rows []model.FlatRow) error {
	return writeLines(s.path(flatRowsFile), rows)
}

// LoadFlatRows reads the flatten-stage output. A missing artifact means
// the upstream stage has not run.
func (s *Store) LoadFlatRows() ([]model.FlatRow, error) {
	return readLines[model.FlatRow](s.path(flatRowsFile))
}

// SaveNormalizedRows persists the transform-stage output.
func (s *Store) SaveNormalizedRows(rows []model.NormalizedRow) error {
	return writeLines(s.path(normalizedRowsFile), rows)
}

// LoadNormalizedRows reads the transform-stage output.
func (s *Store) LoadNormalizedRows() ([]model.NormalizedRow, error) {
	return readLines[model.NormalizedRow](s.path(normalizedRowsFile))
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// writeLines writes rows atomically: encode to a temp file, then rename
// over the target so a crashed run never leaves a partial artifact.
func writeLines[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to encode artifact row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace artifact: %w", err)
	}

	logger.Debug("Wrote stage artifact", map[string]interface{}{
		"path": path,
		"rows": len(rows),
	})
	return nil
}

func readLines[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: artifact %s", apperrors.ErrMissingInput, filepath.Base(path))
		}
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	var rows []T
	dec := json.NewDecoder(bufio.NewReader(f))
	for dec.More() {
		var row T
		if err := dec.Decode(&row); err != nil {
			return nil, fmt.Errorf("%w: artifact %s is malformed: %v", apperrors.ErrMissingInput, filepath.Base(path), err)
		}
		rows = append(rows, row)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}
