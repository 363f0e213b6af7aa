// Package export writes test-case records as indented JSON documents: one
// file per record and one file for the whole suite.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"finsec/internal/logging"
	"finsec/internal/usecase"

	"go.uber.org/zap"
)

// DefaultSuiteFile is the full-suite export name.
const DefaultSuiteFile = "full_test_suite.json"

// RecordFileName returns the per-record export name for rec.
func RecordFileName(rec usecase.TestCaseRecord) string {
	return fmt.Sprintf("test_case_%s.json", rec.TestID)
}

// WriteRecord writes rec to dir and returns the file path.
func WriteRecord(dir string, rec usecase.TestCaseRecord) (string, error) {
	if rec.TestID == "" {
		return "", fmt.Errorf("record has no test_id")
	}
	path := filepath.Join(dir, RecordFileName(rec))
	if err := writeJSON(path, rec); err != nil {
		return "", err
	}
	logging.Get(logging.CategoryExport).Debug("wrote test case",
		zap.String("test_id", rec.TestID),
		zap.String("path", path))
	return path, nil
}

// WriteSuite writes records to path as a JSON array. A nil slice is written
// as an empty array.
func WriteSuite(path string, records []usecase.TestCaseRecord) error {
	if records == nil {
		records = []usecase.TestCaseRecord{}
	}
	if err := writeJSON(path, records); err != nil {
		return err
	}
	logging.Get(logging.CategoryExport).Info("wrote test suite",
		zap.String("path", path),
		zap.Int("records", len(records)))
	return nil
}

// ReadSuite loads a suite written by WriteSuite.
func ReadSuite(path string) ([]usecase.TestCaseRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite: %w", err)
	}
	var records []usecase.TestCaseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse suite %s: %w", path, err)
	}
	return records, nil
}

// Options selects which artifacts Save writes.
type Options struct {
	PerCase   bool
	SuiteFile string // empty means DefaultSuiteFile
}

// Save writes the requested artifacts for records into dir and returns the
// written paths, suite last.
func Save(dir string, records []usecase.TestCaseRecord, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	if opts.PerCase {
		for _, rec := range records {
			path, err := WriteRecord(dir, rec)
			if err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}

	suiteFile := opts.SuiteFile
	if suiteFile == "" {
		suiteFile = DefaultSuiteFile
	}
	suitePath := filepath.Join(dir, suiteFile)
	if err := WriteSuite(suitePath, records); err != nil {
		return paths, err
	}
	return append(paths, suitePath), nil
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
