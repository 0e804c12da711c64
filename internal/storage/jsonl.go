// Package storage persists the record library: a JSONL file as the source
// of truth and a SQLite cache rebuilt from it for queries.
package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/matsen/bipcite/internal/reference"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all records from a JSONL file. A missing file yields no records.
func ReadAll(path string) ([]reference.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	var records []reference.Record
	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r reference.Record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	return records, nil
}

// Append adds a record to the end of a JSONL file.
func Append(path string, r reference.Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening records file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", r.ID, err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing record %s: %w", r.ID, err)
	}
	return nil
}

// WriteAll writes all records to a JSONL file, replacing existing content.
func WriteAll(path string, records []reference.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating records file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	return w.Flush()
}

// FindByID searches for a record by ID.
func FindByID(records []reference.Record, id string) (int, bool) {
	for i, r := range records {
		if r.ID == id {
			return i, true
		}
	}
	return -1, false
}

// FindByDOI searches for a record by DOI.
func FindByDOI(records []reference.Record, doi string) (int, bool) {
	if doi == "" {
		return -1, false
	}
	for i, r := range records {
		if r.DOI == doi {
			return i, true
		}
	}
	return -1, false
}
