package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/bipcite/internal/reference"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

const selectRecordFields = `id, doi, authors, title, publication, publisher,
	year, pages, volume, number, pub_type, codes_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			doi TEXT,
			authors TEXT NOT NULL,
			title TEXT NOT NULL,
			publication TEXT,
			publisher TEXT,
			year TEXT,
			pages TEXT,
			volume TEXT,
			number TEXT,
			pub_type INTEGER NOT NULL DEFAULT 0,
			codes_json TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi) WHERE doi IS NOT NULL AND doi != '';

		-- Standalone full-text index over the searchable fields
		CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
			id,
			title,
			authors,
			publication
		);
	`
	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and reloads it from a JSONL file.
// It returns the number of records loaded.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	records, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return 0, fmt.Errorf("clearing records table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM records_fts"); err != nil {
		return 0, fmt.Errorf("clearing records_fts table: %w", err)
	}

	recStmt, err := tx.Prepare(`
		INSERT INTO records (
			id, doi, authors, title, publication, publisher,
			year, pages, volume, number, pub_type, codes_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing records insert: %w", err)
	}
	defer recStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO records_fts (id, title, authors, publication)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, r := range records {
		var codesJSON []byte
		if len(r.Codes) > 0 {
			codesJSON, err = json.Marshal(r.Codes)
			if err != nil {
				return 0, fmt.Errorf("marshaling codes for %s: %w", r.ID, err)
			}
		}

		_, err = recStmt.Exec(
			r.ID, nullableStringValue(r.DOI), r.Authors, r.Title,
			nullableStringValue(r.Publication), nullableStringValue(r.Publisher),
			nullableStringValue(r.Year), nullableStringValue(r.Pages),
			nullableStringValue(r.Volume), nullableStringValue(r.Number),
			r.PubType, nullableString(codesJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting record %s: %w", r.ID, err)
		}

		if _, err := ftsStmt.Exec(r.ID, r.Title, r.Authors, r.Publication); err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(records), nil
}

// GetByID retrieves a record by its ID. A missing record yields nil, nil.
func (d *DB) GetByID(id string) (*reference.Record, error) {
	row := d.db.QueryRow(`SELECT `+selectRecordFields+` FROM records WHERE id = ?`, id)
	return scanRecord(row)
}

// Search performs a full-text search over titles, authors and publications.
func (d *DB) Search(query string, limit int) ([]reference.Record, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT `+selectRecordFields+`
		FROM records
		WHERE id IN (SELECT id FROM records_fts WHERE records_fts MATCH ?)
		ORDER BY id
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListAll returns all records ordered by ID. A positive limit caps the result.
func (d *DB) ListAll(limit int) ([]reference.Record, error) {
	query := `SELECT ` + selectRecordFields + ` FROM records ORDER BY id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the total number of records.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*reference.Record, error) {
	var r reference.Record
	var doi, publication, publisher, year, pages, volume, number, codesJSON sql.NullString

	err := s.Scan(
		&r.ID, &doi, &r.Authors, &r.Title, &publication, &publisher,
		&year, &pages, &volume, &number, &r.PubType, &codesJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	r.DOI = doi.String
	r.Publication = publication.String
	r.Publisher = publisher.String
	r.Year = year.String
	r.Pages = pages.String
	r.Volume = volume.String
	r.Number = number.String

	if codesJSON.Valid && codesJSON.String != "" {
		if err := json.Unmarshal([]byte(codesJSON.String), &r.Codes); err != nil {
			return nil, fmt.Errorf("parsing codes JSON for %s: %w", r.ID, err)
		}
	}

	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]reference.Record, error) {
	var records []reference.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if r != nil {
			records = append(records, *r)
		}
	}
	return records, rows.Err()
}

func nullableString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~&$") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
