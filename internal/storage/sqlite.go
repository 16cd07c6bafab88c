package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/scholarmind/scholarmind/internal/reference"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// CategoryCount is the number of papers filed under one main category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// selectPaperFields contains the standard field list for SELECT queries.
const selectPaperFields = `id, title, abstract, authors, year,
	main_category, normalized_popularity, link`

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
		CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			row_idx INTEGER NOT NULL UNIQUE,
			title TEXT NOT NULL,
			abstract TEXT,
			authors TEXT,
			year INTEGER,
			main_category TEXT,
			normalized_popularity REAL NOT NULL,
			link TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_papers_popularity ON papers(normalized_popularity DESC, row_idx);
		CREATE INDEX IF NOT EXISTS idx_papers_category ON papers(main_category);

		-- Keyword search over the same papers (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS papers_fts USING fts5(
			id,
			title,
			abstract,
			authors
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
// row_idx records each paper's position in the file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	refs, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM papers"); err != nil {
		return 0, fmt.Errorf("clearing papers table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM papers_fts"); err != nil {
		return 0, fmt.Errorf("clearing papers_fts table: %w", err)
	}

	papersStmt, err := tx.Prepare(`
		INSERT INTO papers (
			id, row_idx, title, abstract, authors, year,
			main_category, normalized_popularity, link
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing papers insert: %w", err)
	}
	defer papersStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO papers_fts (id, title, abstract, authors)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i, ref := range refs {
		_, err = papersStmt.Exec(
			ref.ID, i, ref.Title, nullableString(ref.Abstract), nullableString(ref.Authors), ref.Year,
			nullableString(ref.MainCategory), ref.NormalizedPopularity, nullableString(ref.Link),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting paper %s: %w", ref.ID, err)
		}

		if _, err := ftsStmt.Exec(ref.ID, ref.Title, ref.Abstract, ref.Authors); err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", ref.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(refs), nil
}

// GetByID retrieves a paper by its id. It returns nil, nil when the id is unknown.
func (d *DB) GetByID(id string) (*reference.Reference, error) {
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE id = ?`, id)
	return scanPaper(row)
}

// RowOf returns the corpus row of id.
func (d *DB) RowOf(id string) (int, bool, error) {
	var row int
	err := d.db.QueryRow(`SELECT row_idx FROM papers WHERE id = ?`, id).Scan(&row)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return row, true, nil
}

// ListAll returns papers in corpus order, optionally limited.
func (d *DB) ListAll(limit int) ([]reference.Reference, error) {
	query := `SELECT ` + selectPaperFields + ` FROM papers ORDER BY row_idx`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// Search performs a keyword search over title, abstract, and authors.
func (d *DB) Search(query string, limit int) ([]reference.Reference, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT `+selectPaperFields+`
		FROM papers
		WHERE id IN (SELECT id FROM papers_fts WHERE papers_fts MATCH ?)
		ORDER BY row_idx
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// Count returns the total number of papers.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&count)
	return count, err
}

// Categories returns paper counts per main category, largest first.
func (d *DB) Categories() ([]CategoryCount, error) {
	rows, err := d.db.Query(`
		SELECT COALESCE(main_category, ''), COUNT(*)
		FROM papers
		GROUP BY main_category
		ORDER BY COUNT(*) DESC, main_category`)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPaper(s scanner) (*reference.Reference, error) {
	var ref reference.Reference
	var abstract, authors, category, link sql.NullString
	var year sql.NullInt64

	err := s.Scan(
		&ref.ID, &ref.Title, &abstract, &authors, &year,
		&category, &ref.NormalizedPopularity, &link,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	ref.Abstract = abstract.String
	ref.Authors = authors.String
	ref.MainCategory = category.String
	ref.Link = link.String
	if year.Valid {
		ref.Year = int(year.Int64)
	}

	return &ref, nil
}

func scanPapers(rows *sql.Rows) ([]reference.Reference, error) {
	var refs []reference.Reference
	for rows.Next() {
		ref, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			refs = append(refs, *ref)
		}
	}
	return refs, rows.Err()
}

// nullableString converts a string to sql.NullString, treating empty as NULL.
func nullableString(s string) sql.NullString {
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
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
