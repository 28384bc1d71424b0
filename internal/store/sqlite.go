package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a single-connection SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Setup creates every table the game persists into. It is idempotent.
func (s *SQLiteStore) Setup() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			email TEXT,
			permissions INTEGER NOT NULL DEFAULT 1,
			created_at TEXT,
			last_login TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS characters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			account TEXT NOT NULL,
			gender TEXT,
			area TEXT,
			room INTEGER,
			hp INTEGER, max_hp INTEGER,
			mp INTEGER, max_mp INTEGER,
			strength INTEGER, intellect INTEGER,
			dexterity INTEGER, speed INTEGER,
			channels TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS areas (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			title TEXT,
			builders TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			area TEXT NOT NULL,
			local_id INTEGER NOT NULL,
			title TEXT,
			description TEXT,
			exits TEXT,
			spawns TEXT,
			UNIQUE(area, local_id)
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			area TEXT NOT NULL,
			local_id INTEGER NOT NULL,
			name TEXT,
			description TEXT,
			facets TEXT,
			UNIQUE(area, local_id)
		);`,
		`CREATE TABLE IF NOT EXISTS npcs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			area TEXT NOT NULL,
			local_id INTEGER NOT NULL,
			name TEXT,
			description TEXT,
			stats TEXT,
			script INTEGER,
			UNIQUE(area, local_id)
		);`,
		`CREATE TABLE IF NOT EXISTS scripts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			area TEXT NOT NULL,
			local_id INTEGER NOT NULL,
			name TEXT,
			source TEXT,
			UNIQUE(area, local_id)
		);`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Clean drops every row from every game table without touching the schema.
func (s *SQLiteStore) Clean() error {
	for _, table := range []string{"characters", "rooms", "items", "npcs", "scripts", "areas", "accounts"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clean %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Insert(table string, fields Row) (int64, error) {
	if len(fields) == 0 {
		return 0, fmt.Errorf("insert into %s: no fields", table)
	}
	cols := sortedKeys(fields)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = "?"
		args[i] = fields[col]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert id for %s: %w", table, err)
	}
	return id, nil
}

func (s *SQLiteStore) Update(table string, id int64, fields Row) (int64, error) {
	if len(fields) == 0 {
		return 0, fmt.Errorf("update %s: no fields", table)
	}
	cols := sortedKeys(fields)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		sets[i] = col + " = ?"
		args = append(args, fields[col])
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update %s rows: %w", table, err)
	}
	if affected == 0 {
		return 0, ErrNoRows
	}
	return affected, nil
}

func (s *SQLiteStore) Select(table string, criteria Row) ([]Row, error) {
	where, args := buildWhere(criteria)
	rows, err := s.db.Query("SELECT * FROM "+table+where, args...)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("select columns from %s: %w", table, err)
	}
	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		scans := make([]any, len(cols))
		for i := range values {
			scans[i] = &values[i]
		}
		if err := rows.Scan(scans...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

func (s *SQLiteStore) Delete(table string, criteria Row) (int64, error) {
	where, args := buildWhere(criteria)
	res, err := s.db.Exec("DELETE FROM "+table+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s rows: %w", table, err)
	}
	return affected, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func buildWhere(criteria Row) (string, []any) {
	if len(criteria) == 0 {
		return "", nil
	}
	cols := sortedKeys(criteria)
	clauses := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		clauses[i] = col + " = ?"
		args[i] = criteria[col]
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func sortedKeys(r Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
