package store

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLite stores content and settings in two key value tables of one
// database file.
type SQLite struct {
	db *sql.DB
}

// Open opens the database at path and creates the tables if needed.
func Open(path string, log *zap.SugaredLogger) (*SQLite, error) {
	log.Debugw("Opening store", "path", path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"CREATE TABLE IF NOT EXISTS " + tableContent + " (key TEXT PRIMARY KEY, value TEXT NOT NULL)",
		"CREATE TABLE IF NOT EXISTS " + tableSettings + " (key TEXT PRIMARY KEY, value TEXT NOT NULL)",
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, `failed to execute "%s"`, stmt)
		}
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Content() ContentCache {
	return &sqliteTable{db: s.db, table: tableContent}
}

func (s *SQLite) Settings() SettingsStore {
	return &sqliteTable{db: s.db, table: tableSettings}
}

type sqliteTable struct {
	db    *sql.DB
	table string
}

func (t *sqliteTable) Get(key string) (string, bool, error) {
	var value string

	err := t.db.QueryRow("SELECT value FROM "+t.table+" WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, `failed to read "%s" from %s`, key, t.table)
	}

	return value, true, nil
}

func (t *sqliteTable) Set(key string, value string) error {
	_, err := t.db.Exec(
		"INSERT INTO "+t.table+" (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return errors.Wrapf(err, `failed to write "%s" to %s`, key, t.table)
	}

	return nil
}

func (t *sqliteTable) EnsureDefault(key string, def string) (string, error) {
	if _, err := t.db.Exec("INSERT INTO "+t.table+" (key, value) VALUES (?, ?) ON CONFLICT (key) DO NOTHING", key, def); err != nil {
		return "", errors.Wrapf(err, `failed to write "%s" to %s`, key, t.table)
	}

	value, _, err := t.Get(key)
	return value, err
}
