package database

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/bryan-buckman/headlines/internal/model"
	_ "modernc.org/sqlite"
)

// DB is the SQLite store.
type DB struct {
	path string
	lazy lazyConn
	mu   sync.Mutex // serializes favorite writes
}

// Ensure DB implements Store interface.
var _ Store = (*DB)(nil)

// New returns an SQLite store backed by the file at path. The file is
// created and migrated on first use.
func New(path string) *DB {
	db := &DB{path: path}
	db.lazy.open = db.open
	return db
}

func (db *DB) open() (*sql.DB, error) {
	conn, err := sql.Open("sqlite", db.path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection avoids SQLITE_BUSY between our own writers.
	conn.SetMaxOpenConns(1)
	// Enable WAL mode for better concurrency.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	if err := migrateSQLite(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.lazy.close()
}

// DatabaseType returns the database backend name.
func (db *DB) DatabaseType() string {
	return "SQLite"
}

func migrateSQLite(conn *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS favorites (
		title TEXT PRIMARY KEY,
		description TEXT,
		date TEXT,
		link TEXT
	);
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := conn.Exec(schema)
	return err
}

// --- Favorite Methods ---

// AddFavorite inserts the article unless one with the same title exists.
// Returns whether it was inserted.
func (db *DB) AddFavorite(a model.Article) (bool, error) {
	conn, err := db.lazy.get()
	if err != nil {
		return false, storageErr("add favorite", err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	res, err := conn.Exec(`
		INSERT INTO favorites (title, description, date, link)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(title) DO NOTHING`,
		a.Title, a.Description, a.PublishedAt, a.Link)
	if err != nil {
		return false, storageErr("add favorite", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("add favorite", err)
	}
	return affected > 0, nil
}

// AddFavorites inserts many articles in one transaction, skipping titles
// already present. Returns the number inserted.
func (db *DB) AddFavorites(articles []model.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	conn, err := db.lazy.get()
	if err != nil {
		return 0, storageErr("add favorites", err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := conn.Begin()
	if err != nil {
		return 0, storageErr("add favorites", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO favorites (title, description, date, link)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(title) DO NOTHING`)
	if err != nil {
		tx.Rollback()
		return 0, storageErr("add favorites", err)
	}
	defer stmt.Close()

	added := 0
	for _, a := range articles {
		res, err := stmt.Exec(a.Title, a.Description, a.PublishedAt, a.Link)
		if err != nil {
			tx.Rollback()
			return 0, storageErr("add favorites", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, storageErr("add favorites", err)
	}
	return added, nil
}

// IsFavorite checks whether a favorite with exactly this title exists.
func (db *DB) IsFavorite(title string) (bool, error) {
	conn, err := db.lazy.get()
	if err != nil {
		return false, storageErr("is favorite", err)
	}
	var exists bool
	err = conn.QueryRow("SELECT EXISTS(SELECT 1 FROM favorites WHERE title = ?)", title).Scan(&exists)
	if err != nil {
		return false, storageErr("is favorite", err)
	}
	return exists, nil
}

// GetFavorites returns all favorites ordered by title.
func (db *DB) GetFavorites() ([]model.Article, error) {
	conn, err := db.lazy.get()
	if err != nil {
		return nil, storageErr("get favorites", err)
	}
	rows, err := conn.Query("SELECT title, description, date, link FROM favorites ORDER BY title")
	if err != nil {
		return nil, storageErr("get favorites", err)
	}
	defer rows.Close()
	articles, err := scanArticles(rows)
	if err != nil {
		return nil, storageErr("get favorites", err)
	}
	return articles, nil
}

// RemoveFavorite deletes the favorite with this title. Missing titles are ignored.
func (db *DB) RemoveFavorite(title string) error {
	conn, err := db.lazy.get()
	if err != nil {
		return storageErr("remove favorite", err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err = conn.Exec("DELETE FROM favorites WHERE title = ?", title)
	return storageErr("remove favorite", err)
}

// ClearFavorites deletes every favorite.
func (db *DB) ClearFavorites() error {
	conn, err := db.lazy.get()
	if err != nil {
		return storageErr("clear favorites", err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err = conn.Exec("DELETE FROM favorites")
	return storageErr("clear favorites", err)
}

// --- Settings Methods ---

// GetSetting retrieves a setting value.
func (db *DB) GetSetting(key string) (string, error) {
	conn, err := db.lazy.get()
	if err != nil {
		return "", storageErr("get setting", err)
	}
	var val string
	err = conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", storageErr("get setting", err)
	}
	return val, nil
}

// SetSetting saves a setting.
func (db *DB) SetSetting(key, value string) error {
	conn, err := db.lazy.get()
	if err != nil {
		return storageErr("set setting", err)
	}
	_, err = conn.Exec("INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = ?", key, value, value)
	return storageErr("set setting", err)
}
