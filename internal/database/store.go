// Package database provides storage backends for favorites and settings.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/bryan-buckman/headlines/internal/model"
)

// Store defines the interface for database operations.
// Both SQLite and PostgreSQL implementations satisfy this interface.
type Store interface {
	Close() error

	// DatabaseType returns the name of the database backend ("SQLite" or "PostgreSQL").
	DatabaseType() string

	// Favorite operations. Favorites are keyed by article title.
	AddFavorite(a model.Article) (bool, error)
	AddFavorites(articles []model.Article) (int, error)
	IsFavorite(title string) (bool, error)
	GetFavorites() ([]model.Article, error)
	RemoveFavorite(title string) error
	ClearFavorites() error

	// Settings operations
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrSettingNotFound is returned by GetSetting for keys that were never set.
var ErrSettingNotFound = errors.New("setting not found")

// StorageError wraps any failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is, or wraps, a *StorageError.
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Open returns a store for the given driver. No connection is made until
// the store is first used.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return New(dsn), nil
	case DriverPostgres:
		return NewPostgres(dsn), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

// lazyConn opens the connection on first use and keeps it until closed.
// A failed open is retried by the next caller.
type lazyConn struct {
	mu     sync.Mutex
	conn   *sql.DB
	closed bool
	open   func() (*sql.DB, error)
}

var errClosed = errors.New("database is closed")

func (l *lazyConn) get() (*sql.DB, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, errClosed
	}
	if l.conn != nil {
		return l.conn, nil
	}
	conn, err := l.open()
	if err != nil {
		return nil, err
	}
	l.conn = conn
	return conn, nil
}

func (l *lazyConn) close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}

func scanArticles(rows *sql.Rows) ([]model.Article, error) {
	articles := []model.Article{}
	for rows.Next() {
		var a model.Article
		var description, date, link sql.NullString
		if err := rows.Scan(&a.Title, &description, &date, &link); err != nil {
			return nil, err
		}
		a.Description = description.String
		a.PublishedAt = date.String
		a.Link = link.String
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
