package database

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bryan-buckman/headlines/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	storm = model.Article{
		Title:       "Storm batters east coast",
		Description: "Thousands are without <b>power</b>.",
		PublishedAt: "Mon, 01 Jan 2024 12:00:00 GMT",
		Link:        "https://www.bbc.co.uk/news/articles/storm",
	}
	election = model.Article{
		Title:       "Election results are in",
		Description: "Votes have been counted.",
		PublishedAt: "Sun, 31 Dec 2023 23:15:00 GMT",
		Link:        "https://www.bbc.co.uk/news/articles/election",
	}
)

func newSQLite(t *testing.T) Store {
	t.Helper()
	db := New(filepath.Join(t.TempDir(), "favorites.db"))
	t.Cleanup(func() { db.Close() })
	return db
}

func newPostgres(t *testing.T) Store {
	t.Helper()
	dsn := os.Getenv("HEADLINES_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("HEADLINES_TEST_POSTGRES_DSN not set")
	}
	db := NewPostgres(dsn)
	require.NoError(t, db.ClearFavorites())
	t.Cleanup(func() {
		db.ClearFavorites()
		db.Close()
	})
	return db
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, newSQLite)
}

func TestPostgresStore(t *testing.T) {
	runStoreTests(t, newPostgres)
}

func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("add then duplicate", func(t *testing.T) {
		db := newStore(t)

		added, err := db.AddFavorite(storm)
		require.NoError(t, err)
		assert.True(t, added)

		changed := storm
		changed.Description = "different"
		added, err = db.AddFavorite(changed)
		require.NoError(t, err)
		assert.False(t, added)

		favorites, err := db.GetFavorites()
		require.NoError(t, err)
		require.Len(t, favorites, 1)
		assert.Equal(t, storm, favorites[0], "duplicate must leave the stored record unchanged")
	})

	t.Run("round trip", func(t *testing.T) {
		db := newStore(t)
		_, err := db.AddFavorite(election)
		require.NoError(t, err)

		favorites, err := db.GetFavorites()
		require.NoError(t, err)
		assert.Contains(t, favorites, election)
	})

	t.Run("exists", func(t *testing.T) {
		db := newStore(t)
		ok, err := db.IsFavorite(storm.Title)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = db.AddFavorite(storm)
		require.NoError(t, err)

		ok, err = db.IsFavorite(storm.Title)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = db.IsFavorite("storm batters east coast")
		require.NoError(t, err)
		assert.False(t, ok, "lookup is by exact key")
	})

	t.Run("remove missing is a no-op", func(t *testing.T) {
		db := newStore(t)
		_, err := db.AddFavorite(storm)
		require.NoError(t, err)

		require.NoError(t, db.RemoveFavorite("not there"))
		favorites, err := db.GetFavorites()
		require.NoError(t, err)
		assert.Len(t, favorites, 1)

		require.NoError(t, db.RemoveFavorite(storm.Title))
		favorites, err = db.GetFavorites()
		require.NoError(t, err)
		assert.Empty(t, favorites)
	})

	t.Run("clear", func(t *testing.T) {
		db := newStore(t)
		require.NoError(t, db.ClearFavorites())

		_, err := db.AddFavorite(storm)
		require.NoError(t, err)
		_, err = db.AddFavorite(election)
		require.NoError(t, err)

		require.NoError(t, db.ClearFavorites())
		favorites, err := db.GetFavorites()
		require.NoError(t, err)
		assert.NotNil(t, favorites)
		assert.Empty(t, favorites)
	})

	t.Run("stable listing", func(t *testing.T) {
		db := newStore(t)
		_, err := db.AddFavorite(storm)
		require.NoError(t, err)
		_, err = db.AddFavorite(election)
		require.NoError(t, err)

		first, err := db.GetFavorites()
		require.NoError(t, err)
		second, err := db.GetFavorites()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("batch add skips duplicates", func(t *testing.T) {
		db := newStore(t)
		_, err := db.AddFavorite(storm)
		require.NoError(t, err)

		added, err := db.AddFavorites([]model.Article{storm, election, election})
		require.NoError(t, err)
		assert.Equal(t, 1, added)

		favorites, err := db.GetFavorites()
		require.NoError(t, err)
		assert.Len(t, favorites, 2)
	})

	t.Run("concurrent add of one title", func(t *testing.T) {
		db := newStore(t)

		const workers = 16
		var wg sync.WaitGroup
		results := make(chan bool, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				added, err := db.AddFavorite(storm)
				assert.NoError(t, err)
				results <- added
			}()
		}
		wg.Wait()
		close(results)

		inserted := 0
		for added := range results {
			if added {
				inserted++
			}
		}
		assert.Equal(t, 1, inserted)
	})

	t.Run("settings", func(t *testing.T) {
		db := newStore(t)
		_, err := db.GetSetting("missing-key-for-test")
		assert.ErrorIs(t, err, ErrSettingNotFound)

		require.NoError(t, db.SetSetting(model.SettingAppLanguage, "fr"))
		require.NoError(t, db.SetSetting(model.SettingAppLanguage, "en"))
		val, err := db.GetSetting(model.SettingAppLanguage)
		require.NoError(t, err)
		assert.Equal(t, "en", val)
	})
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.db")

	db := New(path)
	_, err := db.AddFavorite(storm)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened := New(path)
	defer reopened.Close()
	ok, err := reopened.IsFavorite(storm.Title)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLite_LazyOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.db")
	db := New(path)
	defer db.Close()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "constructor must not touch the disk")

	_, err = db.GetFavorites()
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestStorageErrors(t *testing.T) {
	// A directory that does not exist cannot hold the database file.
	db := New(filepath.Join(t.TempDir(), "missing", "favorites.db"))
	defer db.Close()

	_, err := db.AddFavorite(storm)
	require.Error(t, err)
	assert.True(t, IsStorageError(err))

	closed := New(filepath.Join(t.TempDir(), "favorites.db"))
	require.NoError(t, closed.Close())
	_, err = closed.GetFavorites()
	assert.True(t, IsStorageError(err))
}

func TestOpen(t *testing.T) {
	s, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "f.db"))
	require.NoError(t, err)
	assert.Equal(t, "SQLite", s.DatabaseType())

	s, err = Open(DriverPostgres, "postgres://localhost/none")
	require.NoError(t, err)
	assert.Equal(t, "PostgreSQL", s.DatabaseType())

	_, err = Open("mysql", "")
	assert.Error(t, err)
}
