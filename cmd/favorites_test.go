package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavorites_Lifecycle(t *testing.T) {
	path := setupCLI(t)

	out, err := run(t, "--config", path, "favorites", "list")
	require.NoError(t, err)
	assert.Equal(t, "No favorites\n", out)

	out, err = run(t, "--config", path, "favorites", "add", "Storm batters east coast")
	require.NoError(t, err)
	assert.Equal(t, "Added to Favorites\n", out)

	out, err = run(t, "--config", path, "favorites", "add", "Storm batters east coast")
	require.NoError(t, err)
	assert.Equal(t, "Already in Favorites\n", out)

	out, err = run(t, "--config", path, "favorites", "list")
	require.NoError(t, err)
	assert.Equal(t, "Storm batters east coast\n    Mon, 01 Jan 2024 07:00 AM\n", out)

	out, err = run(t, "--config", path, "favorites", "remove", "Storm batters east coast")
	require.NoError(t, err)
	assert.Equal(t, "Article removed from favorites\n", out)

	out, err = run(t, "--config", path, "favorites", "clear")
	require.NoError(t, err)
	assert.Equal(t, "No favorites to clear\n", out)
}

func TestFavorites_AddUnknownTitle(t *testing.T) {
	path := setupCLI(t)
	_, err := run(t, "--config", path, "favorites", "add", "Not in the feed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no article titled")
}

func TestFavorites_AddWithLink(t *testing.T) {
	path := setupCLI(t)
	out, err := run(t, "--config", path, "favorites", "add", "Offline story", "--link", "https://example.com/offline")
	require.NoError(t, err)
	assert.Equal(t, "Added to Favorites\n", out)

	out, err = run(t, "--config", path, "favorites", "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"link": "https://example.com/offline"`)
}

func TestFavorites_ExportImport(t *testing.T) {
	src := setupCLI(t)
	_, err := run(t, "--config", src, "favorites", "add", "Storm batters east coast")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "favorites.opml")
	_, err = run(t, "--config", src, "favorites", "export", "-o", file)
	require.NoError(t, err)
	doc, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(doc), `text="Storm batters east coast"`)

	dst := setupCLI(t)
	out, err := run(t, "--config", dst, "favorites", "import", file)
	require.NoError(t, err)
	assert.Equal(t, "Imported 1 favorites\n", out)

	out, err = run(t, "--config", dst, "favorites", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Storm batters east coast")
}
