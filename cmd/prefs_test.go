package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefs(t *testing.T) {
	path := setupCLI(t)

	out, err := run(t, "--config", path, "prefs", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "dark_theme       false\n")
	assert.Contains(t, out, "app_language     en\n")

	_, err = run(t, "--config", path, "prefs", "set", "dark_theme", "true")
	require.NoError(t, err)
	_, err = run(t, "--config", path, "prefs", "set", "app_language", "fr")
	require.NoError(t, err)

	out, err = run(t, "--config", path, "prefs", "show", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"dark_theme": true`)
	assert.Contains(t, out, `"app_language": "fr"`)

	out, err = run(t, "--config", path, "favorites", "clear")
	require.NoError(t, err)
	assert.Equal(t, "Aucun favori à effacer\n", out)
}

func TestPrefs_Invalid(t *testing.T) {
	path := setupCLI(t)

	_, err := run(t, "--config", path, "prefs", "set", "app_language", "de")
	assert.Error(t, err)
	_, err = run(t, "--config", path, "prefs", "set", "dark_theme", "maybe")
	assert.Error(t, err)
	_, err = run(t, "--config", path, "prefs", "set", "font_size", "12")
	assert.Error(t, err)
}
