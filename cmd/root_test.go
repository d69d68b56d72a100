package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>BBC News</title>
    <link>https://www.bbc.co.uk/news</link>
    <description>Top stories</description>
    <language>en-gb</language>
    <item>
      <title>Storm batters east coast</title>
      <link>https://www.bbc.co.uk/news/1</link>
      <pubDate>Mon, 01 Jan 2024 12:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Election results are in</title>
      <link>https://www.bbc.co.uk/news/2</link>
      <pubDate>Tue, 02 Jan 2024 09:30:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

// setupCLI serves testFeed and writes a config pointing at it and at a
// fresh SQLite file. It returns the config path.
func setupCLI(t *testing.T) string {
	t.Helper()
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	t.Cleanup(feed.Close)

	dir := t.TempDir()
	path := filepath.Join(dir, "headlines.yaml")
	body := fmt.Sprintf("feed:\n  url: %s/rss.xml\ndatabase:\n  dsn: %s\nlog:\n  level: error\n",
		feed.URL, filepath.Join(dir, "favorites.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Help(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"serve", "fetch", "info", "favorites", "prefs"} {
		assert.Contains(t, out, name)
	}
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	_, err := run(t, "nonexistent-command")
	assert.Error(t, err)
}

func TestRootCmd_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headlines.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: mysql\n"), 0o644))

	_, err := run(t, "--config", path, "prefs", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database driver")
}

func TestFetch(t *testing.T) {
	path := setupCLI(t)

	out, err := run(t, "--config", path, "fetch")
	require.NoError(t, err)
	assert.Contains(t, out, "  Storm batters east coast\n    Mon, 01 Jan 2024 07:00 AM\n")
	assert.Contains(t, out, "Election results are in")

	out, err = run(t, "--config", path, "fetch", "--query", "STORM")
	require.NoError(t, err)
	assert.Contains(t, out, "Storm batters east coast")
	assert.NotContains(t, out, "Election")
}

func TestFetch_MarksFavorites(t *testing.T) {
	path := setupCLI(t)
	_, err := run(t, "--config", path, "favorites", "add", "Election results are in")
	require.NoError(t, err)

	out, err := run(t, "--config", path, "fetch")
	require.NoError(t, err)
	assert.Contains(t, out, "* Election results are in")
	assert.Contains(t, out, "  Storm batters east coast")
}

func TestFetch_Unreachable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "headlines.yaml")
	body := fmt.Sprintf("feed:\n  url: http://127.0.0.1:1/rss.xml\ndatabase:\n  dsn: %s\nlog:\n  level: error\n",
		filepath.Join(dir, "favorites.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := run(t, "--config", path, "fetch")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to load news articles."))
}

func TestInfo(t *testing.T) {
	path := setupCLI(t)
	out, err := run(t, "--config", path, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "BBC News\n")
	assert.Contains(t, out, "articles:    2")
	assert.Contains(t, out, "favorites:   0 (SQLite)")
}
