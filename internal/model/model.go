// Package model defines shared data structures.
package model

// Article represents a single entry from the feed.
// Title is the only identity an article has; favorites are keyed by it.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishedAt string `json:"date"` // raw pubDate text, never parsed here
	Link        string `json:"link"`
}

// Channel holds the feed-level metadata shown above the article list.
type Channel struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Language    string `json:"language,omitempty"`
	Updated     string `json:"updated,omitempty"`
	ItemCount   int    `json:"item_count"`
}

// Settings key constants.
const (
	SettingDarkTheme       = "dark_theme"
	SettingAppLanguage     = "app_language"
	SettingLastViewedTitle = "lastViewedTitle"
)

// DefaultLanguage is used until the user picks another one.
const DefaultLanguage = "en"
