package view

import (
	"html"
	"strings"

	"github.com/bryan-buckman/headlines/internal/model"
	"github.com/microcosm-cc/bluemonday"
)

var stripTags = bluemonday.StrictPolicy()

// Detail is the view-model for a single article screen. It is built
// directly from the Article value it shows.
type Detail struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Summary     string `json:"summary"` // description with markup removed
	RawDate     string `json:"raw_date"`
	Date        string `json:"date"`
	Link        string `json:"link"`
	Favorite    bool   `json:"favorite"`
}

// NewDetail builds the detail view for a.
func NewDetail(a model.Article, favorite bool) Detail {
	return Detail{
		Title:       a.Title,
		Description: a.Description,
		Summary:     PlainText(a.Description),
		RawDate:     a.PublishedAt,
		Date:        FormatDate(a.PublishedAt),
		Link:        a.Link,
		Favorite:    favorite,
	}
}

// Article converts the view back into the value it was built from.
func (d Detail) Article() model.Article {
	return model.Article{
		Title:       d.Title,
		Description: d.Description,
		PublishedAt: d.RawDate,
		Link:        d.Link,
	}
}

// PlainText strips markup from a feed description.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripTags.Sanitize(s)))
}
