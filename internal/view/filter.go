package view

import (
	"strings"

	"github.com/bryan-buckman/headlines/internal/model"
)

// Filter returns the articles whose title contains query, ignoring case,
// in their original order. An empty query matches everything.
func Filter(articles []model.Article, query string) []model.Article {
	q := strings.ToLower(query)
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), q) {
			out = append(out, a)
		}
	}
	return out
}
