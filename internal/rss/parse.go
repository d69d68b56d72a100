package rss

import (
	"errors"
	"io"
	"strings"

	"github.com/bryan-buckman/headlines/internal/model"
	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"
)

// errEmptyDocument is returned when the input has no root element.
var errEmptyDocument = errors.New("document has no root element")

// itemState accumulates one <item> while the parser is inside it.
type itemState struct {
	space   string // namespace of the <item> tag; children must share it
	article model.Article
	seen    map[string]bool
}

// field returns the article field a child tag maps to. The first occurrence
// of each tag wins, so later duplicates report false like unknown tags.
func (s *itemState) field(name string) (*string, bool) {
	var key string
	var dst *string
	switch {
	case strings.EqualFold(name, "title"):
		key, dst = "title", &s.article.Title
	case strings.EqualFold(name, "description"):
		key, dst = "description", &s.article.Description
	case strings.EqualFold(name, "pubDate"):
		key, dst = "pubdate", &s.article.PublishedAt
	case strings.EqualFold(name, "link"):
		key, dst = "link", &s.article.Link
	default:
		return nil, false
	}
	if s.seen[key] {
		return nil, false
	}
	s.seen[key] = true
	return dst, true
}

// Parse reads an RSS document in a single forward pass over its tag events
// and returns the items in document order. On error no articles are returned.
func Parse(r io.Reader) ([]model.Article, error) {
	p := xpp.NewXMLPullParser(r, true, charset.NewReaderLabel)

	articles := []model.Article{}
	var current *itemState
	sawRoot := false

	for {
		event, err := p.Next()
		if err != nil {
			return nil, err
		}

		switch event {
		case xpp.EndDocument:
			if !sawRoot {
				return nil, errEmptyDocument
			}
			return articles, nil

		case xpp.StartTag:
			sawRoot = true
			if strings.EqualFold(p.Name, "item") {
				// A new item discards any unterminated previous one.
				current = &itemState{space: p.Space, seen: make(map[string]bool, 4)}
				continue
			}
			if current == nil || p.Space != current.space {
				continue
			}
			dst, ok := current.field(p.Name)
			if !ok {
				continue
			}
			text, err := p.NextText()
			if err != nil {
				return nil, err
			}
			*dst = text

		case xpp.EndTag:
			if current != nil && strings.EqualFold(p.Name, "item") {
				articles = append(articles, current.article)
				current = nil
			}
		}
	}
}
