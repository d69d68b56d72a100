// Package opml handles importing and exporting favorites as OPML files.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/bryan-buckman/headlines/internal/model"
)

// OutlineTypeLink marks an outline that points at a web page.
const OutlineTypeLink = "link"

// OPML represents the root of an OPML document.
type OPML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    Head     `xml:"head"`
	Body    Body     `xml:"body"`
}

// Head contains OPML metadata.
type Head struct {
	Title       string `xml:"title,omitempty"`
	DateCreated string `xml:"dateCreated,omitempty"`
}

// Body contains the outlines.
type Body struct {
	Outlines []Outline `xml:"outline"`
}

// Outline is a single favorite, or a group of them when Outlines is set.
type Outline struct {
	Text        string    `xml:"text,attr"`
	Title       string    `xml:"title,attr,omitempty"`
	Type        string    `xml:"type,attr,omitempty"`
	URL         string    `xml:"url,attr,omitempty"`
	Description string    `xml:"description,attr,omitempty"`
	Created     string    `xml:"created,attr,omitempty"`
	Outlines    []Outline `xml:"outline,omitempty"`
}

// ParseFavorites reads an OPML document and returns its link outlines as
// articles, in document order. Groups are flattened.
func ParseFavorites(r io.Reader) ([]model.Article, error) {
	var doc OPML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode opml: %w", err)
	}
	articles := []model.Article{}
	var walk func(outlines []Outline)
	walk = func(outlines []Outline) {
		for _, o := range outlines {
			if len(o.Outlines) > 0 {
				walk(o.Outlines)
				continue
			}
			title := o.Title
			if title == "" {
				title = o.Text
			}
			if title == "" {
				continue
			}
			articles = append(articles, model.Article{
				Title:       title,
				Description: o.Description,
				PublishedAt: o.Created,
				Link:        o.URL,
			})
		}
	}
	walk(doc.Body.Outlines)
	return articles, nil
}

// ExportFavorites generates an OPML 2.0 document with one link outline
// per article.
func ExportFavorites(title string, articles []model.Article) ([]byte, error) {
	return export(title, articles, time.Now())
}

func export(title string, articles []model.Article, now time.Time) ([]byte, error) {
	doc := OPML{
		Version: "2.0",
		Head: Head{
			Title:       title,
			DateCreated: now.Format(time.RFC1123Z),
		},
	}
	for _, a := range articles {
		doc.Body.Outlines = append(doc.Body.Outlines, Outline{
			Text:        a.Title,
			Title:       a.Title,
			Type:        OutlineTypeLink,
			URL:         a.Link,
			Description: a.Description,
			Created:     a.PublishedAt,
		})
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), output...), nil
}
