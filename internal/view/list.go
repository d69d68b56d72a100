package view

import (
	"errors"
	"sync"

	"github.com/bryan-buckman/headlines/internal/model"
)

// Events receives the user actions a list can produce. The reader
// implements it; list code never touches storage itself.
type Events interface {
	ArticleSelected(a model.Article) error
	DeleteRequested(a model.Article) error
}

// ErrNoSuchRow is returned for a position outside the visible rows.
var ErrNoSuchRow = errors.New("no article at that position")

// Row is one visible line of a list.
type Row struct {
	Title    string `json:"title"`
	Favorite bool   `json:"favorite"`
}

// List keeps a full article sequence plus the subset visible under the
// current query, and turns positional actions into Events.
type List struct {
	events Events

	mu      sync.RWMutex
	all     []model.Article
	query   string
	visible []model.Article
}

// NewList creates an empty list that reports actions to events.
func NewList(events Events) *List {
	return &List{events: events, all: []model.Article{}, visible: []model.Article{}}
}

// SetArticles replaces the content and reapplies the current query.
func (l *List) SetArticles(articles []model.Article) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.all = append([]model.Article(nil), articles...)
	l.visible = Filter(l.all, l.query)
}

// SetQuery filters the visible rows by title.
func (l *List) SetQuery(q string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query = q
	l.visible = Filter(l.all, q)
}

// Query returns the active filter.
func (l *List) Query() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query
}

// All returns a copy of the unfiltered content.
func (l *List) All() []model.Article {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Article{}, l.all...)
}

// Visible returns a copy of the rows matching the query.
func (l *List) Visible() []model.Article {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Article{}, l.visible...)
}

// Rows renders the visible articles, marking favorites with isFavorite.
func (l *List) Rows(isFavorite func(title string) bool) []Row {
	return rowsOf(l.Visible(), isFavorite)
}

// Find renders the articles matching q without touching the list's own
// query. It is safe to call from concurrent requests.
func (l *List) Find(q string, isFavorite func(title string) bool) []Row {
	return rowsOf(Filter(l.All(), q), isFavorite)
}

func rowsOf(articles []model.Article, isFavorite func(title string) bool) []Row {
	rows := make([]Row, len(articles))
	for i, a := range articles {
		rows[i] = Row{Title: a.Title, Favorite: isFavorite(a.Title)}
	}
	return rows
}

// Select reports the article at position i of the visible rows.
func (l *List) Select(i int) (model.Article, error) {
	a, err := l.at(i)
	if err != nil {
		return model.Article{}, err
	}
	return a, l.events.ArticleSelected(a)
}

// RequestDelete reports a delete request for the article at position i.
func (l *List) RequestDelete(i int) (model.Article, error) {
	a, err := l.at(i)
	if err != nil {
		return model.Article{}, err
	}
	return a, l.events.DeleteRequested(a)
}

func (l *List) at(i int) (model.Article, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.visible) {
		return model.Article{}, ErrNoSuchRow
	}
	return l.visible[i], nil
}
