// Package reader coordinates the feed, the favorites store, and the
// preferences behind the presentation layer.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/bryan-buckman/headlines/internal/database"
	"github.com/bryan-buckman/headlines/internal/i18n"
	"github.com/bryan-buckman/headlines/internal/model"
	"github.com/bryan-buckman/headlines/internal/opml"
	"github.com/bryan-buckman/headlines/internal/prefs"
	"github.com/bryan-buckman/headlines/internal/view"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when a title is neither loaded nor a favorite.
var ErrNotFound = errors.New("article not found")

// Feed is the source of articles.
type Feed interface {
	Fetch(ctx context.Context, url string) ([]model.Article, error)
	Channel(ctx context.Context, url string) (model.Channel, error)
}

// RefreshResult is delivered once per Refresh call.
type RefreshResult struct {
	Articles []model.Article
	Err      error
	// Notice is the localized message to show when Err is set.
	Notice string
}

// Reader owns the loaded article list.
type Reader struct {
	feed    Feed
	store   database.Store
	prefs   *prefs.Preferences
	log     logrus.FieldLogger
	feedURL string

	list     *view.List
	inFlight atomic.Int32
}

var _ view.Events = (*Reader)(nil)

// New creates a reader for feedURL. Nothing is fetched until Refresh.
func New(feed Feed, store database.Store, p *prefs.Preferences, feedURL string, log logrus.FieldLogger) *Reader {
	r := &Reader{
		feed:    feed,
		store:   store,
		prefs:   p,
		log:     log.WithField("component", "reader"),
		feedURL: feedURL,
	}
	r.list = view.NewList(r)
	p.Subscribe(func(c prefs.Change) {
		r.log.WithFields(logrus.Fields{"key": c.Key, "old": c.Old, "new": c.New}).Debug("Preference changed")
	})
	return r
}

// FeedURL returns the configured feed.
func (r *Reader) FeedURL() string { return r.feedURL }

// Preferences returns the preferences the reader localizes with.
func (r *Reader) Preferences() *prefs.Preferences { return r.prefs }

// List returns the article list view-model.
func (r *Reader) List() *view.List { return r.list }

// Refresh fetches the feed on its own goroutine. The returned channel
// receives exactly one result. A successful fetch replaces the loaded
// list; when several overlap, the last to finish wins. A failed fetch
// leaves the list as it was.
func (r *Reader) Refresh(ctx context.Context) <-chan RefreshResult {
	out := make(chan RefreshResult, 1)
	r.inFlight.Add(1)
	go func() {
		defer r.inFlight.Add(-1)
		articles, err := r.feed.Fetch(ctx, r.feedURL)
		if err != nil {
			r.log.WithError(err).WithField("url", r.feedURL).Warn("Feed refresh failed")
			out <- RefreshResult{Err: err, Notice: r.notice(i18n.LoadFailed)}
			return
		}
		r.list.SetArticles(articles)
		r.log.WithField("articles", len(articles)).Info("Feed refreshed")
		out <- RefreshResult{Articles: articles}
	}()
	return out
}

// Refreshing reports whether a fetch is still running.
func (r *Reader) Refreshing() bool {
	return r.inFlight.Load() > 0
}

// RefreshingNotice returns the localized notice shown while a fetch runs,
// or "" when none is running.
func (r *Reader) RefreshingNotice() string {
	if !r.Refreshing() {
		return ""
	}
	return r.notice(i18n.Refreshing)
}

// Articles returns the whole loaded list.
func (r *Reader) Articles() []model.Article {
	return r.list.All()
}

// Search returns the loaded articles whose title contains q, ignoring
// case, with their favorite flags. The list's own query is left alone.
func (r *Reader) Search(q string) []view.Row {
	return r.list.Find(q, r.favoriteFlag)
}

// Channel describes the configured feed.
func (r *Reader) Channel(ctx context.Context) (model.Channel, error) {
	return r.feed.Channel(ctx, r.feedURL)
}

// Select opens the article with the given title, looking first in the
// loaded list and then among favorites, and records it as last viewed.
func (r *Reader) Select(title string) (view.Detail, error) {
	a, err := r.find(title)
	if err != nil {
		return view.Detail{}, err
	}
	if err := r.ArticleSelected(a); err != nil {
		return view.Detail{}, err
	}
	fav, err := r.store.IsFavorite(a.Title)
	if err != nil {
		return view.Detail{}, err
	}
	return view.NewDetail(a, fav), nil
}

func (r *Reader) find(title string) (model.Article, error) {
	for _, a := range r.list.All() {
		if a.Title == title {
			return a, nil
		}
	}
	favs, err := r.store.GetFavorites()
	if err != nil {
		return model.Article{}, err
	}
	for _, a := range favs {
		if a.Title == title {
			return a, nil
		}
	}
	return model.Article{}, fmt.Errorf("%q: %w", title, ErrNotFound)
}

// ArticleSelected records a as the last viewed article.
func (r *Reader) ArticleSelected(a model.Article) error {
	return r.prefs.SetLastViewedTitle(a.Title)
}

// DeleteRequested removes a from favorites.
func (r *Reader) DeleteRequested(a model.Article) error {
	_, err := r.RemoveFavorite(a.Title)
	return err
}

// AddFavorite saves a. A title that is already saved is not an error;
// added is false and the notice says so.
func (r *Reader) AddFavorite(a model.Article) (added bool, notice string, err error) {
	added, err = r.store.AddFavorite(a)
	if err != nil {
		r.log.WithError(err).WithField("title", a.Title).Error("Add favorite failed")
		return false, "", err
	}
	if added {
		return true, r.notice(i18n.AddedToFavorites), nil
	}
	return false, r.notice(i18n.AlreadyInFavorites), nil
}

// RemoveFavorite deletes the favorite with the given title, if any.
func (r *Reader) RemoveFavorite(title string) (string, error) {
	if err := r.store.RemoveFavorite(title); err != nil {
		r.log.WithError(err).WithField("title", title).Error("Remove favorite failed")
		return "", err
	}
	return r.notice(i18n.ArticleRemoved), nil
}

// ClearFavorites deletes every favorite.
func (r *Reader) ClearFavorites() (string, error) {
	favs, err := r.store.GetFavorites()
	if err != nil {
		return "", err
	}
	if len(favs) == 0 {
		return r.notice(i18n.NoFavorites), nil
	}
	if err := r.store.ClearFavorites(); err != nil {
		r.log.WithError(err).Error("Clear favorites failed")
		return "", err
	}
	return r.notice(i18n.FavoritesCleared), nil
}

// Favorites lists saved articles.
func (r *Reader) Favorites() ([]model.Article, error) {
	return r.store.GetFavorites()
}

// IsFavorite reports whether title is saved.
func (r *Reader) IsFavorite(title string) (bool, error) {
	return r.store.IsFavorite(title)
}

// ExportFavorites renders all favorites as OPML.
func (r *Reader) ExportFavorites() ([]byte, error) {
	favs, err := r.store.GetFavorites()
	if err != nil {
		return nil, err
	}
	return opml.ExportFavorites("Favorites", favs)
}

// ImportFavorites adds every article in an OPML document. Titles already
// saved are skipped.
func (r *Reader) ImportFavorites(src io.Reader) (int, string, error) {
	articles, err := opml.ParseFavorites(src)
	if err != nil {
		return 0, "", err
	}
	n, err := r.store.AddFavorites(articles)
	if err != nil {
		return 0, "", err
	}
	r.log.WithFields(logrus.Fields{"read": len(articles), "added": n}).Info("Favorites imported")
	return n, r.notice(i18n.FavoritesImported, n), nil
}

func (r *Reader) favoriteFlag(title string) bool {
	fav, err := r.store.IsFavorite(title)
	if err != nil {
		r.log.WithError(err).WithField("title", title).Warn("Favorite lookup failed")
		return false
	}
	return fav
}

func (r *Reader) notice(key string, args ...interface{}) string {
	return i18n.T(r.prefs.Language(), key, args...)
}
