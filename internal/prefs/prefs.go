// Package prefs holds the user's display preferences and notifies
// subscribers when they change.
package prefs

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/bryan-buckman/headlines/internal/database"
	"github.com/bryan-buckman/headlines/internal/model"
	"golang.org/x/text/language"
)

// Supported lists the languages the message catalog covers.
var Supported = []language.Tag{language.English, language.French}

var matcher = language.NewMatcher(Supported)

// Settings is the subset of database.Store that preferences persist through.
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

var _ Settings = (database.Store)(nil)

// Change describes one preference update.
type Change struct {
	Key string
	Old string
	New string
}

// Preferences is the configuration object handed to the presentation layer.
type Preferences struct {
	store Settings

	mu         sync.RWMutex
	darkTheme  bool
	language   string
	lastViewed string

	subMu  sync.Mutex
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(Change)
}

// Load reads the stored preferences, falling back to defaults for keys that
// were never written.
func Load(store Settings) (*Preferences, error) {
	p := &Preferences{store: store, language: model.DefaultLanguage}

	if v, ok, err := lookup(store, model.SettingDarkTheme); err != nil {
		return nil, err
	} else if ok {
		p.darkTheme, _ = strconv.ParseBool(v)
	}
	if v, ok, err := lookup(store, model.SettingAppLanguage); err != nil {
		return nil, err
	} else if ok {
		if tag, err := ParseLanguage(v); err == nil {
			p.language = tag
		}
	}
	if v, ok, err := lookup(store, model.SettingLastViewedTitle); err != nil {
		return nil, err
	} else if ok {
		p.lastViewed = v
	}
	return p, nil
}

func lookup(store Settings, key string) (string, bool, error) {
	v, err := store.GetSetting(key)
	if errors.Is(err, database.ErrSettingNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// ParseLanguage validates a language code and returns its base form
// ("en" or "fr").
func ParseLanguage(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", code, err)
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return "", fmt.Errorf("unsupported language %q", code)
	}
	base, _ := Supported[idx].Base()
	return base.String(), nil
}

// DarkTheme reports whether the dark theme is selected.
func (p *Preferences) DarkTheme() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.darkTheme
}

// Language returns the selected language code.
func (p *Preferences) Language() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.language
}

// LastViewedTitle returns the title of the last opened article.
func (p *Preferences) LastViewedTitle() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastViewed
}

// SetDarkTheme persists the theme choice and notifies subscribers.
func (p *Preferences) SetDarkTheme(dark bool) error {
	p.mu.Lock()
	old := p.darkTheme
	if err := p.store.SetSetting(model.SettingDarkTheme, strconv.FormatBool(dark)); err != nil {
		p.mu.Unlock()
		return err
	}
	p.darkTheme = dark
	p.mu.Unlock()

	if old != dark {
		p.notify(Change{Key: model.SettingDarkTheme, Old: strconv.FormatBool(old), New: strconv.FormatBool(dark)})
	}
	return nil
}

// SetLanguage validates, persists, and notifies.
func (p *Preferences) SetLanguage(code string) error {
	lang, err := ParseLanguage(code)
	if err != nil {
		return err
	}

	p.mu.Lock()
	old := p.language
	if err := p.store.SetSetting(model.SettingAppLanguage, lang); err != nil {
		p.mu.Unlock()
		return err
	}
	p.language = lang
	p.mu.Unlock()

	if old != lang {
		p.notify(Change{Key: model.SettingAppLanguage, Old: old, New: lang})
	}
	return nil
}

// SetLastViewedTitle records the most recently opened article.
func (p *Preferences) SetLastViewedTitle(title string) error {
	p.mu.Lock()
	old := p.lastViewed
	if err := p.store.SetSetting(model.SettingLastViewedTitle, title); err != nil {
		p.mu.Unlock()
		return err
	}
	p.lastViewed = title
	p.mu.Unlock()

	if old != title {
		p.notify(Change{Key: model.SettingLastViewedTitle, Old: old, New: title})
	}
	return nil
}

// Subscribe registers fn to be called after every change, in subscription
// order, on the goroutine that made the change. The returned func removes it.
func (p *Preferences) Subscribe(fn func(Change)) (unsubscribe func()) {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	id := p.nextID
	p.nextID++
	p.subs = append(p.subs, subscriber{id: id, fn: fn})

	return func() {
		p.subMu.Lock()
		defer p.subMu.Unlock()
		for i, s := range p.subs {
			if s.id == id {
				p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

func (p *Preferences) notify(c Change) {
	p.subMu.Lock()
	subs := make([]subscriber, len(p.subs))
	copy(subs, p.subs)
	p.subMu.Unlock()

	for _, s := range subs {
		s.fn(c)
	}
}

// Snapshot is a serializable copy of the current preferences.
type Snapshot struct {
	DarkTheme       bool   `json:"dark_theme"`
	Language        string `json:"app_language"`
	LastViewedTitle string `json:"lastViewedTitle"`
}

// Snapshot returns the current values.
func (p *Preferences) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{DarkTheme: p.darkTheme, Language: p.language, LastViewedTitle: p.lastViewed}
}
