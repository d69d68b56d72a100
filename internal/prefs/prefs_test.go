package prefs

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/bryan-buckman/headlines/internal/database"
	"github.com/bryan-buckman/headlines/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSettings struct {
	values map[string]string
	err    error
}

func newMemSettings() *memSettings {
	return &memSettings{values: map[string]string{}}
}

func (m *memSettings) GetSetting(key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.values[key]
	if !ok {
		return "", database.ErrSettingNotFound
	}
	return v, nil
}

func (m *memSettings) SetSetting(key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func TestLoad_Defaults(t *testing.T) {
	p, err := Load(newMemSettings())
	require.NoError(t, err)
	assert.False(t, p.DarkTheme())
	assert.Equal(t, "en", p.Language())
	assert.Empty(t, p.LastViewedTitle())
}

func TestLoad_Stored(t *testing.T) {
	s := newMemSettings()
	s.values[model.SettingDarkTheme] = "true"
	s.values[model.SettingAppLanguage] = "fr"
	s.values[model.SettingLastViewedTitle] = "Storm"

	p, err := Load(s)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{DarkTheme: true, Language: "fr", LastViewedTitle: "Storm"}, p.Snapshot())
}

func TestLoad_StorageFailure(t *testing.T) {
	s := newMemSettings()
	s.err = errors.New("disk on fire")
	_, err := Load(s)
	assert.Error(t, err)
}

func TestSetters_PersistAndNotify(t *testing.T) {
	s := newMemSettings()
	p, err := Load(s)
	require.NoError(t, err)

	var changes []Change
	unsubscribe := p.Subscribe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, p.SetDarkTheme(true))
	require.NoError(t, p.SetLanguage("FR"))
	require.NoError(t, p.SetLastViewedTitle("Storm"))
	// Same value again is not a change.
	require.NoError(t, p.SetDarkTheme(true))

	assert.Equal(t, []Change{
		{Key: model.SettingDarkTheme, Old: "false", New: "true"},
		{Key: model.SettingAppLanguage, Old: "en", New: "fr"},
		{Key: model.SettingLastViewedTitle, Old: "", New: "Storm"},
	}, changes)
	assert.Equal(t, "true", s.values[model.SettingDarkTheme])
	assert.Equal(t, "fr", s.values[model.SettingAppLanguage])

	unsubscribe()
	require.NoError(t, p.SetDarkTheme(false))
	assert.Len(t, changes, 3)
}

func TestSubscribe_Order(t *testing.T) {
	p, err := Load(newMemSettings())
	require.NoError(t, err)

	var order []int
	p.Subscribe(func(Change) { order = append(order, 1) })
	remove := p.Subscribe(func(Change) { order = append(order, 2) })
	p.Subscribe(func(Change) { order = append(order, 3) })
	remove()

	require.NoError(t, p.SetDarkTheme(true))
	assert.Equal(t, []int{1, 3}, order)
}

func TestSetLanguage_Rejected(t *testing.T) {
	s := newMemSettings()
	p, err := Load(s)
	require.NoError(t, err)

	notified := false
	p.Subscribe(func(Change) { notified = true })

	assert.Error(t, p.SetLanguage("de"))
	assert.Error(t, p.SetLanguage("not a language"))
	assert.Equal(t, "en", p.Language())
	assert.False(t, notified)
	assert.Empty(t, s.values)
}

func TestSetter_StorageFailureKeepsValue(t *testing.T) {
	s := newMemSettings()
	p, err := Load(s)
	require.NoError(t, err)

	s.err = errors.New("read-only")
	assert.Error(t, p.SetDarkTheme(true))
	assert.False(t, p.DarkTheme())
}

func TestParseLanguage(t *testing.T) {
	for in, want := range map[string]string{"en": "en", "fr": "fr", "en-US": "en", "fr-CA": "fr"} {
		got, err := ParseLanguage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestPreferences_WithSQLite(t *testing.T) {
	db := database.New(filepath.Join(t.TempDir(), "favorites.db"))
	defer db.Close()

	p, err := Load(db)
	require.NoError(t, err)
	require.NoError(t, p.SetLanguage("fr"))

	reloaded, err := Load(db)
	require.NoError(t, err)
	assert.Equal(t, "fr", reloaded.Language())
}
