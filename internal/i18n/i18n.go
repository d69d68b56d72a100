// Package i18n holds the user-facing notices in every supported language.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	AddedToFavorites   = "Added to Favorites"
	AlreadyInFavorites = "Already in Favorites"
	LoadFailed         = "Failed to load news articles."
	Refreshing         = "Refreshing news..."
	ArticleRemoved     = "Article removed from favorites"
	NoFavorites        = "No favorites to clear"
	FavoritesCleared   = "Favorites cleared"
	FavoritesImported  = "Imported %d favorites"
)

var french = map[string]string{
	AddedToFavorites:   "Ajouté aux favoris",
	AlreadyInFavorites: "Déjà dans les favoris",
	LoadFailed:         "Échec du chargement des articles.",
	Refreshing:         "Actualisation des nouvelles...",
	ArticleRemoved:     "Article retiré des favoris",
	NoFavorites:        "Aucun favori à effacer",
	FavoritesCleared:   "Favoris effacés",
	FavoritesImported:  "%d favoris importés",
}

var cat = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, fr := range french {
		_ = b.SetString(language.English, key, key)
		_ = b.SetString(language.French, key, fr)
	}
	return b
}

// Printer returns a printer for the language code; unknown codes get English.
func Printer(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag, message.Catalog(cat))
}

// T translates a single notice.
func T(lang, key string, args ...interface{}) string {
	return Printer(lang).Sprintf(key, args...)
}
