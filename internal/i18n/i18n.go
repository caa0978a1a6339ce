// Package i18n holds the user-facing texts of the companion in every
// supported UI language.
package i18n

import (
	"fmt"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/fr"
	"github.com/go-playground/locales/ja"
	"github.com/go-playground/locales/kk"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
)

const (
	ColumnWord        = "column_word"
	ColumnTranslation = "column_translation"
	DictionaryEmpty   = "dictionary_empty"
	PopupTitle        = "popup_title"
	PopupError        = "popup_error"
	WordAdded         = "word_added"
	WordPresent       = "word_present"
	WordDeleted       = "word_deleted"
)

// DefaultLanguage is used for unknown UI languages.
const DefaultLanguage = "en"

var texts = map[string]map[string]string{
	"en": {
		ColumnWord:        "Word",
		ColumnTranslation: "Translation",
		DictionaryEmpty:   "The dictionary is empty",
		PopupTitle:        "Translation",
		PopupError:        "Translation error",
		WordAdded:         "Added: {0}",
		WordPresent:       "Already in the dictionary: {0}",
		WordDeleted:       "Deleted: {0}",
	},
	"ru": {
		ColumnWord:        "Слово",
		ColumnTranslation: "Перевод",
		DictionaryEmpty:   "Словарь пуст",
		PopupTitle:        "Перевод",
		PopupError:        "Ошибка перевода",
		WordAdded:         "Добавлено: {0}",
		WordPresent:       "Уже в словаре: {0}",
		WordDeleted:       "Удалено: {0}",
	},
	"kk": {
		ColumnWord:        "Сөз",
		ColumnTranslation: "Аударма",
		DictionaryEmpty:   "Сөздік бос",
		PopupTitle:        "Аударма",
		PopupError:        "Аударма қатесі",
		WordAdded:         "Қосылды: {0}",
		WordPresent:       "Сөздікте бар: {0}",
		WordDeleted:       "Жойылды: {0}",
	},
	"es": {
		ColumnWord:        "Palabra",
		ColumnTranslation: "Traducción",
		DictionaryEmpty:   "El diccionario está vacío",
		PopupTitle:        "Traducción",
		PopupError:        "Error de traducción",
		WordAdded:         "Añadida: {0}",
		WordPresent:       "Ya está en el diccionario: {0}",
		WordDeleted:       "Eliminada: {0}",
	},
	"fr": {
		ColumnWord:        "Mot",
		ColumnTranslation: "Traduction",
		DictionaryEmpty:   "Le dictionnaire est vide",
		PopupTitle:        "Traduction",
		PopupError:        "Erreur de traduction",
		WordAdded:         "Ajouté : {0}",
		WordPresent:       "Déjà dans le dictionnaire : {0}",
		WordDeleted:       "Supprimé : {0}",
	},
	"de": {
		ColumnWord:        "Wort",
		ColumnTranslation: "Übersetzung",
		DictionaryEmpty:   "Wörterbuch ist leer",
		PopupTitle:        "Übersetzung",
		PopupError:        "Übersetzungsfehler",
		WordAdded:         "Hinzugefügt: {0}",
		WordPresent:       "Bereits im Wörterbuch: {0}",
		WordDeleted:       "Gelöscht: {0}",
	},
	"ja": {
		ColumnWord:        "単語",
		ColumnTranslation: "翻訳",
		DictionaryEmpty:   "辞書は空です",
		PopupTitle:        "翻訳",
		PopupError:        "翻訳エラー",
		WordAdded:         "追加しました: {0}",
		WordPresent:       "すでに辞書にあります: {0}",
		WordDeleted:       "削除しました: {0}",
	},
}

// Catalog resolves text keys for a UI language.
type Catalog struct {
	uni *ut.UniversalTranslator
}

// New builds the catalog for every supported language.
func New() (*Catalog, error) {
	fallback := en.New()
	supported := []locales.Translator{fallback, ru.New(), kk.New(), es.New(), fr.New(), de.New(), ja.New()}
	uni := ut.New(fallback, supported...)

	for lang, entries := range texts {
		trans, ok := uni.GetTranslator(lang)
		if !ok {
			return nil, fmt.Errorf("no locale for %q", lang)
		}
		for key, text := range entries {
			if err := trans.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("failed to register %s/%s: %w", lang, key, err)
			}
		}
	}

	return &Catalog{uni: uni}, nil
}

// MustNew is New for package initialisation; the built-in tables are
// known to be valid.
func MustNew() *Catalog {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

// Languages lists the supported UI languages.
func Languages() []string {
	return []string{"en", "ru", "kk", "es", "fr", "de", "ja"}
}

// Supported reports whether lang has its own texts.
func Supported(lang string) bool {
	_, ok := texts[lang]
	return ok
}

// T returns the text for key in lang, falling back to English for unknown
// languages and to the key itself for unknown keys.
func (c *Catalog) T(lang, key string, params ...string) string {
	if !Supported(lang) {
		lang = DefaultLanguage
	}
	trans, _ := c.uni.GetTranslator(lang)

	text, err := trans.T(key, params...)
	if err != nil {
		return key
	}
	return text
}
