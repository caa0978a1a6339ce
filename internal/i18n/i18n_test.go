package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_T(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	tests := []struct {
		lang string
		key  string
		want string
	}{
		{lang: "en", key: DictionaryEmpty, want: "The dictionary is empty"},
		{lang: "ru", key: PopupError, want: "Ошибка перевода"},
		{lang: "kk", key: ColumnTranslation, want: "Аударма"},
		{lang: "de", key: ColumnWord, want: "Wort"},
		{lang: "ja", key: DictionaryEmpty, want: "辞書は空です"},
		{lang: "xx", key: PopupError, want: "Translation error"},
		{lang: "", key: ColumnWord, want: "Word"},
		{lang: "en", key: "missing_key", want: "missing_key"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, c.T(tt.lang, tt.key))
		})
	}
}

func TestCatalog_T_Params(t *testing.T) {
	c := MustNew()

	assert.Equal(t, "Added: Apple", c.T("en", WordAdded, "Apple"))
	assert.Equal(t, "Уже в словаре: Apple", c.T("ru", WordPresent, "Apple"))
}

func TestCatalog_EveryLanguageHasEveryKey(t *testing.T) {
	for _, lang := range Languages() {
		require.True(t, Supported(lang), lang)
		assert.Len(t, texts[lang], len(texts[DefaultLanguage]), lang)
		for key := range texts[DefaultLanguage] {
			assert.Contains(t, texts[lang], key, "%s missing %s", lang, key)
		}
	}
}
