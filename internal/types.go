package internal

import "time"

// DictionaryEntry is a word the user chose to memorize. Word is stored in
// canonical form (see wordform.Canonical).
type DictionaryEntry struct {
	Word      string    `json:"word" db:"word"`
	Position  int64     `json:"-" db:"position"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// CacheKey identifies one memoized translation.
type CacheKey struct {
	Word string `json:"word" db:"word"`
	Lang string `json:"lang" db:"lang"`
}

// String returns the "word|lang" form used for display only.
func (k CacheKey) String() string {
	return k.Word + "|" + k.Lang
}

type CacheEntry struct {
	CacheKey
	Translation string    `json:"translation" db:"translation"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
