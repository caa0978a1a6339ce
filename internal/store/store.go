// Package store is the local storage scope: the dictionary list and the
// translation cache, kept in one sqlite file.
//
// Every method is a single read or a single write. Sequences such as
// "read the list, then append" are not atomic across processes; two
// companions sharing a file resolve conflicts by last writer wins.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/valpere/justhighlight/internal"
	"github.com/valpere/justhighlight/internal/wordform"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *sqlx.DB
}

// New opens (creating if needed) the sqlite database at dbPath. The parent
// directory must already exist; Open creates it.
func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY between
	// our own goroutines.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

// Open is New preceded by creating the parent directory of dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return New(dbPath)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS dictionary (
		word TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS translation_cache (
		word TEXT NOT NULL,
		lang TEXT NOT NULL,
		translation TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (word, lang)
	);

	CREATE INDEX IF NOT EXISTS idx_dictionary_position ON dictionary(position);
	CREATE INDEX IF NOT EXISTS idx_cache_lang ON translation_cache(lang);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ListWords returns the dictionary in insertion order.
func (s *Store) ListWords(ctx context.Context) ([]internal.DictionaryEntry, error) {
	var entries []internal.DictionaryEntry
	err := s.db.SelectContext(ctx, &entries,
		`SELECT word, position, created_at FROM dictionary ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// HasWord reports whether the canonical word is in the dictionary.
func (s *Store) HasWord(ctx context.Context, word string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM dictionary WHERE word = ?`, word)
	return n > 0, err
}

// AddWord appends word after the current last entry. It returns false when
// the word was already present.
func (s *Store) AddWord(ctx context.Context, word string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO dictionary (word, position, created_at)
		 VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM dictionary), ?)`,
		word, time.Now())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteWord removes word from the dictionary and its cache entry for lang
// in one transaction.
func (s *Store) DeleteWord(ctx context.Context, word, lang string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM dictionary WHERE word = ?`, word)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("word %q: %w", word, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM translation_cache WHERE word = ? AND lang = ?`,
		wordform.Key(word), lang); err != nil {
		return err
	}

	return tx.Commit()
}

// GetTranslation returns the cached translation for key.
func (s *Store) GetTranslation(ctx context.Context, key internal.CacheKey) (string, bool, error) {
	var translation string
	err := s.db.GetContext(ctx, &translation,
		`SELECT translation FROM translation_cache WHERE word = ? AND lang = ?`,
		wordform.Key(key.Word), key.Lang)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return translation, true, nil
}

// GetTranslations returns every cached translation for lang keyed by word.
func (s *Store) GetTranslations(ctx context.Context, lang string) (map[string]string, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT word, translation FROM translation_cache WHERE lang = ?`, lang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var word, translation string
		if err := rows.Scan(&word, &translation); err != nil {
			return nil, err
		}
		out[word] = translation
	}
	return out, rows.Err()
}

// PutTranslations upserts all entries in one transaction. For an existing
// key the new translation replaces the old one.
func (s *Store) PutTranslations(ctx context.Context, entries []internal.CacheEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO translation_cache (word, lang, translation, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(word, lang) DO UPDATE SET translation = excluded.translation, updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, wordform.Key(e.Word), e.Lang, e.Translation, now, now); err != nil {
			return fmt.Errorf("failed to store %s: %w", e.CacheKey, err)
		}
	}

	return tx.Commit()
}

// DeleteTranslation removes one cache entry. Missing keys are not an error.
func (s *Store) DeleteTranslation(ctx context.Context, key internal.CacheKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM translation_cache WHERE word = ? AND lang = ?`,
		wordform.Key(key.Word), key.Lang)
	return err
}

// ListTranslations returns cache entries, optionally for a single language,
// most recently written first.
func (s *Store) ListTranslations(ctx context.Context, lang string) ([]internal.CacheEntry, error) {
	query := `SELECT word, lang, translation, updated_at FROM translation_cache`
	var args []interface{}
	if lang != "" {
		query += ` WHERE lang = ?`
		args = append(args, lang)
	}
	query += ` ORDER BY updated_at DESC, word ASC`

	var entries []internal.CacheEntry
	if err := s.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, err
	}
	return entries, nil
}

// ClearTranslations removes every cache entry.
func (s *Store) ClearTranslations(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_cache`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats summarises the local scope.
type Stats struct {
	Words        int `db:"words"`
	CacheEntries int `db:"cache_entries"`
	Languages    int `db:"languages"`
	Orphans      int `db:"orphans"`
}

// Stats counts dictionary words, cache entries, distinct cached languages
// and cache entries whose word is not (or no longer) in the dictionary.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := s.db.GetContext(ctx, stats, `
		SELECT
			(SELECT COUNT(*) FROM dictionary) AS words,
			(SELECT COUNT(*) FROM translation_cache) AS cache_entries,
			(SELECT COUNT(DISTINCT lang) FROM translation_cache) AS languages,
			(SELECT COUNT(*) FROM translation_cache c
				WHERE NOT EXISTS (SELECT 1 FROM dictionary d WHERE d.word = c.word)) AS orphans`)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
