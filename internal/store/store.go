// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/pictoword/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for the word catalog.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS words (
			id TEXT PRIMARY KEY,
			slot TEXT NOT NULL,
			text TEXT NOT NULL,
			text_alt TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			sound TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_words_slot ON words(slot, position);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceWords swaps the whole catalog in one transaction.
func (s *Store) ReplaceWords(ctx context.Context, words []model.WordEntry) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM words`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO words (id, slot, text, text_alt, icon, sound, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, w := range words {
		if _, err = stmt.ExecContext(ctx, w.ID, w.Slot.String(), w.Text, w.TextAlt, w.Icon, w.Sound, i); err != nil {
			return fmt.Errorf("failed to insert %s %q: %w", w.Slot, w.Text, err)
		}
	}
	return tx.Commit()
}

// ListWords returns the catalog in insertion order.
func (s *Store) ListWords(ctx context.Context) ([]model.WordEntry, error) {
	return s.queryWords(ctx, `SELECT id, slot, text, text_alt, icon, sound FROM words ORDER BY position`)
}

// ListWordsForSlot returns the words for one slot in insertion order.
func (s *Store) ListWordsForSlot(ctx context.Context, kind model.SlotKind) ([]model.WordEntry, error) {
	return s.queryWords(ctx, `SELECT id, slot, text, text_alt, icon, sound FROM words WHERE slot = ? ORDER BY position`, kind.String())
}

// CountWords returns the number of stored words.
func (s *Store) CountWords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) queryWords(ctx context.Context, query string, args ...any) ([]model.WordEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.WordEntry
	for rows.Next() {
		var w model.WordEntry
		var slot string
		if err := rows.Scan(&w.ID, &slot, &w.Text, &w.TextAlt, &w.Icon, &w.Sound); err != nil {
			return nil, err
		}
		kind, err := model.ParseSlotKind(slot)
		if err != nil {
			return nil, err
		}
		w.Slot = kind
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
