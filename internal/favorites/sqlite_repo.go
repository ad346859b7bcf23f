package favorites

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"bookfinder/internal/book"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS favorites (
	position INTEGER PRIMARY KEY AUTOINCREMENT,
	book_id  TEXT NOT NULL UNIQUE,
	payload  TEXT NOT NULL
);`

// SQLiteRepository persists the favorites set in a local SQLite database,
// one row per book with the serialized Book as payload.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (and creates, if needed) the favorites database at path.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open favorites db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create favorites schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Load returns the persisted favorites in insertion order.
func (r *SQLiteRepository) Load(ctx context.Context) ([]book.Book, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM favorites ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	defer rows.Close()

	var books []book.Book
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		var b book.Book
		if err := json.Unmarshal([]byte(payload), &b); err != nil {
			return nil, fmt.Errorf("decode favorite: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// Save rewrites the whole set in one transaction, preserving order.
func (r *SQLiteRepository) Save(ctx context.Context, books []book.Book) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites`); err != nil {
		return fmt.Errorf("clear favorites: %w", err)
	}
	for _, b := range books {
		payload, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode favorite %s: %w", b.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO favorites (book_id, payload) VALUES (?, ?)`,
			b.ID, string(payload)); err != nil {
			return fmt.Errorf("insert favorite %s: %w", b.ID, err)
		}
	}
	return tx.Commit()
}
