package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore persists documents as jsonb rows in a single table.
type PostgresStore struct {
	db *sql.DB
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	doc_key    TEXT NOT NULL,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, doc_key)
);
`

// ConnectPostgres establishes a connection to PostgreSQL.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if _, err := db.Exec(postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize documents table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection string, key Key, out any) (bool, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection = $1 AND doc_key = $2`,
		collection, canonicalKey(key),
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get document from %s: %w", collection, err)
	}

	if err := json.Unmarshal(doc, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) Put(ctx context.Context, collection string, item any) error {
	doc, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	key, err := keyOf(collection, doc)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, doc_key, doc, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, doc_key)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		collection, key, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to put document into %s: %w", collection, err)
	}
	return nil
}

func (s *PostgresStore) Scan(ctx context.Context, collection string, filter *Filter, out any) error {
	// The filter runs over the limited scan window, not before it, so a
	// match past the first ScanLimit documents is not returned.
	query := `SELECT doc FROM documents WHERE collection = $1 ORDER BY doc_key LIMIT $2`
	args := []any{collection, ScanLimit}
	if filter != nil {
		query = `SELECT doc FROM (
			SELECT doc, doc_key FROM documents WHERE collection = $1 ORDER BY doc_key LIMIT $2
		) scanned WHERE doc->>$3 = $4`
		args = append(args, filter.Field, formatKeyValue(filter.Equals))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", collection, err)
	}
	defer rows.Close()

	docs := make([]json.RawMessage, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return fmt.Errorf("failed to read scan row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to scan %s: %w", collection, err)
	}

	combined, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to combine scan result: %w", err)
	}
	if err := json.Unmarshal(combined, out); err != nil {
		return fmt.Errorf("failed to unmarshal scan result: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection string, key Key) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND doc_key = $2`,
		collection, canonicalKey(key),
	)
	if err != nil {
		return fmt.Errorf("failed to delete document from %s: %w", collection, err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, collection string, key Key, set map[string]any, out any) (bool, error) {
	patch, err := json.Marshal(set)
	if err != nil {
		return false, fmt.Errorf("failed to marshal update: %w", err)
	}

	var doc []byte
	err = s.db.QueryRowContext(ctx, `
		UPDATE documents SET doc = doc || $3, updated_at = now()
		WHERE collection = $1 AND doc_key = $2
		RETURNING doc`,
		collection, canonicalKey(key), patch,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to update document in %s: %w", collection, err)
	}

	if out != nil {
		if err := json.Unmarshal(doc, out); err != nil {
			return false, fmt.Errorf("failed to unmarshal updated document: %w", err)
		}
	}
	return true, nil
}

// keyOf extracts the primary key of a marshaled document.
func keyOf(collection string, doc []byte) (string, error) {
	var fields map[string]any
	if err := json.Unmarshal(doc, &fields); err != nil {
		return "", fmt.Errorf("failed to inspect document: %w", err)
	}

	field := KeyField(collection)
	value, ok := fields[field]
	if !ok {
		return "", fmt.Errorf("document for %s is missing key field %q", collection, field)
	}
	return canonicalKey(Key{field: value}), nil
}
