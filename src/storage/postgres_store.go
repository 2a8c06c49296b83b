package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists blobs in a bytea column. References carry the
// row id, e.g. "pg://media/42.png".
type PostgresStore struct {
	DB *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and returns a blob store backed by it.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

func (ps *PostgresStore) SaveImage(ctx context.Context, b64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}
	return ps.insert(ctx, "image/png", ".png", raw)
}

func (ps *PostgresStore) SaveVideo(ctx context.Context, r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return ps.insert(ctx, "video/mp4", ".mp4", raw)
}

func (ps *PostgresStore) insert(ctx context.Context, contentType, ext string, raw []byte) (string, error) {
	if ps == nil || ps.DB == nil {
		return "", fmt.Errorf("postgres store is not configured")
	}
	var id int64
	err := ps.DB.QueryRow(ctx, `
                INSERT INTO media_blobs (content_type, data, size)
                VALUES ($1, $2, $3)
                RETURNING id;
        `, contentType, raw, len(raw)).Scan(&id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("pg://media/%d%s", id, ext), nil
}

// CreateSchema ensures the media table exists.
func (ps *PostgresStore) CreateSchema(ctx context.Context) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	_, err := ps.DB.Exec(ctx, defaultPostgresSchema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close releases the underlying Postgres connection pool.
func (ps *PostgresStore) Close() error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	ps.DB.Close()
	return nil
}

const defaultPostgresSchema = `
CREATE TABLE IF NOT EXISTS media_blobs (
    id BIGSERIAL PRIMARY KEY,
    content_type TEXT NOT NULL,
    data BYTEA NOT NULL,
    size BIGINT NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS media_blobs_created_idx ON media_blobs (created_at);
`
