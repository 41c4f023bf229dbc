package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/studyhall/internal/platform/logger"
)

// Backend stores encoded collections in the library_entries table.
type Backend struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to the database at url and configures the connection pool.
// It does not run migrations; see Migrate.
func Open(ctx context.Context, url string, log *slog.Logger) (*Backend, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established", "url", MaskURL(url))
	return &Backend{db: db, logger: log.With("component", "postgres")}, nil
}

// DB exposes the underlying handle for migrations.
func (b *Backend) DB() *sql.DB {
	return b.db
}

// Get implements store.Backend.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT value FROM library_entries WHERE key = $1`, key).Scan(&value)
	if err != nil {
		return nil, MapError(err)
	}
	return value, nil
}

// PutBatch implements store.Backend. Every row is upserted in one transaction.
func (b *Backend) PutBatch(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}

	return runInTransaction(ctx, b.db, logger.FromContextOrDefault(ctx, b.logger), func(ctx context.Context, tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO library_entries (key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE
			SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`)
		if err != nil {
			return MapError(err)
		}
		defer stmt.Close()

		for key, value := range entries {
			// JSONB rejects raw bytes, so send text.
			if _, err := stmt.ExecContext(ctx, key, string(value)); err != nil {
				return MapError(err)
			}
		}
		return nil
	})
}

// Close implements store.Backend.
func (b *Backend) Close() error {
	return b.db.Close()
}
