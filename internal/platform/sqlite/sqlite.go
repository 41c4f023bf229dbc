// Package sqlite is a file-backed store.Backend built on gorm and SQLite.
// Each collection is one row of a key-value table.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/studyhall/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

// entry is one persisted collection.
type entry struct {
	Key       string `gorm:"column:entry_key;primaryKey"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "library_entries" }

// Backend stores encoded collections in a SQLite database file.
type Backend struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates the
// schema. Use ":memory:" for a private in-memory database.
func Open(path string, log *slog.Logger) (*Backend, error) {
	if log == nil {
		log = slog.Default()
	}

	gormLog := gormLogger.New(
		slogWriter{log: log.With("component", "sqlite")},
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:" shared.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	return &Backend{db: db}, nil
}

// Get implements store.Backend.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var row entry
	err := b.db.WithContext(ctx).Where("entry_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Value, nil
}

// PutBatch implements store.Backend. All rows are upserted in one transaction.
func (b *Backend) PutBatch(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]entry, 0, len(entries))
	for key, value := range entries {
		rows = append(rows, entry{Key: key, Value: value, UpdatedAt: now})
	}

	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
}

// Close implements store.Backend.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// slogWriter routes gorm's printf-style logging into slog.
type slogWriter struct {
	log *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.log.Warn(fmt.Sprintf(format, args...))
}
