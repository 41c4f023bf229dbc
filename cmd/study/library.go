package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/studyhall/internal/config"
	"github.com/phrazzld/studyhall/internal/domain/srs"
	"github.com/phrazzld/studyhall/internal/platform/memkv"
	"github.com/phrazzld/studyhall/internal/platform/postgres"
	"github.com/phrazzld/studyhall/internal/platform/redis"
	"github.com/phrazzld/studyhall/internal/platform/sqlite"
	"github.com/phrazzld/studyhall/internal/seed"
	"github.com/phrazzld/studyhall/internal/store"
)

// openBackend connects to the storage driver named in cfg. The postgres
// schema is migrated up before use.
func openBackend(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (store.Backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memkv.New(), nil
	case config.DriverSQLite:
		b, err := sqlite.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.DriverPostgres:
		b, err := postgres.Open(ctx, cfg.PostgresURL, log)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(b.DB(), "up", log); err != nil {
			_ = b.Close()
			return nil, err
		}
		return b, nil
	case config.DriverRedis:
		b, err := redis.New(ctx, redis.Options{Addr: cfg.RedisAddr, Prefix: cfg.RedisPrefix})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// openLibrary opens the configured backend and loads the library. With
// autoSeed and seed_on_start both set, an empty library gets the bundled
// sample.
func (c *cli) openLibrary(ctx context.Context, autoSeed bool, opts ...store.Option) (*store.Library, error) {
	backend, err := openBackend(ctx, c.cfg.Storage, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", c.cfg.Storage.Driver, err)
	}

	lib := store.NewLibrary(backend, c.logger, opts...)
	report, err := lib.Load(ctx)
	if err != nil {
		_ = lib.Close()
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	for _, bad := range report.Corrupt {
		c.logger.Warn("collection could not be decoded and was reset",
			slog.String("key", bad.Key),
			slog.String("error", bad.Err.Error()))
	}

	if autoSeed && c.cfg.Storage.SeedOnStart {
		if _, err := c.seedLibrary(ctx, lib, ""); err != nil {
			_ = lib.Close()
			return nil, err
		}
	}
	return lib, nil
}

// seedLibrary loads the sample at path, or the bundled one when path is
// empty, into lib if it has no materials yet.
func (c *cli) seedLibrary(ctx context.Context, lib *store.Library, path string) (bool, error) {
	var (
		s   store.Seed
		err error
	)
	now := time.Now()
	if path == "" {
		s, err = seed.Default(now)
	} else {
		s, err = seed.FromFile(path, now)
	}
	if err != nil {
		return false, err
	}

	seeded, err := lib.LoadSampleData(ctx, s)
	if err != nil {
		return false, fmt.Errorf("failed to seed library: %w", err)
	}
	if seeded {
		c.logger.Info("library seeded with sample data",
			slog.Int("materials", len(s.Materials)),
			slog.Int("flashcards", len(s.Flashcards)))
	}
	return seeded, nil
}

// srsService builds the scheduler from the configured overrides.
func (c *cli) srsService() srs.Service {
	return srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:  c.cfg.SRS.MinEaseFactor,
		FirstInterval:  c.cfg.SRS.FirstInterval,
		SecondInterval: c.cfg.SRS.SecondInterval,
	}))
}
