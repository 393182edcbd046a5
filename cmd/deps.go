package cmd

import (
	"errors"
	"fmt"

	"github.com/facegate/facegate/internal/catalog"
	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database/postgres"
	"github.com/facegate/facegate/internal/embedder"
	"github.com/facegate/facegate/internal/storage"
)

// buildCatalog wires the catalog from configuration: PostgreSQL store,
// artifact directory and embedder client. The returned pool must be closed
// by the caller.
func buildCatalog(cfg *config.Config) (*catalog.Catalog, *postgres.Pool, error) {
	if cfg.Database.URL == "" {
		return nil, nil, errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	disk, err := storage.NewDisk(cfg.Storage.Dir)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to prepare artifact directory: %w", err)
	}

	emb := embedder.New(cfg.Embedder.URL, cfg.Embedder.Timeout)
	cat := catalog.New(postgres.NewUserRepository(pool), disk, emb, catalog.Options{
		DuplicateThreshold: cfg.Matching.DuplicateThreshold,
		DefaultTolerance:   cfg.Matching.VerifyTolerance,
	})
	return cat, pool, nil
}
