package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/cryoscope/snowkit/internal/survey"
)

// openStore opens the configured survey store backend.
func openStore(ctx context.Context) (survey.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.SQLitePath
		if path == "" {
			path = "snowkit.db"
		}
		return survey.NewSQLite(path)
	case "postgres":
		return survey.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
