package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/leadscope/lead-cli/internal/orchestrator"
	"github.com/leadscope/lead-cli/internal/service"
	"github.com/leadscope/lead-cli/internal/store"
	anthropicpkg "github.com/leadscope/lead-cli/pkg/anthropic"
)

// analysisEnv holds the initialized store and service needed by the
// analyze/batch/serve commands.
type analysisEnv struct {
	Store    store.Store
	Analyzer *service.Analyzer
}

// Close releases resources held by the environment.
func (e *analysisEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leadscope.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv sets up the store and the analysis service. Callers should defer
// env.Close().
func initEnv(ctx context.Context) (*analysisEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	client := anthropicpkg.WithRetry(anthropicpkg.NewClient(cfg.Anthropic.Key))
	orch := orchestrator.New(cfg, client)

	return &analysisEnv{
		Store:    st,
		Analyzer: service.New(st, orch),
	}, nil
}
