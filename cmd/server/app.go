package main

import (
	"context"

	"github.com/google/uuid"

	"landingCms/internal/config"
	"landingCms/internal/modules/homepage/application/usecase"
	"landingCms/internal/modules/homepage/infrastructure"
)

// app is the wired homepage store shared by every command.
type app struct {
	origin    string
	chain     *infrastructure.Chain
	bus       *infrastructure.InvalidationBus
	resolver  *usecase.Resolver
	persister *usecase.Persister
	editor    *usecase.Editor
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	chain, err := infrastructure.BuildChain(ctx, infrastructure.ChainConfig{
		SiteID:          cfg.Homepage.SiteID,
		DatabaseURL:     cfg.Database.URL,
		DatabaseTimeout: cfg.Database.Timeout,
		APIBaseURL:      cfg.API.BaseURL,
		APIToken:        cfg.API.Token,
		APITimeout:      cfg.API.Timeout,
		CacheDirectory:  cfg.Cache.Directory,
		CacheQuotaBytes: cfg.Cache.QuotaBytes,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		origin: uuid.NewString(),
		chain:  chain,
		bus:    infrastructure.NewInvalidationBus(),
	}
	a.resolver = usecase.NewResolver(chain.Adapters(), usecase.WithFreshnessWindow(cfg.Homepage.FreshnessWindow))
	a.persister = usecase.NewPersister(chain.Remotes(), chain.Cache, a.resolver, a.bus,
		usecase.WithOrigin(a.origin, cfg.Homepage.SiteID),
	)
	a.editor = usecase.NewEditor(a.resolver, a.persister)
	return a, nil
}

func (a *app) Close() {
	a.bus.Close()
	a.chain.Close()
}
