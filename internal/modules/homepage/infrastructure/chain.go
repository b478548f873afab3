package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"

	"landingCms/internal/modules/homepage/application/port"
)

// ChainConfig selects the backends that make up the adapter chain.
type ChainConfig struct {
	SiteID string

	DatabaseURL     string
	DatabaseTimeout time.Duration

	APIBaseURL string
	APIToken   string
	APITimeout time.Duration

	CacheDirectory  string
	CacheQuotaBytes int64
	// CacheFS defaults to the OS filesystem.
	CacheFS afero.Fs
}

// Chain is the configured set of adapters in priority order.
type Chain struct {
	Postgres *PostgresAdapter
	REST     *RESTAdapter
	Cache    *LocalCacheAdapter
	Pool     *pgxpool.Pool
}

// BuildChain creates the adapters enabled by cfg. The local cache is always present.
func BuildChain(ctx context.Context, cfg ChainConfig) (*Chain, error) {
	chain := &Chain{}

	if url := strings.TrimSpace(cfg.DatabaseURL); url != "" {
		pool, err := NewConnectionPool(ctx, url, cfg.DatabaseTimeout)
		if err != nil {
			return nil, fmt.Errorf("homepage database: %w", err)
		}
		chain.Pool = pool
		chain.Postgres = NewPostgresAdapter(pool, cfg.DatabaseTimeout)
	}

	if base := strings.TrimSpace(cfg.APIBaseURL); base != "" {
		chain.REST = NewRESTAdapter(base, cfg.APIToken, cfg.APITimeout, nil)
	}

	chain.Cache = NewLocalCacheAdapter(cfg.CacheFS, cfg.CacheDirectory, cfg.SiteID, cfg.CacheQuotaBytes)

	slog.Info("homepage adapter chain ready",
		slog.Any("adapters", adapterNames(chain.Adapters())),
		slog.String("cacheDir", chain.Cache.Dir()),
	)
	return chain, nil
}

// Adapters lists every adapter in read priority order.
func (c *Chain) Adapters() []port.ConfigAdapter {
	return append(c.Remotes(), c.Cache)
}

// Remotes lists the adapters a commit replicates to, authoritative first.
func (c *Chain) Remotes() []port.ConfigAdapter {
	var remotes []port.ConfigAdapter
	if c.Postgres != nil {
		remotes = append(remotes, c.Postgres)
	}
	if c.REST != nil {
		remotes = append(remotes, c.REST)
	}
	return remotes
}

// Close releases the database pool.
func (c *Chain) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

func adapterNames(adapters []port.ConfigAdapter) []string {
	names := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		names = append(names, adapter.Name())
	}
	return names
}
