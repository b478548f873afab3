package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"landingCms/internal/modules/homepage/application/port"
	"landingCms/internal/modules/homepage/domain"
)

const (
	// DefaultFreshnessWindow collapses bursts of reads from views mounting together.
	DefaultFreshnessWindow = 3 * time.Second

	SourceMemory  = "memory"
	SourceCommit  = "commit"
	SourceDefault = "default"

	resolveKey = "homepage"
)

// Resolution is the outcome of one read of the aggregate.
type Resolution struct {
	Config domain.HomepageConfig
	// Source names the adapter that answered, or memory/commit/default.
	Source string
	// Issues holds malformed groups that were replaced by defaults and, for
	// fallbacks, the transport failures of every adapter.
	Issues     []error
	Stale      bool
	ResolvedAt time.Time
}

func (r Resolution) clone() Resolution {
	out := r
	out.Config = r.Config.Clone()
	if r.Issues != nil {
		out.Issues = append([]error(nil), r.Issues...)
	}
	return out
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithFreshnessWindow sets how long a resolution is served from memory. Zero disables it.
func WithFreshnessWindow(window time.Duration) ResolverOption {
	return func(r *Resolver) {
		if window >= 0 {
			r.freshness = window
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// Resolver executes the read path: memory while fresh, then the adapter chain in
// priority order, then the last known aggregate, then the built-in default.
type Resolver struct {
	adapters  []port.ConfigAdapter
	freshness time.Duration
	now       func() time.Time
	flight    singleflight.Group

	// mu guards every field below; the aggregate and its timestamp change together.
	mu         sync.Mutex
	current    *Resolution
	resolvedAt time.Time
	generation uint64
	committing int
}

// NewResolver builds a resolver over adapters, which must be ordered by priority.
func NewResolver(adapters []port.ConfigAdapter, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		adapters:  append([]port.ConfigAdapter(nil), adapters...),
		freshness: DefaultFreshnessWindow,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the current aggregate. It never fails: when storage cannot be read it
// serves the last known aggregate or the built-in default.
func (r *Resolver) Resolve(ctx context.Context) domain.HomepageConfig {
	return r.ResolveDetailed(ctx).Config
}

// ResolveDetailed is Resolve with provenance and degradation details.
func (r *Resolver) ResolveDetailed(ctx context.Context) Resolution {
	if res, ok := r.fresh(); ok {
		slog.Debug("homepage resolve served from memory", slog.String("source", res.Source))
		return res
	}
	// Concurrent callers share one walk of the chain. Adapters carry their own
	// timeouts so the shared walk is detached from the first caller's cancellation.
	value, _, _ := r.flight.Do(resolveKey, func() (any, error) {
		if res, ok := r.fresh(); ok {
			return res, nil
		}
		return r.resolve(context.WithoutCancel(ctx)), nil
	})
	return value.(Resolution).clone()
}

// Invalidate drops the freshness window so the next Resolve reads storage again.
// The last known aggregate is kept for fallbacks.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvedAt = time.Time{}
	r.generation++
}

// Current returns the installed aggregate without touching storage.
func (r *Resolver) Current() (Resolution, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Resolution{}, false
	}
	return r.current.clone(), true
}

func (r *Resolver) fresh() (Resolution, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.resolvedAt.IsZero() || r.freshness <= 0 {
		return Resolution{}, false
	}
	if r.now().Sub(r.resolvedAt) >= r.freshness {
		return Resolution{}, false
	}
	res := r.current.clone()
	// adapter answers are relabelled; a committed aggregate keeps its origin.
	if res.Source != SourceDefault && res.Source != SourceCommit && !res.Stale {
		res.Source = SourceMemory
	}
	return res, true
}

func (r *Resolver) resolve(ctx context.Context) Resolution {
	r.mu.Lock()
	generation := r.generation
	r.mu.Unlock()

	var failures []error
	for _, adapter := range r.adapters {
		cfg, issues, err := readAggregate(ctx, adapter)
		if err != nil {
			slog.Warn("homepage adapter unavailable", slog.String("adapter", adapter.Name()), slog.Any("error", err))
			failures = append(failures, err)
			continue
		}
		for _, issue := range issues {
			slog.Warn("homepage data degraded to defaults", slog.String("adapter", adapter.Name()), slog.Any("error", issue))
		}
		res := Resolution{
			Config:     cfg.Normalize(),
			Source:     adapter.Name(),
			Issues:     issues,
			ResolvedAt: r.now(),
		}
		slog.Info("homepage resolved", slog.String("source", res.Source), slog.Int("sections", len(res.Config.Sections)), slog.Int("issues", len(issues)))
		return r.install(generation, res)
	}

	res := r.fallback(failures)
	slog.Warn("homepage adapters exhausted", slog.String("source", res.Source), slog.Bool("stale", res.Stale), slog.Int("failures", len(failures)))
	return r.install(generation, res)
}

func (r *Resolver) fallback(failures []error) Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		res := r.current.clone()
		res.Stale = true
		res.Issues = failures
		res.ResolvedAt = r.now()
		return res
	}
	return Resolution{
		Config:     domain.DefaultHomepageConfig(),
		Source:     SourceDefault,
		Issues:     failures,
		ResolvedAt: r.now(),
	}
}

// install publishes res as the current aggregate in a single step. A commit that
// started or finished after the read began wins: the reader gets the committed
// aggregate instead of data that may be half-applied.
func (r *Resolver) install(generation uint64, res Resolution) Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != generation || r.committing > 0 {
		if r.current != nil {
			return r.current.clone()
		}
		return res
	}
	stored := res.clone()
	r.current = &stored
	r.resolvedAt = res.ResolvedAt
	return res
}

// beginCommit stops in-flight resolutions from installing what they read.
func (r *Resolver) beginCommit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committing++
	r.generation++
}

// endCommit installs the committed aggregate as a fresh resolution when at least one
// adapter stored it, otherwise it only drops the freshness window.
func (r *Resolver) endCommit(cfg domain.HomepageConfig, stored bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.committing > 0 {
		r.committing--
	}
	r.generation++
	if !stored {
		r.resolvedAt = time.Time{}
		return
	}
	now := r.now()
	r.current = &Resolution{
		Config:     cfg.Normalize(),
		Source:     SourceCommit,
		ResolvedAt: now,
	}
	r.resolvedAt = now
}

// readAggregate asks one adapter for all three groups. Transport failures on any group
// disqualify the adapter; missing groups become defaults and malformed groups become
// defaults plus an issue.
func readAggregate(ctx context.Context, adapter port.ConfigAdapter) (domain.HomepageConfig, []error, error) {
	var issues []error
	cfg := domain.HomepageConfig{}

	sections, err := adapter.ReadSections(ctx)
	switch {
	case err == nil && len(sections) > 0:
		cfg.Sections = sections
	case err == nil, errors.Is(err, port.ErrNotFound):
		cfg.Sections = domain.DefaultSections()
	case errors.Is(err, port.ErrMalformed):
		cfg.Sections = domain.DefaultSections()
		issues = append(issues, err)
	default:
		return cfg, nil, unavailable(adapter, "read sections", err)
	}

	data, err := adapter.ReadSectionData(ctx)
	switch {
	case err == nil:
		cfg.SectionData = data
	case errors.Is(err, port.ErrNotFound):
		cfg.SectionData = domain.SectionDataMap{}
	case errors.Is(err, port.ErrMalformed):
		cfg.SectionData = domain.SectionDataMap{}
		issues = append(issues, err)
	default:
		return cfg, nil, unavailable(adapter, "read section data", err)
	}

	template, err := adapter.ReadTemplateConfig(ctx)
	switch {
	case err == nil && template.ActiveTemplate != "":
		cfg.TemplateConfig = template
	case err == nil, errors.Is(err, port.ErrNotFound):
		cfg.TemplateConfig = domain.DefaultTemplateConfig()
	case errors.Is(err, port.ErrMalformed):
		cfg.TemplateConfig = domain.DefaultTemplateConfig()
		issues = append(issues, err)
	default:
		return cfg, nil, unavailable(adapter, "read template", err)
	}

	return cfg, issues, nil
}

// unavailable makes sure unclassified failures are treated as transport failures.
func unavailable(adapter port.ConfigAdapter, op string, err error) error {
	if port.IsUnavailable(err) {
		return err
	}
	return port.NewAdapterError(adapter.Name(), op, errors.Join(port.ErrAdapterUnavailable, err))
}
