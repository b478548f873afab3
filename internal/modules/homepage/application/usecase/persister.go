package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"landingCms/internal/modules/homepage/application/port"
	"landingCms/internal/modules/homepage/domain"
)

// CommitStatus summarizes a commit for the administrator.
type CommitStatus string

const (
	CommitSucceeded CommitStatus = "success"
	CommitPartial   CommitStatus = "partial"
	CommitFailed    CommitStatus = "failure"
	CommitRejected  CommitStatus = "rejected"
)

// AdapterFailure reports the groups one adapter failed to store.
type AdapterFailure struct {
	Adapter string       `json:"adapter"`
	Groups  []port.Group `json:"groups"`
	Message string       `json:"message"`
	Err     error        `json:"-"`
}

// CommitResult is the structured outcome of a commit. Success is true when the
// authoritative adapter (the first remote) stored every group. Failures on secondary
// remotes leave Success set but downgrade Status to partial; callers inspect Errors to
// warn the administrator.
type CommitResult struct {
	Success bool                  `json:"success"`
	Status  CommitStatus          `json:"status"`
	Errors  []AdapterFailure      `json:"perAdapterErrors"`
	Config  domain.HomepageConfig `json:"config"`
	Event   *port.ConfigChanged   `json:"event,omitempty"`
}

// Err folds every adapter failure into one error, nil when there were none.
func (r CommitResult) Err() error {
	var errs *multierror.Error
	for _, failure := range r.Errors {
		errs = multierror.Append(errs, failure.Err)
	}
	return errs.ErrorOrNil()
}

// Failure returns the failure recorded for adapter, if any.
func (r CommitResult) Failure(adapter string) (AdapterFailure, bool) {
	for _, failure := range r.Errors {
		if failure.Adapter == adapter {
			return failure, true
		}
	}
	return AdapterFailure{}, false
}

// PersisterOption customizes a Persister.
type PersisterOption func(*Persister)

// WithOrigin stamps published events with the id of this process and the site it serves.
func WithOrigin(origin, siteID string) PersisterOption {
	return func(p *Persister) {
		p.origin = origin
		p.siteID = siteID
	}
}

// WithPersisterClock replaces time.Now for event timestamps.
func WithPersisterClock(now func() time.Time) PersisterOption {
	return func(p *Persister) {
		if now != nil {
			p.now = now
		}
	}
}

// Persister executes the write path: replicate to every remote adapter, mirror into the
// local cache, refresh the resolver, announce the change.
type Persister struct {
	remotes  []port.ConfigAdapter
	cache    port.ConfigAdapter
	resolver *Resolver
	bus      port.Publisher
	origin   string
	siteID   string
	now      func() time.Time

	// mu serializes commits; the store assumes a single writer at a time.
	mu sync.Mutex
}

// NewPersister wires the write path. cache may be nil when no local mirror is configured.
func NewPersister(remotes []port.ConfigAdapter, cache port.ConfigAdapter, resolver *Resolver, bus port.Publisher, opts ...PersisterOption) *Persister {
	p := &Persister{
		remotes:  append([]port.ConfigAdapter(nil), remotes...),
		cache:    cache,
		resolver: resolver,
		bus:      bus,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Commit replicates cfg. See CommitAs.
func (p *Persister) Commit(ctx context.Context, cfg domain.HomepageConfig) CommitResult {
	return p.CommitAs(ctx, cfg, "commit")
}

// CommitAs replicates cfg and tags the published event with reason. Writes already
// applied are never rolled back; retrying is safe because every write overwrites the
// full group.
func (p *Persister) CommitAs(ctx context.Context, cfg domain.HomepageConfig, reason string) CommitResult {
	normalized := cfg.Normalize()
	if err := normalized.Validate(); err != nil {
		return rejectedCommit(normalized, reason, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resolver != nil {
		p.resolver.beginCommit()
	}

	result := CommitResult{Config: normalized}
	remoteStored := false
	remoteFailed := false
	primaryFailed := false
	for i, outcome := range p.writeRemotes(ctx, normalized) {
		if outcome.storedAny {
			remoteStored = true
		}
		if outcome.failure != nil {
			remoteFailed = true
			primaryFailed = primaryFailed || i == 0
			result.Errors = append(result.Errors, *outcome.failure)
		}
	}
	if len(p.remotes) == 0 {
		slog.Warn("homepage commit has no remote adapters, only the local cache holds it")
	}

	cacheStored := false
	if p.cache != nil {
		outcome := writeAggregate(ctx, p.cache, normalized)
		cacheStored = outcome.failure == nil
		if outcome.failure != nil {
			level := slog.LevelWarn
			if errors.Is(outcome.failure.Err, port.ErrStorageExhausted) {
				level = slog.LevelError
			}
			slog.Log(ctx, level, "homepage cache mirror failed", slog.String("adapter", p.cache.Name()), slog.Any("error", outcome.failure.Err))
			result.Errors = append(result.Errors, *outcome.failure)
		}
	}

	stored := remoteStored || cacheStored
	if p.resolver != nil {
		p.resolver.endCommit(normalized, stored)
	}

	result.Success = stored && !primaryFailed
	switch {
	case !stored:
		result.Status = CommitFailed
	case remoteFailed:
		result.Status = CommitPartial
	default:
		result.Status = CommitSucceeded
	}

	if stored && p.bus != nil {
		event := p.bus.Publish(port.ConfigChanged{
			Origin:      p.origin,
			SiteID:      p.siteID,
			Reason:      reason,
			Partial:     result.Status != CommitSucceeded,
			CommittedAt: p.now().UTC(),
		})
		result.Event = &event
	}

	slog.Info("homepage commit finished",
		slog.String("reason", reason),
		slog.String("status", string(result.Status)),
		slog.Int("failures", len(result.Errors)),
		slog.Int("sections", len(normalized.Sections)),
	)
	return result
}

type writeOutcome struct {
	storedAny bool
	failure   *AdapterFailure
}

// writeRemotes writes to every remote adapter concurrently; outcomes keep adapter order.
func (p *Persister) writeRemotes(ctx context.Context, cfg domain.HomepageConfig) []writeOutcome {
	outcomes := make([]writeOutcome, len(p.remotes))
	var g errgroup.Group
	for i, adapter := range p.remotes {
		i, adapter := i, adapter
		g.Go(func() error {
			outcomes[i] = writeAggregate(ctx, adapter, cfg)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// writeAggregate attempts all three groups on one adapter; a failed group does not stop the others.
func writeAggregate(ctx context.Context, adapter port.ConfigAdapter, cfg domain.HomepageConfig) writeOutcome {
	var (
		errs   *multierror.Error
		failed []port.Group
		stored bool
	)
	record := func(group port.Group, err error) {
		if err == nil {
			stored = true
			return
		}
		failed = append(failed, group)
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", group, err))
		slog.Warn("homepage group write failed", slog.String("adapter", adapter.Name()), slog.String("group", string(group)), slog.Any("error", err))
	}

	record(port.GroupSections, adapter.WriteSections(ctx, cfg.Sections))
	record(port.GroupSectionData, adapter.WriteSectionData(ctx, cfg.SectionData))
	record(port.GroupTemplateConfig, adapter.WriteTemplateConfig(ctx, cfg.TemplateConfig))

	if len(failed) == 0 {
		return writeOutcome{storedAny: stored}
	}
	err := errs.ErrorOrNil()
	return writeOutcome{
		storedAny: stored,
		failure: &AdapterFailure{
			Adapter: adapter.Name(),
			Groups:  failed,
			Message: err.Error(),
			Err:     err,
		},
	}
}

// rejectedCommit reports an aggregate refused before any adapter was written.
func rejectedCommit(cfg domain.HomepageConfig, reason string, err error) CommitResult {
	slog.Warn("homepage commit rejected", slog.String("reason", reason), slog.Any("error", err))
	return CommitResult{
		Status: CommitRejected,
		Config: cfg,
		Errors: []AdapterFailure{{
			Adapter: "validation",
			Groups:  port.AllGroups,
			Message: err.Error(),
			Err:     errors.Join(port.ErrRejected, err),
		}},
	}
}
