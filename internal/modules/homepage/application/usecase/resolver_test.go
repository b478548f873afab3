package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landingCms/internal/modules/homepage/application/port"
	"landingCms/internal/modules/homepage/domain"
)

func sampleConfig() domain.HomepageConfig {
	cfg := domain.DefaultHomepageConfig()
	cfg.Sections[0].Title = "Welcome"
	cfg.Sections[2].Visible = false
	cfg.SectionData["hero"] = domain.SectionData{"title": "Hello", "ctaText": "Call us"}
	cfg.TemplateConfig = domain.TemplateConfig{ActiveTemplate: "modern"}
	return cfg
}

func TestResolver_EmptyStorageReturnsDefault(t *testing.T) {
	t.Parallel()

	db := newMemoryAdapter("postgres").failReads(port.ErrAdapterUnavailable)
	api := newMemoryAdapter("rest-api").failReads(port.ErrAdapterUnavailable)
	cache := newMemoryAdapter("local-cache")

	r := NewResolver([]port.ConfigAdapter{db, api, cache})
	res := r.ResolveDetailed(context.Background())

	assert.Equal(t, "local-cache", res.Source)
	require.Len(t, res.Config.Sections, 8)
	for i, s := range res.Config.Sections {
		assert.True(t, s.Visible)
		assert.Equal(t, i, s.Order)
	}
	assert.Equal(t, "default", res.Config.TemplateConfig.ActiveTemplate)
	assert.Equal(t, domain.DefaultHomepageConfig(), res.Config)
	assert.Empty(t, res.Issues)
}

func TestResolver_PrimaryWins(t *testing.T) {
	t.Parallel()

	db := newMemoryAdapter("postgres").seed(sampleConfig())
	cache := newMemoryAdapter("local-cache").seed(domain.DefaultHomepageConfig())

	r := NewResolver([]port.ConfigAdapter{db, cache})
	res := r.ResolveDetailed(context.Background())

	assert.Equal(t, "postgres", res.Source)
	assert.Equal(t, sampleConfig().Normalize(), res.Config)
	assert.Equal(t, 0, cache.readCount())
}

func TestResolver_FallsThroughOnPartialUnavailability(t *testing.T) {
	t.Parallel()

	db := newMemoryAdapter("postgres").seed(domain.DefaultHomepageConfig())
	db.setReadErr(port.GroupTemplateConfig, port.ErrAdapterUnavailable)
	api := newMemoryAdapter("rest-api").seed(sampleConfig())

	r := NewResolver([]port.ConfigAdapter{db, api})
	res := r.ResolveDetailed(context.Background())

	assert.Equal(t, "rest-api", res.Source, "an adapter must answer all three reads to win")
	assert.Equal(t, "modern", res.Config.TemplateConfig.ActiveTemplate)
}

func TestResolver_UnclassifiedErrorsMoveOn(t *testing.T) {
	t.Parallel()

	db := newMemoryAdapter("postgres").failReads(errors.New("boom"))
	cache := newMemoryAdapter("local-cache").seed(sampleConfig())

	res := NewResolver([]port.ConfigAdapter{db, cache}).ResolveDetailed(context.Background())
	assert.Equal(t, "local-cache", res.Source)
}

func TestResolver_MalformedIsSurfacedNotDowngraded(t *testing.T) {
	t.Parallel()

	db := newMemoryAdapter("postgres").seed(sampleConfig())
	db.setReadErr(port.GroupSectionData, port.ErrMalformed)
	api := newMemoryAdapter("rest-api").seed(domain.DefaultHomepageConfig())

	r := NewResolver([]port.ConfigAdapter{db, api})
	res := r.ResolveDetailed(context.Background())

	assert.Equal(t, "postgres", res.Source)
	require.Len(t, res.Issues, 1)
	assert.ErrorIs(t, res.Issues[0], port.ErrMalformed)
	assert.Empty(t, res.Config.SectionData)
	assert.Equal(t, "modern", res.Config.TemplateConfig.ActiveTemplate)
	assert.Equal(t, 0, api.readCount())
	assert.Equal(t, domain.DefaultSectionData(domain.SectionHero), res.Config.DataFor("hero"))
}

func TestResolver_SortsStablyByOrder(t *testing.T) {
	t.Parallel()

	cfg := domain.HomepageConfig{
		Sections: []domain.Section{
			{ID: "faq", Type: domain.SectionFAQ, Order: 3},
			{ID: "hero", Type: domain.SectionHero, Order: 1},
			{ID: "about", Type: domain.SectionAbout, Order: 1},
		},
		TemplateConfig: domain.DefaultTemplateConfig(),
	}
	db := newMemoryAdapter("postgres").seed(cfg)

	res := NewResolver([]port.ConfigAdapter{db}).Resolve(context.Background())
	require.Len(t, res.Sections, 3)
	assert.Equal(t, "hero", res.Sections[0].ID)
	assert.Equal(t, "about", res.Sections[1].ID)
	assert.Equal(t, "faq", res.Sections[2].ID)
	assert.Equal(t, res, res.Normalize())
}

func TestResolver_FreshnessWindowCollapsesReads(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	db := newMemoryAdapter("postgres").seed(sampleConfig())
	r := NewResolver([]port.ConfigAdapter{db}, WithClock(clock.Now), WithFreshnessWindow(3*time.Second))

	first := r.ResolveDetailed(context.Background())
	clock.Advance(time.Second)
	second := r.ResolveDetailed(context.Background())

	assert.Equal(t, 1, db.readCount())
	assert.Equal(t, "postgres", first.Source)
	assert.Equal(t, SourceMemory, second.Source)
	assert.Equal(t, first.Config, second.Config)

	clock.Advance(3 * time.Second)
	r.Resolve(context.Background())
	assert.Equal(t, 2, db.readCount())
}

func TestResolver_ConcurrentResolvesShareOneRead(t *testing.T) {
	t.Parallel()

	db := newMemoryAdapter("postgres").seed(sampleConfig())
	r := NewResolver([]port.ConfigAdapter{db}, WithFreshnessWindow(time.Minute))

	var wg sync.WaitGroup
	results := make([]domain.HomepageConfig, 16)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.Resolve(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, db.readCount())
	for _, cfg := range results {
		assert.Equal(t, sampleConfig().Normalize(), cfg)
	}
}

func TestResolver_ReturnsLastKnownWhenEverythingFails(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	db := newMemoryAdapter("postgres").seed(sampleConfig())
	r := NewResolver([]port.ConfigAdapter{db}, WithClock(clock.Now))

	r.Resolve(context.Background())
	db.failReads(port.ErrAdapterUnavailable)
	clock.Advance(time.Hour)

	res := r.ResolveDetailed(context.Background())
	assert.True(t, res.Stale)
	assert.Equal(t, sampleConfig().Normalize(), res.Config)
	require.Len(t, res.Issues, 1)
	assert.ErrorIs(t, res.Issues[0], port.ErrAdapterUnavailable)
}

func TestResolver_DefaultWhenNothingEverResolved(t *testing.T) {
	t.Parallel()

	db := newMemoryAdapter("postgres").failReads(port.ErrAdapterUnavailable)
	cache := newMemoryAdapter("local-cache").failReads(port.ErrAdapterUnavailable)

	res := NewResolver([]port.ConfigAdapter{db, cache}).ResolveDetailed(context.Background())
	assert.Equal(t, SourceDefault, res.Source)
	assert.Equal(t, domain.DefaultHomepageConfig(), res.Config)
	assert.Len(t, res.Issues, 2)
}

func TestResolver_InvalidateForcesReread(t *testing.T) {
	t.Parallel()

	db := newMemoryAdapter("postgres").seed(domain.DefaultHomepageConfig())
	r := NewResolver([]port.ConfigAdapter{db}, WithFreshnessWindow(time.Hour))

	r.Resolve(context.Background())
	db.seed(sampleConfig())
	assert.Equal(t, "default", r.Resolve(context.Background()).TemplateConfig.ActiveTemplate)

	r.Invalidate()
	assert.Equal(t, "modern", r.Resolve(context.Background()).TemplateConfig.ActiveTemplate)
	assert.Equal(t, 2, db.readCount())
}

func TestResolver_ReturnedValuesAreCopies(t *testing.T) {
	t.Parallel()

	db := newMemoryAdapter("postgres").seed(sampleConfig())
	r := NewResolver([]port.ConfigAdapter{db}, WithFreshnessWindow(time.Hour))

	first := r.Resolve(context.Background())
	first.Sections[0].Title = "mutated"
	first.SectionData["hero"]["title"] = "mutated"

	second := r.Resolve(context.Background())
	assert.Equal(t, "Welcome", second.Sections[0].Title)
	assert.Equal(t, "Hello", second.SectionData["hero"]["title"])
}

func TestResolver_ReadDuringCommitDoesNotInstall(t *testing.T) {
	t.Parallel()

	db := newMemoryAdapter("postgres").seed(domain.DefaultHomepageConfig())
	r := NewResolver([]port.ConfigAdapter{db}, WithFreshnessWindow(time.Hour))
	r.Resolve(context.Background())

	r.beginCommit()
	r.Invalidate()
	during := r.ResolveDetailed(context.Background())
	assert.Equal(t, "default", during.Config.TemplateConfig.ActiveTemplate)

	r.endCommit(sampleConfig(), true)
	after := r.ResolveDetailed(context.Background())
	assert.Equal(t, SourceCommit, after.Source)
	assert.Equal(t, "modern", after.Config.TemplateConfig.ActiveTemplate)
}
