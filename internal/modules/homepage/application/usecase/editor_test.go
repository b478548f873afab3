package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landingCms/internal/modules/homepage/application/port"
	"landingCms/internal/modules/homepage/domain"
)

func newEditorFixture() (storeFixture, *Editor) {
	f := newStoreFixture(WithFreshnessWindow(time.Hour))
	return f, NewEditor(f.resolver, f.store)
}

func TestEditor_AddSectionVisibleFromFreshProcess(t *testing.T) {
	t.Parallel()

	f, editor := newEditorFixture()
	result, added, err := editor.AddSection(context.Background(), domain.SectionCustom, "Promo")
	require.NoError(t, err)
	require.True(t, result.Success)

	// a second process shares the storage but none of the in-memory state.
	fresh := NewResolver([]port.ConfigAdapter{f.db, f.api, f.cache})
	res := fresh.ResolveDetailed(context.Background())
	assert.Equal(t, "postgres", res.Source)

	section, ok := res.Config.Section(added.ID)
	require.True(t, ok)
	assert.Equal(t, "Promo", section.Title)
	assert.Equal(t, domain.SectionCustom, section.Type)
	assert.True(t, section.Visible)
	assert.Equal(t, domain.DefaultHomepageConfig().MaxOrder()+1, section.Order)

	ids := map[string]int{}
	for _, s := range res.Config.Sections {
		ids[s.ID]++
	}
	for id, n := range ids {
		assert.Equal(t, 1, n, "duplicate id %s", id)
	}
}

func TestEditor_AddSectionRejectsUnknownType(t *testing.T) {
	t.Parallel()

	f, editor := newEditorFixture()
	_, _, err := editor.AddSection(context.Background(), domain.SectionType("carousel"), "Slides")
	require.ErrorIs(t, err, domain.ErrUnknownSectionType)
	assert.Empty(t, f.bus.published())
}

func TestEditor_RemoveBuiltInHidesIt(t *testing.T) {
	t.Parallel()

	f, editor := newEditorFixture()
	result, err := editor.RemoveSection(context.Background(), "team")
	require.NoError(t, err)
	require.True(t, result.Success)

	cfg := f.db.stored()
	require.Len(t, cfg.Sections, 8)
	section, ok := cfg.Section("team")
	require.True(t, ok)
	assert.False(t, section.Visible)
}

func TestEditor_RemoveMissingSection(t *testing.T) {
	t.Parallel()

	f, editor := newEditorFixture()
	_, err := editor.RemoveSection(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrSectionNotFound)
	assert.Empty(t, f.bus.published())
}

func TestEditor_EditsBuildOnEachOther(t *testing.T) {
	t.Parallel()

	f, editor := newEditorFixture()
	ctx := context.Background()

	_, promo, err := editor.AddSection(ctx, domain.SectionCustom, "Promo")
	require.NoError(t, err)
	_, err = editor.UpdateSectionData(ctx, promo.ID, domain.SectionData{"headline": "50% off"})
	require.NoError(t, err)
	_, err = editor.ReorderSections(ctx, []string{promo.ID, "hero"})
	require.NoError(t, err)
	_, err = editor.SetTemplate(ctx, "bold")
	require.NoError(t, err)

	cfg := editor.Current(ctx)
	require.NotEmpty(t, cfg.Sections)
	assert.Equal(t, promo.ID, cfg.Sections[0].ID)
	assert.Equal(t, "hero", cfg.Sections[1].ID)
	assert.Equal(t, "50% off", cfg.DataFor(promo.ID)["headline"])
	assert.Equal(t, "bold", cfg.TemplateConfig.ActiveTemplate)
	assert.Equal(t, cfg, f.db.stored().Normalize())
	assert.Len(t, f.bus.published(), 4)
}

func TestEditor_UpdateSectionMergesFields(t *testing.T) {
	t.Parallel()

	_, editor := newEditorFixture()
	title := "Our story"
	_, err := editor.UpdateSection(context.Background(), "about", domain.SectionPatch{Title: &title})
	require.NoError(t, err)

	section, ok := editor.Current(context.Background()).Section("about")
	require.True(t, ok)
	assert.Equal(t, "Our story", section.Title)
	assert.True(t, section.Visible)
}

func TestEditor_ReplaceGroupsKeepTheOthers(t *testing.T) {
	t.Parallel()

	_, editor := newEditorFixture()
	ctx := context.Background()

	result := editor.ReplaceTemplate(ctx, domain.TemplateConfig{ActiveTemplate: "classic"})
	require.True(t, result.Success)
	result = editor.ReplaceSectionData(ctx, domain.SectionDataMap{"faq": {"items": []any{}}})
	require.True(t, result.Success)

	cfg := editor.Current(ctx)
	assert.Equal(t, "classic", cfg.TemplateConfig.ActiveTemplate)
	assert.Len(t, cfg.Sections, 8)
	assert.Contains(t, cfg.SectionData, "faq")

	result = editor.ReplaceSections(ctx, []domain.Section{{ID: "hero", Type: domain.SectionHero, Title: "Hero", Visible: true}})
	require.True(t, result.Success)
	cfg = editor.Current(ctx)
	assert.Len(t, cfg.Sections, 8)
	require.Len(t, cfg.VisibleSections(), 1)
	assert.Equal(t, "hero", cfg.VisibleSections()[0].ID)
	assert.Equal(t, "classic", cfg.TemplateConfig.ActiveTemplate)
}

func TestEditor_ReplaceSectionsKeepsBuiltInsHidden(t *testing.T) {
	t.Parallel()

	f, editor := newEditorFixture()
	ctx := context.Background()
	title := "Who we are"
	_, err := editor.UpdateSection(ctx, "about", domain.SectionPatch{Title: &title})
	require.NoError(t, err)

	promo := domain.Section{ID: "promo", Type: domain.SectionCustom, Title: "Promo", Visible: true, Order: 0}
	result := editor.ReplaceSections(ctx, []domain.Section{promo})
	require.True(t, result.Success)
	assert.Equal(t, CommitSucceeded, result.Status)

	stored := f.db.stored()
	require.Len(t, stored.Sections, 9)
	for _, kind := range domain.BuiltInSectionTypes() {
		section, ok := stored.Section(string(kind))
		require.True(t, ok, "built-in %s dropped", kind)
		assert.False(t, section.Visible, kind)
		assert.Greater(t, section.Order, promo.Order)
	}
	about, _ := stored.Section("about")
	assert.Equal(t, "Who we are", about.Title)
	require.Len(t, stored.VisibleSections(), 1)
	assert.Equal(t, "promo", stored.VisibleSections()[0].ID)
}

func TestEditor_ReplaceWithEmptyListAgreesWithFreshProcess(t *testing.T) {
	t.Parallel()

	f, editor := newEditorFixture()
	ctx := context.Background()

	result := editor.ReplaceSections(ctx, []domain.Section{})
	require.True(t, result.Success)
	assert.Len(t, result.Config.Sections, 8)
	assert.Empty(t, result.Config.VisibleSections())

	fresh := NewResolver([]port.ConfigAdapter{f.db, f.api, f.cache}).Resolve(ctx)
	assert.Equal(t, editor.Current(ctx).Sections, fresh.Sections)
}

func TestEditor_CommitKeepsBuiltIns(t *testing.T) {
	t.Parallel()

	f, editor := newEditorFixture()
	cfg := domain.HomepageConfig{
		Sections:       []domain.Section{{ID: "faq", Type: domain.SectionFAQ, Title: "FAQ", Visible: true}},
		TemplateConfig: domain.TemplateConfig{ActiveTemplate: "bold"},
	}
	result := editor.Commit(context.Background(), cfg)
	require.True(t, result.Success)

	stored := f.db.stored()
	assert.Len(t, stored.Sections, 8)
	hero, ok := stored.Section("hero")
	require.True(t, ok)
	assert.False(t, hero.Visible)
	assert.Equal(t, "bold", stored.TemplateConfig.ActiveTemplate)
}

func TestEditor_ReplaceWithInvalidTemplateIsRejected(t *testing.T) {
	t.Parallel()

	f, editor := newEditorFixture()
	result := editor.ReplaceTemplate(context.Background(), domain.TemplateConfig{ActiveTemplate: "neon"})
	assert.Equal(t, CommitRejected, result.Status)
	assert.Empty(t, f.bus.published())
}

func TestEditor_ConcurrentAddsKeepEverySection(t *testing.T) {
	t.Parallel()

	_, editor := newEditorFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := editor.AddSection(ctx, domain.SectionCustom, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, editor.Current(ctx).Sections, 16)
}
