package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHomepageConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultHomepageConfig()

	require.Len(t, cfg.Sections, 8)
	for i, s := range cfg.Sections {
		assert.Equal(t, i, s.Order)
		assert.True(t, s.Visible, "section %s should be visible", s.ID)
		assert.True(t, s.Type.BuiltIn(), "section %s should be built-in", s.ID)
		assert.Equal(t, string(s.Type), s.ID)
	}
	assert.Equal(t, "default", cfg.TemplateConfig.ActiveTemplate)
	assert.NotNil(t, cfg.SectionData)
	assert.Empty(t, cfg.SectionData)
	require.NoError(t, cfg.Validate())
}

func TestNormalize_IsStableAndIdempotent(t *testing.T) {
	t.Parallel()

	cfg := HomepageConfig{
		Sections: []Section{
			{ID: "c", Type: SectionFAQ, Order: 2},
			{ID: "a", Type: SectionHero, Order: 1},
			{ID: "b", Type: SectionAbout, Order: 1},
			{ID: "z", Type: SectionTeam, Order: 0},
		},
		TemplateConfig: TemplateConfig{ActiveTemplate: "  Modern "},
	}

	once := cfg.Normalize()
	twice := once.Normalize()

	ids := make([]string, 0, len(once.Sections))
	for _, s := range once.Sections {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"z", "a", "b", "c"}, ids, "ties keep insertion order")
	assert.Equal(t, once, twice)
	assert.Equal(t, "modern", once.TemplateConfig.ActiveTemplate)
	assert.NotNil(t, once.SectionData)
	assert.Equal(t, "c", cfg.Sections[0].ID, "input must not be reordered in place")
}

func TestNormalize_EmptyTemplateFallsBackToDefault(t *testing.T) {
	t.Parallel()

	out := HomepageConfig{}.Normalize()
	assert.Equal(t, DefaultTemplateConfig(), out.TemplateConfig)
	assert.NotNil(t, out.Sections)
}

func TestDataFor_FallsBackToTypeDefault(t *testing.T) {
	t.Parallel()

	cfg := DefaultHomepageConfig()
	cfg.SectionData["about"] = SectionData{"title": "Who we are"}

	assert.Equal(t, "Who we are", cfg.DataFor("about")["title"])
	assert.Equal(t, DefaultSectionData(SectionHero), cfg.DataFor("hero"))
	assert.Equal(t, SectionData{}, cfg.DataFor("missing"))
}

func TestClone_DoesNotShareNestedPayloads(t *testing.T) {
	t.Parallel()

	cfg := DefaultHomepageConfig()
	cfg.SectionData["trusted-clients"] = SectionData{"clients": []any{map[string]any{"name": "Acme"}}}

	cloned := cfg.Clone()
	clients := cloned.SectionData["trusted-clients"]["clients"].([]any)
	clients[0].(map[string]any)["name"] = "Globex"
	cloned.Sections[0].Title = "Changed"

	original := cfg.SectionData["trusted-clients"]["clients"].([]any)
	assert.Equal(t, "Acme", original[0].(map[string]any)["name"])
	assert.Equal(t, "Hero", cfg.Sections[0].Title)
}

func TestVisibleSections(t *testing.T) {
	t.Parallel()

	cfg := HomepageConfig{Sections: []Section{
		{ID: "b", Type: SectionAbout, Visible: true, Order: 5},
		{ID: "a", Type: SectionHero, Visible: false, Order: 0},
		{ID: "c", Type: SectionFAQ, Visible: true, Order: 1},
	}}

	visible := cfg.VisibleSections()
	require.Len(t, visible, 2)
	assert.Equal(t, "c", visible[0].ID)
	assert.Equal(t, "b", visible[1].ID)
	assert.Len(t, cfg.Sections, 3)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	component := "PromoBanner"
	cases := []struct {
		name    string
		cfg     HomepageConfig
		wantErr error
	}{
		{
			name: "duplicate ids",
			cfg: HomepageConfig{Sections: []Section{
				{ID: "hero", Type: SectionHero},
				{ID: "hero", Type: SectionHero},
			}},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "empty id",
			cfg:     HomepageConfig{Sections: []Section{{ID: " ", Type: SectionHero}}},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unknown type",
			cfg:     HomepageConfig{Sections: []Section{{ID: "x", Type: "carousel"}}},
			wantErr: ErrUnknownSectionType,
		},
		{
			name:    "custom component on built-in",
			cfg:     HomepageConfig{Sections: []Section{{ID: "hero", Type: SectionHero, CustomComponent: &component}}},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unknown template",
			cfg:     HomepageConfig{TemplateConfig: TemplateConfig{ActiveTemplate: "neon"}},
			wantErr: ErrUnknownTemplate,
		},
		{
			name: "valid custom",
			cfg: HomepageConfig{
				Sections:       []Section{{ID: "custom-1", Type: SectionCustom, CustomComponent: &component}},
				TemplateConfig: TemplateConfig{ActiveTemplate: "bold"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
		})
	}
}

func TestNormalizeSectionType(t *testing.T) {
	cases := map[string]SectionType{
		"hero":            SectionHero,
		"TrustedClients":  SectionTrustedClients,
		"trusted_clients": SectionTrustedClients,
		"External Link":   SectionExternalLink,
		"about us":        SectionAbout,
		"FAQ":             SectionFAQ,
		"carousel":        SectionType("carousel"),
	}

	for input, expected := range cases {
		assert.Equal(t, expected, NormalizeSectionType(input), "input %q", input)
	}
	assert.False(t, SectionType("carousel").Valid())
	assert.True(t, SectionCustom.Valid())
	assert.False(t, SectionCustom.BuiltIn())
	assert.False(t, SectionExternalLink.BuiltIn())
}
