package domain

import (
	"fmt"
	"sort"
	"strings"
)

// HomepageConfig is the aggregate read and written as one unit.
type HomepageConfig struct {
	Sections       []Section      `json:"sections"`
	SectionData    SectionDataMap `json:"sectionData"`
	TemplateConfig TemplateConfig `json:"templateConfig"`
}

// DefaultHomepageConfig returns the configuration served when no storage holds one:
// every built-in section, visible, ordered by its position.
func DefaultHomepageConfig() HomepageConfig {
	sections := make([]Section, 0, len(builtinSections))
	for i, b := range builtinSections {
		sections = append(sections, Section{
			ID:      string(b.kind),
			Type:    b.kind,
			Title:   b.title,
			Visible: true,
			Order:   i,
		})
	}
	return HomepageConfig{
		Sections:       sections,
		SectionData:    SectionDataMap{},
		TemplateConfig: DefaultTemplateConfig(),
	}
}

// DefaultSections returns the built-in section list of DefaultHomepageConfig.
func DefaultSections() []Section {
	return DefaultHomepageConfig().Sections
}

// Clone returns a deep copy; operations never share backing arrays or payload maps with their input.
func (c HomepageConfig) Clone() HomepageConfig {
	out := HomepageConfig{TemplateConfig: c.TemplateConfig}
	if c.Sections != nil {
		out.Sections = make([]Section, len(c.Sections))
		for i, s := range c.Sections {
			out.Sections[i] = s.clone()
		}
	}
	out.SectionData = c.SectionData.Clone()
	return out
}

// Normalize returns the canonical form exposed to readers: sections stably sorted by
// order (ties keep their relative position), a non-nil payload map and a template
// name. Normalizing twice yields the same value.
func (c HomepageConfig) Normalize() HomepageConfig {
	out := c.Clone()
	if out.Sections == nil {
		out.Sections = []Section{}
	}
	SortSections(out.Sections)
	if out.SectionData == nil {
		out.SectionData = SectionDataMap{}
	}
	out.TemplateConfig.ActiveTemplate = NormalizeTemplateName(out.TemplateConfig.ActiveTemplate)
	if out.TemplateConfig.ActiveTemplate == "" {
		out.TemplateConfig = DefaultTemplateConfig()
	}
	return out
}

// SortSections sorts in place by order; equal orders keep their relative position.
func SortSections(sections []Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})
}

// VisibleSections returns the visible sections in render order.
func (c HomepageConfig) VisibleSections() []Section {
	sorted := make([]Section, len(c.Sections))
	copy(sorted, c.Sections)
	SortSections(sorted)
	visible := sorted[:0]
	for _, s := range sorted {
		if s.Visible {
			visible = append(visible, s)
		}
	}
	return visible
}

// Section looks up a section by id.
func (c HomepageConfig) Section(id string) (Section, bool) {
	for _, s := range c.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// DataFor returns the stored payload for id or, when absent, the default content of the
// section's type. A missing payload is never an error.
func (c HomepageConfig) DataFor(id string) SectionData {
	if data, ok := c.SectionData[id]; ok && data != nil {
		return data.Clone()
	}
	if s, ok := c.Section(id); ok {
		return DefaultSectionData(s.Type)
	}
	return SectionData{}
}

// MaxOrder returns the largest order in the list, or -1 for an empty list.
func (c HomepageConfig) MaxOrder() int {
	max := -1
	for _, s := range c.Sections {
		if s.Order > max {
			max = s.Order
		}
	}
	return max
}

// Validate checks the invariants every stored aggregate must satisfy.
func (c HomepageConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.Sections))
	for i, s := range c.Sections {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return fmt.Errorf("%w: section %d has an empty id", ErrInvalidConfig, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate section id %q", ErrInvalidConfig, id)
		}
		seen[id] = struct{}{}
		if !s.Type.Valid() {
			return fmt.Errorf("%w: section %q: %w %q", ErrInvalidConfig, id, ErrUnknownSectionType, s.Type)
		}
		if s.CustomComponent != nil && s.Type != SectionCustom {
			return fmt.Errorf("%w: section %q: customComponent is only allowed on custom sections", ErrInvalidConfig, id)
		}
	}
	if name := c.TemplateConfig.ActiveTemplate; name != "" && !KnownTemplate(name) {
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnknownTemplate, name)
	}
	return nil
}
