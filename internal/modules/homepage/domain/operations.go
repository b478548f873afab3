package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// newID is swapped in tests to force collisions.
var newID = uuid.NewString

const maxIDAttempts = 32

// SectionPatch carries the fields UpdateSection merges into a section. Nil fields are left untouched.
type SectionPatch struct {
	Title           *string `json:"title,omitempty"`
	Visible         *bool   `json:"visible,omitempty"`
	Order           *int    `json:"order,omitempty"`
	CustomComponent *string `json:"customComponent,omitempty"`
}

// AddSection appends a visible section of the given type after every existing one.
// The returned config is a new value; cfg is not modified.
func AddSection(cfg HomepageConfig, kind SectionType, title string) (HomepageConfig, Section, error) {
	if !kind.Valid() {
		return cfg, Section{}, fmt.Errorf("%w %q", ErrUnknownSectionType, kind)
	}
	id, err := uniqueSectionID(cfg, kind)
	if err != nil {
		return cfg, Section{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitle(kind)
	}
	section := Section{
		ID:      id,
		Type:    kind,
		Title:   title,
		Visible: true,
		Order:   cfg.MaxOrder() + 1,
	}
	out := cfg.Clone()
	out.Sections = append(out.Sections, section)
	return out, section.clone(), nil
}

// RemoveSection hides built-in sections and deletes everything else together with its payload.
func RemoveSection(cfg HomepageConfig, id string) (HomepageConfig, error) {
	idx := indexOf(cfg.Sections, id)
	if idx < 0 {
		return cfg, fmt.Errorf("%w: %q", ErrSectionNotFound, id)
	}
	out := cfg.Clone()
	if out.Sections[idx].Type.BuiltIn() {
		out.Sections[idx].Visible = false
		return out, nil
	}
	out.Sections = append(out.Sections[:idx], out.Sections[idx+1:]...)
	delete(out.SectionData, id)
	return out, nil
}

// ReorderSections gives every listed id the order of its index in orderedIDs. Sections
// not listed keep their relative order and are placed after the listed ones. Unknown
// ids are skipped and a repeated id keeps its first position. Applying the same list
// twice yields the same orders as applying it once.
func ReorderSections(cfg HomepageConfig, orderedIDs []string) HomepageConfig {
	positions := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		if _, seen := positions[id]; seen {
			continue
		}
		positions[id] = i
	}

	out := cfg.Clone()
	rest := make([]Section, 0, len(out.Sections))
	for i := range out.Sections {
		if pos, ok := positions[out.Sections[i].ID]; ok {
			out.Sections[i].Order = pos
			continue
		}
		rest = append(rest, out.Sections[i])
	}
	SortSections(rest)
	next := len(orderedIDs)
	tail := make(map[string]int, len(rest))
	for _, s := range rest {
		tail[s.ID] = next
		next++
	}
	for i := range out.Sections {
		if order, ok := tail[out.Sections[i].ID]; ok {
			out.Sections[i].Order = order
		}
	}
	SortSections(out.Sections)
	return out
}

// UpdateSectionData replaces, without merging, the payload stored for id.
func UpdateSectionData(cfg HomepageConfig, id string, data SectionData) (HomepageConfig, error) {
	if indexOf(cfg.Sections, id) < 0 {
		return cfg, fmt.Errorf("%w: %q", ErrSectionNotFound, id)
	}
	out := cfg.Clone()
	if out.SectionData == nil {
		out.SectionData = SectionDataMap{}
	}
	replacement := data.Clone()
	if replacement == nil {
		replacement = SectionData{}
	}
	out.SectionData[id] = replacement
	return out, nil
}

// UpdateSection shallow-merges the non-nil patch fields into the section with the given id.
func UpdateSection(cfg HomepageConfig, id string, patch SectionPatch) (HomepageConfig, error) {
	idx := indexOf(cfg.Sections, id)
	if idx < 0 {
		return cfg, fmt.Errorf("%w: %q", ErrSectionNotFound, id)
	}
	out := cfg.Clone()
	section := &out.Sections[idx]
	if patch.CustomComponent != nil && section.Type != SectionCustom {
		return cfg, fmt.Errorf("%w: customComponent on %s section %q", ErrInvalidSection, section.Type, id)
	}
	if patch.Title != nil {
		section.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Visible != nil {
		section.Visible = *patch.Visible
	}
	if patch.Order != nil {
		section.Order = *patch.Order
	}
	if patch.CustomComponent != nil {
		component := strings.TrimSpace(*patch.CustomComponent)
		section.CustomComponent = &component
	}
	return out, nil
}

// SetTemplate selects the active rendering template.
func SetTemplate(cfg HomepageConfig, name string) (HomepageConfig, error) {
	normalized := NormalizeTemplateName(name)
	if !KnownTemplate(normalized) {
		return cfg, fmt.Errorf("%w %q", ErrUnknownTemplate, name)
	}
	out := cfg.Clone()
	out.TemplateConfig = TemplateConfig{ActiveTemplate: normalized}
	return out, nil
}

// RetainBuiltIns returns next with every built-in type it lacks appended as a hidden
// section after the last one. The section comes from prev when prev holds one of that
// type, otherwise from the defaults. next is not modified.
func RetainBuiltIns(prev, next []Section) ([]Section, error) {
	out := HomepageConfig{Sections: make([]Section, 0, len(next)+len(builtinSections))}
	present := make(map[SectionType]struct{}, len(builtinSections))
	for _, s := range next {
		out.Sections = append(out.Sections, s.clone())
		present[s.Type] = struct{}{}
	}

	defaults := DefaultSections()
	for i, b := range builtinSections {
		if _, ok := present[b.kind]; ok {
			continue
		}
		restored := defaults[i]
		for _, s := range prev {
			if s.Type == b.kind {
				restored = s.clone()
				break
			}
		}
		if indexOf(out.Sections, restored.ID) >= 0 {
			id, err := uniqueSectionID(out, b.kind)
			if err != nil {
				return nil, err
			}
			restored.ID = id
		}
		restored.Visible = false
		restored.Order = out.MaxOrder() + 1
		out.Sections = append(out.Sections, restored)
	}
	return out.Sections, nil
}

func uniqueSectionID(cfg HomepageConfig, kind SectionType) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		raw := strings.ReplaceAll(newID(), "-", "")
		if len(raw) > 8 {
			raw = raw[:8]
		}
		candidate := string(kind) + "-" + raw
		if indexOf(cfg.Sections, candidate) < 0 {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate a unique id for %s", ErrInvalidSection, kind)
}

func defaultTitle(kind SectionType) string {
	for _, b := range builtinSections {
		if b.kind == kind {
			return b.title
		}
	}
	switch kind {
	case SectionExternalLink:
		return "External Link"
	default:
		return "Custom Section"
	}
}

func indexOf(sections []Section, id string) int {
	for i, s := range sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}
