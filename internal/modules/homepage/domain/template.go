package domain

import "strings"

// DefaultTemplate is the rendering template used until an administrator picks another one.
const DefaultTemplate = "default"

var knownTemplates = map[string]struct{}{
	DefaultTemplate: {},
	"modern":        {},
	"classic":       {},
	"minimal":       {},
	"bold":          {},
}

// TemplateConfig selects the active rendering template.
type TemplateConfig struct {
	ActiveTemplate string `json:"activeTemplate"`
}

// DefaultTemplateConfig is substituted whenever no template selection is stored.
func DefaultTemplateConfig() TemplateConfig {
	return TemplateConfig{ActiveTemplate: DefaultTemplate}
}

// NormalizeTemplateName lower-cases and trims a template name.
func NormalizeTemplateName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// KnownTemplate reports whether name is a template the renderer ships.
func KnownTemplate(name string) bool {
	_, ok := knownTemplates[NormalizeTemplateName(name)]
	return ok
}
