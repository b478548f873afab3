package domain

import (
	"landingCms/internal/shared/normalization"
)

// SectionType is the closed set of structural slots a homepage can hold.
type SectionType string

const (
	SectionHero           SectionType = "hero"
	SectionServices       SectionType = "services"
	SectionAbout          SectionType = "about"
	SectionTeam           SectionType = "team"
	SectionTestimonials   SectionType = "testimonials"
	SectionFAQ            SectionType = "faq"
	SectionContact        SectionType = "contact"
	SectionTrustedClients SectionType = "trusted-clients"
	SectionCustom         SectionType = "custom"
	SectionExternalLink   SectionType = "external-link"
)

// builtinSections lists the structural sections in their default render order.
var builtinSections = []struct {
	kind  SectionType
	title string
}{
	{SectionHero, "Hero"},
	{SectionServices, "Services"},
	{SectionAbout, "About Us"},
	{SectionTeam, "Team"},
	{SectionTestimonials, "Testimonials"},
	{SectionFAQ, "FAQ"},
	{SectionContact, "Contact"},
	{SectionTrustedClients, "Trusted Clients"},
}

var sectionTypeAliases = map[string]string{
	"hero":            string(SectionHero),
	"banner":          string(SectionHero),
	"services":        string(SectionServices),
	"service":         string(SectionServices),
	"about":           string(SectionAbout),
	"about-us":        string(SectionAbout),
	"team":            string(SectionTeam),
	"testimonials":    string(SectionTestimonials),
	"testimonial":     string(SectionTestimonials),
	"faq":             string(SectionFAQ),
	"faqs":            string(SectionFAQ),
	"contact":         string(SectionContact),
	"trusted-clients": string(SectionTrustedClients),
	"trustedclients":  string(SectionTrustedClients),
	"clients":         string(SectionTrustedClients),
	"custom":          string(SectionCustom),
	"external-link":   string(SectionExternalLink),
	"externallink":    string(SectionExternalLink),
	"link":            string(SectionExternalLink),
}

// NormalizeSectionType maps loosely formatted type names onto the canonical tag.
// Unknown names come back slugged; use Valid to reject them.
func NormalizeSectionType(raw string) SectionType {
	return SectionType(normalization.Canonical(raw, sectionTypeAliases))
}

// Valid reports whether t is one of the known section types.
func (t SectionType) Valid() bool {
	switch t {
	case SectionHero, SectionServices, SectionAbout, SectionTeam, SectionTestimonials,
		SectionFAQ, SectionContact, SectionTrustedClients, SectionCustom, SectionExternalLink:
		return true
	}
	return false
}

// BuiltIn reports whether t is one of the structural types the product ships with.
// Built-in sections are hidden instead of deleted.
func (t SectionType) BuiltIn() bool {
	for _, b := range builtinSections {
		if b.kind == t {
			return true
		}
	}
	return false
}

// BuiltInSectionTypes returns the built-in types in default render order.
func BuiltInSectionTypes() []SectionType {
	out := make([]SectionType, 0, len(builtinSections))
	for _, b := range builtinSections {
		out = append(out, b.kind)
	}
	return out
}

// Section is one structural slot of the homepage.
type Section struct {
	ID              string      `json:"id"`
	Type            SectionType `json:"type"`
	Title           string      `json:"title"`
	Visible         bool        `json:"visible"`
	Order           int         `json:"order"`
	CustomComponent *string     `json:"customComponent,omitempty"`
}

func (s Section) clone() Section {
	if s.CustomComponent != nil {
		component := *s.CustomComponent
		s.CustomComponent = &component
	}
	return s
}
