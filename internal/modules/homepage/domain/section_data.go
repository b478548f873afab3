package domain

// SectionData is the free-form payload rendered by a section. Its shape depends
// on the section type; the store never interprets it.
type SectionData map[string]any

// SectionDataMap holds payloads keyed by section id.
type SectionDataMap map[string]SectionData

// Clone returns a deep copy of the payload.
func (d SectionData) Clone() SectionData {
	if d == nil {
		return nil
	}
	out := make(SectionData, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// Clone returns a deep copy of every payload in the map.
func (m SectionDataMap) Clone() SectionDataMap {
	if m == nil {
		return nil
	}
	out := make(SectionDataMap, len(m))
	for id, data := range m {
		out[id] = data.Clone()
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = cloneValue(v)
		}
		return out
	case SectionData:
		return typed.Clone()
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = cloneValue(v)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(typed))
		for i, v := range typed {
			out[i], _ = cloneValue(v).(map[string]any)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}

// DefaultSectionData returns the built-in content shown for a section that has
// no stored payload yet.
func DefaultSectionData(kind SectionType) SectionData {
	switch kind {
	case SectionHero:
		return SectionData{
			"title":    "Welcome",
			"subtitle": "We help businesses grow with thoughtful digital products.",
			"ctaText":  "Get in touch",
			"ctaLink":  "#contact",
		}
	case SectionServices:
		return SectionData{"title": "Our Services", "subtitle": "", "items": []any{}}
	case SectionAbout:
		return SectionData{"title": "About Us", "content": ""}
	case SectionTeam:
		return SectionData{"title": "Our Team", "members": []any{}}
	case SectionTestimonials:
		return SectionData{"title": "What our clients say", "items": []any{}}
	case SectionFAQ:
		return SectionData{"title": "Frequently Asked Questions", "items": []any{}}
	case SectionContact:
		return SectionData{"title": "Contact Us", "email": "", "phone": "", "address": ""}
	case SectionTrustedClients:
		return SectionData{"title": "Trusted by", "clients": []any{}}
	case SectionExternalLink:
		return SectionData{"url": "", "label": ""}
	default:
		return SectionData{}
	}
}
