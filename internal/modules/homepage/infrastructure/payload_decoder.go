package infrastructure

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"landingCms/internal/modules/homepage/application/port"
	"landingCms/internal/modules/homepage/domain"
	"landingCms/internal/shared/normalization"
)

// decodePayload reads one JSON document and peels the {"data": ...} envelope some
// backends wrap their responses in.
func decodePayload(body io.Reader) (any, error) {
	var payload any
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", port.ErrMalformed, err)
	}
	slog.Debug("homepage payload decoded", slog.String("type", fmt.Sprintf("%T", payload)))
	if typed, ok := payload.(map[string]any); ok && isEnvelope(typed) {
		return typed["data"], nil
	}
	return payload, nil
}

var envelopeKeys = map[string]struct{}{"data": {}, "success": {}, "message": {}, "status": {}, "meta": {}}

func isEnvelope(payload map[string]any) bool {
	if _, ok := payload["data"]; !ok {
		return false
	}
	for key := range payload {
		if _, ok := envelopeKeys[key]; !ok {
			return false
		}
	}
	return true
}

// sectionsFromPayload accepts a bare list or an object holding it under "sections" or "items".
func sectionsFromPayload(payload any) ([]domain.Section, error) {
	items := normalization.AsInterfaceSlice(payload)
	if items == nil {
		if typed, ok := payload.(map[string]any); ok {
			items = normalization.AsInterfaceSlice(typed["sections"])
			if items == nil {
				items = normalization.AsInterfaceSlice(typed["items"])
			}
		}
	}
	if items == nil {
		return nil, fmt.Errorf("%w: sections payload is %T, want a list", port.ErrMalformed, payload)
	}

	sections := make([]domain.Section, 0, len(items))
	for i, item := range items {
		section, err := sectionFromMap(normalization.MapFromPayload(item))
		if err != nil {
			return nil, fmt.Errorf("%w: section %d: %v", port.ErrMalformed, i, err)
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func sectionFromMap(raw map[string]any) (domain.Section, error) {
	if raw == nil {
		return domain.Section{}, fmt.Errorf("not an object")
	}
	id := normalization.AsString(raw["id"])
	if id == "" {
		return domain.Section{}, fmt.Errorf("missing id")
	}
	kind := domain.NormalizeSectionType(normalization.AsString(raw["type"]))
	if !kind.Valid() {
		return domain.Section{}, fmt.Errorf("%w %q", domain.ErrUnknownSectionType, raw["type"])
	}
	order, ok := normalization.AsInt(raw["order"])
	if !ok {
		order, _ = normalization.AsInt(raw["sortOrder"])
	}
	section := domain.Section{
		ID:      id,
		Type:    kind,
		Title:   normalization.AsString(raw["title"]),
		Visible: normalization.AsBool(raw["visible"], true),
		Order:   order,
	}
	if component := normalization.AsString(raw["customComponent"]); component != "" {
		section.CustomComponent = &component
	}
	return section, nil
}

// sectionDataFromPayload accepts an object keyed by section id whose values are objects.
func sectionDataFromPayload(payload any) (domain.SectionDataMap, error) {
	raw, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: section data payload is %T, want an object", port.ErrMalformed, payload)
	}
	if nested, ok := raw["sectionData"].(map[string]any); ok && len(raw) == 1 {
		raw = nested
	}
	data := make(domain.SectionDataMap, len(raw))
	for id, value := range raw {
		entry, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: payload for %q is %T, want an object", port.ErrMalformed, id, value)
		}
		data[id] = domain.SectionData(entry)
	}
	return data, nil
}

func templateFromPayload(payload any) (domain.TemplateConfig, error) {
	raw, ok := payload.(map[string]any)
	if !ok {
		return domain.TemplateConfig{}, fmt.Errorf("%w: template payload is %T, want an object", port.ErrMalformed, payload)
	}
	if nested, ok := raw["templateConfig"].(map[string]any); ok {
		raw = nested
	}
	name := domain.NormalizeTemplateName(normalization.AsString(raw["activeTemplate"]))
	if name == "" {
		return domain.TemplateConfig{}, port.ErrNotFound
	}
	if !domain.KnownTemplate(name) {
		return domain.TemplateConfig{}, fmt.Errorf("%w: %w %q", port.ErrMalformed, domain.ErrUnknownTemplate, name)
	}
	return domain.TemplateConfig{ActiveTemplate: name}, nil
}
