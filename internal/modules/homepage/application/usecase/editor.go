package usecase

import (
	"context"
	"sync"

	"landingCms/internal/modules/homepage/domain"
)

// Editor runs administrative edits: resolve the working copy, apply a pure section
// operation, commit the result. Edits are serialized so two requests never build on
// the same base.
type Editor struct {
	resolver  *Resolver
	persister *Persister
	mu        sync.Mutex
}

func NewEditor(resolver *Resolver, persister *Persister) *Editor {
	return &Editor{resolver: resolver, persister: persister}
}

// Current returns the aggregate edits are applied to.
func (e *Editor) Current(ctx context.Context) domain.HomepageConfig {
	return e.resolver.Resolve(ctx)
}

// Commit stores a complete aggregate built by the caller. Built-in sections it leaves
// out are kept, hidden.
func (e *Editor) Commit(ctx context.Context, cfg domain.HomepageConfig) CommitResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	sections, err := domain.RetainBuiltIns(e.resolver.Resolve(ctx).Sections, cfg.Sections)
	if err != nil {
		return rejectedCommit(cfg.Normalize(), "replace", err)
	}
	cfg.Sections = sections
	return e.persister.CommitAs(ctx, cfg, "replace")
}

func (e *Editor) AddSection(ctx context.Context, kind domain.SectionType, title string) (CommitResult, domain.Section, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, added, err := domain.AddSection(e.resolver.Resolve(ctx), kind, title)
	if err != nil {
		return CommitResult{}, domain.Section{}, err
	}
	return e.persister.CommitAs(ctx, next, "add-section"), added, nil
}

func (e *Editor) RemoveSection(ctx context.Context, id string) (CommitResult, error) {
	return e.apply(ctx, "remove-section", func(cfg domain.HomepageConfig) (domain.HomepageConfig, error) {
		return domain.RemoveSection(cfg, id)
	})
}

func (e *Editor) ReorderSections(ctx context.Context, orderedIDs []string) (CommitResult, error) {
	return e.apply(ctx, "reorder-sections", func(cfg domain.HomepageConfig) (domain.HomepageConfig, error) {
		return domain.ReorderSections(cfg, orderedIDs), nil
	})
}

func (e *Editor) UpdateSection(ctx context.Context, id string, patch domain.SectionPatch) (CommitResult, error) {
	return e.apply(ctx, "update-section", func(cfg domain.HomepageConfig) (domain.HomepageConfig, error) {
		return domain.UpdateSection(cfg, id, patch)
	})
}

func (e *Editor) UpdateSectionData(ctx context.Context, id string, data domain.SectionData) (CommitResult, error) {
	return e.apply(ctx, "update-section-data", func(cfg domain.HomepageConfig) (domain.HomepageConfig, error) {
		return domain.UpdateSectionData(cfg, id, data)
	})
}

func (e *Editor) SetTemplate(ctx context.Context, name string) (CommitResult, error) {
	return e.apply(ctx, "set-template", func(cfg domain.HomepageConfig) (domain.HomepageConfig, error) {
		return domain.SetTemplate(cfg, name)
	})
}

// ReplaceSections swaps the section list and keeps the other groups. Built-in sections
// missing from the list are kept, hidden.
func (e *Editor) ReplaceSections(ctx context.Context, sections []domain.Section) CommitResult {
	result, err := e.apply(ctx, "replace-sections", func(cfg domain.HomepageConfig) (domain.HomepageConfig, error) {
		next, err := domain.RetainBuiltIns(cfg.Sections, sections)
		if err != nil {
			return cfg, err
		}
		cfg.Sections = next
		return cfg, nil
	})
	if err != nil {
		return rejectedCommit(domain.HomepageConfig{Sections: sections}.Normalize(), "replace-sections", err)
	}
	return result
}

// ReplaceSectionData swaps the payload map and keeps the other groups.
func (e *Editor) ReplaceSectionData(ctx context.Context, data domain.SectionDataMap) CommitResult {
	result, _ := e.apply(ctx, "replace-section-data", func(cfg domain.HomepageConfig) (domain.HomepageConfig, error) {
		cfg.SectionData = data
		return cfg, nil
	})
	return result
}

// ReplaceTemplate swaps the template selection and keeps the other groups.
func (e *Editor) ReplaceTemplate(ctx context.Context, template domain.TemplateConfig) CommitResult {
	result, _ := e.apply(ctx, "replace-template", func(cfg domain.HomepageConfig) (domain.HomepageConfig, error) {
		cfg.TemplateConfig = template
		return cfg, nil
	})
	return result
}

func (e *Editor) apply(ctx context.Context, reason string, op func(domain.HomepageConfig) (domain.HomepageConfig, error)) (CommitResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := op(e.resolver.Resolve(ctx))
	if err != nil {
		return CommitResult{}, err
	}
	return e.persister.CommitAs(ctx, next, reason), nil
}
