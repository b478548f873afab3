package transport

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"landingCms/internal/modules/homepage/application/usecase"
	"landingCms/internal/modules/homepage/domain"
	"landingCms/internal/shared/auth"
)

const claimsKey = "homepage.claims"

// AdminAuth requires a bearer token carrying role. A nil validator disables every
// route it guards.
func AdminAuth(validator auth.TokenValidator, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if validator == nil {
				return httpError(errAdminDisabled)
			}
			token := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			claims, err := auth.Authorize(validator, token, role)
			if err != nil {
				slog.Warn("homepage admin rejected",
					slog.String("path", c.Path()),
					slog.String("ip", c.RealIP()),
					slog.Any("error", err),
				)
				return httpError(err)
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

func editorOf(c echo.Context) string {
	if claims, ok := c.Get(claimsKey).(*auth.Claims); ok {
		return claims.Subject
	}
	return ""
}

type AdminHandlers struct {
	editor *usecase.Editor
}

func NewAdminHandlers(editor *usecase.Editor) *AdminHandlers {
	return &AdminHandlers{editor: editor}
}

func logEdit(c echo.Context, action string, result usecase.CommitResult) {
	slog.Info("homepage edited",
		slog.String("action", action),
		slog.String("editor", editorOf(c)),
		slog.String("status", string(result.Status)),
	)
}

// normalizeSections accepts loosely formatted section types from editors.
func normalizeSections(sections []domain.Section) []domain.Section {
	for i := range sections {
		sections[i].Type = domain.NormalizeSectionType(string(sections[i].Type))
		sections[i].ID = strings.TrimSpace(sections[i].ID)
	}
	return sections
}

func (h *AdminHandlers) ReplaceHomepage(c echo.Context) error {
	var cfg domain.HomepageConfig
	if err := decodeBody(c, &cfg); err != nil {
		return httpError(err)
	}
	cfg.Sections = normalizeSections(cfg.Sections)
	result := h.editor.Commit(c.Request().Context(), cfg)
	logEdit(c, "replace", result)
	return writeCommit(c, result, nil)
}

func (h *AdminHandlers) ReplaceSections(c echo.Context) error {
	var sections []domain.Section
	if err := decodeBody(c, &sections); err != nil {
		return httpError(err)
	}
	result := h.editor.ReplaceSections(c.Request().Context(), normalizeSections(sections))
	logEdit(c, "replace-sections", result)
	return writeCommit(c, result, nil)
}

func (h *AdminHandlers) ReplaceSectionData(c echo.Context) error {
	var data domain.SectionDataMap
	if err := decodeBody(c, &data); err != nil {
		return httpError(err)
	}
	result := h.editor.ReplaceSectionData(c.Request().Context(), data)
	logEdit(c, "replace-section-data", result)
	return writeCommit(c, result, nil)
}

func (h *AdminHandlers) ReplaceTemplate(c echo.Context) error {
	var template domain.TemplateConfig
	if err := decodeBody(c, &template); err != nil {
		return httpError(err)
	}
	result := h.editor.ReplaceTemplate(c.Request().Context(), template)
	logEdit(c, "replace-template", result)
	return writeCommit(c, result, nil)
}

type addSectionRequest struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

func (h *AdminHandlers) AddSection(c echo.Context) error {
	var req addSectionRequest
	if err := decodeBody(c, &req); err != nil {
		return httpError(err)
	}
	result, section, err := h.editor.AddSection(c.Request().Context(), domain.NormalizeSectionType(req.Type), req.Title)
	if err != nil {
		return httpError(err)
	}
	logEdit(c, "add-section", result)
	return writeCommit(c, result, &section)
}

func (h *AdminHandlers) UpdateSection(c echo.Context) error {
	var patch domain.SectionPatch
	if err := decodeBody(c, &patch); err != nil {
		return httpError(err)
	}
	result, err := h.editor.UpdateSection(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return httpError(err)
	}
	logEdit(c, "update-section", result)
	return writeCommit(c, result, nil)
}

func (h *AdminHandlers) RemoveSection(c echo.Context) error {
	result, err := h.editor.RemoveSection(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	logEdit(c, "remove-section", result)
	return writeCommit(c, result, nil)
}

func (h *AdminHandlers) UpdateSectionData(c echo.Context) error {
	var data domain.SectionData
	if err := decodeBody(c, &data); err != nil {
		return httpError(err)
	}
	result, err := h.editor.UpdateSectionData(c.Request().Context(), c.Param("id"), data)
	if err != nil {
		return httpError(err)
	}
	logEdit(c, "update-section-data", result)
	return writeCommit(c, result, nil)
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

func (h *AdminHandlers) ReorderSections(c echo.Context) error {
	var req reorderRequest
	if err := decodeBody(c, &req); err != nil {
		return httpError(err)
	}
	result, err := h.editor.ReorderSections(c.Request().Context(), req.IDs)
	if err != nil {
		return httpError(err)
	}
	logEdit(c, "reorder-sections", result)
	return writeCommit(c, result, nil)
}

type setTemplateRequest struct {
	ActiveTemplate string `json:"activeTemplate"`
	Template       string `json:"template"`
}

func (h *AdminHandlers) SetTemplate(c echo.Context) error {
	var req setTemplateRequest
	if err := decodeBody(c, &req); err != nil {
		return httpError(err)
	}
	name := req.ActiveTemplate
	if name == "" {
		name = req.Template
	}
	result, err := h.editor.SetTemplate(c.Request().Context(), name)
	if err != nil {
		return httpError(err)
	}
	logEdit(c, "set-template", result)
	return writeCommit(c, result, nil)
}
