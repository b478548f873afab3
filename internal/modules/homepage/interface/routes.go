package transport

import (
	"github.com/labstack/echo/v4"
)

// Routes bundles the handlers mounted by RegisterRoutes.
type Routes struct {
	Read      *ReadHandlers
	Admin     *AdminHandlers
	AdminAuth echo.MiddlewareFunc
	Websocket echo.HandlerFunc
}

func RegisterRoutes(e *echo.Echo, r Routes) {
	if r.AdminAuth == nil {
		r.AdminAuth = AdminAuth(nil, "")
	}
	e.GET("/healthz", r.Read.Healthz)

	api := e.Group("/api/v1/homepage")
	api.GET("", r.Read.Homepage)
	api.GET("/sections", r.Read.Sections)
	api.GET("/section-data", r.Read.SectionData)
	api.GET("/template", r.Read.Template)

	if r.Admin != nil {
		api.PUT("", r.Admin.ReplaceHomepage, r.AdminAuth)
		api.PUT("/sections", r.Admin.ReplaceSections, r.AdminAuth)
		api.PUT("/section-data", r.Admin.ReplaceSectionData, r.AdminAuth)
		api.PUT("/template", r.Admin.ReplaceTemplate, r.AdminAuth)

		admin := e.Group("/api/v1/admin/homepage", r.AdminAuth)
		admin.POST("/sections", r.Admin.AddSection)
		admin.PUT("/sections/order", r.Admin.ReorderSections)
		admin.PATCH("/sections/:id", r.Admin.UpdateSection)
		admin.DELETE("/sections/:id", r.Admin.RemoveSection)
		admin.PUT("/sections/:id/data", r.Admin.UpdateSectionData)
		admin.PUT("/template", r.Admin.SetTemplate)
	}

	if r.Websocket != nil {
		e.GET("/ws/homepage", r.Websocket)
	}
}
