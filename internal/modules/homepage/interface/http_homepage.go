package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"landingCms/internal/modules/homepage/application/usecase"
)

const (
	HeaderSource = "X-Homepage-Source"
	HeaderStale  = "X-Homepage-Stale"
	HeaderIssues = "X-Homepage-Issues"
)

// HomepageReader is the read side of the resolver.
type HomepageReader interface {
	ResolveDetailed(ctx context.Context) usecase.Resolution
	Current() (usecase.Resolution, bool)
}

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ReadHandlers struct {
	reader  HomepageReader
	pingers map[string]Pinger
	clients func() int
}

// NewReadHandlers serves the public read endpoints. pingers are probed by /healthz;
// clients, when set, reports the number of connected live views.
func NewReadHandlers(reader HomepageReader, pingers map[string]Pinger, clients func() int) *ReadHandlers {
	return &ReadHandlers{reader: reader, pingers: pingers, clients: clients}
}

func (h *ReadHandlers) resolve(c echo.Context) usecase.Resolution {
	res := h.reader.ResolveDetailed(c.Request().Context())
	header := c.Response().Header()
	header.Set(HeaderSource, res.Source)
	header.Set(HeaderStale, strconv.FormatBool(res.Stale))
	if len(res.Issues) > 0 {
		header.Set(HeaderIssues, strconv.Itoa(len(res.Issues)))
		for _, issue := range res.Issues {
			slog.Debug("homepage served with issue", slog.String("source", res.Source), slog.Any("error", issue))
		}
	}
	return res
}

func (h *ReadHandlers) Homepage(c echo.Context) error {
	return c.JSON(http.StatusOK, h.resolve(c).Config)
}

func (h *ReadHandlers) Sections(c echo.Context) error {
	return c.JSON(http.StatusOK, h.resolve(c).Config.Sections)
}

func (h *ReadHandlers) SectionData(c echo.Context) error {
	return c.JSON(http.StatusOK, h.resolve(c).Config.SectionData)
}

func (h *ReadHandlers) Template(c echo.Context) error {
	return c.JSON(http.StatusOK, h.resolve(c).Config.TemplateConfig)
}

type healthReport struct {
	Status     string            `json:"status"`
	Source     string            `json:"source,omitempty"`
	Stale      bool              `json:"stale"`
	ResolvedAt *time.Time        `json:"resolvedAt,omitempty"`
	Backends   map[string]string `json:"backends,omitempty"`
	LiveViews  *int              `json:"liveViews,omitempty"`
}

// Healthz is always 200 while the process serves reads; degraded backends are
// reported in the body because reads fall back to the cache and the default.
func (h *ReadHandlers) Healthz(c echo.Context) error {
	report := healthReport{Status: "ok"}
	if res, ok := h.reader.Current(); ok {
		report.Source = res.Source
		report.Stale = res.Stale
		resolvedAt := res.ResolvedAt
		report.ResolvedAt = &resolvedAt
	}
	if len(h.pingers) > 0 {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		report.Backends = make(map[string]string, len(h.pingers))
		for name, pinger := range h.pingers {
			if err := pinger.Ping(ctx); err != nil {
				report.Backends[name] = err.Error()
				report.Status = "degraded"
				continue
			}
			report.Backends[name] = "ok"
		}
	}
	if h.clients != nil {
		n := h.clients()
		report.LiveViews = &n
	}
	return c.JSON(http.StatusOK, report)
}
