package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"landingCms/internal/modules/homepage/application/port"
	"landingCms/internal/modules/homepage/domain"
)

const (
	RESTAdapterName = "rest-api"

	sectionsPath    = "/api/v1/homepage/sections"
	sectionDataPath = "/api/v1/homepage/section-data"
	templatePath    = "/api/v1/homepage/template"
)

// RESTAdapter stores the aggregate behind the homepage endpoints of a remote API.
type RESTAdapter struct {
	rest    *RESTClient
	timeout time.Duration
}

func NewRESTAdapter(baseURL, token string, timeout time.Duration, client *http.Client) *RESTAdapter {
	return &RESTAdapter{rest: NewRESTClient(baseURL, token, timeout, client), timeout: timeoutOrDefault(timeout)}
}

func (a *RESTAdapter) Name() string { return RESTAdapterName }

func (a *RESTAdapter) ReadSections(ctx context.Context) ([]domain.Section, error) {
	payload, err := a.get(ctx, "read sections", sectionsPath)
	if err != nil {
		return nil, err
	}
	sections, err := sectionsFromPayload(payload)
	return sections, port.NewAdapterError(RESTAdapterName, "read sections", err)
}

func (a *RESTAdapter) ReadSectionData(ctx context.Context) (domain.SectionDataMap, error) {
	payload, err := a.get(ctx, "read section data", sectionDataPath)
	if err != nil {
		return nil, err
	}
	data, err := sectionDataFromPayload(payload)
	return data, port.NewAdapterError(RESTAdapterName, "read section data", err)
}

func (a *RESTAdapter) ReadTemplateConfig(ctx context.Context) (domain.TemplateConfig, error) {
	payload, err := a.get(ctx, "read template", templatePath)
	if err != nil {
		return domain.TemplateConfig{}, err
	}
	template, err := templateFromPayload(payload)
	return template, port.NewAdapterError(RESTAdapterName, "read template", err)
}

func (a *RESTAdapter) WriteSections(ctx context.Context, sections []domain.Section) error {
	if sections == nil {
		sections = []domain.Section{}
	}
	return a.put(ctx, "write sections", sectionsPath, sections)
}

func (a *RESTAdapter) WriteSectionData(ctx context.Context, data domain.SectionDataMap) error {
	if data == nil {
		data = domain.SectionDataMap{}
	}
	return a.put(ctx, "write section data", sectionDataPath, data)
}

func (a *RESTAdapter) WriteTemplateConfig(ctx context.Context, template domain.TemplateConfig) error {
	return a.put(ctx, "write template", templatePath, template)
}

func (a *RESTAdapter) get(ctx context.Context, op, path string) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := a.rest.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, port.NewAdapterError(RESTAdapterName, op, errors.Join(port.ErrAdapterUnavailable, err))
	}
	slog.Debug("homepage api request", slog.String("method", req.Method), slog.String("url", req.URL.String()))

	res, err := a.rest.Do(req)
	if err != nil {
		return nil, port.NewAdapterError(RESTAdapterName, op, fmt.Errorf("%w: %v", port.ErrAdapterUnavailable, err))
	}
	defer res.Body.Close()
	slog.Debug("homepage api response", slog.Int("status", res.StatusCode), slog.String("url", req.URL.String()))

	if err := classifyStatus(res, false); err != nil {
		return nil, port.NewAdapterError(RESTAdapterName, op, err)
	}
	payload, err := decodePayload(res.Body)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %v", port.ErrAdapterUnavailable, ctx.Err())
		}
		return nil, port.NewAdapterError(RESTAdapterName, op, err)
	}
	if payload == nil {
		// a null body (or {"data":null}) holds nothing, like a 204.
		return nil, port.NewAdapterError(RESTAdapterName, op, port.ErrNotFound)
	}
	return payload, nil
}

func (a *RESTAdapter) put(ctx context.Context, op, path string, body any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return port.NewAdapterError(RESTAdapterName, op, fmt.Errorf("%w: %v", port.ErrRejected, err))
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := a.rest.NewRequest(ctx, http.MethodPut, path, bytes.NewReader(encoded))
	if err != nil {
		return port.NewAdapterError(RESTAdapterName, op, errors.Join(port.ErrAdapterUnavailable, err))
	}
	slog.Debug("homepage api request", slog.String("method", req.Method), slog.String("url", req.URL.String()), slog.Int("bytes", len(encoded)))

	res, err := a.rest.Do(req)
	if err != nil {
		return port.NewAdapterError(RESTAdapterName, op, fmt.Errorf("%w: %v", port.ErrAdapterUnavailable, err))
	}
	defer res.Body.Close()

	// classify first: a rejection carries its reason in the body.
	err = classifyStatus(res, true)
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
	return port.NewAdapterError(RESTAdapterName, op, err)
}

// classifyStatus maps HTTP status codes onto the adapter error taxonomy.
func classifyStatus(res *http.Response, write bool) error {
	switch code := res.StatusCode; {
	case code >= 200 && code < 300:
		if !write && code == http.StatusNoContent {
			return port.ErrNotFound
		}
		return nil
	case code == http.StatusNotFound && !write:
		return port.ErrNotFound
	case code == http.StatusBadRequest, code == http.StatusConflict, code == http.StatusUnprocessableEntity:
		if write {
			return fmt.Errorf("%w: status %d%s", port.ErrRejected, code, responseDetail(res))
		}
		return fmt.Errorf("%w: status %d%s", port.ErrMalformed, code, responseDetail(res))
	default:
		// 401/403 mean the configured token is wrong; like 5xx, the next adapter may still serve.
		return fmt.Errorf("%w: status %d%s", port.ErrAdapterUnavailable, code, responseDetail(res))
	}
}

func responseDetail(res *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		return ""
	}
	return ": " + detail
}

var _ port.ConfigAdapter = (*RESTAdapter)(nil)
