package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"landingCms/internal/modules/homepage/application/usecase"
	"landingCms/internal/modules/homepage/domain"
	"landingCms/internal/shared/auth"
	"landingCms/internal/shared/httputil"
)

const maxBodyBytes = 1 << 20

var errorMapper = httputil.NewErrorMapper().
	WithMapping(domain.ErrSectionNotFound, http.StatusNotFound, "section not found").
	WithMapping(domain.ErrUnknownSectionType, http.StatusUnprocessableEntity, "unknown section type").
	WithMapping(domain.ErrUnknownTemplate, http.StatusUnprocessableEntity, "unknown template").
	WithMapping(domain.ErrInvalidSection, http.StatusUnprocessableEntity, "invalid section").
	WithMapping(domain.ErrInvalidConfig, http.StatusUnprocessableEntity, "invalid homepage configuration").
	WithMapping(errInvalidBody, http.StatusBadRequest, "invalid request body").
	WithMapping(auth.ErrMissingToken, http.StatusUnauthorized, "missing token").
	WithMapping(auth.ErrInvalidToken, http.StatusUnauthorized, "invalid token").
	WithMapping(auth.ErrForbidden, http.StatusForbidden, "forbidden").
	WithMapping(errAdminDisabled, http.StatusServiceUnavailable, "admin api disabled")

var (
	errInvalidBody   = errors.New("invalid request body")
	errAdminDisabled = errors.New("admin api disabled")
)

func httpError(err error) *echo.HTTPError {
	info := errorMapper.Map(err)
	return echo.NewHTTPError(info.Status, info.Message).SetInternal(err)
}

// decodeBody reads one JSON document into dst.
func decodeBody(c echo.Context, dst any) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.Join(errInvalidBody, errors.New("empty body"))
		}
		return errors.Join(errInvalidBody, err)
	}
	return nil
}

// CommitResponse is the body of every write endpoint.
type CommitResponse struct {
	usecase.CommitResult
	Section *domain.Section `json:"section,omitempty"`
}

func commitStatus(result usecase.CommitResult) int {
	switch result.Status {
	case usecase.CommitSucceeded:
		return http.StatusOK
	case usecase.CommitPartial:
		return http.StatusMultiStatus
	case usecase.CommitRejected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusServiceUnavailable
	}
}

func writeCommit(c echo.Context, result usecase.CommitResult, section *domain.Section) error {
	if result.Errors == nil {
		result.Errors = []usecase.AdapterFailure{}
	}
	return c.JSON(commitStatus(result), CommitResponse{CommitResult: result, Section: section})
}
