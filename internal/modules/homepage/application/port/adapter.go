package port

import (
	"context"
	"errors"
	"fmt"

	"landingCms/internal/modules/homepage/domain"
)

var (
	// ErrAdapterUnavailable signals a transport or connectivity failure. Callers move on to
	// the next adapter instead of retrying the same one.
	ErrAdapterUnavailable = errors.New("adapter unavailable")
	// ErrMalformed signals that reachable storage returned data that does not decode into the model.
	ErrMalformed = errors.New("stored homepage data is malformed")
	// ErrRejected signals that reachable storage refused a write on validation grounds.
	ErrRejected = errors.New("homepage write rejected")
	// ErrStorageExhausted signals that the local cache ran out of space.
	ErrStorageExhausted = errors.New("local storage exhausted")
	// ErrNotFound signals reachable storage that holds nothing for the requested group yet.
	ErrNotFound = errors.New("homepage data not found")
)

// Group names one of the independently stored parts of the aggregate.
type Group string

const (
	GroupSections       Group = "sections"
	GroupSectionData    Group = "sectionData"
	GroupTemplateConfig Group = "templateConfig"
)

// AllGroups lists the groups in the order they are read and written.
var AllGroups = []Group{GroupSections, GroupSectionData, GroupTemplateConfig}

// ConfigAdapter is the storage contract implemented by every backend. Each call is
// independent; none may assume another one succeeded. Implementations bound every call
// with their own timeout and report expiry as ErrAdapterUnavailable.
type ConfigAdapter interface {
	Name() string
	ReadSections(ctx context.Context) ([]domain.Section, error)
	ReadSectionData(ctx context.Context) (domain.SectionDataMap, error)
	ReadTemplateConfig(ctx context.Context) (domain.TemplateConfig, error)
	WriteSections(ctx context.Context, sections []domain.Section) error
	WriteSectionData(ctx context.Context, data domain.SectionDataMap) error
	WriteTemplateConfig(ctx context.Context, template domain.TemplateConfig) error
}

// AdapterError decorates a failure with the adapter and operation that produced it.
// Unwrap exposes the taxonomy sentinel.
type AdapterError struct {
	Adapter string
	Op      string
	Err     error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Adapter, e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// NewAdapterError wraps err unless it is nil.
func NewAdapterError(adapter, op string, err error) error {
	if err == nil {
		return nil
	}
	return &AdapterError{Adapter: adapter, Op: op, Err: err}
}

// IsUnavailable reports whether err is a transport failure that should move the chain forward.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrAdapterUnavailable)
}
