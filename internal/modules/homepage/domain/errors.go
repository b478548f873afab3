package domain

import "errors"

var (
	// ErrInvalidConfig wraps every validation failure reported by HomepageConfig.Validate.
	ErrInvalidConfig = errors.New("invalid homepage configuration")
	// ErrSectionNotFound is returned by operations addressing an id that is not in the section list.
	ErrSectionNotFound = errors.New("section not found")
	// ErrUnknownSectionType is returned when a section type is outside the closed set.
	ErrUnknownSectionType = errors.New("unknown section type")
	// ErrInvalidSection is returned when a patch would break a section invariant.
	ErrInvalidSection = errors.New("invalid section")
	// ErrUnknownTemplate is returned when selecting a template the renderer does not ship.
	ErrUnknownTemplate = errors.New("unknown template")
)
