package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"landingCms/internal/modules/homepage/application/port"
	"landingCms/internal/modules/homepage/domain"
)

const (
	LocalCacheAdapterName = "local-cache"

	cacheEnvelopeVersion = 1
)

// cacheEnvelope is the on-disk shape of one group.
type cacheEnvelope struct {
	Version int             `json:"version"`
	Group   port.Group      `json:"group"`
	SavedAt time.Time       `json:"savedAt"`
	Payload json.RawMessage `json:"payload"`
}

// LocalCacheAdapter mirrors the aggregate into files on the local filesystem, one per group.
// It is the last adapter of the chain and is never expected to be unreachable.
type LocalCacheAdapter struct {
	fs    afero.Fs
	dir   string
	quota int64
	now   func() time.Time

	mu sync.Mutex
}

// NewLocalCacheAdapter stores files under dir/siteID on fsys. quota bounds the total size
// of the three files in bytes; zero disables the bound.
func NewLocalCacheAdapter(fsys afero.Fs, dir, siteID string, quota int64) *LocalCacheAdapter {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if siteID == "" {
		siteID = "default"
	}
	return &LocalCacheAdapter{
		fs:    fsys,
		dir:   filepath.Join(dir, siteID),
		quota: quota,
		now:   time.Now,
	}
}

func (a *LocalCacheAdapter) Name() string { return LocalCacheAdapterName }

// Dir is the directory holding the group files.
func (a *LocalCacheAdapter) Dir() string { return a.dir }

func (a *LocalCacheAdapter) ReadSections(ctx context.Context) ([]domain.Section, error) {
	var sections []domain.Section
	if err := a.read(ctx, port.GroupSections, &sections); err != nil {
		return nil, err
	}
	for _, s := range sections {
		if !s.Type.Valid() {
			return nil, a.fail("read sections", fmt.Errorf("%w: section %q: %w %q", port.ErrMalformed, s.ID, domain.ErrUnknownSectionType, s.Type))
		}
	}
	return sections, nil
}

func (a *LocalCacheAdapter) ReadSectionData(ctx context.Context) (domain.SectionDataMap, error) {
	var data domain.SectionDataMap
	if err := a.read(ctx, port.GroupSectionData, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (a *LocalCacheAdapter) ReadTemplateConfig(ctx context.Context) (domain.TemplateConfig, error) {
	var template domain.TemplateConfig
	if err := a.read(ctx, port.GroupTemplateConfig, &template); err != nil {
		return domain.TemplateConfig{}, err
	}
	return template, nil
}

func (a *LocalCacheAdapter) WriteSections(ctx context.Context, sections []domain.Section) error {
	if sections == nil {
		sections = []domain.Section{}
	}
	return a.write(ctx, port.GroupSections, sections)
}

func (a *LocalCacheAdapter) WriteSectionData(ctx context.Context, data domain.SectionDataMap) error {
	if data == nil {
		data = domain.SectionDataMap{}
	}
	return a.write(ctx, port.GroupSectionData, data)
}

func (a *LocalCacheAdapter) WriteTemplateConfig(ctx context.Context, template domain.TemplateConfig) error {
	return a.write(ctx, port.GroupTemplateConfig, template)
}

// Clear removes every cached group.
func (a *LocalCacheAdapter) Clear() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.fs.RemoveAll(a.dir); err != nil {
		return a.fail("clear", classifyFSError(err))
	}
	return nil
}

func (a *LocalCacheAdapter) path(group port.Group) string {
	return filepath.Join(a.dir, string(group)+".json")
}

func (a *LocalCacheAdapter) read(ctx context.Context, group port.Group, target any) error {
	op := "read " + string(group)
	if err := ctx.Err(); err != nil {
		return a.fail(op, fmt.Errorf("%w: %v", port.ErrAdapterUnavailable, err))
	}

	a.mu.Lock()
	raw, err := afero.ReadFile(a.fs, a.path(group))
	a.mu.Unlock()
	if err != nil {
		return a.fail(op, classifyFSError(err))
	}

	var envelope cacheEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return a.fail(op, fmt.Errorf("%w: %v", port.ErrMalformed, err))
	}
	if envelope.Version != cacheEnvelopeVersion || envelope.Group != group {
		return a.fail(op, fmt.Errorf("%w: envelope version %d group %q", port.ErrMalformed, envelope.Version, envelope.Group))
	}
	if err := json.Unmarshal(envelope.Payload, target); err != nil {
		return a.fail(op, fmt.Errorf("%w: %v", port.ErrMalformed, err))
	}
	slog.Debug("homepage cache read", slog.String("group", string(group)), slog.Time("savedAt", envelope.SavedAt))
	return nil
}

func (a *LocalCacheAdapter) write(ctx context.Context, group port.Group, value any) error {
	op := "write " + string(group)
	if err := ctx.Err(); err != nil {
		return a.fail(op, fmt.Errorf("%w: %v", port.ErrAdapterUnavailable, err))
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return a.fail(op, fmt.Errorf("%w: %v", port.ErrRejected, err))
	}
	encoded, err := json.Marshal(cacheEnvelope{
		Version: cacheEnvelopeVersion,
		Group:   group,
		SavedAt: a.now().UTC(),
		Payload: payload,
	})
	if err != nil {
		return a.fail(op, fmt.Errorf("%w: %v", port.ErrRejected, err))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkQuota(group, int64(len(encoded))); err != nil {
		return a.fail(op, err)
	}
	if err := a.fs.MkdirAll(a.dir, 0o755); err != nil {
		return a.fail(op, classifyFSError(err))
	}

	// write next to the target and rename so readers never see a torn file.
	target := a.path(group)
	tmp := fmt.Sprintf("%s.%s.tmp", target, uuid.NewString())
	if err := afero.WriteFile(a.fs, tmp, encoded, 0o644); err != nil {
		_ = a.fs.Remove(tmp)
		return a.fail(op, classifyFSError(err))
	}
	if err := a.fs.Rename(tmp, target); err != nil {
		_ = a.fs.Remove(tmp)
		return a.fail(op, classifyFSError(err))
	}
	slog.Debug("homepage cache written", slog.String("group", string(group)), slog.Int("bytes", len(encoded)))
	return nil
}

// checkQuota fails when replacing group with size bytes would push the directory over quota.
func (a *LocalCacheAdapter) checkQuota(group port.Group, size int64) error {
	if a.quota <= 0 {
		return nil
	}
	total := size
	for _, other := range port.AllGroups {
		if other == group {
			continue
		}
		info, err := a.fs.Stat(a.path(other))
		if err == nil {
			total += info.Size()
		}
	}
	if total > a.quota {
		return fmt.Errorf("%w: %d bytes needed, quota is %d", port.ErrStorageExhausted, total, a.quota)
	}
	return nil
}

func (a *LocalCacheAdapter) fail(op string, err error) error {
	return port.NewAdapterError(LocalCacheAdapterName, op, err)
}

func classifyFSError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", port.ErrNotFound, err)
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, syscall.EDQUOT):
		return fmt.Errorf("%w: %v", port.ErrStorageExhausted, err)
	default:
		return fmt.Errorf("%w: %v", port.ErrAdapterUnavailable, err)
	}
}

var _ port.ConfigAdapter = (*LocalCacheAdapter)(nil)
