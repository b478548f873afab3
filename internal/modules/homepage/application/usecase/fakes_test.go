package usecase

import (
	"context"
	"sync"
	"time"

	"landingCms/internal/modules/homepage/application/port"
	"landingCms/internal/modules/homepage/domain"
)

// memoryAdapter is an in-memory ConfigAdapter with injectable failures per operation.
type memoryAdapter struct {
	name string

	mu          sync.Mutex
	sections    []domain.Section
	data        domain.SectionDataMap
	template    *domain.TemplateConfig
	readErr     map[port.Group]error
	writeErr    map[port.Group]error
	reads       int
	writes      int
	beforeWrite func(port.Group)
}

func newMemoryAdapter(name string) *memoryAdapter {
	return &memoryAdapter{
		name:     name,
		readErr:  map[port.Group]error{},
		writeErr: map[port.Group]error{},
	}
}

func (a *memoryAdapter) Name() string { return a.name }

func (a *memoryAdapter) seed(cfg domain.HomepageConfig) *memoryAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	clone := cfg.Clone()
	a.sections = clone.Sections
	a.data = clone.SectionData
	template := clone.TemplateConfig
	a.template = &template
	return a
}

func (a *memoryAdapter) failReads(err error) *memoryAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, g := range port.AllGroups {
		a.readErr[g] = err
	}
	return a
}

func (a *memoryAdapter) failWrites(err error) *memoryAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, g := range port.AllGroups {
		a.writeErr[g] = err
	}
	return a
}

func (a *memoryAdapter) setReadErr(group port.Group, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.readErr[group] = err
}

func (a *memoryAdapter) setWriteErr(group port.Group, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.writeErr[group] = err
}

func (a *memoryAdapter) readCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reads
}

func (a *memoryAdapter) stored() domain.HomepageConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	cfg := domain.HomepageConfig{Sections: a.sections, SectionData: a.data}
	if a.template != nil {
		cfg.TemplateConfig = *a.template
	}
	return cfg.Clone()
}

func (a *memoryAdapter) ReadSections(context.Context) ([]domain.Section, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reads++
	if err := a.readErr[port.GroupSections]; err != nil {
		return nil, err
	}
	if a.sections == nil {
		return nil, port.ErrNotFound
	}
	return domain.HomepageConfig{Sections: a.sections}.Clone().Sections, nil
}

func (a *memoryAdapter) ReadSectionData(context.Context) (domain.SectionDataMap, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.readErr[port.GroupSectionData]; err != nil {
		return nil, err
	}
	if a.data == nil {
		return nil, port.ErrNotFound
	}
	return a.data.Clone(), nil
}

func (a *memoryAdapter) ReadTemplateConfig(context.Context) (domain.TemplateConfig, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.readErr[port.GroupTemplateConfig]; err != nil {
		return domain.TemplateConfig{}, err
	}
	if a.template == nil {
		return domain.TemplateConfig{}, port.ErrNotFound
	}
	return *a.template, nil
}

func (a *memoryAdapter) write(group port.Group, apply func()) error {
	a.mu.Lock()
	hook := a.beforeWrite
	a.mu.Unlock()
	if hook != nil {
		hook(group)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.writes++
	if err := a.writeErr[group]; err != nil {
		return err
	}
	apply()
	return nil
}

func (a *memoryAdapter) WriteSections(_ context.Context, sections []domain.Section) error {
	return a.write(port.GroupSections, func() {
		a.sections = domain.HomepageConfig{Sections: sections}.Clone().Sections
	})
}

func (a *memoryAdapter) WriteSectionData(_ context.Context, data domain.SectionDataMap) error {
	return a.write(port.GroupSectionData, func() {
		a.data = data.Clone()
	})
}

func (a *memoryAdapter) WriteTemplateConfig(_ context.Context, template domain.TemplateConfig) error {
	return a.write(port.GroupTemplateConfig, func() {
		a.template = &template
	})
}

// recordingBus captures published events and calls handlers synchronously.
type recordingBus struct {
	mu       sync.Mutex
	events   []port.ConfigChanged
	handlers []port.ConfigChangedHandler
}

func (b *recordingBus) Publish(event port.ConfigChanged) port.ConfigChanged {
	b.mu.Lock()
	event.Sequence = uint64(len(b.events) + 1)
	b.events = append(b.events, event)
	handlers := append([]port.ConfigChangedHandler(nil), b.handlers...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(event)
	}
	return event
}

func (b *recordingBus) Subscribe(handler port.ConfigChangedHandler) (port.Unsubscribe, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
	return func() {}, nil
}

func (b *recordingBus) published() []port.ConfigChanged {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]port.ConfigChanged(nil), b.events...)
}

// fakeClock is advanced by hand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
