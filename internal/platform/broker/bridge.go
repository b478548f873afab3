package broker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"landingCms/internal/modules/homepage/application/port"
)

// Invalidator drops cached reads. The homepage resolver satisfies it.
type Invalidator interface {
	Invalidate()
}

// EventPublisher sends an invalidation to other instances.
type EventPublisher interface {
	Publish(ctx context.Context, event port.ConfigChanged) error
}

// InvalidationBridge connects the in-process bus to the broker. Events committed by
// this instance are forwarded out; events from other instances invalidate the
// resolver and are re-published locally so live views refresh.
type InvalidationBridge struct {
	origin   string
	siteID   string
	bus      port.InvalidationBus
	resolver Invalidator
	remote   EventPublisher
	timeout  time.Duration

	mu          sync.Mutex
	unsubscribe port.Unsubscribe
}

func NewInvalidationBridge(origin, siteID string, bus port.InvalidationBus, resolver Invalidator, remote EventPublisher) *InvalidationBridge {
	return &InvalidationBridge{
		origin:   origin,
		siteID:   siteID,
		bus:      bus,
		resolver: resolver,
		remote:   remote,
		timeout:  5 * time.Second,
	}
}

// Start subscribes to the local bus. Without a remote publisher nothing is forwarded.
func (b *InvalidationBridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unsubscribe != nil || b.remote == nil {
		return nil
	}
	if b.bus == nil {
		return errors.New("invalidation bridge: bus is required")
	}
	unsubscribe, err := b.bus.Subscribe(b.forward)
	if err != nil {
		return err
	}
	b.unsubscribe = unsubscribe
	return nil
}

func (b *InvalidationBridge) Stop() {
	b.mu.Lock()
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (b *InvalidationBridge) forward(event port.ConfigChanged) {
	if event.Origin != b.origin {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	if err := b.remote.Publish(ctx, event); err != nil {
		slog.Warn("homepage invalidation not forwarded",
			slog.Uint64("sequence", event.Sequence),
			slog.String("reason", event.Reason),
			slog.Any("error", err),
		)
		return
	}
	slog.Debug("homepage invalidation forwarded", slog.Uint64("sequence", event.Sequence))
}

func (b *InvalidationBridge) Key() string {
	return EntityHomepage + "." + ActionConfigChanged
}

// Handle applies an invalidation received from the broker.
func (b *InvalidationBridge) Handle(_ context.Context, env Envelope) error {
	event := env.Data
	if event.Origin == b.origin {
		return nil
	}
	if b.siteID != "" && event.SiteID != "" && event.SiteID != b.siteID {
		return nil
	}
	if b.resolver != nil {
		b.resolver.Invalidate()
	}
	if b.bus != nil {
		b.bus.Publish(event)
	}
	slog.Info("homepage invalidated by peer", slog.String("origin", event.Origin), slog.String("reason", event.Reason))
	return nil
}
