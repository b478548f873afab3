package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"landingCms/internal/modules/homepage/application/port"
	"landingCms/internal/modules/homepage/application/usecase"
	"landingCms/internal/modules/homepage/domain"
)

// ConfigSource is the part of the resolver the relay needs.
type ConfigSource interface {
	ResolveDetailed(ctx context.Context) usecase.Resolution
}

// LiveViewRelay turns invalidation events into homepage.updated frames.
type LiveViewRelay struct {
	hub     *Hub
	bus     port.Subscriber
	source  ConfigSource
	siteID  string
	timeout time.Duration
	now     func() time.Time

	mu          sync.Mutex
	unsubscribe port.Unsubscribe
}

func NewLiveViewRelay(hub *Hub, bus port.Subscriber, source ConfigSource, siteID string) *LiveViewRelay {
	return &LiveViewRelay{
		hub:     hub,
		bus:     bus,
		source:  source,
		siteID:  siteID,
		timeout: 10 * time.Second,
		now:     time.Now,
	}
}

// Start subscribes to the bus. Calling it twice is a no-op.
func (r *LiveViewRelay) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unsubscribe != nil {
		return nil
	}
	if r.hub == nil || r.bus == nil || r.source == nil {
		return errors.New("live view relay: hub, bus and source are required")
	}
	unsubscribe, err := r.bus.Subscribe(r.onChange)
	if err != nil {
		return err
	}
	r.unsubscribe = unsubscribe
	slog.Info("live view relay started", slog.String("siteId", r.siteID))
	return nil
}

func (r *LiveViewRelay) Stop() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
		slog.Info("live view relay stopped", slog.String("siteId", r.siteID))
	}
}

func (r *LiveViewRelay) onChange(event port.ConfigChanged) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	res := r.source.ResolveDetailed(ctx)
	metadata := map[string]string{
		"siteId":   firstNonEmpty(event.SiteID, r.siteID),
		"sequence": strconv.FormatUint(event.Sequence, 10),
		"reason":   event.Reason,
		"origin":   event.Origin,
		"source":   res.Source,
	}
	if event.Partial {
		metadata["partial"] = "true"
	}
	sent := r.hub.Broadcast(ctx, domain.BuildUpdatedMessage(res.Config, metadata, r.now()))
	slog.Debug("live views notified",
		slog.Uint64("sequence", event.Sequence),
		slog.String("reason", event.Reason),
		slog.Int("clients", sent),
	)
}

// SendSnapshot pushes the current aggregate to one client.
func (r *LiveViewRelay) SendSnapshot(ctx context.Context, client *Client) {
	res := r.source.ResolveDetailed(ctx)
	metadata := map[string]string{
		"siteId": firstNonEmpty(client.SiteID(), r.siteID),
		"source": res.Source,
	}
	if res.Stale {
		metadata["stale"] = "true"
	}
	client.SendDomainMessage(domain.BuildSnapshotMessage(res.Config, metadata, r.now()))
}

// RegisterCommands adds the refresh command to processor.
func (r *LiveViewRelay) RegisterCommands(processor *CommandProcessor) {
	processor.Register("refresh", func(ctx context.Context, client *Client, _ Command) {
		r.SendSnapshot(ctx, client)
	})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
