package broker

import (
	"context"
	"log/slog"
	"sync"
)

// Handler processes one decoded envelope.
type Handler interface {
	Key() string
	Handle(ctx context.Context, env Envelope) error
}

// HandlerRegistry dispatches envelopes by entity and action.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]Handler)}
}

func (r *HandlerRegistry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Key()] = h
}

// Dispatch runs the handler registered for env. Envelopes nobody handles are dropped.
func (r *HandlerRegistry) Dispatch(ctx context.Context, env Envelope) error {
	r.mu.RLock()
	handler, ok := r.handlers[env.Key()]
	r.mu.RUnlock()
	if !ok {
		slog.Debug("kafka event without handler", slog.String("key", env.Key()))
		return nil
	}
	return handler.Handle(ctx, env)
}

// StartKafkaConsumers runs one consumer per topic until ctx is done. It does nothing
// when no brokers are configured.
func StartKafkaConsumers(ctx context.Context, registry *HandlerRegistry, brokers []string, groupID string, topics []string) {
	if len(brokers) == 0 {
		slog.Info("kafka disabled, no brokers configured")
		return
	}
	for _, topic := range topics {
		go func(tp string) {
			consumer := NewKafkaConsumer(brokers, groupID, tp)
			defer consumer.Close()
			_ = consumer.Consume(ctx, registry.Dispatch)
		}(topic)
	}
}
