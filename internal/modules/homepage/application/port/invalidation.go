package port

import "time"

// ConfigChanged announces that a commit changed the stored aggregate.
type ConfigChanged struct {
	// Sequence is assigned by the bus, increasing in publication order.
	Sequence    uint64    `json:"sequence"`
	Origin      string    `json:"origin"`
	SiteID      string    `json:"siteId,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Partial     bool      `json:"partial"`
	CommittedAt time.Time `json:"committedAt"`
}

// Unsubscribe detaches a listener. Calling it more than once is a no-op.
type Unsubscribe func()

// ConfigChangedHandler receives invalidation events.
type ConfigChangedHandler func(ConfigChanged)

// Publisher announces configuration changes.
type Publisher interface {
	Publish(event ConfigChanged) ConfigChanged
}

// Subscriber registers invalidation listeners.
type Subscriber interface {
	Subscribe(handler ConfigChangedHandler) (Unsubscribe, error)
}

// InvalidationBus is the process-wide channel used to invalidate mounted readers.
type InvalidationBus interface {
	Publisher
	Subscriber
}
