package broker

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"landingCms/internal/modules/homepage/application/port"
)

const (
	EntityHomepage      = "homepage"
	ActionConfigChanged = "config-changed"

	// DefaultTopic carries homepage invalidations between instances.
	DefaultTopic = "homepage.config.changed"
)

// Envelope is the wire shape of a broker event.
type Envelope struct {
	Entity   string             `json:"entity"`
	Action   string             `json:"action"`
	Topic    string             `json:"topic,omitempty"`
	Metadata map[string]string  `json:"metadata,omitempty"`
	Data     port.ConfigChanged `json:"data"`
}

// Key identifies the handler an envelope is dispatched to.
func (e Envelope) Key() string {
	return e.Entity + "." + e.Action
}

func newEnvelope(event port.ConfigChanged) Envelope {
	return Envelope{
		Entity: EntityHomepage,
		Action: ActionConfigChanged,
		Metadata: map[string]string{
			"origin": event.Origin,
			"siteId": event.SiteID,
		},
		Data: event,
	}
}

func encodeEnvelope(topic string, env Envelope) (kafka.Message, error) {
	env.Topic = topic
	value, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s event: %w", env.Key(), err)
	}
	return kafka.Message{
		Key:   []byte(env.Data.SiteID),
		Value: value,
		Time:  env.Data.CommittedAt,
	}, nil
}

func decodeEnvelope(m kafka.Message) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode message at offset %d: %w", m.Offset, err)
	}
	env.Entity = strings.ToLower(firstNonEmpty(env.Entity, inferEntity(m.Topic)))
	env.Action = strings.ToLower(firstNonEmpty(env.Action, ActionConfigChanged))
	env.Topic = firstNonEmpty(env.Topic, m.Topic)
	if env.Data.Origin == "" && env.Metadata != nil {
		env.Data.Origin = env.Metadata["origin"]
	}
	if env.Data.SiteID == "" && len(m.Key) > 0 {
		env.Data.SiteID = string(m.Key)
	}
	if env.Data.CommittedAt.IsZero() {
		env.Data.CommittedAt = firstTime(m.Time, time.Now()).UTC()
	}
	return env, nil
}

// homepage.config.changed -> homepage
func inferEntity(topic string) string {
	if idx := strings.Index(topic, "."); idx > 0 {
		return strings.TrimSpace(topic[:idx])
	}
	return strings.TrimSpace(topic)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstTime(values ...time.Time) time.Time {
	for _, v := range values {
		if !v.IsZero() {
			return v
		}
	}
	return time.Time{}
}
