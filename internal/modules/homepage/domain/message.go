package domain

import (
	"strings"
	"time"
)

const (
	HomepageEntity = "homepage"
	SystemEntity   = "system"

	TopicHomepageSnapshot = HomepageEntity + ".snapshot"
	TopicHomepageUpdated  = HomepageEntity + ".updated"
	TopicSystemConnected  = SystemEntity + ".connected"
	TopicSystemPong       = SystemEntity + ".pong"
	TopicSystemError      = SystemEntity + ".error"

	ActionSnapshot  = "snapshot"
	ActionUpdated   = "updated"
	ActionConnected = "connected"
	ActionPong      = "pong"
	ActionError     = "error"
)

// Message is the envelope pushed to live views.
type Message struct {
	Topic     string            `json:"topic"`
	Entity    string            `json:"entity"`
	Action    string            `json:"action"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Data      any               `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// BuildSnapshotMessage carries the full aggregate to a view that just connected or asked to refresh.
func BuildSnapshotMessage(cfg HomepageConfig, metadata map[string]string, at time.Time) *Message {
	return &Message{
		Topic:     TopicHomepageSnapshot,
		Entity:    HomepageEntity,
		Action:    ActionSnapshot,
		Metadata:  compactMetadata(metadata),
		Data:      cfg.Clone(),
		Timestamp: at.UTC(),
	}
}

// BuildUpdatedMessage carries the aggregate after a change was committed.
func BuildUpdatedMessage(cfg HomepageConfig, metadata map[string]string, at time.Time) *Message {
	return &Message{
		Topic:     TopicHomepageUpdated,
		Entity:    HomepageEntity,
		Action:    ActionUpdated,
		Metadata:  compactMetadata(metadata),
		Data:      cfg.Clone(),
		Timestamp: at.UTC(),
	}
}

// BuildSystemMessage builds connected, pong and error frames.
func BuildSystemMessage(action string, data any, at time.Time) *Message {
	action = strings.ToLower(strings.TrimSpace(action))
	return &Message{
		Topic:     SystemEntity + "." + action,
		Entity:    SystemEntity,
		Action:    action,
		Data:      data,
		Timestamp: at.UTC(),
	}
}

func compactMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for key, value := range metadata {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
