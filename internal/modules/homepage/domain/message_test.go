package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdatedMessage(t *testing.T) {
	t.Parallel()

	cfg := DefaultHomepageConfig()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	msg := BuildUpdatedMessage(cfg, map[string]string{"siteId": " site-1 ", "reason": "", " ": "x"}, at)

	assert.Equal(t, TopicHomepageUpdated, msg.Topic)
	assert.Equal(t, HomepageEntity, msg.Entity)
	assert.Equal(t, map[string]string{"siteId": "site-1"}, msg.Metadata)
	assert.Equal(t, time.UTC, msg.Timestamp.Location())

	data, ok := msg.Data.(HomepageConfig)
	require.True(t, ok)
	data.Sections[0].Title = "changed"
	assert.NotEqual(t, "changed", cfg.Sections[0].Title)
}

func TestBuildSystemMessage(t *testing.T) {
	t.Parallel()

	msg := BuildSystemMessage(" PONG ", nil, time.Now())
	assert.Equal(t, TopicSystemPong, msg.Topic)
	assert.Equal(t, ActionPong, msg.Action)
	assert.Nil(t, BuildSnapshotMessage(cfgWithoutMetadata(), nil, time.Now()).Metadata)
}

func cfgWithoutMetadata() HomepageConfig {
	return HomepageConfig{Sections: []Section{}, SectionData: SectionDataMap{}, TemplateConfig: DefaultTemplateConfig()}
}
