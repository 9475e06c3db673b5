package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ggokuldas06/LegalAI/internal/session"
)

func TestParseFilterArgs(t *testing.T) {
	patch, err := parseFilterArgs([]string{"jurisdiction=NY", "from=2015", "include=arbitration,venue"})
	require.NoError(t, err)

	require.NotNil(t, patch.Jurisdiction)
	assert.Equal(t, "NY", *patch.Jurisdiction)
	require.NotNil(t, patch.YearFrom)
	assert.Equal(t, 2015, *patch.YearFrom)
	assert.Equal(t, []string{"arbitration", "venue"}, patch.Include)
	assert.Nil(t, patch.YearTo, "unset keys stay nil so existing filters survive")
	assert.Nil(t, patch.Exclude)
}

func TestParseFilterArgsRejectsBadInput(t *testing.T) {
	_, err := parseFilterArgs([]string{"jurisdiction"})
	assert.Error(t, err)

	_, err = parseFilterArgs([]string{"from=soon"})
	assert.Error(t, err)

	_, err = parseFilterArgs([]string{"venue=NY"})
	assert.Error(t, err)
}

func TestSplitKeywords(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitKeywords("a, b"))
	assert.Equal(t, []string{}, splitKeywords(""))
	assert.Equal(t, []string{"solo"}, splitKeywords("solo,"))
}

func TestSettingsMap(t *testing.T) {
	assert.Equal(t, map[string]any{}, settingsMap(nil))

	got := settingsMap(&session.Settings{Temperature: 0.2, MaxTokens: 1024, TopP: 0.9, TopK: 40})
	assert.Equal(t, 0.2, got["temperature"])
	assert.Equal(t, 1024, got["max_tokens"])
}
