package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"LOG_LEVEL", "VERSE_LENGTH", "MAX_ATTEMPTS", "HEADLESS", "WAIT_TIMEOUT", "PORT"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 0, c.VerseLength)
	assert.Equal(t, 9, c.MaxAttempts)
	assert.Equal(t, 3, c.RetryBudget)
	assert.False(t, c.Headless)
	assert.Equal(t, 15*time.Second, c.WaitTimeout)
	assert.Equal(t, "5175", c.Port)
	assert.Equal(t, "reject", c.ConflictPolicy)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("VERSE_LENGTH", "14")
	t.Setenv("HEADLESS", "true")
	t.Setenv("WAIT_TIMEOUT", "2s")
	t.Setenv("CONFLICT_POLICY", "Fallback")
	t.Setenv("MAX_TURNS", "not-a-number")
	c := FromEnv()
	assert.Equal(t, 14, c.VerseLength)
	assert.True(t, c.Headless)
	assert.Equal(t, 2*time.Second, c.WaitTimeout)
	assert.Equal(t, "fallback", c.ConflictPolicy)
	assert.Equal(t, 0, c.MaxTurns)
}

func TestFromEnv_EmptyDisablesHistory(t *testing.T) {
	t.Setenv("HISTORY_FILE", "")
	t.Setenv("HISTORY_DB", "")
	c := FromEnv()
	assert.Empty(t, c.HistoryFile)
	assert.Empty(t, c.HistoryDB)
}
