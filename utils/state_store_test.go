package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateSingleUse(t *testing.T) {
	SaveState("state-abc", time.Minute)

	assert.True(t, ConsumeState("state-abc"))
	assert.False(t, ConsumeState("state-abc"), "state tokens are single-use")
	assert.False(t, ConsumeState("never-saved"))
}

func TestTokenBlacklist(t *testing.T) {
	BlacklistToken("tok-live", time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted("tok-live"))
	assert.False(t, IsTokenBlacklisted("tok-unknown"))

	// Entries past their expiry no longer block anything.
	BlacklistToken("tok-dead", time.Now().Add(-time.Hour))
	assert.False(t, IsTokenBlacklisted("tok-dead"))
}
