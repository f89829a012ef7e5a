package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printbridge/internal/config"
	"printbridge/internal/types"
)

func gateConfig(token string, limit int) *config.Config {
	cfg := config.Default()
	cfg.APIToken = token
	cfg.RateLimitPerMinute = limit
	return cfg
}

func TestGateNoTokenConfigured(t *testing.T) {
	g := NewGate(NewMemoryRateLimiter())
	assert.Nil(t, g.Admit("ip", "", gateConfig("", 60)))
	assert.Nil(t, g.Admit("ip", "whatever", gateConfig("", 60)))
}

func TestGateTokenMatch(t *testing.T) {
	g := NewGate(NewMemoryRateLimiter())
	cfg := gateConfig("s3cret", 60)

	assert.Nil(t, g.Admit("ip", "s3cret", cfg))

	err := g.Admit("ip", "wrong", cfg)
	require.NotNil(t, err)
	assert.Equal(t, types.KindUnauthorized, err.Kind)

	err = g.Admit("ip", "", cfg)
	require.NotNil(t, err)
	assert.Equal(t, types.KindUnauthorized, err.Kind)
}

func TestGateRateCheckedBeforeToken(t *testing.T) {
	g := NewGate(NewMemoryRateLimiter())
	cfg := gateConfig("s3cret", 1)

	// The first bad-token probe is counted against the window even though it
	// fails authentication.
	err := g.Admit("ip", "wrong", cfg)
	require.NotNil(t, err)
	assert.Equal(t, types.KindUnauthorized, err.Kind)

	// The second request hits the quota before the token is ever looked at.
	err = g.Admit("ip", "s3cret", cfg)
	require.NotNil(t, err)
	assert.Equal(t, types.KindRateLimitExceeded, err.Kind)
}

func TestGateRateLimitScenario(t *testing.T) {
	g := NewGate(NewMemoryRateLimiter())
	cfg := gateConfig("", 2)

	assert.Nil(t, g.Admit("ip", "", cfg))
	assert.Nil(t, g.Admit("ip", "", cfg))

	err := g.Admit("ip", "", cfg)
	require.NotNil(t, err)
	assert.Equal(t, types.KindRateLimitExceeded, err.Kind)
}
