package security

import (
	"crypto/subtle"

	"printbridge/internal/config"
	"printbridge/internal/types"
)

// Gate is the single admission decision in front of every API route: rate
// window first, then token. Rate usage is counted before token validation on
// purpose, so repeated unauthorized probing is throttled like any other
// traffic.
type Gate struct {
	limiter RateLimiter
}

func NewGate(limiter RateLimiter) *Gate {
	return &Gate{limiter: limiter}
}

// Admit checks the identity's rate window and the presented token against the
// given config snapshot. A nil return means the request may proceed.
func (g *Gate) Admit(identity, token string, cfg *config.Config) *types.BridgeError {
	if !g.limiter.Allow(identity, cfg.RateLimitPerMinute) {
		return types.RateLimitExceeded()
	}

	if cfg.APIToken == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.APIToken)) != 1 {
		return types.Unauthorized()
	}
	return nil
}

// Close releases the limiter backend.
func (g *Gate) Close() error {
	return g.limiter.Close()
}
