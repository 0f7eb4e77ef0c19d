package middleware

import (
	"testing"

	"golang.org/x/time/rate"
)

func TestIPRateLimiter_SameIPSharesLimiter(t *testing.T) {
	rl := NewIPRateLimiter(rate.Limit(1), 1)

	if rl.GetLimiter("10.0.0.1") != rl.GetLimiter("10.0.0.1") {
		t.Error("same IP must map to the same limiter")
	}
	if rl.GetLimiter("10.0.0.1") == rl.GetLimiter("10.0.0.2") {
		t.Error("different IPs must get separate limiters")
	}
}

func TestIPRateLimiter_BurstExhaustion(t *testing.T) {
	rl := NewIPRateLimiter(rate.Limit(0.001), 2)
	limiter := rl.GetLimiter("10.0.0.3")

	if !limiter.Allow() || !limiter.Allow() {
		t.Fatal("burst requests should be allowed")
	}
	if limiter.Allow() {
		t.Error("request beyond the burst should be rejected")
	}

	// another IP is unaffected
	if !rl.GetLimiter("10.0.0.4").Allow() {
		t.Error("separate IP should still be allowed")
	}
}
