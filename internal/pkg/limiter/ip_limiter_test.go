package limiter

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestAllowEnforcesBurstPerIP(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 2)

	require.True(t, l.Allow("10.0.0.1:50001"))
	require.True(t, l.Allow("10.0.0.1:50002"))
	require.False(t, l.Allow("10.0.0.1:50003"), "third connection in the burst window must be denied")

	// A different IP has its own bucket.
	require.True(t, l.Allow("10.0.0.2:50001"))
}

func TestAllowAddressWithoutPort(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 1)

	require.True(t, l.Allow("10.0.0.9"))
	require.False(t, l.Allow("10.0.0.9"))
}

func TestGetLimiterReusesInstance(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1)

	first := l.GetLimiter("10.0.0.1")
	second := l.GetLimiter("10.0.0.1")
	require.Same(t, first, second)
}
