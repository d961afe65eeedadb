package routes

import (
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/mw"
)

// apiGuards restrict /api to the configured client networks and Host names.
func apiGuards(d deps.Deps) []Middleware {
	return []Middleware{
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	}
}

// sendLimit throttles calls that end up as Discord requests.
func sendLimit(d deps.Deps) Middleware {
	return mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.SendBurst,
		RefillPerMin: d.SendRatePerMin,
		MaxEntries:   10000,
		TrustProxy:   d.TrustProxy,
		Logger:       d.Logger,
	})
}
