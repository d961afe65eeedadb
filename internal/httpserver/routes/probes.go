package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/mw"
	"github.com/MrSnakeDoc/hookstudio/internal/metrics"
)

func init() { Register("probes", registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	internal := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	internal.Get("/readyz", handlers.Readyz(d))
	internal.Get("/infra", handlers.Infra(d))
	internal.Method("GET", "/metrics", metrics.Handler())
}
