package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/handlers"
)

func init() { Register("share", registerShare) }

func registerShare(r chi.Router, d deps.Deps) {
	guarded := r.With(apiGuards(d)...)
	guarded.Post("/api/share", handlers.CreateShare(d))
	guarded.Get("/api/share", handlers.OpenShare(d))
}
