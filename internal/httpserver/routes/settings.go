package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/handlers"
)

func init() { Register("settings", registerSettings) }

func registerSettings(r chi.Router, d deps.Deps) {
	guarded := r.With(apiGuards(d)...)
	guarded.Get("/api/settings", handlers.GetSettings(d))
	guarded.Put("/api/settings", handlers.PutSettings(d))
	guarded.Delete("/api/settings", handlers.ResetSettings(d))
	guarded.Delete("/api/storage", handlers.ClearStorage(d))
}
