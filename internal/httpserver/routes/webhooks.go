package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/handlers"
)

func init() { Register("webhooks", registerWebhooks) }

func registerWebhooks(r chi.Router, d deps.Deps) {
	r.With(apiGuards(d)...).Route("/api/webhooks", func(r chi.Router) {
		r.Get("/", handlers.ListWebhooks(d))
		r.Post("/", handlers.AddWebhook(d))
		r.Put("/selected", handlers.SelectWebhook(d))
		r.Post("/reload", handlers.ReloadWebhooks(d))
		r.Patch("/{id}", handlers.UpdateWebhook(d))
		r.Delete("/{id}", handlers.DeleteWebhook(d))
		r.Put("/{id}/position", handlers.ReorderWebhook(d))
	})
}
