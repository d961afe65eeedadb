package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/handlers"
)

func init() { Register("message", registerMessage) }

func registerMessage(r chi.Router, d deps.Deps) {
	limited := sendLimit(d)

	r.With(apiGuards(d)...).Route("/api/message", func(r chi.Router) {
		r.Get("/", handlers.GetMessage(d))
		r.Put("/", handlers.PutMessage(d))
		r.Delete("/", handlers.ClearMessage(d))
		r.Post("/parse", handlers.ParseMessage(d))
		r.Post("/validate", handlers.ValidateMessage(d))
		r.Get("/export", handlers.ExportMessage(d))
		r.With(limited).Post("/send", handlers.SendMessage(d))
		r.With(limited).Post("/edit", handlers.EditMessage(d))
		r.With(limited).Post("/load", handlers.LoadMessage(d))
	})
}
