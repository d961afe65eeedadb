package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/handlers"
)

func init() { Register("backups", registerBackups) }

func registerBackups(r chi.Router, d deps.Deps) {
	r.With(apiGuards(d)...).Route("/api/backups", func(r chi.Router) {
		r.Get("/", handlers.ListBackups(d))
		r.Post("/", handlers.SaveBackup(d))
		r.Delete("/", handlers.ClearBackups(d))
		r.Post("/import", handlers.ImportBackup(d))
		r.Post("/{id}/restore", handlers.RestoreBackup(d))
		r.Patch("/{id}", handlers.RenameBackup(d))
		r.Delete("/{id}", handlers.DeleteBackup(d))
	})
}
