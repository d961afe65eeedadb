package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/hookstudio/internal/domain"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
)

func GetSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Storage.LoadSettings(r.Context()))
	}
}

// PutSettings overlays the body on the defaults, the same way stored
// settings are read back, and saves the result.
func PutSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw any
		if err := decodeJSON(r, &raw); err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		if _, ok := raw.(map[string]any); !ok {
			writeError(w, http.StatusBadRequest, domain.ErrInvalidShape)
			return
		}

		settings := domain.ParseSettings(raw)
		if err := d.Storage.SaveSettings(r.Context(), settings); err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

func ResetSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := d.Storage.ResetSettings(r.Context())
		if err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

// ClearStorage wipes webhooks, backups and settings, then reloads the
// workspace so it matches the empty store.
func ClearStorage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Storage.ClearAll(r.Context()); err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		d.Workspace.Open(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}
