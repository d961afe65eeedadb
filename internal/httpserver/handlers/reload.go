package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hookstudio/internal/metrics"
)

type reloadResponse struct {
	Status  string `json:"status"`
	Changed bool   `json:"changed,omitempty"`
}

// ReloadWebhooks re-reads the webhook list from the store. With a background
// syncer running the request is handed to it and answered with 202.
func ReloadWebhooks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ReloadTrigger == nil {
			changed := d.Workspace.Reload(r.Context())
			if changed {
				metrics.RecordWebhookReload()
			}
			writeJSON(w, http.StatusOK, reloadResponse{Status: "reloaded", Changed: changed})
			return
		}

		select {
		case d.ReloadTrigger <- struct{}{}:
			writeJSON(w, http.StatusAccepted, reloadResponse{Status: "reload triggered"})
		default:
			// a sync is already queued
			writeJSON(w, http.StatusAccepted, reloadResponse{Status: "reload already pending"})
		}
	}
}
