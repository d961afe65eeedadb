package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hookstudio/internal/domain"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hookstudio/internal/workspace"
)

type webhookListResponse struct {
	Webhooks   domain.WebhookList `json:"webhooks"`
	Categories []string           `json:"categories"`
	Selected   string             `json:"selected,omitempty"`
}

type addWebhookRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type positionRequest struct {
	Index int `json:"index"`
}

type selectRequest struct {
	ID string `json:"id"`
}

type selectedResponse struct {
	Selected string `json:"selected"`
}

// ListWebhooks returns the saved webhooks in user order, filtered by the
// optional category, q and favorites parameters. sort=recent puts favorites
// first, then the newest.
func ListWebhooks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		favorites, _ := strconv.ParseBool(q.Get("favorites"))

		all := d.Workspace.Webhooks()
		list := all.Filter(q.Get("category"), q.Get("q"), favorites)
		if q.Get("sort") == "recent" {
			list = list.Sorted()
		}

		categories := all.Categories()
		if categories == nil {
			categories = []string{}
		}
		writeJSON(w, http.StatusOK, webhookListResponse{
			Webhooks:   list,
			Categories: categories,
			Selected:   selectedID(d.Workspace),
		})
	}
}

func AddWebhook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addWebhookRequest
		if err := decodeJSON(r, &req); err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		hook, err := d.Workspace.AddWebhook(r.Context(), req.Name, req.URL)
		if err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, hook)
	}
}

func UpdateWebhook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch workspace.Patch
		if err := decodeJSON(r, &patch); err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		if patch.Color != nil && *patch.Color != "" {
			if _, ok := domain.ParseHexColor(*patch.Color); !ok {
				writeError(w, http.StatusBadRequest, errInvalidColor)
				return
			}
		}
		hook, err := d.Workspace.UpdateWebhook(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, hook)
	}
}

// DeleteWebhook answers with the selection after the fallback rule ran.
func DeleteWebhook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Workspace.DeleteWebhook(r.Context(), chi.URLParam(r, "id")); err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, selectedResponse{Selected: selectedID(d.Workspace)})
	}
}

func ReorderWebhook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req positionRequest
		if err := decodeJSON(r, &req); err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		if err := d.Workspace.ReorderWebhook(r.Context(), chi.URLParam(r, "id"), req.Index); err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func SelectWebhook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectRequest
		if err := decodeJSON(r, &req); err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		if err := d.Workspace.Select(req.ID); err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, selectedResponse{Selected: req.ID})
	}
}

func selectedID(ws *workspace.Workspace) string {
	if hook, ok := ws.Selected(); ok {
		return hook.ID
	}
	return ""
}
