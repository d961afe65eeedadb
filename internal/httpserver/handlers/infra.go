package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
)

type componentStatus struct {
	OK       bool   `json:"ok"`
	Mode     string `json:"mode,omitempty"`
	Webhooks *int   `json:"webhooks,omitempty"`
	Backups  *int   `json:"backups,omitempty"`
	Selected string `json:"selected,omitempty"`
	Sending  bool   `json:"sending,omitempty"`
	Timeout  string `json:"timeout,omitempty"`
	Error    string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra details each component. It is meant for operators, not probes.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":     checkStore(r.Context(), d),
			"workspace": workspaceStatus(d),
			"discord":   discordStatus(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

// overallStatus is "degraded" when the store is down: the editor still works
// but nothing can be saved.
func overallStatus(components map[string]componentStatus) string {
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}
	return "ok"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{Mode: d.StoreBackend, Error: "not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{Mode: d.StoreBackend, Error: err.Error()}
	}

	st := componentStatus{OK: true, Mode: d.StoreBackend}
	if d.Backups != nil {
		n := len(d.Backups.LoadBackups(ctx))
		st.Backups = &n
	}
	return st
}

func workspaceStatus(d deps.Deps) componentStatus {
	if d.Workspace == nil {
		return componentStatus{Error: "not initialized"}
	}
	n := len(d.Workspace.Webhooks())
	st := componentStatus{
		OK:       true,
		Webhooks: &n,
		Sending:  d.Workspace.Sending(),
	}
	if hook, ok := d.Workspace.Selected(); ok {
		st.Selected = hook.ID
	}
	return st
}

func discordStatus(d deps.Deps) componentStatus {
	if d.Discord == nil {
		return componentStatus{Error: "not initialized"}
	}
	return componentStatus{OK: true, Timeout: d.Discord.HTTP.Timeout.String()}
}
