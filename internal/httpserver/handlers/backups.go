package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hookstudio/internal/backup"
	"github.com/MrSnakeDoc/hookstudio/internal/domain"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hookstudio/internal/utils"
)

// importField is the multipart field holding the uploaded document.
const importField = "file"

var (
	errNameRequired  = errors.New("name is required")
	errUnknownBackup = errors.New("backup not found")
	errMissingImport = errors.New(`multipart field "file" is required`)
)

type backupListResponse struct {
	Backups []domain.Backup `json:"backups"`
}

type saveBackupRequest struct {
	Name    string `json:"name"`
	Message any    `json:"message,omitempty"`
}

type renameRequest struct {
	Name string `json:"name"`
}

// ListBackups returns the stored snapshots, newest first.
func ListBackups(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, backupListResponse{
			Backups: backup.Sorted(d.Backups.LoadBackups(r.Context())),
		})
	}
}

// SaveBackup snapshots the given message, or the draft when none is sent.
func SaveBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveBackupRequest
		if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
			fail(w, err, http.StatusBadRequest)
			return
		}

		msg := d.Workspace.Message()
		if req.Message != nil {
			parsed, err := domain.ParseMessageJSON(req.Message)
			if err != nil {
				fail(w, err, http.StatusBadRequest)
				return
			}
			msg = parsed
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = fmt.Sprintf("Backup %s", time.Now().Format("2006-01-02 15:04"))
		}

		b := domain.Backup{
			ID:        d.Backups.GenerateID(),
			Name:      name,
			Message:   msg.WithoutFiles(),
			Timestamp: domain.NowMillis(),
		}
		if err := d.Backups.SaveBackup(r.Context(), b); err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

// RestoreBackup makes a snapshot the current draft.
func RestoreBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := d.Backups.Find(r.Context(), chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, errUnknownBackup)
			return
		}
		d.Workspace.SetMessage(b.Message)
		writeJSON(w, http.StatusOK, d.Workspace.Message())
	}
}

func RenameBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req renameRequest
		if err := decodeJSON(r, &req); err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, errNameRequired)
			return
		}
		if err := d.Backups.RenameBackup(r.Context(), chi.URLParam(r, "id"), name); err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Backups.DeleteBackup(r.Context(), chi.URLParam(r, "id")); err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ClearBackups(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Backups.ClearAll(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}

// ImportBackup stores an uploaded message.json as a new backup named after
// the file.
func ImportBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		f, fh, err := r.FormFile(importField)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				err = errMissingImport
			}
			fail(w, err, http.StatusBadRequest)
			return
		}
		defer utils.Close(f)

		data, err := io.ReadAll(f)
		if err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}

		b, err := d.Backups.ImportBackup(r.Context(), fh.Filename, data)
		if err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}
