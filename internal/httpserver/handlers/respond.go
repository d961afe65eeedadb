package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/hookstudio/internal/backup"
	"github.com/MrSnakeDoc/hookstudio/internal/discord"
	"github.com/MrSnakeDoc/hookstudio/internal/domain"
	"github.com/MrSnakeDoc/hookstudio/internal/jsonx"
	"github.com/MrSnakeDoc/hookstudio/internal/share"
	"github.com/MrSnakeDoc/hookstudio/internal/storage"
	"github.com/MrSnakeDoc/hookstudio/internal/store"
	"github.com/MrSnakeDoc/hookstudio/internal/workspace"
)

// maxJSONBody caps plain JSON request bodies; attachments go through multipart.
const maxJSONBody = 1 << 20

var (
	errEmptyBody    = errors.New("request body is empty")
	errBodyTooLarge = errors.New("request body too large")
	errInvalidColor = errors.New("color must be #RRGGBB")
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = jsonx.MarshalToWriter(w, v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// fail maps err to a status code; fallback is used for errors the mapping
// does not know.
func fail(w http.ResponseWriter, err error, fallback int) {
	writeError(w, statusFor(err, fallback), err)
}

func statusFor(err error, fallback int) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, errBodyTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, workspace.ErrSendInFlight):
		return http.StatusConflict
	case errors.Is(err, workspace.ErrUnknownWebhook):
		return http.StatusNotFound
	case errors.Is(err, store.ErrQuotaExceeded):
		return http.StatusInsufficientStorage
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case isUpstream(err):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidShape),
		errors.Is(err, domain.ErrInvalidJSON),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrSuppressedEmbeds),
		errors.Is(err, domain.ErrInvalidWebhookURL),
		errors.Is(err, workspace.ErrNoWebhookSelected),
		errors.Is(err, workspace.ErrInvalidEditTarget),
		errors.Is(err, discord.ErrNoWebhookSelected),
		errors.Is(err, discord.ErrInvalidMessageLink),
		errors.Is(err, discord.ErrBlockedAddress),
		errors.Is(err, share.ErrHasFiles),
		errors.Is(err, share.ErrCorruptLink),
		errors.Is(err, storage.ErrNotAList),
		errors.Is(err, errEmptyBody),
		errors.Is(err, errInvalidColor):
		return http.StatusBadRequest
	case errors.Is(err, backup.ErrSaveFailed),
		errors.Is(err, backup.ErrDeleteFailed),
		errors.Is(err, backup.ErrRenameFailed):
		return http.StatusInternalServerError
	}
	return fallback
}

// isUpstream reports errors caused by Discord or a remote document.
func isUpstream(err error) bool {
	return discord.IsAPIError(err) ||
		errors.Is(err, discord.ErrNetwork) ||
		errors.Is(err, discord.ErrMessageNotFound) ||
		errors.Is(err, discord.ErrNotWebhookMessage) ||
		errors.Is(err, discord.ErrResourceNotFound) ||
		errors.Is(err, discord.ErrForbidden) ||
		errors.Is(err, discord.ErrDocumentTooLarge)
}

// readBody reads a capped JSON body. An empty body returns nil, nil.
func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxJSONBody {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// decodeJSON decodes a required JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	data, err := readBody(r)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errEmptyBody
	}
	if err := jsonx.Unmarshal(data, v); err != nil {
		return errors.Join(domain.ErrInvalidJSON, err)
	}
	return nil
}

// messageOrCurrent parses an optional message document from the body and
// falls back to the workspace message when the body is empty.
func messageOrCurrent(r *http.Request, ws *workspace.Workspace) (domain.Message, error) {
	data, err := readBody(r)
	if err != nil {
		return domain.Message{}, err
	}
	if len(data) == 0 {
		return ws.Message(), nil
	}
	return domain.ParseMessageBytes(data)
}
