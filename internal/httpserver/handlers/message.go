package handlers

import (
	"io"
	"mime"
	"net/http"

	"go.uber.org/multierr"

	"github.com/MrSnakeDoc/hookstudio/internal/domain"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hookstudio/internal/logger"
	"github.com/MrSnakeDoc/hookstudio/internal/utils"
)

// payloadField is the multipart field carrying the message document,
// the same name Discord uses.
const payloadField = "payload_json"

type validateResponse struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type loadRequest struct {
	URL string `json:"url"`
}

type editRequest struct {
	Target  string `json:"target"` // message id or message link
	Message any    `json:"message,omitempty"`
}

type sendResponse struct {
	ID        string `json:"id"`
	ChannelID string `json:"channelId,omitempty"`
	Webhook   string `json:"webhook"`
}

func GetMessage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Workspace.Message())
	}
}

// PutMessage replaces the draft with any JSON document, normalized. Drafts
// are stored as parsed; limits are only enforced on send.
func PutMessage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := readBody(r)
		if err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		if len(data) == 0 {
			writeError(w, http.StatusBadRequest, errEmptyBody)
			return
		}
		msg, err := domain.ParseMessageBytes(data)
		if err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		d.Workspace.SetMessage(msg)
		writeJSON(w, http.StatusOK, d.Workspace.Message())
	}
}

func ClearMessage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Workspace.ClearMessage()
		writeJSON(w, http.StatusOK, d.Workspace.Message())
	}
}

// ParseMessage normalizes a document without touching the draft.
func ParseMessage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := readBody(r)
		if err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		msg, err := domain.ParseMessageBytes(data)
		if err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

// ValidateMessage lists every blocking problem and every soft warning for
// the body, or for the draft when the body is empty.
func ValidateMessage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := messageOrCurrent(r, d.Workspace)
		if err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}

		resp := validateResponse{Errors: []string{}, Warnings: msg.Warnings()}
		for _, e := range multierr.Errors(domain.ValidateForSend(msg)) {
			resp.Errors = append(resp.Errors, e.Error())
		}
		if resp.Warnings == nil {
			resp.Warnings = []string{}
		}
		resp.Valid = len(resp.Errors) == 0
		writeJSON(w, http.StatusOK, resp)
	}
}

// SendMessage sends to the selected webhook. The message is the JSON body,
// the draft when the body is empty, or a multipart form with a payload_json
// field and "files" parts.
func SendMessage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := requestMessage(w, r, d)
		if err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}

		sent, err := d.Workspace.SendMessage(r.Context(), msg)
		if err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}

		hook, _ := d.Workspace.Selected()
		d.Logger.Info("message sent",
			logger.String("webhook", hook.ID),
			logger.String("message_id", sent.ID),
			logger.Int("files", len(msg.Files)))
		writeJSON(w, http.StatusOK, sendResponse{ID: sent.ID, ChannelID: sent.ChannelID, Webhook: hook.ID})
	}
}

// EditMessage overwrites a message the selected webhook sent earlier.
func EditMessage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req editRequest
		if err := decodeJSON(r, &req); err != nil {
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

		sent, err := d.Workspace.EditMessage(r.Context(), req.Target, msg)
		if err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		hook, _ := d.Workspace.Selected()
		writeJSON(w, http.StatusOK, sendResponse{ID: sent.ID, ChannelID: sent.ChannelID, Webhook: hook.ID})
	}
}

// LoadMessage fetches a document or Discord message link and makes it the
// draft. The draft is untouched when loading fails.
func LoadMessage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loadRequest
		if err := decodeJSON(r, &req); err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		msg, err := d.Workspace.LoadMessage(r.Context(), req.URL)
		if err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

// ExportMessage downloads the draft as message.json.
func ExportMessage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := d.Workspace.ExportJSON()
		if err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="message.json"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// requestMessage resolves the message a send request refers to.
func requestMessage(w http.ResponseWriter, r *http.Request, d deps.Deps) (domain.Message, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return messageOrCurrent(r, d.Workspace)
	}

	r.Body = http.MaxBytesReader(w, r.Body, d.MaxUploadBytes)
	if err := r.ParseMultipartForm(d.MaxUploadBytes); err != nil {
		return domain.Message{}, err
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	msg := d.Workspace.Message()
	if payload := r.FormValue(payloadField); payload != "" {
		parsed, err := domain.ParseMessageBytes([]byte(payload))
		if err != nil {
			return domain.Message{}, err
		}
		msg = parsed
	}

	msg.Files = nil
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return domain.Message{}, err
		}
		data, err := io.ReadAll(f)
		utils.Close(f)
		if err != nil {
			return domain.Message{}, err
		}
		msg.Files = append(msg.Files, domain.MessageFile{
			ID:   domain.GenerateID(),
			Name: fh.Filename,
			Size: int64(len(data)),
			Data: data,
		})
	}
	return msg, nil
}
