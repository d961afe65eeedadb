package discord

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNetwork            = errors.New("network error: check the connection")
	ErrMessageNotFound    = errors.New("message not found: check that it exists, was sent by the selected webhook and that the id is correct")
	ErrNotWebhookMessage  = errors.New("this message was not sent by the selected webhook, or the webhook lost access")
	ErrResourceNotFound   = errors.New("resource not found: check the URL")
	ErrForbidden          = errors.New("not allowed to access this resource")
	ErrNoWebhookSelected  = errors.New("select the webhook that sent the message before loading a Discord message link")
	ErrDocumentTooLarge   = errors.New("document too large")
	ErrInvalidMessageLink = errors.New("not a Discord message link")
)

// APIError is a non-2xx answer from Discord or from a document URL.
type APIError struct {
	Status  int
	Code    int    // Discord JSON error code, 0 when absent
	Message string // remote error message, empty when absent
}

// errorBody is Discord's error document.
type errorBody struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// StatusText is the HTTP reason phrase, for logs.
func (e *APIError) StatusText() string {
	return http.StatusText(e.Status)
}
