package domain

import "errors"

var (
	// ErrInvalidShape is returned when an untrusted document is not a JSON object.
	ErrInvalidShape = errors.New("invalid message shape: expected a JSON object")

	// ErrInvalidJSON is returned when raw bytes are not JSON at all.
	ErrInvalidJSON = errors.New("invalid JSON document")

	ErrEmptyMessage      = errors.New("message must have content, at least one embed or a file")
	ErrSuppressedEmbeds  = errors.New("suppress embeds is set but the message has embeds")
	ErrInvalidWebhookURL = errors.New("invalid webhook URL: must be a Discord webhook")
)
