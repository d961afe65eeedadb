package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/hookstudio/internal/domain"
	"github.com/MrSnakeDoc/hookstudio/internal/jsonx"
	"github.com/MrSnakeDoc/hookstudio/internal/logger"
	"github.com/MrSnakeDoc/hookstudio/internal/metrics"
	"github.com/MrSnakeDoc/hookstudio/internal/utils"
)

// AvatarCDN is where webhook avatars are served from.
const AvatarCDN = "https://cdn.discordapp.com/avatars"

// DefaultWebhookName is used when a webhook's display name cannot be fetched.
const DefaultWebhookName = "Webhook"

// MaxDocumentBytes caps any response body read by the client.
const MaxDocumentBytes = 8 << 20

// Client talks to Discord's webhook endpoints and fetches message documents.
// It never retries: every failure is returned to the caller as is.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	log       logger.Logger
}

func NewClient(timeout time.Duration, userAgent string, log logger.Logger, opts ...ClientOption) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout, Transport: newTransport(o)},
		UserAgent: userAgent,
		log:       log,
	}
}

// SentMessage identifies a message created or edited through a webhook.
type SentMessage struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

// WebhookInfo is the display metadata of a webhook.
type WebhookInfo struct {
	Name      string
	AvatarURL string
}

// Send executes the webhook. The message is validated first and no request
// is made when validation fails.
func (c *Client) Send(ctx context.Context, webhookURL string, msg domain.Message) (*SentMessage, error) {
	if err := domain.ValidateForSend(msg); err != nil {
		metrics.RecordSend(metrics.OutcomeRejected)
		return nil, err
	}

	endpoint, err := withQuery(webhookURL, "wait", "true")
	if err != nil {
		metrics.RecordSend(metrics.OutcomeRejected)
		return nil, err
	}

	sent, err := c.write(ctx, http.MethodPost, endpoint, newPayload(msg), msg.Files)
	if err != nil {
		metrics.RecordSend(metrics.OutcomeError)
		c.log.Warn("webhook send failed", logger.Error(err))
		return nil, err
	}

	metrics.RecordSend(metrics.OutcomeOK)
	c.log.Info("message sent",
		logger.String("message_id", sent.ID),
		logger.Int("embeds", len(msg.Embeds)),
		logger.Int("files", len(msg.Files)))
	return sent, nil
}

// Edit replaces the content, embeds and attachments of a message the
// webhook previously sent.
func (c *Client) Edit(ctx context.Context, webhookURL, messageID string, msg domain.Message) (*SentMessage, error) {
	if err := domain.ValidateForSend(msg); err != nil {
		return nil, err
	}
	endpoint, err := messageURL(webhookURL, messageID)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, http.MethodPatch, endpoint, newEditPayload(msg), msg.Files)
}

// FetchMessage loads a message the webhook sent, normalized into the editor model.
func (c *Client) FetchMessage(ctx context.Context, webhookURL, messageID string) (domain.Message, error) {
	endpoint, err := messageURL(webhookURL, messageID)
	if err != nil {
		return domain.Message{}, err
	}

	status, body, err := c.get(ctx, endpoint)
	if err != nil {
		return domain.Message{}, err
	}
	switch {
	case status == http.StatusNotFound:
		return domain.Message{}, ErrMessageNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.Message{}, ErrNotWebhookMessage
	case status < 200 || status > 299:
		return domain.Message{}, newAPIError(status, body)
	}

	return domain.ParseMessageBytes(body)
}

// FetchWebhookInfo returns the webhook's name and avatar. It is best effort:
// any failure yields the default name and no avatar.
func (c *Client) FetchWebhookInfo(ctx context.Context, webhookURL string) WebhookInfo {
	fallback := WebhookInfo{Name: DefaultWebhookName}

	status, body, err := c.get(ctx, webhookURL)
	if err != nil || status < 200 || status > 299 {
		c.log.Debug("webhook info unavailable", logger.Int("status", status), logger.Error(err))
		return fallback
	}

	var data struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	if err := jsonx.Unmarshal(body, &data); err != nil {
		return fallback
	}

	info := WebhookInfo{Name: data.Name}
	if info.Name == "" {
		info.Name = DefaultWebhookName
	}
	if data.Avatar != "" && data.ID != "" {
		info.AvatarURL = fmt.Sprintf("%s/%s/%s.png", AvatarCDN, data.ID, data.Avatar)
	}
	return info
}

// LoadJSON fetches an arbitrary message document.
func (c *Client) LoadJSON(ctx context.Context, rawURL string) (domain.Message, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.Message{}, fmt.Errorf("invalid URL %q", rawURL)
	}

	status, body, err := c.get(ctx, u.String())
	if err != nil {
		return domain.Message{}, err
	}
	switch {
	case status == http.StatusNotFound:
		return domain.Message{}, ErrResourceNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.Message{}, ErrForbidden
	case status < 200 || status > 299:
		return domain.Message{}, newAPIError(status, body)
	}

	return domain.ParseMessageBytes(body)
}

// Load resolves rawURL: a Discord message link is fetched through the
// selected webhook, anything else is loaded as a JSON document.
func (c *Client) Load(ctx context.Context, rawURL, webhookURL string) (domain.Message, error) {
	source := "url"
	var msg domain.Message
	var err error

	if id, ok := ExtractMessageID(rawURL); ok {
		source = "discord"
		if webhookURL == "" {
			err = ErrNoWebhookSelected
		} else {
			msg, err = c.FetchMessage(ctx, webhookURL, id)
		}
	} else {
		msg, err = c.LoadJSON(ctx, rawURL)
	}

	if err != nil {
		metrics.RecordLoad(source, metrics.OutcomeError)
		c.log.Warn("message load failed", logger.String("source", source), logger.Error(err))
		return domain.Message{}, err
	}
	metrics.RecordLoad(source, metrics.OutcomeOK)
	return msg, nil
}

// ExtractMessageID returns the message id of a Discord message link
// (https://discord.com/channels/<guild>/<channel>/<message>).
func ExtractMessageID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if !strings.Contains(host, "discord.com") && !strings.Contains(host, "discordapp.com") {
		return "", false
	}

	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 4 && parts[0] == "channels" {
		return parts[3], true
	}
	return "", false
}

func (c *Client) write(ctx context.Context, method, endpoint string, payload any, files []domain.MessageFile) (*SentMessage, error) {
	body, contentType, err := encodeBody(payload, files)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	status, resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, newAPIError(status, resp)
	}

	var sent SentMessage
	if len(resp) > 0 {
		if err := jsonx.Unmarshal(resp, &sent); err != nil {
			c.log.Warn("unreadable webhook response, message id unknown",
				logger.Int("status", status),
				logger.Error(err))
		}
	}
	return &sent, nil
}

// encodeBody returns a JSON body, or a multipart body with a payload_json
// part and one files[i] part per attachment.
func encodeBody(payload any, files []domain.MessageFile) (io.Reader, string, error) {
	data, err := jsonx.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("encode payload: %w", err)
	}
	if len(files) == 0 {
		return bytes.NewReader(data), "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("payload_json", string(data)); err != nil {
		return nil, "", err
	}
	for i, f := range files {
		part, err := w.CreateFormFile(fmt.Sprintf("files[%d]", i), f.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) get(ctx context.Context, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	metrics.ObserveRequest(req.Method, start)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		if errors.Is(err, ErrBlockedAddress) {
			c.log.Warn("blocked request to internal address",
				logger.String("host", req.URL.Host),
				logger.Error(err))
			return 0, nil, fmt.Errorf("%w: %s", ErrBlockedAddress, req.URL.Hostname())
		}
		return 0, nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer utils.Close(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentBytes+1))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: failed to read body: %v", ErrNetwork, err)
	}
	if len(body) > MaxDocumentBytes {
		return resp.StatusCode, nil, ErrDocumentTooLarge
	}

	c.log.Debug("discord request",
		logger.String("method", req.Method),
		logger.String("host", req.URL.Host),
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)))

	return resp.StatusCode, body, nil
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	var eb errorBody
	if err := jsonx.Unmarshal(body, &eb); err == nil {
		e.Message = eb.Message
		e.Code = eb.Code
	}
	return e
}

// IsAPIError reports whether err carries a remote HTTP failure.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

func withQuery(rawURL, key, value string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", domain.ErrInvalidWebhookURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func messageURL(webhookURL, messageID string) (string, error) {
	u, err := url.Parse(webhookURL)
	if err != nil || u.Host == "" {
		return "", domain.ErrInvalidWebhookURL
	}
	if messageID == "" || strings.ContainsAny(messageID, "/?#") {
		return "", ErrInvalidMessageLink
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/messages/" + messageID
	return u.String(), nil
}
