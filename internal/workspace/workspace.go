package workspace

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/MrSnakeDoc/hookstudio/internal/discord"
	"github.com/MrSnakeDoc/hookstudio/internal/domain"
	"github.com/MrSnakeDoc/hookstudio/internal/jsonx"
	"github.com/MrSnakeDoc/hookstudio/internal/logger"
)

var (
	ErrSendInFlight      = errors.New("a send is already in progress")
	ErrNoWebhookSelected = errors.New("select a webhook first")
	ErrUnknownWebhook    = errors.New("webhook not found")
	ErrInvalidEditTarget = errors.New("expected a message id or a Discord message link")
)

// Persister saves and restores the webhook list.
type Persister interface {
	LoadWebhooks(ctx context.Context) domain.WebhookList
	SaveWebhooks(ctx context.Context, list domain.WebhookList) error
}

// Discord is the outbound side of the workspace.
type Discord interface {
	Send(ctx context.Context, webhookURL string, msg domain.Message) (*discord.SentMessage, error)
	Edit(ctx context.Context, webhookURL, messageID string, msg domain.Message) (*discord.SentMessage, error)
	Load(ctx context.Context, rawURL, webhookURL string) (domain.Message, error)
	FetchWebhookInfo(ctx context.Context, webhookURL string) discord.WebhookInfo
}

// Workspace is the editing session: the saved webhooks, which one is
// selected and the message being composed.
//
// Every mutation of the webhook list is persisted before it becomes visible,
// so a failed save leaves the session unchanged. Network calls run without
// the lock held; their results are applied in one step once they succeed.
type Workspace struct {
	store   Persister
	discord Discord
	log     logger.Logger

	mu       sync.RWMutex
	webhooks domain.WebhookList
	selected string
	message  domain.Message

	sending atomic.Bool
}

func New(store Persister, client Discord, log logger.Logger) *Workspace {
	return &Workspace{
		store:    store,
		discord:  client,
		log:      log,
		webhooks: domain.WebhookList{},
		message:  domain.DefaultMessage(),
	}
}

// Open loads the stored webhooks and selects the first one.
func (w *Workspace) Open(ctx context.Context) {
	list := w.store.LoadWebhooks(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.webhooks = list
	w.selected = ""
	if len(list) > 0 {
		w.selected = list[0].ID
	}
	w.log.Info("workspace opened", logger.Int("webhooks", len(list)))
}

// Reload re-reads the stored webhooks, picking up changes another instance
// made to a shared store. The selection survives when its webhook still
// exists, otherwise it falls back to the first one. It reports whether the
// list changed.
func (w *Workspace) Reload(ctx context.Context) bool {
	list := w.store.LoadWebhooks(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if sameWebhooks(w.webhooks, list) {
		return false
	}
	w.webhooks = list
	if list.Index(w.selected) < 0 {
		w.selected = domain.FallbackSelection(list, w.selected, w.selected)
	}
	w.log.Info("webhooks reloaded from store", logger.Int("webhooks", len(list)))
	return true
}

func sameWebhooks(a, b domain.WebhookList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Webhooks returns a copy of the list in user order.
func (w *Workspace) Webhooks() domain.WebhookList {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append(domain.WebhookList{}, w.webhooks...)
}

// Selected returns the selected webhook, if any.
func (w *Workspace) Selected() (domain.Webhook, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.selected == "" {
		return domain.Webhook{}, false
	}
	return w.webhooks.Find(w.selected)
}

func (w *Workspace) Select(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.webhooks.Index(id) < 0 {
		return ErrUnknownWebhook
	}
	w.selected = id
	return nil
}

// AddWebhook validates rawURL, fills the name and avatar from Discord when
// possible, saves and selects the new webhook. An explicit name wins over
// the fetched one.
func (w *Workspace) AddWebhook(ctx context.Context, name, rawURL string) (domain.Webhook, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !domain.IsValidWebhookURL(rawURL) {
		return domain.Webhook{}, domain.ErrInvalidWebhookURL
	}

	info := w.discord.FetchWebhookInfo(ctx, rawURL)

	hook := domain.Webhook{
		ID:        domain.GenerateID(),
		Name:      strings.TrimSpace(name),
		URL:       rawURL,
		AvatarURL: info.AvatarURL,
		CreatedAt: domain.NowMillis(),
	}
	if hook.Name == "" {
		hook.Name = info.Name
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	next := append(append(domain.WebhookList{}, w.webhooks...), hook)
	if err := w.store.SaveWebhooks(ctx, next); err != nil {
		return domain.Webhook{}, err
	}
	w.webhooks = next
	w.selected = hook.ID

	w.log.Info("webhook added", logger.String("id", hook.ID), logger.String("name", hook.Name))
	return hook, nil
}

// DeleteWebhook removes id. When it was selected the selection falls back
// to the first remaining webhook.
func (w *Workspace) DeleteWebhook(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.webhooks.Index(id) < 0 {
		return ErrUnknownWebhook
	}
	next := w.webhooks.Without(id)
	if err := w.store.SaveWebhooks(ctx, next); err != nil {
		return err
	}
	w.webhooks = next
	w.selected = domain.FallbackSelection(next, id, w.selected)

	w.log.Info("webhook deleted", logger.String("id", id))
	return nil
}

// Patch holds the mutable presentation fields; nil leaves a field unchanged.
type Patch struct {
	Name       *string `json:"name"`
	Category   *string `json:"category"`
	Color      *string `json:"color"`
	IsFavorite *bool   `json:"isFavorite"`
}

func (w *Workspace) UpdateWebhook(ctx context.Context, id string, p Patch) (domain.Webhook, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.webhooks.Index(id)
	if i < 0 {
		return domain.Webhook{}, ErrUnknownWebhook
	}

	next := append(domain.WebhookList{}, w.webhooks...)
	hook := &next[i]
	if p.Name != nil && strings.TrimSpace(*p.Name) != "" {
		hook.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		hook.Category = strings.TrimSpace(*p.Category)
	}
	if p.Color != nil {
		hook.Color = *p.Color
	}
	if p.IsFavorite != nil {
		hook.IsFavorite = *p.IsFavorite
	}

	if err := w.store.SaveWebhooks(ctx, next); err != nil {
		return domain.Webhook{}, err
	}
	w.webhooks = next
	return *hook, nil
}

// ReorderWebhook moves id to index (clamped to the list bounds).
func (w *Workspace) ReorderWebhook(ctx context.Context, id string, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.webhooks.Index(id) < 0 {
		return ErrUnknownWebhook
	}
	next := w.webhooks.Move(id, index)
	if err := w.store.SaveWebhooks(ctx, next); err != nil {
		return err
	}
	w.webhooks = next
	return nil
}

// Message returns the message being composed.
func (w *Workspace) Message() domain.Message {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.message
}

// SetMessage replaces the message wholesale.
func (w *Workspace) SetMessage(msg domain.Message) {
	msg = msg.Normalized()
	w.mu.Lock()
	w.message = msg
	w.mu.Unlock()
}

func (w *Workspace) ClearMessage() {
	w.SetMessage(domain.DefaultMessage())
}

// Send sends the current message to the selected webhook.
func (w *Workspace) Send(ctx context.Context) (*discord.SentMessage, error) {
	return w.SendMessage(ctx, w.Message())
}

// SendMessage sends msg to the selected webhook. Only one send runs at a
// time; a concurrent call fails with ErrSendInFlight.
func (w *Workspace) SendMessage(ctx context.Context, msg domain.Message) (*discord.SentMessage, error) {
	if !w.sending.CompareAndSwap(false, true) {
		return nil, ErrSendInFlight
	}
	defer w.sending.Store(false)

	hook, ok := w.Selected()
	if !ok {
		return nil, ErrNoWebhookSelected
	}
	return w.discord.Send(ctx, hook.URL, msg)
}

// EditMessage replaces a message the selected webhook sent earlier with msg.
// target is a message id or a Discord message link. Edits share the send
// guard.
func (w *Workspace) EditMessage(ctx context.Context, target string, msg domain.Message) (*discord.SentMessage, error) {
	id, ok := messageID(target)
	if !ok {
		return nil, ErrInvalidEditTarget
	}

	if !w.sending.CompareAndSwap(false, true) {
		return nil, ErrSendInFlight
	}
	defer w.sending.Store(false)

	hook, ok := w.Selected()
	if !ok {
		return nil, ErrNoWebhookSelected
	}
	return w.discord.Edit(ctx, hook.URL, id, msg)
}

// messageID accepts a bare snowflake or a message link.
func messageID(target string) (string, bool) {
	target = strings.TrimSpace(target)
	if id, ok := discord.ExtractMessageID(target); ok {
		return id, true
	}
	if target == "" {
		return "", false
	}
	for _, r := range target {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return target, true
}

// Sending reports whether a send is in flight.
func (w *Workspace) Sending() bool {
	return w.sending.Load()
}

// LoadMessage fetches rawURL and, only if that fully succeeds, replaces the
// current message with the result.
func (w *Workspace) LoadMessage(ctx context.Context, rawURL string) (domain.Message, error) {
	var webhookURL string
	if hook, ok := w.Selected(); ok {
		webhookURL = hook.URL
	}

	msg, err := w.discord.Load(ctx, strings.TrimSpace(rawURL), webhookURL)
	if err != nil {
		return domain.Message{}, err
	}
	w.SetMessage(msg)
	return msg, nil
}

// ExportJSON returns the current message as an indented document, without
// attachments.
func (w *Workspace) ExportJSON() ([]byte, error) {
	return jsonx.MarshalIndent(w.Message().WithoutFiles(), "", "  ")
}
