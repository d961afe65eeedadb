package domain

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

// Webhook is a saved Discord endpoint a user can send to.
//
// The whole collection is persisted as one JSON array; field names match the
// documents the browser editor has always written.
type Webhook struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is an opaque identifier, unique within the stored collection.
	ID string `json:"id"`

	// URL is the Discord execute-webhook endpoint.
	// Example: https://discord.com/api/webhooks/<id>/<token>
	URL string `json:"url"`

	// CreatedAt is the creation instant in unix milliseconds.
	CreatedAt int64 `json:"createdAt"`

	// ─────────────────────────────
	// Presentation (mutable)
	// ─────────────────────────────

	Name       string `json:"name"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
	Category   string `json:"category,omitempty"`
	Color      string `json:"color,omitempty"`
	IsFavorite bool   `json:"isFavorite,omitempty"`
}

// Created returns CreatedAt as a time.Time.
func (w Webhook) Created() time.Time {
	return time.UnixMilli(w.CreatedAt)
}

// IsValidWebhookURL reports whether raw looks like a Discord webhook URL.
// It never touches the network and returns false on any parse error.
func IsValidWebhookURL(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	validHost := host == "discord.com" ||
		host == "discordapp.com" ||
		strings.HasSuffix(host, ".discord.com")

	hasWebhookPath := strings.Contains(parsed.Path, "/api/webhooks/")
	hasIDAndToken := len(strings.Split(parsed.Path, "/")) >= 5

	return validHost && hasWebhookPath && hasIDAndToken
}

// WebhookList is the ordered, user-arranged collection of saved webhooks.
type WebhookList []Webhook

// Find returns the webhook with the given id.
func (l WebhookList) Find(id string) (Webhook, bool) {
	for _, w := range l {
		if w.ID == id {
			return w, true
		}
	}
	return Webhook{}, false
}

// Index returns the position of id, or -1.
func (l WebhookList) Index(id string) int {
	for i, w := range l {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// Without returns a new list with id removed, preserving order.
func (l WebhookList) Without(id string) WebhookList {
	out := make(WebhookList, 0, len(l))
	for _, w := range l {
		if w.ID != id {
			out = append(out, w)
		}
	}
	return out
}

// Move returns a new list with id moved to position to (clamped to bounds).
// An unknown id returns an unchanged copy.
func (l WebhookList) Move(id string, to int) WebhookList {
	from := l.Index(id)
	out := make(WebhookList, 0, len(l))
	if from < 0 {
		return append(out, l...)
	}

	moved := l[from]
	for i, w := range l {
		if i != from {
			out = append(out, w)
		}
	}

	if to < 0 {
		to = 0
	}
	if to > len(out) {
		to = len(out)
	}

	out = append(out, Webhook{})
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out
}

// Sorted returns favorites first, then the most recently created.
func (l WebhookList) Sorted() WebhookList {
	out := append(WebhookList(nil), l...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsFavorite != out[j].IsFavorite {
			return out[i].IsFavorite
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// Filter keeps webhooks matching the category ("" or "all" match everything),
// whose name contains query (case-insensitive) and, if favoritesOnly, that are favorites.
func (l WebhookList) Filter(category, query string, favoritesOnly bool) WebhookList {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make(WebhookList, 0, len(l))
	for _, w := range l {
		if category != "" && category != "all" && w.Category != category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(w.Name), query) {
			continue
		}
		if favoritesOnly && !w.IsFavorite {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Categories returns the distinct non-empty categories in first-seen order.
func (l WebhookList) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range l {
		if w.Category == "" || seen[w.Category] {
			continue
		}
		seen[w.Category] = true
		out = append(out, w.Category)
	}
	return out
}

// FallbackSelection returns the id that should be selected after deletedID
// was removed from remaining. The selection only moves when the deleted
// webhook was the selected one; it then falls back to the first remaining
// webhook, or "" when none are left.
func FallbackSelection(remaining WebhookList, deletedID, selectedID string) string {
	if selectedID != deletedID {
		return selectedID
	}
	if len(remaining) == 0 {
		return ""
	}
	return remaining[0].ID
}
