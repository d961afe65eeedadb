package domain

import (
	"fmt"
	"math"

	"github.com/MrSnakeDoc/hookstudio/internal/jsonx"
)

// ParseMessageBytes decodes a JSON document and normalizes it into a Message.
func ParseMessageBytes(data []byte) (Message, error) {
	var raw any
	if err := jsonx.Unmarshal(data, &raw); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return ParseMessageJSON(raw)
}

// ParseMessageJSON is the only way untrusted JSON (pasted, loaded from a URL,
// returned by Discord, read back from storage) enters the typed model.
//
// raw must be a decoded JSON object (map[string]any); anything else fails with
// ErrInvalidShape. Every other problem degrades to a default: wrong-typed or
// missing fields are left empty, non-object list entries are dropped.
// Both the editor's camelCase keys and Discord's snake_case keys are accepted.
func ParseMessageJSON(raw any) (Message, error) {
	obj, ok := raw.(map[string]any)
	if !ok || obj == nil {
		return Message{}, ErrInvalidShape
	}

	msg := DefaultMessage()
	msg.Content = str(obj, "content")
	msg.Username = str(obj, "username")
	msg.AvatarURL = str(obj, "avatarUrl", "avatar_url")
	msg.ThreadName = str(obj, "threadName", "thread_name")
	msg.TTS = optBool(obj, "tts")
	msg.Flags = parseFlags(obj["flags"])

	if list, ok := obj["embeds"].([]any); ok {
		for _, item := range list {
			if e, ok := item.(map[string]any); ok {
				msg.Embeds = append(msg.Embeds, parseEmbed(e))
			}
		}
	}

	return msg, nil
}

func parseEmbed(obj map[string]any) Embed {
	e := Embed{
		Title:       str(obj, "title"),
		Description: str(obj, "description"),
		URL:         str(obj, "url"),
		Timestamp:   str(obj, "timestamp"),
		Color:       parseColor(obj["color"]),
	}

	if a, ok := obj["author"].(map[string]any); ok {
		e.Author = &EmbedAuthor{
			Name:    str(a, "name"),
			URL:     str(a, "url"),
			IconURL: str(a, "iconUrl", "icon_url"),
		}
	}
	if f, ok := obj["footer"].(map[string]any); ok {
		e.Footer = &EmbedFooter{
			Text:    str(f, "text"),
			IconURL: str(f, "iconUrl", "icon_url"),
		}
	}
	if t, ok := obj["thumbnail"].(map[string]any); ok {
		e.Thumbnail = &EmbedMedia{URL: str(t, "url")}
	}
	if i, ok := obj["image"].(map[string]any); ok {
		e.Image = &EmbedMedia{URL: str(i, "url")}
	}

	if list, ok := obj["fields"].([]any); ok {
		for _, item := range list {
			f, ok := item.(map[string]any)
			if !ok {
				continue
			}
			e.Fields = append(e.Fields, EmbedField{
				Name:   str(f, "name"),
				Value:  str(f, "value"),
				Inline: optBool(f, "inline"),
			})
		}
	}

	return e
}

// parseFlags accepts either the editor's {suppressEmbeds, suppressNotifications}
// object or Discord's integer bitmask.
func parseFlags(v any) *MessageFlags {
	switch t := v.(type) {
	case map[string]any:
		return &MessageFlags{
			SuppressEmbeds:        optBool(t, "suppressEmbeds", "suppress_embeds"),
			SuppressNotifications: optBool(t, "suppressNotifications", "suppress_notifications"),
		}
	case float64:
		if t < 0 || t != math.Trunc(t) || t > math.MaxInt32 {
			return nil
		}
		return FlagsFromBitmask(int(t))
	default:
		return nil
	}
}

// parseColor accepts an integer in 0..0xFFFFFF or a "#RRGGBB" string.
func parseColor(v any) *int {
	switch t := v.(type) {
	case float64:
		if t < 0 || t > 0xFFFFFF || t != math.Trunc(t) {
			return nil
		}
		return Int(int(t))
	case string:
		if c, ok := ParseHexColor(t); ok {
			return Int(c)
		}
	}
	return nil
}

// ParseWebhookJSON normalizes one stored webhook entry. Entries without an
// id are rejected so the collection keeps its unique-id invariant.
func ParseWebhookJSON(raw any) (Webhook, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Webhook{}, false
	}
	w := Webhook{
		ID:        str(obj, "id"),
		Name:      str(obj, "name"),
		URL:       str(obj, "url"),
		AvatarURL: str(obj, "avatarUrl", "avatar_url"),
		Category:  str(obj, "category"),
		Color:     str(obj, "color"),
	}
	if w.ID == "" {
		return Webhook{}, false
	}
	if v, ok := obj["createdAt"].(float64); ok {
		w.CreatedAt = int64(v)
	}
	if v, ok := obj["isFavorite"].(bool); ok {
		w.IsFavorite = v
	}
	return w, true
}

// ParseBackupJSON normalizes one stored backup entry.
func ParseBackupJSON(raw any) (Backup, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Backup{}, false
	}
	b := Backup{
		ID:   str(obj, "id"),
		Name: str(obj, "name"),
	}
	if b.ID == "" {
		return Backup{}, false
	}
	if v, ok := obj["timestamp"].(float64); ok {
		b.Timestamp = int64(v)
	}
	msg, err := ParseMessageJSON(obj["message"])
	if err != nil {
		msg = DefaultMessage()
	}
	b.Message = msg
	return b, true
}

// str returns the first key holding a string value.
func str(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			return s
		}
	}
	return ""
}

func optBool(obj map[string]any, keys ...string) *bool {
	for _, k := range keys {
		if b, ok := obj[k].(bool); ok {
			return Bool(b)
		}
	}
	return nil
}
