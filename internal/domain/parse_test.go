package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseMessageJSONRejectsNonObjects(t *testing.T) {
	inputs := []struct {
		name string
		raw  any
	}{
		{"nil", nil},
		{"array", []any{map[string]any{}}},
		{"string", "content"},
		{"number", 42.0},
		{"bool", true},
		{"nil map", map[string]any(nil)},
	}
	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMessageJSON(tt.raw); !errors.Is(err, ErrInvalidShape) {
				t.Errorf("ParseMessageJSON(%v) error = %v, want ErrInvalidShape", tt.raw, err)
			}
		})
	}
}

func TestParseMessageJSONEmptyObject(t *testing.T) {
	got, err := ParseMessageJSON(map[string]any{})
	if err != nil {
		t.Fatalf("ParseMessageJSON({}) error = %v", err)
	}
	if !reflect.DeepEqual(got, DefaultMessage()) {
		t.Errorf("ParseMessageJSON({}) = %+v, want default message", got)
	}
}

func TestParseMessageBytesWrongTypesDegrade(t *testing.T) {
	doc := `{
		"content": 12,
		"username": ["x"],
		"tts": "yes",
		"threadName": null,
		"flags": "nope",
		"embeds": [
			"not an object",
			42,
			{
				"title": {"nested": true},
				"description": "desc",
				"color": "blue",
				"author": "someone",
				"footer": {"text": 5, "iconUrl": "https://cdn/f.png"},
				"thumbnail": [],
				"fields": [null, {"name": "n", "value": false, "inline": "true"}]
			}
		]
	}`

	got, err := ParseMessageBytes([]byte(doc))
	if err != nil {
		t.Fatalf("ParseMessageBytes() error = %v", err)
	}

	want := DefaultMessage()
	want.Embeds = []Embed{{
		Description: "desc",
		Footer:      &EmbedFooter{IconURL: "https://cdn/f.png"},
		Fields:      []EmbedField{{Name: "n"}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseMessageBytes() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestParseMessageBytesDiscordWireShape(t *testing.T) {
	doc := `{
		"id": "1200",
		"content": "from discord",
		"avatar_url": "https://cdn/a.png",
		"thread_name": "news",
		"flags": 4100,
		"embeds": [{
			"type": "rich",
			"title": "t",
			"color": 5793266,
			"timestamp": "2024-01-15T10:30:00.000Z",
			"author": {"name": "me", "icon_url": "https://cdn/i.png"},
			"image": {"url": "https://cdn/img.png", "proxy_url": "ignored"},
			"fields": [{"name": "a", "value": "b", "inline": true}]
		}]
	}`

	got, err := ParseMessageBytes([]byte(doc))
	if err != nil {
		t.Fatalf("ParseMessageBytes() error = %v", err)
	}

	want := Message{
		Content:    "from discord",
		AvatarURL:  "https://cdn/a.png",
		ThreadName: "news",
		Flags:      &MessageFlags{SuppressEmbeds: Bool(true), SuppressNotifications: Bool(true)},
		Embeds: []Embed{{
			Title:     "t",
			Color:     Int(5793266),
			Timestamp: "2024-01-15T10:30:00.000Z",
			Author:    &EmbedAuthor{Name: "me", IconURL: "https://cdn/i.png"},
			Image:     &EmbedMedia{URL: "https://cdn/img.png"},
			Fields:    []EmbedField{{Name: "a", Value: "b", Inline: Bool(true)}},
		}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseMessageBytes() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want *int
	}{
		{"integer", 16711680.0, Int(0xFF0000)},
		{"zero", 0.0, Int(0)},
		{"hex string", "#00ff00", Int(0x00FF00)},
		{"negative", -1.0, nil},
		{"too large", 16777216.0, nil},
		{"fractional", 1.5, nil},
		{"bad string", "red", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseColor(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseColor(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseMessageBytesInvalidJSON(t *testing.T) {
	if _, err := ParseMessageBytes([]byte(`{"content":`)); !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("ParseMessageBytes(truncated) error = %v, want ErrInvalidJSON", err)
	}
	if _, err := ParseMessageBytes([]byte(`null`)); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("ParseMessageBytes(null) error = %v, want ErrInvalidShape", err)
	}
}

func TestParseWebhookAndBackupJSON(t *testing.T) {
	w, ok := ParseWebhookJSON(map[string]any{
		"id": "1-abc", "name": "alerts", "url": "https://discord.com/api/webhooks/1/t",
		"createdAt": 1700000000000.0, "isFavorite": true, "color": 3,
	})
	if !ok {
		t.Fatal("ParseWebhookJSON() rejected a valid entry")
	}
	if w.CreatedAt != 1700000000000 || !w.IsFavorite || w.Color != "" {
		t.Errorf("ParseWebhookJSON() = %+v", w)
	}
	if _, ok := ParseWebhookJSON(map[string]any{"name": "no id"}); ok {
		t.Error("ParseWebhookJSON() accepted an entry without id")
	}

	b, ok := ParseBackupJSON(map[string]any{"id": "backup_1", "name": "n", "timestamp": 5.0, "message": "garbage"})
	if !ok {
		t.Fatal("ParseBackupJSON() rejected a valid entry")
	}
	if !reflect.DeepEqual(b.Message, DefaultMessage()) || b.Timestamp != 5 {
		t.Errorf("ParseBackupJSON() = %+v", b)
	}
}
