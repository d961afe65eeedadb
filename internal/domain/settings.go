package domain

import (
	"strconv"
	"strings"
)

// DefaultEmbedColor is Discord's blurple.
const DefaultEmbedColor = "#5865F2"

// Settings are the editor preferences persisted under one key.
type Settings struct {
	CompactMode       bool   `json:"compactMode"`
	AutoSave          bool   `json:"autoSave"`
	ConfirmBeforeSend bool   `json:"confirmBeforeSend"`
	ShowCharCount     bool   `json:"showCharCount"`
	DefaultEmbedColor string `json:"defaultEmbedColor"`
}

func DefaultSettings() Settings {
	return Settings{
		CompactMode:       false,
		AutoSave:          true,
		ConfirmBeforeSend: true,
		ShowCharCount:     true,
		DefaultEmbedColor: DefaultEmbedColor,
	}
}

// ParseSettings overlays a stored document on the defaults. Wrong-typed
// fields are ignored; a non-object yields the defaults.
func ParseSettings(raw any) Settings {
	s := DefaultSettings()
	obj, ok := raw.(map[string]any)
	if !ok {
		return s
	}
	if v, ok := obj["compactMode"].(bool); ok {
		s.CompactMode = v
	}
	if v, ok := obj["autoSave"].(bool); ok {
		s.AutoSave = v
	}
	if v, ok := obj["confirmBeforeSend"].(bool); ok {
		s.ConfirmBeforeSend = v
	}
	if v, ok := obj["showCharCount"].(bool); ok {
		s.ShowCharCount = v
	}
	if v, ok := obj["defaultEmbedColor"].(string); ok {
		if _, valid := ParseHexColor(v); valid {
			s.DefaultEmbedColor = v
		}
	}
	return s
}

// EmbedColor returns the default embed color as an integer.
func (s Settings) EmbedColor() int {
	if c, ok := ParseHexColor(s.DefaultEmbedColor); ok {
		return c
	}
	c, _ := ParseHexColor(DefaultEmbedColor)
	return c
}

// ParseHexColor parses "#RRGGBB" (the leading # is optional).
func ParseHexColor(s string) (int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return int(v), true
}
