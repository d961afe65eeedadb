package discord

import "github.com/MrSnakeDoc/hookstudio/internal/domain"

// webhookPayload is the execute-webhook body in Discord's snake_case shape.
type webhookPayload struct {
	Content     string       `json:"content,omitempty"`
	Username    string       `json:"username,omitempty"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	Embeds      []wireEmbed  `json:"embeds,omitempty"`
	TTS         bool         `json:"tts,omitempty"`
	ThreadName  string       `json:"thread_name,omitempty"`
	Flags       int          `json:"flags,omitempty"`
	Attachments []attachment `json:"attachments,omitempty"`
}

// editPayload always carries content and embeds so an edit can clear them.
type editPayload struct {
	Content     string       `json:"content"`
	Embeds      []wireEmbed  `json:"embeds"`
	Flags       int          `json:"flags,omitempty"`
	Attachments []attachment `json:"attachments,omitempty"`
}

type attachment struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
}

type wireEmbed struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	URL         string      `json:"url,omitempty"`
	Color       *int        `json:"color,omitempty"`
	Timestamp   string      `json:"timestamp,omitempty"`
	Author      *wireAuthor `json:"author,omitempty"`
	Footer      *wireFooter `json:"footer,omitempty"`
	Thumbnail   *wireMedia  `json:"thumbnail,omitempty"`
	Image       *wireMedia  `json:"image,omitempty"`
	Fields      []wireField `json:"fields,omitempty"`
}

type wireAuthor struct {
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type wireFooter struct {
	Text    string `json:"text,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type wireMedia struct {
	URL string `json:"url,omitempty"`
}

type wireField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

func newPayload(m domain.Message) webhookPayload {
	return webhookPayload{
		Content:     m.Content,
		Username:    m.Username,
		AvatarURL:   m.AvatarURL,
		Embeds:      wireEmbeds(m.Embeds),
		TTS:         m.TTS != nil && *m.TTS,
		ThreadName:  m.ThreadName,
		Flags:       m.Flags.Bitmask(),
		Attachments: attachments(m.Files),
	}
}

func newEditPayload(m domain.Message) editPayload {
	embeds := wireEmbeds(m.Embeds)
	if embeds == nil {
		embeds = []wireEmbed{}
	}
	return editPayload{
		Content:     m.Content,
		Embeds:      embeds,
		Flags:       m.Flags.Bitmask(),
		Attachments: attachments(m.Files),
	}
}

func wireEmbeds(in []domain.Embed) []wireEmbed {
	if len(in) == 0 {
		return nil
	}
	out := make([]wireEmbed, 0, len(in))
	for _, e := range in {
		w := wireEmbed{
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
			Color:       e.Color,
			Timestamp:   e.Timestamp,
		}
		if e.Author != nil && *e.Author != (domain.EmbedAuthor{}) {
			w.Author = &wireAuthor{Name: e.Author.Name, URL: e.Author.URL, IconURL: e.Author.IconURL}
		}
		if e.Footer != nil && *e.Footer != (domain.EmbedFooter{}) {
			w.Footer = &wireFooter{Text: e.Footer.Text, IconURL: e.Footer.IconURL}
		}
		if e.Thumbnail != nil && e.Thumbnail.URL != "" {
			w.Thumbnail = &wireMedia{URL: e.Thumbnail.URL}
		}
		if e.Image != nil && e.Image.URL != "" {
			w.Image = &wireMedia{URL: e.Image.URL}
		}
		for _, f := range e.Fields {
			w.Fields = append(w.Fields, wireField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline != nil && *f.Inline,
			})
		}
		out = append(out, w)
	}
	return out
}

func attachments(files []domain.MessageFile) []attachment {
	if len(files) == 0 {
		return nil
	}
	out := make([]attachment, len(files))
	for i, f := range files {
		out[i] = attachment{ID: i, Filename: f.Name}
	}
	return out
}
