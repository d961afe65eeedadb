package domain

import "unicode/utf8"

// Embed is one rich-embed block within a Message.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       *int         `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Thumbnail   *EmbedMedia  `json:"thumbnail,omitempty"`
	Image       *EmbedMedia  `json:"image,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type EmbedAuthor struct {
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"iconUrl,omitempty"`
}

type EmbedFooter struct {
	Text    string `json:"text,omitempty"`
	IconURL string `json:"iconUrl,omitempty"`
}

// EmbedMedia is used for both thumbnail and image.
type EmbedMedia struct {
	URL string `json:"url,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline *bool  `json:"inline,omitempty"`
}

// TotalLength counts the characters Discord includes in its 6000 limit:
// title, description, footer text, author name and every field name and value.
func (e Embed) TotalLength() int {
	total := utf8.RuneCountInString(e.Title) + utf8.RuneCountInString(e.Description)
	if e.Footer != nil {
		total += utf8.RuneCountInString(e.Footer.Text)
	}
	if e.Author != nil {
		total += utf8.RuneCountInString(e.Author.Name)
	}
	for _, f := range e.Fields {
		total += utf8.RuneCountInString(f.Name) + utf8.RuneCountInString(f.Value)
	}
	return total
}

// IsEmpty reports whether the embed carries nothing Discord would render.
func (e Embed) IsEmpty() bool {
	return e.Title == "" &&
		e.Description == "" &&
		e.URL == "" &&
		e.Timestamp == "" &&
		(e.Author == nil || e.Author.Name == "") &&
		(e.Footer == nil || e.Footer.Text == "") &&
		(e.Thumbnail == nil || e.Thumbnail.URL == "") &&
		(e.Image == nil || e.Image.URL == "") &&
		len(e.Fields) == 0
}
