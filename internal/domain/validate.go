package domain

import (
	"fmt"
	"unicode/utf8"

	"go.uber.org/multierr"
)

// Discord limits.
const (
	MaxContentLength    = 2000
	MaxThreadNameLength = 100
	MaxEmbeds           = 10
	MaxEmbedTitle       = 256
	MaxEmbedDescription = 4096
	MaxEmbedFields      = 25
	MaxFieldName        = 256
	MaxFieldValue       = 1024
	MaxAuthorName       = 256
	MaxFooterText       = 2048
	MaxEmbedTotal       = 6000
	MaxTotalFileSize    = 25 * 1024 * 1024
	MaxColor            = 0xFFFFFF
)

// Validate checks every hard limit and returns all violations combined
// (use multierr.Errors to list them). The 6000-character embed total is
// not checked here; see Warnings.
func (m Message) Validate() error {
	var err error

	if n := utf8.RuneCountInString(m.Content); n > MaxContentLength {
		err = multierr.Append(err, fmt.Errorf("content is %d characters, max %d", n, MaxContentLength))
	}
	if n := utf8.RuneCountInString(m.ThreadName); n > MaxThreadNameLength {
		err = multierr.Append(err, fmt.Errorf("thread name is %d characters, max %d", n, MaxThreadNameLength))
	}
	if len(m.Embeds) > MaxEmbeds {
		err = multierr.Append(err, fmt.Errorf("message has %d embeds, max %d", len(m.Embeds), MaxEmbeds))
	}
	if size := m.TotalFileSize(); size > MaxTotalFileSize {
		err = multierr.Append(err, fmt.Errorf("attachments total %d bytes, max %d", size, MaxTotalFileSize))
	}

	for i, e := range m.Embeds {
		err = multierr.Append(err, e.validate(i))
	}

	return err
}

func (e Embed) validate(i int) error {
	var err error
	tooLong := func(what, s string, limit int) {
		if n := utf8.RuneCountInString(s); n > limit {
			err = multierr.Append(err, fmt.Errorf("embed %d: %s is %d characters, max %d", i+1, what, n, limit))
		}
	}

	tooLong("title", e.Title, MaxEmbedTitle)
	tooLong("description", e.Description, MaxEmbedDescription)
	if e.Author != nil {
		tooLong("author name", e.Author.Name, MaxAuthorName)
	}
	if e.Footer != nil {
		tooLong("footer text", e.Footer.Text, MaxFooterText)
	}
	if e.Color != nil && (*e.Color < 0 || *e.Color > MaxColor) {
		err = multierr.Append(err, fmt.Errorf("embed %d: color %d out of range", i+1, *e.Color))
	}
	if len(e.Fields) > MaxEmbedFields {
		err = multierr.Append(err, fmt.Errorf("embed %d: %d fields, max %d", i+1, len(e.Fields), MaxEmbedFields))
	}
	for j, f := range e.Fields {
		tooLong(fmt.Sprintf("field %d name", j+1), f.Name, MaxFieldName)
		tooLong(fmt.Sprintf("field %d value", j+1), f.Value, MaxFieldValue)
	}

	return err
}

// Warnings lists soft-limit problems the editor shows without blocking.
func (m Message) Warnings() []string {
	var out []string
	for i, e := range m.Embeds {
		if n := e.TotalLength(); n > MaxEmbedTotal {
			out = append(out, fmt.Sprintf("embed %d: total length %d exceeds %d characters", i+1, n, MaxEmbedTotal))
		}
	}
	return out
}

// ValidateForSend runs the checks that must pass before any request is made.
func ValidateForSend(m Message) error {
	if m.IsEmpty() {
		return ErrEmptyMessage
	}
	if m.SuppressesEmbeds() && len(m.Embeds) > 0 {
		return ErrSuppressedEmbeds
	}
	return m.Validate()
}
