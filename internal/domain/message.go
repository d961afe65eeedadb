package domain

// Message is the payload being composed in the editor.
//
// It lives only for the active editing session; it is replaced wholesale by
// a loaded backup, a decoded share link or a document fetched from a URL.
type Message struct {
	Content    string        `json:"content"`
	Username   string        `json:"username,omitempty"`
	AvatarURL  string        `json:"avatarUrl,omitempty"`
	Embeds     []Embed       `json:"embeds"`
	TTS        *bool         `json:"tts,omitempty"`
	ThreadName string        `json:"threadName,omitempty"`
	Flags      *MessageFlags `json:"flags,omitempty"`

	// Files are in-memory attachments. They never leave the process as JSON:
	// share links, backups and exports all drop them.
	Files []MessageFile `json:"-"`
}

// MessageFlags mirrors the two user-facing Discord message flags.
type MessageFlags struct {
	SuppressEmbeds        *bool `json:"suppressEmbeds,omitempty"`
	SuppressNotifications *bool `json:"suppressNotifications,omitempty"`
}

// MessageFile is an attachment held in memory until the message is sent.
type MessageFile struct {
	ID   string
	Name string
	Size int64
	Data []byte
}

// Discord message flag bits (https://discord.com/developers/docs/resources/message#message-object-message-flags).
const (
	FlagSuppressEmbeds        = 1 << 2
	FlagSuppressNotifications = 1 << 12
)

// DefaultMessage returns the empty message the editor starts with.
func DefaultMessage() Message {
	return Message{
		Content: "",
		Embeds:  []Embed{},
	}
}

// Bitmask collapses the flags into Discord's integer representation.
func (f *MessageFlags) Bitmask() int {
	if f == nil {
		return 0
	}
	mask := 0
	if isTrue(f.SuppressEmbeds) {
		mask |= FlagSuppressEmbeds
	}
	if isTrue(f.SuppressNotifications) {
		mask |= FlagSuppressNotifications
	}
	return mask
}

// FlagsFromBitmask is the inverse of Bitmask. Bits other than the two
// supported flags are ignored; a mask with neither bit yields nil.
func FlagsFromBitmask(mask int) *MessageFlags {
	if mask&(FlagSuppressEmbeds|FlagSuppressNotifications) == 0 {
		return nil
	}
	f := &MessageFlags{}
	if mask&FlagSuppressEmbeds != 0 {
		f.SuppressEmbeds = Bool(true)
	}
	if mask&FlagSuppressNotifications != 0 {
		f.SuppressNotifications = Bool(true)
	}
	return f
}

// SuppressesEmbeds reports whether the suppress-embeds flag is set.
func (m Message) SuppressesEmbeds() bool {
	return m.Flags != nil && isTrue(m.Flags.SuppressEmbeds)
}

// HasFiles reports whether any attachment is present.
func (m Message) HasFiles() bool {
	return len(m.Files) > 0
}

// TotalFileSize sums the declared size of all attachments.
func (m Message) TotalFileSize() int64 {
	var total int64
	for _, f := range m.Files {
		total += f.Size
	}
	return total
}

// WithoutFiles returns a copy of m with attachments stripped.
func (m Message) WithoutFiles() Message {
	m.Files = nil
	return m
}

// Normalized returns the canonical form of m, the shape ParseMessageJSON
// produces: Embeds is never nil and an embed without fields has nil Fields.
// The embeds are copied, m is left untouched.
func (m Message) Normalized() Message {
	embeds := make([]Embed, len(m.Embeds))
	copy(embeds, m.Embeds)
	for i := range embeds {
		if len(embeds[i].Fields) == 0 {
			embeds[i].Fields = nil
		}
	}
	m.Embeds = embeds
	return m
}

// IsEmpty reports whether there is nothing to send.
func (m Message) IsEmpty() bool {
	return m.Content == "" && len(m.Embeds) == 0 && len(m.Files) == 0
}

// Bool returns a pointer to b, for optional boolean fields.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i, for optional integer fields.
func Int(i int) *int { return &i }

func isTrue(b *bool) bool { return b != nil && *b }
