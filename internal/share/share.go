// Package share turns a Message into a URL-safe token and back.
//
// The token is the unpadded URL-safe base64 of the message's UTF-8 JSON,
// which is byte-for-byte what the browser editor produces with
// btoa(unescape(encodeURIComponent(json))).
package share

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/MrSnakeDoc/hookstudio/internal/domain"
	"github.com/MrSnakeDoc/hookstudio/internal/jsonx"
	"github.com/MrSnakeDoc/hookstudio/internal/metrics"
)

// Param is the query parameter carrying the token.
const Param = "share"

// LongURLThreshold is the length above which most chat platforms truncate links.
const LongURLThreshold = 2000

var (
	// ErrHasFiles is returned when encoding a message with attachments.
	ErrHasFiles = errors.New("messages with files cannot be shared")
	// ErrCorruptLink is returned for any token that does not decode to a message.
	ErrCorruptLink = errors.New("this share link is broken")
)

// Encode serializes msg into a share token. Deterministic for a given value.
// The message is encoded in its normalized form, so Decode(Encode(m)) equals
// m.Normalized(), and equals m itself for any parsed or default message.
func Encode(msg domain.Message) (string, error) {
	if msg.HasFiles() {
		metrics.RecordShare("encode", metrics.OutcomeRejected)
		return "", ErrHasFiles
	}
	data, err := jsonx.MarshalPlain(msg.Normalized())
	if err != nil {
		metrics.RecordShare("encode", metrics.OutcomeError)
		return "", fmt.Errorf("encode message: %w", err)
	}
	metrics.RecordShare("encode", metrics.OutcomeOK)
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode reverses Encode. Nothing is returned on failure, so a caller can
// never apply half a message.
func Decode(token string) (domain.Message, error) {
	msg, err := decode(token)
	if err != nil {
		metrics.RecordShare("decode", metrics.OutcomeError)
		return domain.Message{}, err
	}
	metrics.RecordShare("decode", metrics.OutcomeOK)
	return msg, nil
}

func decode(token string) (domain.Message, error) {
	token = strings.TrimRight(strings.TrimSpace(token), "=")
	if token == "" {
		return domain.Message{}, ErrCorruptLink
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", ErrCorruptLink, err)
	}
	if !utf8.Valid(data) {
		return domain.Message{}, fmt.Errorf("%w: payload is not UTF-8", ErrCorruptLink)
	}

	msg, err := domain.ParseMessageBytes(data)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", ErrCorruptLink, err)
	}
	return msg, nil
}

// BuildURL returns base with the share parameter set to msg's token.
// Other query parameters on base are kept.
func BuildURL(base string, msg domain.Message) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	token, err := Encode(msg)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set(Param, token)
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// FromURL extracts a shared message from raw. ok is false when raw carries
// no share parameter. cleanURL is raw without the parameter, for replacing
// the visible address once the link has been consumed.
func FromURL(raw string) (msg domain.Message, cleanURL string, ok bool, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return domain.Message{}, "", false, fmt.Errorf("invalid URL: %w", err)
	}

	token := u.Query().Get(Param)
	if token == "" {
		return domain.Message{}, raw, false, nil
	}

	msg, err = Decode(token)
	if err != nil {
		return domain.Message{}, "", true, err
	}

	u.RawQuery = withoutParam(u.RawQuery, Param)
	return msg, u.String(), true, nil
}

// withoutParam drops every name=value pair named name from a raw query,
// leaving the other pairs and their order and escaping as they were.
func withoutParam(rawQuery, name string) string {
	var kept []string
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil && k == name {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

// IsLong reports whether a share URL is likely to be truncated when pasted.
func IsLong(shareURL string) bool {
	return len(shareURL) > LongURLThreshold
}
