package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/hookstudio/internal/domain"
	"github.com/MrSnakeDoc/hookstudio/internal/jsonx"
	"github.com/MrSnakeDoc/hookstudio/internal/logger"
)

func newTestClient() *Client {
	return NewClient(2*time.Second, "hookstudio-test", logger.New("error", false), AllowPrivateNetworks(true))
}

func TestSendJSON(t *testing.T) {
	var got map[string]any
	var query string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if ua := r.Header.Get("User-Agent"); ua != "hookstudio-test" {
			t.Errorf("User-Agent = %q", ua)
		}
		query = r.URL.RawQuery
		if err := jsonx.UnmarshalReader(r.Body, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, `{"id":"111","channel_id":"222"}`)
	}))
	defer srv.Close()

	msg := domain.DefaultMessage()
	msg.Content = "hello"
	msg.AvatarURL = "https://example.com/a.png"
	msg.ThreadName = "topic"
	msg.Flags = &domain.MessageFlags{SuppressNotifications: domain.Bool(true)}
	msg.Embeds = []domain.Embed{{
		Title:  "t",
		Color:  domain.Int(255),
		Author: &domain.EmbedAuthor{Name: "me", IconURL: "https://example.com/i.png"},
		Fields: []domain.EmbedField{{Name: "n", Value: "v", Inline: domain.Bool(true)}},
	}}

	sent, err := newTestClient().Send(context.Background(), srv.URL+"/api/webhooks/1/tok", msg)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if sent.ID != "111" || sent.ChannelID != "222" {
		t.Errorf("Send() = %+v", sent)
	}
	if query != "wait=true" {
		t.Errorf("query = %q, want wait=true", query)
	}

	if got["content"] != "hello" || got["avatar_url"] != "https://example.com/a.png" || got["thread_name"] != "topic" {
		t.Errorf("payload = %v", got)
	}
	if got["flags"] != float64(domain.FlagSuppressNotifications) {
		t.Errorf("flags = %v, want %d", got["flags"], domain.FlagSuppressNotifications)
	}
	if _, ok := got["username"]; ok {
		t.Error("empty username should be omitted")
	}
	if _, ok := got["tts"]; ok {
		t.Error("unset tts should be omitted")
	}

	embed := got["embeds"].([]any)[0].(map[string]any)
	if embed["author"].(map[string]any)["icon_url"] != "https://example.com/i.png" {
		t.Errorf("embed author = %v, want snake_case icon_url", embed["author"])
	}
	if embed["fields"].([]any)[0].(map[string]any)["inline"] != true {
		t.Errorf("embed fields = %v", embed["fields"])
	}
}

func TestSendMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}

		var payload map[string]any
		if err := jsonx.Unmarshal([]byte(r.FormValue("payload_json")), &payload); err != nil {
			t.Errorf("payload_json: %v", err)
		}
		if payload["content"] != "see attached" {
			t.Errorf("payload content = %v", payload["content"])
		}
		if atts, _ := payload["attachments"].([]any); len(atts) != 2 {
			t.Errorf("attachments = %v", payload["attachments"])
		}

		for i, want := range []string{"a.txt", "b.log"} {
			fhs := r.MultipartForm.File[fmt.Sprintf("files[%d]", i)]
			if len(fhs) != 1 || fhs[0].Filename != want {
				t.Errorf("files[%d] = %v, want %s", i, fhs, want)
			}
		}
		_, _ = io.WriteString(w, `{"id":"1"}`)
	}))
	defer srv.Close()

	msg := domain.DefaultMessage()
	msg.Content = "see attached"
	msg.Files = []domain.MessageFile{
		{ID: "1", Name: "a.txt", Size: 3, Data: []byte("abc")},
		{ID: "2", Name: "b.log", Size: 2, Data: []byte("xy")},
	}

	if _, err := newTestClient().Send(context.Background(), srv.URL, msg); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
}

func TestSendRejectedBeforeRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	suppressed := domain.DefaultMessage()
	suppressed.Flags = &domain.MessageFlags{SuppressEmbeds: domain.Bool(true)}
	suppressed.Embeds = []domain.Embed{{Title: "visible"}}

	tests := []struct {
		name string
		msg  domain.Message
		want error
	}{
		{"empty", domain.DefaultMessage(), domain.ErrEmptyMessage},
		{"suppressed embeds", suppressed, domain.ErrSuppressedEmbeds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestClient().Send(context.Background(), srv.URL, tt.msg)
			if !errors.Is(err, tt.want) {
				t.Errorf("Send() error = %v, want %v", err, tt.want)
			}
		})
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("server received %d requests, want 0", n)
	}
}

func TestSendAPIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"discord message", http.StatusBadRequest, `{"message":"Invalid Form Body","code":50035}`, "Invalid Form Body"},
		{"no body", http.StatusInternalServerError, ``, "HTTP 500"},
		{"non-JSON body", http.StatusBadGateway, `<html>`, "HTTP 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			msg := domain.DefaultMessage()
			msg.Content = "x"
			_, err := newTestClient().Send(context.Background(), srv.URL, msg)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Send() error = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status || err.Error() != tt.wantMsg {
				t.Errorf("APIError = %d %q, want %d %q", apiErr.Status, err.Error(), tt.status, tt.wantMsg)
			}
		})
	}
}

func TestFetchMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/webhooks/1/tok/messages/42":
			_, _ = io.WriteString(w, `{"id":"42","content":"hi","flags":4096,"embeds":[{"title":"T","footer":{"text":"f","icon_url":"https://x/i.png"}}]}`)
		case "/api/webhooks/1/tok/messages/403":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient()
	ctx := context.Background()
	hook := srv.URL + "/api/webhooks/1/tok"

	msg, err := c.FetchMessage(ctx, hook, "42")
	if err != nil {
		t.Fatalf("FetchMessage() error = %v", err)
	}
	if msg.Content != "hi" || msg.Flags == nil || msg.Flags.SuppressNotifications == nil {
		t.Errorf("FetchMessage() = %+v", msg)
	}
	if len(msg.Embeds) != 1 || msg.Embeds[0].Footer.IconURL != "https://x/i.png" {
		t.Errorf("embeds = %+v", msg.Embeds)
	}

	if _, err := c.FetchMessage(ctx, hook, "404"); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("FetchMessage() missing error = %v", err)
	}
	if _, err := c.FetchMessage(ctx, hook, "403"); !errors.Is(err, ErrNotWebhookMessage) {
		t.Errorf("FetchMessage() forbidden error = %v", err)
	}
}

func TestFetchWebhookInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = io.WriteString(w, `{"id":"99","name":"Announcements","avatar":"abc"}`)
		case "/noname":
			_, _ = io.WriteString(w, `{"id":"99"}`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	c := newTestClient()
	ctx := context.Background()

	info := c.FetchWebhookInfo(ctx, srv.URL+"/ok")
	if info.Name != "Announcements" || info.AvatarURL != "https://cdn.discordapp.com/avatars/99/abc.png" {
		t.Errorf("FetchWebhookInfo() = %+v", info)
	}
	if info := c.FetchWebhookInfo(ctx, srv.URL+"/noname"); info.Name != DefaultWebhookName || info.AvatarURL != "" {
		t.Errorf("FetchWebhookInfo() without name = %+v", info)
	}
	if info := c.FetchWebhookInfo(ctx, srv.URL+"/denied"); info.Name != DefaultWebhookName {
		t.Errorf("FetchWebhookInfo() on 401 = %+v", info)
	}
	if info := c.FetchWebhookInfo(ctx, "http://127.0.0.1:1/unreachable"); info.Name != DefaultWebhookName {
		t.Errorf("FetchWebhookInfo() unreachable = %+v", info)
	}
}

func TestLoadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/message.json":
			_, _ = io.WriteString(w, `{"content":"from url","embeds":[{"description":"d"}]}`)
		case "/broken.json":
			_, _ = io.WriteString(w, `{"content":`)
		case "/array.json":
			_, _ = io.WriteString(w, `[]`)
		case "/private.json":
			w.WriteHeader(http.StatusForbidden)
		case "/teapot":
			w.WriteHeader(http.StatusTeapot)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient()
	ctx := context.Background()

	msg, err := c.LoadJSON(ctx, srv.URL+"/message.json")
	if err != nil || msg.Content != "from url" || len(msg.Embeds) != 1 {
		t.Fatalf("LoadJSON() = %+v, %v", msg, err)
	}

	tests := []struct {
		path string
		want error
	}{
		{"/broken.json", domain.ErrInvalidJSON},
		{"/array.json", domain.ErrInvalidShape},
		{"/private.json", ErrForbidden},
		{"/missing.json", ErrResourceNotFound},
	}
	for _, tt := range tests {
		if _, err := c.LoadJSON(ctx, srv.URL+tt.path); !errors.Is(err, tt.want) {
			t.Errorf("LoadJSON(%s) error = %v, want %v", tt.path, err, tt.want)
		}
	}

	if _, err := c.LoadJSON(ctx, srv.URL+"/teapot"); !IsAPIError(err) {
		t.Errorf("LoadJSON(/teapot) error = %v, want APIError", err)
	}
	if _, err := c.LoadJSON(ctx, "ftp://example.com/x.json"); err == nil {
		t.Error("LoadJSON() should reject non-HTTP URLs")
	}
}

func TestLoadDiscordLinkNeedsWebhook(t *testing.T) {
	_, err := newTestClient().Load(context.Background(), "https://discord.com/channels/1/2/3", "")
	if !errors.Is(err, ErrNoWebhookSelected) {
		t.Errorf("Load() error = %v, want ErrNoWebhookSelected", err)
	}
}

func TestExtractMessageID(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://discord.com/channels/111/222/333", "333", true},
		{"https://ptb.discord.com/channels/111/222/333/", "333", true},
		{"https://discordapp.com/channels/111/222/333", "333", true},
		{"https://discord.com/channels/111/222", "", false},
		{"https://discord.com/api/webhooks/1/tok", "", false},
		{"https://example.com/channels/1/2/3", "", false},
		{"://bad", "", false},
	}

	for _, tt := range tests {
		id, ok := ExtractMessageID(tt.url)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("ExtractMessageID(%q) = %q, %v, want %q, %v", tt.url, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestEditPatchesMessage(t *testing.T) {
	var method, path string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_ = jsonx.UnmarshalReader(r.Body, &body)
		_, _ = io.WriteString(w, `{"id":"7"}`)
	}))
	defer srv.Close()

	msg := domain.DefaultMessage()
	msg.Content = "edited"

	sent, err := newTestClient().Edit(context.Background(), srv.URL+"/api/webhooks/1/tok", "7", msg)
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if method != http.MethodPatch || path != "/api/webhooks/1/tok/messages/7" || sent.ID != "7" {
		t.Errorf("Edit() hit %s %s, sent %+v", method, path, sent)
	}
	if embeds, ok := body["embeds"].([]any); !ok || len(embeds) != 0 {
		t.Errorf("edit payload embeds = %v, want []", body["embeds"])
	}
}

func TestLoadJSONBlocksInternalAddresses(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"content":"internal-only secret"}`)
	}))
	defer srv.Close()

	guarded := NewClient(2*time.Second, "hookstudio-test", logger.New("error", false))
	msg, err := guarded.LoadJSON(context.Background(), srv.URL+"/admin")
	if !errors.Is(err, ErrBlockedAddress) {
		t.Fatalf("LoadJSON() = %+v, %v, want ErrBlockedAddress", msg, err)
	}
	if msg.Content != "" {
		t.Errorf("LoadJSON() leaked content %q", msg.Content)
	}
	if calls.Load() != 0 {
		t.Errorf("server saw %d requests, want none", calls.Load())
	}

	open := NewClient(2*time.Second, "hookstudio-test", logger.New("error", false), AllowPrivateNetworks(true))
	msg, err = open.LoadJSON(context.Background(), srv.URL+"/admin")
	if err != nil || msg.Content != "internal-only secret" {
		t.Errorf("LoadJSON() with private networks allowed = %+v, %v", msg, err)
	}
}

func TestBlockInternal(t *testing.T) {
	tests := []struct {
		address string
		blocked bool
	}{
		{"127.0.0.1:80", true},
		{"[::1]:443", true},
		{"10.1.2.3:80", true},
		{"192.168.0.10:8080", true},
		{"172.16.5.4:80", true},
		{"169.254.169.254:80", true},
		{"[fe80::1]:80", true},
		{"0.0.0.0:80", true},
		{"100.64.0.1:80", true},
		{"[::ffff:127.0.0.1]:80", true},
		{"not-an-address", true},
		{"162.159.135.232:443", false},
		{"[2606:4700::6810:84e5]:443", false},
	}
	for _, tt := range tests {
		err := blockInternal("tcp", tt.address, nil)
		if got := errors.Is(err, ErrBlockedAddress); got != tt.blocked {
			t.Errorf("blockInternal(%q) = %v, want blocked=%v", tt.address, err, tt.blocked)
		}
	}
}

func TestSendLogsUnreadableResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>ok</html>`)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	c := NewClient(2*time.Second, "hookstudio-test", logger.New("error", false, logger.WithCore(core)), AllowPrivateNetworks(true))

	msg := domain.DefaultMessage()
	msg.Content = "hello"
	sent, err := c.Send(context.Background(), srv.URL+"/api/webhooks/1/tok", msg)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if sent.ID != "" {
		t.Errorf("Send() id = %q, want empty", sent.ID)
	}
	if n := logs.FilterMessage("unreadable webhook response, message id unknown").Len(); n != 1 {
		t.Errorf("warnings logged = %d, want 1", n)
	}
}
