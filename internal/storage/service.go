package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/hookstudio/internal/domain"
	"github.com/MrSnakeDoc/hookstudio/internal/jsonx"
	"github.com/MrSnakeDoc/hookstudio/internal/logger"
	"github.com/MrSnakeDoc/hookstudio/internal/metrics"
	"github.com/MrSnakeDoc/hookstudio/internal/store"
)

// ErrNotAList is returned by SaveWebhooks for a nil list.
var ErrNotAList = errors.New("webhooks must be a list")

// Service persists the webhook list and editor settings.
//
// Reads never fail: a missing key or a corrupt document degrades to the
// default value and is logged. Writes surface every error so the caller can
// tell the user nothing was saved.
type Service struct {
	kv   store.KV
	keys store.Keys
	log  logger.Logger
}

func NewService(kv store.KV, keys store.Keys, log logger.Logger) *Service {
	return &Service{kv: kv, keys: keys, log: log}
}

// LoadWebhooks returns the stored list, or an empty list on any failure.
// Entries that are not objects or lack an id are skipped.
func (s *Service) LoadWebhooks(ctx context.Context) domain.WebhookList {
	raw, ok := s.readJSON(ctx, s.keys.Webhooks())
	if !ok {
		return domain.WebhookList{}
	}

	items, isList := raw.([]any)
	if !isList {
		s.log.Warn("stored webhooks are not a list, ignoring",
			logger.String("key", s.keys.Webhooks()))
		return domain.WebhookList{}
	}

	out := make(domain.WebhookList, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		w, ok := domain.ParseWebhookJSON(item)
		if !ok || seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		out = append(out, w)
	}
	return out
}

// SaveWebhooks overwrites the stored list.
func (s *Service) SaveWebhooks(ctx context.Context, list domain.WebhookList) error {
	if list == nil {
		return ErrNotAList
	}

	data, err := jsonx.Marshal(list)
	if err != nil {
		metrics.RecordWebhookSaveFailure()
		return fmt.Errorf("encode webhooks: %w", err)
	}
	if err := s.kv.Set(ctx, s.keys.Webhooks(), data); err != nil {
		metrics.RecordWebhookSaveFailure()
		s.log.Error("failed to save webhooks",
			logger.Int("count", len(list)),
			logger.Error(err))
		return fmt.Errorf("save webhooks: %w", err)
	}
	return nil
}

// LoadSettings returns the stored settings merged over the defaults.
func (s *Service) LoadSettings(ctx context.Context) domain.Settings {
	raw, ok := s.readJSON(ctx, s.keys.Settings())
	if !ok {
		return domain.DefaultSettings()
	}
	return domain.ParseSettings(raw)
}

func (s *Service) SaveSettings(ctx context.Context, settings domain.Settings) error {
	data, err := jsonx.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.kv.Set(ctx, s.keys.Settings(), data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ResetSettings deletes the stored settings and returns the defaults.
func (s *Service) ResetSettings(ctx context.Context) (domain.Settings, error) {
	if err := s.kv.Delete(ctx, s.keys.Settings()); err != nil {
		return domain.DefaultSettings(), fmt.Errorf("reset settings: %w", err)
	}
	return domain.DefaultSettings(), nil
}

// ClearAll removes every key owned by the workspace. It keeps going after a
// failure and returns the first error.
func (s *Service) ClearAll(ctx context.Context) error {
	var first error
	for _, key := range s.keys.All() {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.log.Warn("failed to clear key", logger.String("key", key), logger.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (s *Service) GetDefaultMessage() domain.Message {
	return domain.DefaultMessage()
}

func (s *Service) ParseMessageJSON(raw any) (domain.Message, error) {
	return domain.ParseMessageJSON(raw)
}

func (s *Service) IsValidWebhookURL(url string) bool {
	return domain.IsValidWebhookURL(url)
}

func (s *Service) GenerateID() string {
	return domain.GenerateID()
}

// readJSON fetches and decodes key. ok is false when the key is missing or
// unreadable; both cases are logged.
func (s *Service) readJSON(ctx context.Context, key string) (any, bool) {
	return ReadJSON(ctx, s.kv, key, s.log)
}

// ReadJSON is the shared degrade-to-default read path for stored documents.
func ReadJSON(ctx context.Context, kv store.KV, key string, log logger.Logger) (any, bool) {
	data, err := kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		log.Debug("storage key not set", logger.String("key", key))
		return nil, false
	}
	if err != nil {
		log.Warn("failed to read storage key", logger.String("key", key), logger.Error(err))
		return nil, false
	}

	var raw any
	if err := jsonx.Unmarshal(data, &raw); err != nil {
		log.Warn("stored document is not valid JSON, ignoring",
			logger.String("key", key),
			logger.Error(err))
		return nil, false
	}
	return raw, true
}
