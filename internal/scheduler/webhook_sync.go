package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/hookstudio/internal/logger"
	"github.com/MrSnakeDoc/hookstudio/internal/metrics"
)

// Reloader re-reads state from the store. It reports whether anything changed.
type Reloader interface {
	Reload(ctx context.Context) bool
}

// WebhookSyncer keeps the in-process webhook list in step with a store shared
// by several instances. It runs on a ticker and on demand.
type WebhookSyncer struct {
	target        Reloader
	logger        logger.Logger
	interval      time.Duration
	manualTrigger <-chan struct{}
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewWebhookSyncer returns a syncer. trigger may be nil.
func NewWebhookSyncer(
	target Reloader,
	log logger.Logger,
	interval time.Duration,
	trigger <-chan struct{},
) *WebhookSyncer {
	return &WebhookSyncer{
		target:        target,
		logger:        log,
		interval:      interval,
		manualTrigger: trigger,
		stopCh:        make(chan struct{}),
	}
}

// Start launches the sync loop. It returns immediately.
func (s *WebhookSyncer) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sync(ctx)
			case <-s.manualTrigger:
				s.logger.Info("manual webhook sync triggered")
				s.Sync(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *WebhookSyncer) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Sync runs one reload and reports whether the list changed.
func (s *WebhookSyncer) Sync(ctx context.Context) bool {
	changed := s.target.Reload(ctx)
	if changed {
		metrics.RecordWebhookReload()
	} else {
		s.logger.Debug("webhook list unchanged")
	}
	return changed
}
