package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/hookstudio/internal/logger"
)

// Pruner drops backups older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// BackupPruner periodically removes backups older than maxAge.
type BackupPruner struct {
	backups  Pruner
	logger   logger.Logger
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewBackupPruner(
	backups Pruner,
	log logger.Logger,
	interval time.Duration,
	maxAge time.Duration,
) *BackupPruner {
	return &BackupPruner{
		backups:  backups,
		logger:   log,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start prunes once, then on every tick. It returns immediately.
func (p *BackupPruner) Start(ctx context.Context) {
	if err := p.Collect(ctx); err != nil {
		p.logger.Warn("initial backup prune failed", logger.Error(err))
	}

	ticker := time.NewTicker(p.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := p.Collect(ctx); err != nil {
					p.logger.Error("backup prune failed", logger.Error(err))
				}
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (p *BackupPruner) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// Collect removes every backup older than maxAge.
func (p *BackupPruner) Collect(ctx context.Context) error {
	cutoff := p.now().Add(-p.maxAge)
	removed, err := p.backups.Prune(ctx, cutoff)
	if err != nil {
		return err
	}

	if removed > 0 {
		p.logger.Info("pruned old backups",
			logger.Int("removed", removed),
			logger.Duration("max_age", p.maxAge))
	} else {
		p.logger.Debug("no backups to prune")
	}
	return nil
}
