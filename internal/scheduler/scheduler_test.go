package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/hookstudio/internal/backup"
	"github.com/MrSnakeDoc/hookstudio/internal/domain"
	"github.com/MrSnakeDoc/hookstudio/internal/logger"
	"github.com/MrSnakeDoc/hookstudio/internal/store"
	"github.com/MrSnakeDoc/hookstudio/internal/store/memory"
)

func TestBackupPrunerCollect(t *testing.T) {
	log := logger.New("error", false)
	svc := backup.NewService(memory.New(0), store.Keys{}, log, 0)
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ages := map[string]time.Duration{
		"fresh":   time.Hour,
		"recent":  10 * 24 * time.Hour,
		"old":     35 * 24 * time.Hour,
		"ancient": 400 * 24 * time.Hour,
	}
	for name, age := range ages {
		b := domain.Backup{ID: name, Name: name, Message: domain.DefaultMessage(), Timestamp: now.Add(-age).UnixMilli()}
		if err := svc.SaveBackup(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	p := NewBackupPruner(svc, log, time.Hour, 30*24*time.Hour)
	p.now = func() time.Time { return now }

	if err := p.Collect(ctx); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	left := map[string]bool{}
	for _, b := range svc.LoadBackups(ctx) {
		left[b.ID] = true
	}
	if len(left) != 2 || !left["fresh"] || !left["recent"] {
		t.Errorf("backups left = %v, want fresh and recent", left)
	}

	// a second run finds nothing to do
	if err := p.Collect(ctx); err != nil {
		t.Fatalf("second Collect() error = %v", err)
	}
}

type countingReloader struct {
	calls   atomic.Int32
	changed bool
}

func (r *countingReloader) Reload(context.Context) bool {
	r.calls.Add(1)
	return r.changed
}

func TestWebhookSyncerManualTrigger(t *testing.T) {
	target := &countingReloader{changed: true}
	trigger := make(chan struct{}, 1)

	s := NewWebhookSyncer(target, logger.New("error", false), time.Hour, trigger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	trigger <- struct{}{}

	deadline := time.Now().Add(2 * time.Second)
	for target.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("manual trigger did not run a sync")
		}
		time.Sleep(5 * time.Millisecond)
	}

	s.Stop() // idempotent
}

func TestWebhookSyncerSync(t *testing.T) {
	target := &countingReloader{}
	s := NewWebhookSyncer(target, logger.New("error", false), time.Hour, nil)

	if s.Sync(context.Background()) {
		t.Error("Sync() = true for an unchanged list")
	}
	target.changed = true
	if !s.Sync(context.Background()) {
		t.Error("Sync() = false for a changed list")
	}
}
