package backup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/hookstudio/internal/domain"
	"github.com/MrSnakeDoc/hookstudio/internal/jsonx"
	"github.com/MrSnakeDoc/hookstudio/internal/logger"
	"github.com/MrSnakeDoc/hookstudio/internal/metrics"
	"github.com/MrSnakeDoc/hookstudio/internal/storage"
	"github.com/MrSnakeDoc/hookstudio/internal/store"
)

var (
	ErrSaveFailed   = errors.New("could not save backup")
	ErrDeleteFailed = errors.New("could not delete backup")
	ErrRenameFailed = errors.New("could not rename backup")
)

// Service keeps named message snapshots, newest retained first once the
// collection exceeds its cap.
type Service struct {
	kv   store.KV
	keys store.Keys
	log  logger.Logger
	max  int
}

// NewService returns a backup service. maxBackups <= 0 uses domain.MaxBackups.
func NewService(kv store.KV, keys store.Keys, log logger.Logger, maxBackups int) *Service {
	if maxBackups <= 0 {
		maxBackups = domain.MaxBackups
	}
	return &Service{kv: kv, keys: keys, log: log, max: maxBackups}
}

func (s *Service) GenerateID() string {
	return domain.GenerateBackupID()
}

// LoadBackups returns the stored collection in storage order, or an empty
// list on any read failure.
func (s *Service) LoadBackups(ctx context.Context) []domain.Backup {
	raw, ok := storage.ReadJSON(ctx, s.kv, s.keys.Backups(), s.log)
	if !ok {
		return []domain.Backup{}
	}

	items, isList := raw.([]any)
	if !isList {
		s.log.Warn("stored backups are not a list, ignoring",
			logger.String("key", s.keys.Backups()))
		return []domain.Backup{}
	}

	out := make([]domain.Backup, 0, len(items))
	for _, item := range items {
		if b, ok := domain.ParseBackupJSON(item); ok {
			out = append(out, b)
		}
	}
	return out
}

// Find returns the backup with the given id.
func (s *Service) Find(ctx context.Context, id string) (domain.Backup, bool) {
	for _, b := range s.LoadBackups(ctx) {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Backup{}, false
}

// SaveBackup appends b and enforces the retention cap.
func (s *Service) SaveBackup(ctx context.Context, b domain.Backup) error {
	list := append(s.LoadBackups(ctx), b)
	before := len(list)
	list = domain.RetainRecent(list, s.max)
	evicted := before - len(list)

	if err := s.write(ctx, list); err != nil {
		metrics.RecordBackupSave(metrics.OutcomeError, 0)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	metrics.RecordBackupSave(metrics.OutcomeOK, evicted)
	if evicted > 0 {
		s.log.Info("backup cap reached, dropped oldest",
			logger.Int("evicted", evicted),
			logger.Int("max", s.max))
	}
	return nil
}

// DeleteBackup removes id. An unknown id still rewrites the unchanged list.
func (s *Service) DeleteBackup(ctx context.Context, id string) error {
	list := s.LoadBackups(ctx)
	out := list[:0]
	for _, b := range list {
		if b.ID != id {
			out = append(out, b)
		}
	}
	if err := s.write(ctx, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	return nil
}

// RenameBackup changes the display name of id. Renaming an unknown id is a
// silent no-op.
func (s *Service) RenameBackup(ctx context.Context, id, name string) error {
	list := s.LoadBackups(ctx)
	for i := range list {
		if list[i].ID == id {
			list[i].Name = name
		}
	}
	if err := s.write(ctx, list); err != nil {
		return fmt.Errorf("%w: %w", ErrRenameFailed, err)
	}
	return nil
}

// ImportBackup parses an exported message document and stores it as a new
// backup named after the file (".json" suffix removed).
func (s *Service) ImportBackup(ctx context.Context, filename string, data []byte) (domain.Backup, error) {
	msg, err := domain.ParseMessageBytes(data)
	if err != nil {
		return domain.Backup{}, err
	}

	name := strings.TrimSpace(strings.TrimSuffix(filename, ".json"))
	if name == "" {
		name = "Imported backup"
	}

	b := domain.Backup{
		ID:        s.GenerateID(),
		Name:      name,
		Message:   msg,
		Timestamp: domain.NowMillis(),
	}
	if err := s.SaveBackup(ctx, b); err != nil {
		return domain.Backup{}, err
	}
	return b, nil
}

// Prune drops backups taken before cutoff and returns how many went.
// Nothing is written when no backup is old enough.
func (s *Service) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	list := s.LoadBackups(ctx)
	limit := cutoff.UnixMilli()

	kept := make([]domain.Backup, 0, len(list))
	for _, b := range list {
		if b.Timestamp >= limit {
			kept = append(kept, b)
		}
	}
	removed := len(list) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := s.write(ctx, kept); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	metrics.RecordBackupsPruned(removed)
	return removed, nil
}

// ClearAll deletes the whole collection. Failures are logged only.
func (s *Service) ClearAll(ctx context.Context) {
	if err := s.kv.Delete(ctx, s.keys.Backups()); err != nil {
		s.log.Warn("failed to clear backups", logger.Error(err))
	}
}

// Sorted returns a newest-first copy for display.
func Sorted(list []domain.Backup) []domain.Backup {
	out := append([]domain.Backup(nil), list...)
	domain.SortBackupsNewestFirst(out)
	return out
}

func (s *Service) write(ctx context.Context, list []domain.Backup) error {
	for i := range list {
		list[i].Message = list[i].Message.WithoutFiles()
	}
	data, err := jsonx.Marshal(list)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.keys.Backups(), data)
}
