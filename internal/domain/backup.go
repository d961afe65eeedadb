package domain

import (
	"sort"
	"time"
)

// MaxBackups is the default retention cap for stored backups.
const MaxBackups = 50

// Backup is a user-named snapshot of a Message.
type Backup struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Message   Message `json:"message"`
	Timestamp int64   `json:"timestamp"` // unix milliseconds
}

// Time returns Timestamp as a time.Time.
func (b Backup) Time() time.Time {
	return time.UnixMilli(b.Timestamp)
}

// SortBackupsNewestFirst sorts in place by descending timestamp.
// Equal timestamps keep their relative order.
func SortBackupsNewestFirst(list []Backup) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp > list[j].Timestamp
	})
}

// RetainRecent enforces the retention cap: when len(list) exceeds max the
// list is sorted newest first and truncated to the max most recent entries.
// Lists within the cap are returned untouched (insertion order preserved).
func RetainRecent(list []Backup, max int) []Backup {
	if max <= 0 || len(list) <= max {
		return list
	}
	SortBackupsNewestFirst(list)
	return list[:max]
}
