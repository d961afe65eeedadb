package domain

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const suffixLen = 9

// now is swapped in tests.
var now = time.Now

// GenerateID returns "<unixMillis>-<random base36>". Unique in practice, not
// suitable as a secret.
func GenerateID() string {
	return fmt.Sprintf("%d-%s", now().UnixMilli(), randomSuffix())
}

// GenerateBackupID returns "backup_<unixMillis>_<random base36>".
func GenerateBackupID() string {
	return fmt.Sprintf("backup_%d_%s", now().UnixMilli(), randomSuffix())
}

// NowMillis is the clock used for createdAt and backup timestamps.
func NowMillis() int64 {
	return now().UnixMilli()
}

func randomSuffix() string {
	u := uuid.New()
	s := strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 36)
	if len(s) < suffixLen {
		s = strings.Repeat("0", suffixLen-len(s)) + s
	}
	return s[:suffixLen]
}
