package deps

import (
	"time"

	"github.com/MrSnakeDoc/hookstudio/internal/backup"
	"github.com/MrSnakeDoc/hookstudio/internal/discord"
	"github.com/MrSnakeDoc/hookstudio/internal/logger"
	"github.com/MrSnakeDoc/hookstudio/internal/storage"
	"github.com/MrSnakeDoc/hookstudio/internal/store"
	"github.com/MrSnakeDoc/hookstudio/internal/workspace"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	AllowedHosts   []string             // Host headers allowed to reach /api
	AllowedCIDRS   []string             // client IPs allowed to reach /api and the probes
	TrustProxy     bool                 // resolve the client IP from proxy headers
	CORSOrigins    []string             // browser origins allowed to call the API
	PublicURL      string               // base URL share links point at
	StoreBackend   string               // memory, redis or sqlite
	Store          store.KV             // raw key-value backend, pinged by readyz
	Storage        *storage.Service     // webhooks and settings
	Backups        *backup.Service      // named message snapshots
	Workspace      *workspace.Workspace // webhook list, selection, current message
	Discord        *discord.Client      // outbound webhook client
	MaxUploadBytes int64                // multipart body cap for send and import
	SendRatePerMin int                  // token refill per client IP on send
	SendBurst      int                  // token bucket size on send
	ReloadTrigger  chan<- struct{}      // wakes the webhook syncer, nil when none runs
}
