package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/hookstudio/internal/backup"
	"github.com/MrSnakeDoc/hookstudio/internal/config"
	"github.com/MrSnakeDoc/hookstudio/internal/discord"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hookstudio/internal/logger"
	"github.com/MrSnakeDoc/hookstudio/internal/scheduler"
	"github.com/MrSnakeDoc/hookstudio/internal/storage"
	"github.com/MrSnakeDoc/hookstudio/internal/store"
	"github.com/MrSnakeDoc/hookstudio/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/hookstudio/internal/store/redis"
	"github.com/MrSnakeDoc/hookstudio/internal/store/sqlite"
	"github.com/MrSnakeDoc/hookstudio/internal/utils"
	"github.com/MrSnakeDoc/hookstudio/internal/version"
	"github.com/MrSnakeDoc/hookstudio/internal/workspace"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	kv     store.KV
	syncer *scheduler.WebhookSyncer
	pruner *scheduler.BackupPruner
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog, logger.WithFile(logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}))

	// Open the backend early - fail fast if unavailable
	kv, err := openStore(cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open %s store: %v", cfg.StoreBackend, err)
		os.Exit(1)
	}
	loggerClient.Info("store initialized", logger.String("backend", cfg.StoreBackend))

	keys := store.Keys{Namespace: cfg.StoreNamespace}
	storageSvc := storage.NewService(kv, keys, loggerClient)
	backups := backup.NewService(kv, keys, loggerClient, cfg.MaxBackups)
	client := discord.NewClient(cfg.DiscordTimeout, cfg.DiscordUserAgent, loggerClient,
		discord.AllowPrivateNetworks(!cfg.BlockPrivateNets))
	if !cfg.BlockPrivateNets {
		loggerClient.Warn("outbound requests to private networks are allowed")
	}

	ws := workspace.New(storageSvc, client, loggerClient)
	ws.Open(context.Background())

	// Only a shared backend can change under us.
	var syncer *scheduler.WebhookSyncer
	var reloadTrigger chan struct{}
	if cfg.StoreBackend != config.BackendMemory && cfg.SyncInterval > 0 {
		reloadTrigger = make(chan struct{}, 1)
		syncer = scheduler.NewWebhookSyncer(ws, loggerClient, cfg.SyncInterval, reloadTrigger)
	}

	var pruner *scheduler.BackupPruner
	if cfg.BackupMaxAge > 0 {
		pruner = scheduler.NewBackupPruner(backups, loggerClient, cfg.PruneInterval, cfg.BackupMaxAge)
	}

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		CORSOrigins:    cfg.CORSOrigins,
		PublicURL:      cfg.PublicURL,
		StoreBackend:   cfg.StoreBackend,
		Store:          kv,
		Storage:        storageSvc,
		Backups:        backups,
		Workspace:      ws,
		Discord:        client,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SendRatePerMin: cfg.SendRatePerMin,
		SendBurst:      cfg.SendBurst,
		ReloadTrigger:  reloadTrigger,
	}

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: httpserver.New(cfg, loggerClient, d),
		kv:     kv,
		syncer: syncer,
		pruner: pruner,
	}
}

func openStore(cfg *config.Config, log logger.Logger) (store.KV, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		return redisstore.Connect(redisstore.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
	case config.BackendSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return sqlite.Open(ctx, cfg.SQLitePath)
	default:
		return memory.New(int(cfg.MemoryQuota)), nil
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting HookStudio v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("HookStudio %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.syncer != nil {
		a.syncer.Start(ctx)
		a.logger.Info("webhook syncer started",
			logger.Duration("interval", a.cfg.SyncInterval))
	}

	if a.pruner != nil {
		a.pruner.Start(ctx)
		a.logger.Info("backup pruner started",
			logger.Duration("interval", a.cfg.PruneInterval),
			logger.Duration("max_age", a.cfg.BackupMaxAge))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.syncer != nil {
		a.syncer.Stop()
	}
	if a.pruner != nil {
		a.pruner.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	utils.CloseLogged(a.kv, "store", a.logger)
	a.logger.Info("✅ HookStudio stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
