package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/hookstudio/internal/version"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	ListenPort      string        `yaml:"listen_port"`      // ex: ":8080"
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // ex: 5s
	PublicURL       string        `yaml:"public_url"`       // base URL share links point to

	LogLevel      string `yaml:"log_level"`  // "debug" | "info" | "warn" | "error"
	PrettyLog     bool   `yaml:"pretty_log"` // true => zap dev (color), false => zap prod (JSON)
	LogFile       string `yaml:"log_file"`   // optional, empty = stderr only
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`
	LogCompress   bool   `yaml:"log_compress"`

	// Storage
	StoreBackend   string        `yaml:"store_backend"`   // "memory" | "redis" | "sqlite"
	StoreNamespace string        `yaml:"store_namespace"` // optional key prefix
	MemoryQuota    int64         `yaml:"memory_quota"`    // bytes, 0 = unlimited
	SQLitePath     string        `yaml:"sqlite_path"`
	MaxBackups     int           `yaml:"max_backups"`    // backup collection cap
	BackupMaxAge   time.Duration `yaml:"backup_max_age"` // prune older backups, 0 = keep forever
	PruneInterval  time.Duration `yaml:"prune_interval"`
	SyncInterval   time.Duration `yaml:"sync_interval"` // re-read webhooks from a shared store (redis, sqlite)

	// Redis
	RedisAddr             string        `yaml:"redis_addr"`              // ex: "localhost:6379"
	RedisUser             string        `yaml:"redis_username"`          // optional
	RedisPassword         string        `yaml:"redis_password"`          // optional
	RedisPasswordRequired bool          `yaml:"redis_password_required"` // true => require password
	RedisDB               int           `yaml:"redis_db"`                // Redis DB number
	RedisDT               time.Duration `yaml:"redis_dial_timeout"`      // ex: 5s
	RedisRT               time.Duration `yaml:"redis_read_timeout"`      // ex: 3s
	RedisWT               time.Duration `yaml:"redis_write_timeout"`     // ex: 3s
	RedisMaxWait          time.Duration `yaml:"redis_max_wait"`          // max wait between retries
	RedisPingTimeout      time.Duration `yaml:"redis_ping_timeout"`      // timeout for each ping attempt
	RedisPoolSize         int           `yaml:"redis_pool_size"`
	RedisConnectTimeout   time.Duration `yaml:"redis_connect_timeout"` // total time to retry connecting
	RedisRetryInterval    time.Duration `yaml:"redis_retry_interval"`  // initial wait, grows exponentially
	RedisWarnThreshold    int           `yaml:"redis_warn_threshold"`  // warn after this many attempts

	// Discord
	DiscordTimeout   time.Duration `yaml:"discord_timeout"`
	DiscordUserAgent string        `yaml:"discord_user_agent"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`  // multipart body limit on send
	SendRatePerMin   int           `yaml:"send_rate_per_min"` // per client IP
	SendBurst        int           `yaml:"send_burst"`
	BlockPrivateNets bool          `yaml:"block_private_networks"` // refuse outbound requests to loopback/private/link-local IPs

	// Access restrictions
	AllowedHosts []string `yaml:"allowed_hosts"` // optional, restrict access to specific Host headers
	AllowedCIDRS []string `yaml:"allowed_cidrs"` // optional, restrict access to specific IP (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     `yaml:"trust_proxy"`   // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins  []string `yaml:"cors_origins"`  // allowed browser origins, empty = same-origin only
}

// Defaults returns the configuration used when neither a file nor the
// environment says otherwise.
func Defaults() *Config {
	return &Config{
		ListenPort:      ":8080",
		ShutdownTimeout: 5 * time.Second,
		PublicURL:       "http://localhost:8080/",

		LogLevel:      "info",
		PrettyLog:     true,
		LogMaxSizeMB:  50,
		LogMaxBackups: 3,
		LogMaxAgeDays: 28,

		StoreBackend:  BackendMemory,
		MemoryQuota:   5 * 1024 * 1024,
		SQLitePath:    "/data/hookstudio.db",
		MaxBackups:    50,
		PruneInterval: time.Hour,
		SyncInterval:  30 * time.Second,

		RedisUser:             "default",
		RedisPasswordRequired: false,
		RedisDT:               5 * time.Second,
		RedisRT:               3 * time.Second,
		RedisWT:               3 * time.Second,
		RedisMaxWait:          10 * time.Second,
		RedisPingTimeout:      5 * time.Second,
		RedisPoolSize:         10,
		RedisConnectTimeout:   30 * time.Second,
		RedisRetryInterval:    2 * time.Second,
		RedisWarnThreshold:    3,

		DiscordTimeout:   15 * time.Second,
		DiscordUserAgent: version.UserAgent(),
		MaxUploadBytes:   26 * 1024 * 1024,
		SendRatePerMin:   30,
		SendBurst:        5,
		BlockPrivateNets: true,

		TrustProxy: false,
	}
}

// Load reads defaults, then the YAML file named by HOOKSTUDIO_CONFIG_FILE,
// then HOOKSTUDIO_* environment overrides. Invalid configuration is fatal.
func Load() *Config {
	cfg, err := load()
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("HOOKSTUDIO_CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the YAML document at path. Keys absent from the file
// keep their current value.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	// Server settings
	c.ListenPort = getenv("HOOKSTUDIO_LISTEN_PORT", c.ListenPort)
	c.ShutdownTimeout = mustDuration("HOOKSTUDIO_SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.PublicURL = getenv("HOOKSTUDIO_PUBLIC_URL", c.PublicURL)

	// Logging
	c.LogLevel = getenv("HOOKSTUDIO_LOG_LEVEL", c.LogLevel)
	c.PrettyLog = mustBool("HOOKSTUDIO_PRETTY_LOG", c.PrettyLog)
	c.LogFile = getenv("HOOKSTUDIO_LOG_FILE", c.LogFile)
	c.LogMaxSizeMB = getenvInt("HOOKSTUDIO_LOG_MAX_SIZE_MB", c.LogMaxSizeMB)
	c.LogMaxBackups = getenvInt("HOOKSTUDIO_LOG_MAX_BACKUPS", c.LogMaxBackups)
	c.LogMaxAgeDays = getenvInt("HOOKSTUDIO_LOG_MAX_AGE_DAYS", c.LogMaxAgeDays)
	c.LogCompress = mustBool("HOOKSTUDIO_LOG_COMPRESS", c.LogCompress)

	// Storage
	c.StoreBackend = strings.ToLower(getenv("HOOKSTUDIO_STORE_BACKEND", c.StoreBackend))
	c.StoreNamespace = getenv("HOOKSTUDIO_STORE_NAMESPACE", c.StoreNamespace)
	c.MemoryQuota = getenvInt64("HOOKSTUDIO_MEMORY_QUOTA", c.MemoryQuota)
	c.SQLitePath = getenv("HOOKSTUDIO_SQLITE_PATH", c.SQLitePath)
	c.MaxBackups = getenvInt("HOOKSTUDIO_MAX_BACKUPS", c.MaxBackups)
	c.BackupMaxAge = mustDuration("HOOKSTUDIO_BACKUP_MAX_AGE", c.BackupMaxAge)
	c.PruneInterval = mustDuration("HOOKSTUDIO_PRUNE_INTERVAL", c.PruneInterval)
	c.SyncInterval = mustDuration("HOOKSTUDIO_SYNC_INTERVAL", c.SyncInterval)

	// Redis settings
	c.RedisAddr = getenv("HOOKSTUDIO_REDIS_ADDR", c.RedisAddr)
	c.RedisUser = getenv("HOOKSTUDIO_REDIS_USERNAME", c.RedisUser)
	c.RedisPassword = getenv("HOOKSTUDIO_REDIS_PASSWORD", c.RedisPassword)
	c.RedisPasswordRequired = mustBool("HOOKSTUDIO_REDIS_PASSWORD_REQUIRED", c.RedisPasswordRequired)
	c.RedisDB = getenvInt("HOOKSTUDIO_REDIS_DB", c.RedisDB)
	c.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", c.RedisDT)
	c.RedisRT = mustDuration("REDIS_READ_TIMEOUT", c.RedisRT)
	c.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", c.RedisWT)
	c.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", c.RedisMaxWait)
	c.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", c.RedisPingTimeout)
	c.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", c.RedisPoolSize)
	c.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", c.RedisConnectTimeout)
	c.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", c.RedisRetryInterval)
	c.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", c.RedisWarnThreshold)

	// Discord
	c.DiscordTimeout = mustDuration("HOOKSTUDIO_DISCORD_TIMEOUT", c.DiscordTimeout)
	c.DiscordUserAgent = getenv("HOOKSTUDIO_DISCORD_USER_AGENT", c.DiscordUserAgent)
	c.MaxUploadBytes = getenvInt64("HOOKSTUDIO_MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.SendRatePerMin = getenvInt("HOOKSTUDIO_SEND_RATE_PER_MIN", c.SendRatePerMin)
	c.SendBurst = getenvInt("HOOKSTUDIO_SEND_BURST", c.SendBurst)
	c.BlockPrivateNets = mustBool("HOOKSTUDIO_BLOCK_PRIVATE_NETWORKS", c.BlockPrivateNets)

	// Access restrictions
	if v := os.Getenv("HOOKSTUDIO_ALLOWED_HOSTS"); v != "" {
		c.AllowedHosts = splitAndTrim(v)
	}
	if v := os.Getenv("HOOKSTUDIO_ALLOWED_CIDRS"); v != "" {
		c.AllowedCIDRS = parseAllowedIPs(v)
	}
	c.TrustProxy = mustBool("HOOKSTUDIO_TRUST_PROXY", c.TrustProxy)
	if v := os.Getenv("HOOKSTUDIO_CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitAndTrim(v)
	}
}

// Validate reports the first configuration error.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q (want memory, redis or sqlite)", c.StoreBackend)
	}

	if c.StoreBackend == BackendRedis {
		if c.RedisAddr == "" {
			return errors.New("HOOKSTUDIO_REDIS_ADDR is required when the redis backend is selected")
		}
		if c.RedisPasswordRequired && c.RedisPassword == "" {
			return errors.New("HOOKSTUDIO_REDIS_PASSWORD is required when HOOKSTUDIO_REDIS_PASSWORD_REQUIRED=true")
		}
	}
	if c.StoreBackend == BackendSQLite && c.SQLitePath == "" {
		return errors.New("HOOKSTUDIO_SQLITE_PATH is required when the sqlite backend is selected")
	}
	if c.MaxBackups <= 0 {
		return fmt.Errorf("max backups must be > 0, got %d", c.MaxBackups)
	}
	if c.BackupMaxAge < 0 || c.SyncInterval < 0 {
		return errors.New("backup max age and sync interval must be >= 0")
	}
	if c.BackupMaxAge > 0 && c.PruneInterval <= 0 {
		return fmt.Errorf("prune interval must be > 0 when backup max age is set, got %s", c.PruneInterval)
	}
	if c.MemoryQuota < 0 {
		return fmt.Errorf("memory quota must be >= 0, got %d", c.MemoryQuota)
	}
	if c.SendRatePerMin <= 0 || c.SendBurst <= 0 {
		return fmt.Errorf("send rate limit must be positive, got %d/min burst %d", c.SendRatePerMin, c.SendBurst)
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
