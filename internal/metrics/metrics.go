package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected" // failed local validation, no request made
	OutcomeError    = "error"
)

// DiscordMetrics tracks outbound webhook calls.
var DiscordMetrics = struct {
	SendsTotal      *prometheus.CounterVec
	LoadsTotal      *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}{
	SendsTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookstudio_sends_total",
			Help: "Messages sent to Discord webhooks, split by outcome",
		},
		[]string{"outcome"},
	),
	LoadsTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookstudio_loads_total",
			Help: "Messages loaded from a URL or a Discord message link, split by source and outcome",
		},
		[]string{"source", "outcome"},
	),
	RequestDuration: promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hookstudio_discord_request_duration_seconds",
			Help:    "Latency of outbound Discord requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	),
}

func RecordSend(outcome string) {
	DiscordMetrics.SendsTotal.WithLabelValues(outcome).Inc()
}

func RecordLoad(source, outcome string) {
	DiscordMetrics.LoadsTotal.WithLabelValues(source, outcome).Inc()
}

func ObserveRequest(method string, start time.Time) {
	DiscordMetrics.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// StorageMetrics tracks share links and the backup collection.
var StorageMetrics = struct {
	ShareTotal       *prometheus.CounterVec
	BackupSaves      *prometheus.CounterVec
	BackupsEvicted   prometheus.Counter
	BackupsPruned    prometheus.Counter
	WebhookSaveFails prometheus.Counter
	WebhookReloads   prometheus.Counter
}{
	ShareTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookstudio_share_total",
			Help: "Share tokens encoded and decoded, split by operation and outcome",
		},
		[]string{"operation", "outcome"},
	),
	BackupSaves: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookstudio_backup_saves_total",
			Help: "Backup writes, split by outcome",
		},
		[]string{"outcome"},
	),
	BackupsEvicted: promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hookstudio_backups_evicted_total",
			Help: "Backups dropped by the retention cap",
		},
	),
	BackupsPruned: promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hookstudio_backups_pruned_total",
			Help: "Backups dropped for exceeding the maximum age",
		},
	),
	WebhookSaveFails: promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hookstudio_webhook_save_failures_total",
			Help: "Failed writes of the webhook list",
		},
	),
	WebhookReloads: promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hookstudio_webhook_reloads_total",
			Help: "Webhook list changes picked up from a shared store",
		},
	),
}

func RecordShare(operation, outcome string) {
	StorageMetrics.ShareTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordBackupSave(outcome string, evicted int) {
	StorageMetrics.BackupSaves.WithLabelValues(outcome).Inc()
	if evicted > 0 {
		StorageMetrics.BackupsEvicted.Add(float64(evicted))
	}
}

func RecordBackupsPruned(n int) {
	StorageMetrics.BackupsPruned.Add(float64(n))
}

func RecordWebhookReload() {
	StorageMetrics.WebhookReloads.Inc()
}

func RecordWebhookSaveFailure() {
	StorageMetrics.WebhookSaveFails.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
