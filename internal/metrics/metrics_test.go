package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRecordSend(t *testing.T) {
	c := DiscordMetrics.SendsTotal.WithLabelValues(OutcomeRejected)
	before := counterValue(t, c)
	RecordSend(OutcomeRejected)

	if got := counterValue(t, c) - before; got != 1 {
		t.Errorf("sends{outcome=rejected} grew by %v, want 1", got)
	}
}

func TestRecordBackupSaveCountsEvictions(t *testing.T) {
	before := counterValue(t, StorageMetrics.BackupsEvicted)
	RecordBackupSave(OutcomeOK, 3)
	RecordBackupSave(OutcomeOK, 0)

	if got := counterValue(t, StorageMetrics.BackupsEvicted) - before; got != 3 {
		t.Errorf("evictions grew by %v, want 3", got)
	}
}
