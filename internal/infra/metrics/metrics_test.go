package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

func feedSession(m *RepairMetrics) {
	ctx := context.Background()
	m.AttemptStarted(ctx, repair.AttemptStarted{Index: 1})
	m.AttemptFinished(ctx, repair.AttemptFinished{Index: 1, Verdict: repair.VerdictCrash, PatchRequested: true, Applied: true, Duration: 80 * time.Millisecond})
	m.AttemptStarted(ctx, repair.AttemptStarted{Index: 2})
	m.AttemptFinished(ctx, repair.AttemptFinished{Index: 2, Verdict: repair.VerdictSuccess, Duration: 60 * time.Millisecond})
	m.SessionFinished(ctx, repair.SessionFinished{Outcome: repair.OutcomeSuccess, AttemptsUsed: 2, Duration: 3 * time.Second})
}

func TestRepairMetrics_Counts(t *testing.T) {
	m := NewRepairMetrics()
	feedSession(m)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessions.WithLabelValues("exhausted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("crash")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.patches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.applies))
	assert.Equal(t, 2, testutil.CollectAndCount(m.attemptDuration))
}

func TestRepairMetrics_SessionWithoutAttempts(t *testing.T) {
	m := NewRepairMetrics()
	m.SessionFinished(context.Background(), repair.SessionFinished{Outcome: repair.OutcomeCancelled})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions.WithLabelValues("cancelled")))
	assert.Equal(t, 0, testutil.CollectAndCount(m.attempts))
}

func TestRepairMetrics_WriteTextfile(t *testing.T) {
	m := NewRepairMetrics()
	feedSession(m)

	path := filepath.Join(t.TempDir(), "var", "metrics.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `devforge_repair_sessions_total{outcome="success"} 1`)
	assert.Contains(t, string(data), "devforge_repair_patch_requests_total 1")
	assert.Contains(t, string(data), "devforge_sandbox_run_duration_seconds_bucket")
}
