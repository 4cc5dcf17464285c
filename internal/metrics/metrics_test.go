package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StacySimmons/logging-hosts/internal/audit"
	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

func TestObserverCounters(t *testing.T) {
	m := NewMetrics()
	m.QueryAttempted("accounts")
	m.QueryAttempted("accounts")
	m.QueryFailed("accounts", querysvc.KindTransient)
	m.PageFetched("log_hosts")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueryAttempts.WithLabelValues("accounts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueryFailures.WithLabelValues("accounts", "transient")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesFetched.WithLabelValues("log_hosts")))
}

func TestNewMetricsUsesPrivateRegistry(t *testing.T) {
	// Two instances must not collide on registration.
	a := NewMetrics()
	b := NewMetrics()
	a.PageFetched("x")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PagesFetched.WithLabelValues("x")))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.ObserveReport(&audit.Report{
		GeneratedAt:    time.Unix(1700000000, 0),
		InventoryCount: 3,
		Result: audit.Result{
			InventoryOnly: []audit.HostRecord{{Hostname: "a"}, {Hostname: "c"}},
		},
		Warnings: []audit.Warning{{Op: "log_hosts"}},
	})

	path := filepath.Join(t.TempDir(), "logging_hosts.prom")
	require.NoError(t, m.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.True(t, strings.Contains(text, `logging_hosts_hosts{set="inventory_only"} 2`), text)
	assert.Contains(t, text, `logging_hosts_hosts{set="inventory"} 3`)
	assert.Contains(t, text, "logging_hosts_warnings 1")
	assert.Contains(t, text, "logging_hosts_last_run_timestamp_seconds 1.7e+09")
}

func TestRegistryGathersOwnMetrics(t *testing.T) {
	m := NewMetrics()
	m.QueryAttempted("accounts")

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "logging_hosts_query_attempts_total")
	assert.NotContains(t, names, "go_goroutines")
}
