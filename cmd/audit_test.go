package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StacySimmons/logging-hosts/internal/audit"
)

// graphQLStub answers the three queries of an audit for a single account.
func graphQLStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("API-Key"))

		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var data string
		switch {
		case strings.Contains(req.Query, "entitySearch"):
			data = `{"actor":{"entitySearch":{"count":3,"results":{"nextCursor":null,"entities":[
				{"guid":"g-a","name":"a","accountId":1},
				{"guid":"g-b","name":"b","accountId":1},
				{"guid":"g-c","name":"c","accountId":1}]}}}}`
		case strings.Contains(req.Query, "nrql("):
			nrql, _ := req.Variables["nrql"].(string)
			rows := `[{"hostname":"b"},{"hostname":"d"}]`
			if strings.Contains(nrql, "UNTIL 1 day ago") {
				rows = `[{"hostname":"b"},{"hostname":"c"}]`
			}
			data = `{"actor":{"account":{"nrql":{"results":` + rows + `}}}}`
		default:
			data = `{"actor":{"accounts":[{"id":1,"name":"Prod"}]}}`
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":` + data + `}`))
	}))
}

func TestAuditCommandWritesReport(t *testing.T) {
	srv := graphQLStub(t)
	defer srv.Close()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	metricsPath := filepath.Join(dir, "audit.prom")

	rootCmd.SetArgs([]string{
		"audit",
		"--api-key", "test-key",
		"--endpoint", srv.URL,
		"--output", "json",
		"--output-file", dir,
		"--metrics-file", metricsPath,
		"--run-id", "d4f9cbf0-5b95-4efe-a542-24f55108db4f",
	})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	files, err := filepath.Glob(filepath.Join(dir, "logging-hosts-us-*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var report audit.Report
	require.NoError(t, json.Unmarshal(data, &report))

	assert.Equal(t, "d4f9cbf0-5b95-4efe-a542-24f55108db4f", report.RunID)
	assert.Equal(t, 3, report.InventoryCount)
	assert.Equal(t, []string{"a", "c"}, hostnames(report.Result.InventoryOnly))
	assert.Equal(t, []string{"d"}, hostnames(report.Result.LogsOnly))
	assert.Equal(t, []string{"c"}, hostnames(report.Result.NewlyMissing))
	assert.Equal(t, []string{"d"}, hostnames(report.Result.NewlyAppeared))
	assert.Empty(t, report.Warnings)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `logging_hosts_query_attempts_total{op="log_hosts"} 2`)
	assert.Contains(t, string(prom), `logging_hosts_hosts{set="inventory_only"} 2`)
}

func hostnames(hosts []audit.HostRecord) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, h.Hostname)
	}
	return out
}
