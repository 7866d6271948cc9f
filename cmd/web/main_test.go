package main

import (
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/metrics"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
)

var testFiles = map[string]string{
	"kpis.csv": "Field,Value,Change\n" +
		"Umsatz,125430.5,12.5\n" +
		"Retouren,156,-1.5\n",
	"transactions.csv": "Datum,Kunde,Produkt,Betrag\n" +
		"2025-06-01,Müller GmbH,Laptop,1899.00\n" +
		"2025-06-02,Schmidt AG,\"Tastatur, kabellos\",49.90\n" +
		"2025-06-03,Weber KG,Monitor,329.00\n",
	"monthly_earnings.csv": "Month,Current_Income,Last_Month_Income\n" +
		"Jan,18200,16900\n" +
		"Feb,19450,18200\n",
	"sale_status.csv": "Status,Count\n" +
		"Abgeschlossen,620\n" +
		"Storniert,130\n",
	"daily_sales.csv": "Day,Sales\n" +
		"Mo,120\n" +
		"Di,135\n",
}

// writeDataDir writes the sample files and points DATA_DIR at them.
func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range testFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func newTestDashboard(t *testing.T) *services.Dashboard {
	t.Helper()
	dir := writeDataDir(t)
	dashboard := services.NewDashboard()
	require.NoError(t, dashboard.LoadFromCSV(t.Context(), sources(config.DataConfig{
		Dir:             dir,
		KPIs:            "kpis.csv",
		Transactions:    "transactions.csv",
		MonthlyEarnings: "monthly_earnings.csv",
		SaleStatus:      "sale_status.csv",
		DailySales:      "daily_sales.csv",
	})))
	return dashboard
}

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	dashboard := newTestDashboard(t)
	view := newDashboardView(config.Defaults().Dashboard, dashboard)
	return server.NewServer(dashboard, metrics.NewLatency(), logger, dashboardHandler(view))
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method         string
		path           string
		expectedStatus int
		contentType    string
	}{
		{http.MethodGet, "/", http.StatusOK, "text/html"},
		{http.MethodGet, "/api/kpis", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/transactions", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/monthly-earnings", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/sale-status", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/daily-sales", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/figures/earnings", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/figures/nope", http.StatusNotFound, "application/json"},
		{http.MethodGet, "/charts/daily.svg", http.StatusOK, "image/svg+xml"},
		{http.MethodGet, "/health", http.StatusOK, "application/json"},
		{http.MethodGet, "/admin/stats", http.StatusOK, "application/json"},
		{http.MethodGet, "/sse/refresh-all", http.StatusOK, "text/event-stream"},
		{http.MethodGet, "/unknown", http.StatusNotFound, ""},
		{http.MethodPost, "/api/kpis", http.StatusMethodNotAllowed, ""},
		{http.MethodDelete, "/", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			if tt.contentType == "" {
				return
			}
			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

func TestDashboardPage(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))

	body := w.Body.String()
	for _, want := range []string{
		"Sales Dashboard",
		"Transaktionshistorie",
		"$125,430",
		"-1.5%",
		"Tastatur, kabellos",
		`data-figure="earnings"`,
		`data-figure="status"`,
		`data-figure="daily"`,
		"Felix Auls",
	} {
		assert.Contains(t, body, want)
	}
	assert.Equal(t, 3, strings.Count(body, "<td>Müller GmbH</td>")+strings.Count(body, "<td>Schmidt AG</td>")+strings.Count(body, "<td>Weber KG</td>"))
}

func TestValidateCommand(t *testing.T) {
	writeDataDir(t)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"validate"})
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	require.NoError(t, cmd.Execute())

	var stats map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &stats))
	assert.Equal(t, 2, stats["kpis"])
	assert.Equal(t, 3, stats["transactions"])
	assert.Equal(t, 4, stats["transaction_columns"])
	assert.Equal(t, 2, stats["months"])
	assert.Equal(t, 2, stats["statuses"])
	assert.Equal(t, 2, stats["days"])
}

func TestValidateCommand_MissingFile(t *testing.T) {
	dir := writeDataDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "daily_sales.csv")))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"validate"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "daily_sales.csv")
}

func TestValidateCommand_ConfigFlag(t *testing.T) {
	dir := writeDataDir(t)
	t.Setenv("DATA_DIR", "")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("data:\n  dir: "+dir+"\n  kpis: missing.csv\n"), 0o644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"validate", "--config", cfgPath})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.csv")
}
