package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/metrics"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/widgets"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTestDashboard() *services.Dashboard {
	d := services.NewDashboard()
	d.SetData(&services.Datasets{
		KPIs: []models.KPI{
			{Field: "Umsatz", Value: decimal.RequireFromString("125430.5"), Change: 12.5, ChangeText: "12.5"},
			{Field: "Retouren", Value: decimal.NewFromInt(156), Change: -1.5, ChangeText: "-1.5"},
		},
		Transactions: models.TransactionTable{
			Columns: []string{"Datum", "Kunde", "Betrag"},
			Rows: [][]string{
				{"2025-06-01", "Müller GmbH", "1899.00"},
				{"2025-06-02", "Schmidt AG", "349.90"},
			},
		},
		MonthlyEarnings: []models.MonthlyEarning{
			{Month: "Jan", CurrentIncome: 18200, LastMonthIncome: 16900},
			{Month: "Feb", CurrentIncome: 19450, LastMonthIncome: 18200},
		},
		SaleStatus: []models.SaleStatus{
			{Status: "Abgeschlossen", Count: 620},
			{Status: "Storniert", Count: 130},
		},
		DailySales: []models.DailySales{
			{Day: "Mo", Sales: 120},
			{Day: "Di", Sales: 135},
		},
	})
	return d
}

func newTestAPIHandlers() *APIHandlers {
	return NewAPIHandlers(createTestDashboard(), metrics.NewLatency(), testLogger())
}

func decodeResponse(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var response map[string]any
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	return response
}

func TestNewAPIHandlers(t *testing.T) {
	dashboard := createTestDashboard()
	latency := metrics.NewLatency()
	handlers := NewAPIHandlers(dashboard, latency, testLogger())

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}
	if handlers.dashboard != dashboard {
		t.Error("NewAPIHandlers() should set dashboard field")
	}
	if handlers.latency != latency {
		t.Error("NewAPIHandlers() should set latency field")
	}
}

func TestAPIHandlers_DataEndpoints(t *testing.T) {
	handlers := newTestAPIHandlers()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		path    string
		wantLen int
	}{
		{"kpis", handlers.HandleKPIs, "/api/kpis", 2},
		{"monthly-earnings", handlers.HandleMonthlyEarnings, "/api/monthly-earnings", 2},
		{"sale-status", handlers.HandleSaleStatus, "/api/sale-status", 2},
		{"daily-sales", handlers.HandleDailySales, "/api/daily-sales", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			tt.handler(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected content-type 'application/json', got %q", ct)
			}
			if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
				t.Errorf("expected cache-control 'public, max-age=300', got %q", cc)
			}

			response := decodeResponse(t, w.Body)
			if success, ok := response["success"].(bool); !ok || !success {
				t.Error("expected success=true in response")
			}
			data, ok := response["data"].([]any)
			if !ok {
				t.Fatalf("expected data array, got %T", response["data"])
			}
			if len(data) != tt.wantLen {
				t.Errorf("expected %d items, got %d", tt.wantLen, len(data))
			}
		})
	}
}

func TestAPIHandlers_HandleKPIs_Formatting(t *testing.T) {
	handlers := newTestAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/kpis", nil)
	w := httptest.NewRecorder()
	handlers.HandleKPIs(w, req)

	body := w.Body.String()
	for _, want := range []string{`"$125,430"`, `"12.5%"`, `"-1.5%"`, `"#ef476f"`, `"#6c63ff"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected response to contain %s, got %s", want, body)
		}
	}
}

func TestAPIHandlers_HandleTransactions(t *testing.T) {
	handlers := newTestAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	w := httptest.NewRecorder()
	handlers.HandleTransactions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response struct {
		Data    widgets.Table `json:"data"`
		Success bool          `json:"success"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if got := strings.Join(response.Data.Columns, ","); got != "Datum,Kunde,Betrag" {
		t.Errorf("expected columns in file order, got %q", got)
	}
	if len(response.Data.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(response.Data.Rows))
	}
	if got := response.Data.Rows[0][1]; got != "Müller GmbH" {
		t.Errorf("expected first row Kunde 'Müller GmbH', got %q", got)
	}
}

func TestAPIHandlers_HandleTransactions_RepeatedColumns(t *testing.T) {
	d := services.NewDashboard()
	d.SetData(&services.Datasets{
		Transactions: models.TransactionTable{
			Columns: []string{"Datum", " Kunde", "Kunde"},
			Rows:    [][]string{{"2025-06-01", "  Müller GmbH", "Schmidt AG"}},
		},
	})
	handlers := NewAPIHandlers(d, metrics.NewLatency(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleTransactions(w, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	want := `{"success":true,"data":{"columns":["Datum"," Kunde","Kunde"],"rows":[["2025-06-01","  Müller GmbH","Schmidt AG"]]}}`
	var got, expected any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(want), &expected); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(expected, got) {
		t.Errorf("expected %s, got %s", want, w.Body.String())
	}
}

func TestAPIHandlers_HandleFigure(t *testing.T) {
	handlers := newTestAPIHandlers()

	tests := []struct {
		name       string
		figure     string
		wantStatus int
		wantType   string
	}{
		{"earnings", "earnings", http.StatusOK, "line"},
		{"status", "status", http.StatusOK, "doughnut"},
		{"daily", "daily", http.StatusOK, "bar"},
		{"unknown", "revenue", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/figures/"+tt.figure, nil)
			req.SetPathValue("name", tt.figure)
			w := httptest.NewRecorder()

			handlers.HandleFigure(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}

			response := decodeResponse(t, w.Body)
			if tt.wantStatus != http.StatusOK {
				errBody, ok := response["error"].(map[string]any)
				if !ok {
					t.Fatal("expected error object in response")
				}
				if errBody["code"] != "NOT_FOUND" {
					t.Errorf("expected code NOT_FOUND, got %v", errBody["code"])
				}
				return
			}

			data := response["data"].(map[string]any)
			if data["type"] != tt.wantType {
				t.Errorf("expected chart type %q, got %v", tt.wantType, data["type"])
			}
		})
	}
}

func TestAPIHandlers_HandleFigureSVG(t *testing.T) {
	handlers := newTestAPIHandlers()

	tests := []struct {
		name       string
		file       string
		wantStatus int
	}{
		{"earnings", "earnings.svg", http.StatusOK},
		{"status", "status.svg", http.StatusOK},
		{"daily", "daily.svg", http.StatusOK},
		{"missing extension", "daily", http.StatusNotFound},
		{"unknown figure", "revenue.svg", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/charts/"+tt.file, nil)
			req.SetPathValue("file", tt.file)
			w := httptest.NewRecorder()

			handlers.HandleFigureSVG(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
				t.Errorf("expected content-type 'image/svg+xml', got %q", ct)
			}
			if !strings.Contains(w.Body.String(), "<svg") {
				t.Error("expected SVG document in body")
			}
		})
	}
}

func TestAPIHandlers_HandleFigureSVG_NoData(t *testing.T) {
	handlers := NewAPIHandlers(services.NewDashboard(), metrics.NewLatency(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/charts/status.svg", nil)
	req.SetPathValue("file", "status.svg")
	w := httptest.NewRecorder()

	handlers.HandleFigureSVG(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	errBody, ok := decodeResponse(t, w.Body)["error"].(map[string]any)
	if !ok {
		t.Fatal("expected error object in response")
	}
	if errBody["code"] != "NO_DATA" {
		t.Errorf("expected code NO_DATA, got %v", errBody["code"])
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := newTestAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "" {
		t.Errorf("health endpoint should not set cache-control, got %q", cc)
	}

	response := decodeResponse(t, w.Body)
	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected health data in response")
	}
	if status, _ := data["status"].(string); status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", status)
	}
	timestamp, _ := data["timestamp"].(string)
	if _, err := time.Parse(time.RFC3339, timestamp); err != nil {
		t.Errorf("invalid timestamp format: %v", err)
	}
	if data["version"] != Version {
		t.Errorf("expected version %q, got %v", Version, data["version"])
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := newTestAPIHandlers()
	handlers.latency.Record(5*time.Millisecond, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()

	handlers.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeResponse(t, w.Body)
	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected stats object in response")
	}

	dataStats, ok := data["data"].(map[string]any)
	if !ok {
		t.Fatal("expected dataset stats")
	}
	if dataStats["transactions"] != float64(2) {
		t.Errorf("expected 2 transactions, got %v", dataStats["transactions"])
	}

	requests, ok := data["requests"].(map[string]any)
	if !ok {
		t.Fatal("expected request stats")
	}
	if requests["requests"] != float64(1) {
		t.Errorf("expected 1 recorded request, got %v", requests["requests"])
	}
}
