package server

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/metrics"
	"sales-dashboard/internal/services"
)

// Server routes every dashboard endpoint. Anything not in the route table is a 404.
type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
}

type route struct {
	pattern string
	handler http.Handler
}

// NewServer wires the API and SSE handlers for dashboard; page serves the index.
func NewServer(dashboard *services.Dashboard, latency *metrics.Latency, logger *slog.Logger, page http.Handler) *Server {
	s := &Server{mux: http.NewServeMux(), logger: logger}

	api := handlers.NewAPIHandlers(dashboard, latency, logger)
	sse := handlers.NewSSEHandlers(dashboard, logger)

	for _, rt := range routes(page, api, sse) {
		s.mux.Handle(rt.pattern, rt.handler)
		logger.Debug("route registered", "pattern", rt.pattern)
	}
	return s
}

func routes(page http.Handler, api *handlers.APIHandlers, sse *handlers.SSEHandlers) []route {
	return []route{
		{"GET /{$}", page},
		{"GET /health", http.HandlerFunc(api.HandleHealth)},
		{"GET /admin/stats", http.HandlerFunc(api.HandleStats)},

		{"GET /api/kpis", http.HandlerFunc(api.HandleKPIs)},
		{"GET /api/transactions", http.HandlerFunc(api.HandleTransactions)},
		{"GET /api/monthly-earnings", http.HandlerFunc(api.HandleMonthlyEarnings)},
		{"GET /api/sale-status", http.HandlerFunc(api.HandleSaleStatus)},
		{"GET /api/daily-sales", http.HandlerFunc(api.HandleDailySales)},
		{"GET /api/figures/{name}", http.HandlerFunc(api.HandleFigure)},
		{"GET /charts/{file}", http.HandlerFunc(api.HandleFigureSVG)},

		// Datastar fragments and signals
		{"GET /sse/kpis", http.HandlerFunc(sse.HandleKPIs)},
		{"GET /sse/transactions", http.HandlerFunc(sse.HandleTransactions)},
		{"GET /sse/figures", http.HandlerFunc(sse.HandleFigures)},
		{"GET /sse/refresh-all", http.HandlerFunc(sse.HandleRefreshAll)},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
