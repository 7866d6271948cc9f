package handlers

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/metrics"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/widgets"
)

// Version is reported by /health and logged at start-up.
const Version = "1.0.0"

const svgExtension = ".svg"

// The datasets are fixed for the life of the process.
var cached = errors.Cached(5 * time.Minute)

type APIHandlers struct {
	dashboard *services.Dashboard
	latency   *metrics.Latency
	logger    *slog.Logger
	startedAt time.Time
}

func NewAPIHandlers(dashboard *services.Dashboard, latency *metrics.Latency, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		latency:   latency,
		logger:    logger,
		startedAt: time.Now(),
	}
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	cards := widgets.NewKPICards(h.dashboard.KPIs())
	errors.WriteSuccess(w, cards, cached)
}

// HandleTransactions returns the table as columns plus positional rows so
// repeated header names survive.
func (h *APIHandlers) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, widgets.NewTable(h.dashboard.Transactions()), cached)
}

func (h *APIHandlers) HandleMonthlyEarnings(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.MonthlyEarnings(), cached)
}

func (h *APIHandlers) HandleSaleStatus(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.SaleStatus(), cached)
}

func (h *APIHandlers) HandleDailySales(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.DailySales(), cached)
}

func (h *APIHandlers) HandleFigure(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	fig, err := charts.Build(name, h.dashboard.Data())
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.NotFound("figure", name, err))
		return
	}

	errors.WriteSuccess(w, fig, cached)
}

// HandleFigureSVG serves /charts/{file} where file is "<figure>.svg".
func (h *APIHandlers) HandleFigureSVG(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	name, ok := strings.CutSuffix(file, svgExtension)
	if !ok {
		errors.WriteError(w, r, h.logger, errors.NotFound("chart", file, nil))
		return
	}

	var buf bytes.Buffer
	if err := charts.RenderSVG(&buf, name, h.dashboard.Data()); err != nil {
		switch {
		case stderrors.Is(err, charts.ErrUnknownFigure):
			errors.WriteError(w, r, h.logger, errors.NotFound("chart", file, err))
		case stderrors.Is(err, charts.ErrNoData):
			errors.WriteError(w, r, h.logger, errors.NoData(name, err))
		default:
			errors.WriteError(w, r, h.logger, errors.Internal(err, "failed to render chart"))
		}
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	cached(w.Header())
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("write svg", "figure", name, "error", err)
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"version":   Version,
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"data":     h.dashboard.Stats(),
		"requests": h.latency.Snapshot(),
	}

	errors.WriteSuccess(w, stats)
}
