package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
	"sales-dashboard/internal/widgets"
)

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

func renderFragment(ctx context.Context, c templ.Component) (string, error) {
	var buf strings.Builder
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (h *SSEHandlers) renderKPICards(ctx context.Context) (string, error) {
	cards := widgets.NewKPICards(h.dashboard.KPIs())
	return renderFragment(ctx, templates.KPICards(cards))
}

func (h *SSEHandlers) renderTransactions(ctx context.Context) (string, error) {
	table := widgets.NewTable(h.dashboard.Transactions())
	return renderFragment(ctx, templates.Transactions(table))
}

func (h *SSEHandlers) figureSignals() ([]byte, error) {
	return json.Marshal(map[string]any{
		"figures": charts.All(h.dashboard.Data()),
	})
}

func (h *SSEHandlers) patchElements(ctx context.Context, sse *datastar.ServerSentEventGenerator, fragment string, render func(context.Context) (string, error)) bool {
	ctx, span := observability.StartSpan(ctx, "patch "+fragment)
	defer func() {
		span.Finish()
		h.logger.Debug("span finished", "span", span)
	}()

	html, err := render(ctx)
	if err != nil {
		span.SetError(err)
		h.logger.Error("render fragment", "fragment", fragment, "error", err)
		return false
	}
	span.SetTag("bytes", strconv.Itoa(len(html)))
	if err := sse.PatchElements(html); err != nil {
		span.SetError(err)
		h.logger.Warn("patch elements", "fragment", fragment, "error", err)
		return false
	}
	return true
}

func (h *SSEHandlers) patchFigures(sse *datastar.ServerSentEventGenerator) bool {
	signals, err := h.figureSignals()
	if err != nil {
		h.logger.Error("marshal figures", "error", err)
		return false
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Warn("patch signals", "error", err)
		return false
	}
	return true
}

func (h *SSEHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	h.patchElements(r.Context(), sse, "kpi-cards", h.renderKPICards)
}

func (h *SSEHandlers) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	h.patchElements(r.Context(), sse, "transactions", h.renderTransactions)
}

func (h *SSEHandlers) HandleFigures(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	h.patchFigures(sse)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	if !h.patchElements(r.Context(), sse, "kpi-cards", h.renderKPICards) {
		return
	}
	if !h.patchElements(r.Context(), sse, "transactions", h.renderTransactions) {
		return
	}
	h.patchFigures(sse)
}
