package widgets

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/theme"
)

type KPICard struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Change      string `json:"change"`
	ChangeColor string `json:"change_color"`
	Negative    bool   `json:"negative"`
}

// NewKPICard formats one KPI row. The change is drawn in the accent color only when
// it is below zero.
func NewKPICard(kpi models.KPI) KPICard {
	negative := kpi.Change < 0
	color := theme.Primary
	if negative {
		color = theme.Accent
	}

	return KPICard{
		Label:       kpi.Field,
		Value:       FormatCurrency(kpi.Value),
		Change:      kpi.ChangeText + "%",
		ChangeColor: color,
		Negative:    negative,
	}
}

func NewKPICards(kpis []models.KPI) []KPICard {
	cards := make([]KPICard, 0, len(kpis))
	for _, kpi := range kpis {
		cards = append(cards, NewKPICard(kpi))
	}
	return cards
}

// FormatCurrency renders whole dollars with thousands separators, rounding half
// to even. A negative amount that rounds to zero keeps its sign: "$-0".
func FormatCurrency(v decimal.Decimal) string {
	rounded := v.RoundBank(0)
	if rounded.IsZero() && v.IsNegative() {
		return "$-0"
	}
	return "$" + humanize.BigComma(rounded.BigInt())
}
