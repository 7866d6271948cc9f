package templates

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/widgets"
)

//go:embed dashboard.html
var files embed.FS

var pages = template.Must(template.ParseFS(files, "dashboard.html"))

type DashboardView struct {
	Title   string
	Footer  string
	Cards   []widgets.KPICard
	Table   widgets.Table
	Figures map[string]charts.Figure
}

func Dashboard(view DashboardView) templ.Component {
	return templ.FromGoHTML(pages.Lookup("dashboard"), view)
}

// KPICards is the card row on its own, used for SSE patches.
func KPICards(cards []widgets.KPICard) templ.Component {
	return templ.FromGoHTML(pages.Lookup("kpi-cards"), cards)
}

// Transactions is the transaction table on its own, used for SSE patches.
func Transactions(table widgets.Table) templ.Component {
	return templ.FromGoHTML(pages.Lookup("transactions"), table)
}
