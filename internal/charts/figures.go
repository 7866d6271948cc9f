// Package charts builds the dashboard figures. Figures are Chart.js configurations
// serialised to JSON and drawn in the browser; svg.go renders the same data server-side.
package charts

import (
	"errors"
	"strconv"
	"strings"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/theme"
)

const (
	EarningsFigure = "earnings"
	StatusFigure   = "status"
	DailyFigure    = "daily"
)

// Names lists the figures in page order.
var Names = []string{EarningsFigure, StatusFigure, DailyFigure}

var ErrUnknownFigure = errors.New("unknown figure")

const (
	gridColor   = "#283442"
	titleSize   = 17
	donutCutout = "50%"
	// pixels a pulled donut slice is moved out of the ring
	pullOffset = 20
)

type Figure struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
	BorderWidth     int       `json:"borderWidth"`
	Offset          []int     `json:"offset,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
	// ValueLabels is drawn on each mark by the page's valueLabels plugin.
	ValueLabels []string `json:"valueLabels,omitempty"`
}

type Options struct {
	Responsive          bool             `json:"responsive"`
	MaintainAspectRatio bool             `json:"maintainAspectRatio"`
	Cutout              string           `json:"cutout,omitempty"`
	Layout              Layout           `json:"layout"`
	Plugins             Plugins          `json:"plugins"`
	Scales              map[string]Scale `json:"scales,omitempty"`
}

type Layout struct {
	Padding Padding `json:"padding"`
}

type Padding struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

type Plugins struct {
	Title  Title  `json:"title"`
	Legend Legend `json:"legend"`
}

type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
	Color   string `json:"color"`
	Font    Font   `json:"font"`
}

type Font struct {
	Size   int    `json:"size,omitempty"`
	Family string `json:"family,omitempty"`
}

type Legend struct {
	Display bool        `json:"display"`
	Labels  LegendLabel `json:"labels"`
}

type LegendLabel struct {
	Color string `json:"color"`
}

type Scale struct {
	Title AxisTitle `json:"title"`
	Ticks Ticks     `json:"ticks"`
	Grid  Grid      `json:"grid"`
}

type AxisTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
	Color   string `json:"color"`
}

type Ticks struct {
	Color string `json:"color"`
}

type Grid struct {
	Color string `json:"color"`
}

func title(text string, size int) Title {
	return Title{
		Display: true,
		Text:    text,
		Color:   theme.Primary,
		Font:    Font{Size: size, Family: theme.FontFamily},
	}
}

func axis(text string) Scale {
	return Scale{
		Title: AxisTitle{Display: text != "", Text: text, Color: theme.Text},
		Ticks: Ticks{Color: theme.Text},
		Grid:  Grid{Color: gridColor},
	}
}

// Earnings is the two-series line chart of current against prior-month income.
func Earnings(rows []models.MonthlyEarning) Figure {
	labels := make([]string, len(rows))
	current := make([]float64, len(rows))
	last := make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = row.Month
		current[i] = row.CurrentIncome
		last[i] = row.LastMonthIncome
	}

	return Figure{
		Type: "line",
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{
				{
					Label:           "Current_Income",
					Data:            current,
					BorderColor:     theme.Primary,
					BackgroundColor: []string{theme.Primary},
					BorderWidth:     2,
				},
				{
					Label:           "Last_Month_Income",
					Data:            last,
					BorderColor:     theme.Accent,
					BackgroundColor: []string{theme.Accent},
					BorderWidth:     2,
				},
			},
		},
		Options: Options{
			Responsive: true,
			Layout:     Layout{Padding: Padding{Left: 20, Right: 20, Bottom: 30}},
			Plugins: Plugins{
				Title:  title("Monatliche Einnahmen (aktuell vs. Vormonat)", 22),
				Legend: Legend{Display: true, Labels: LegendLabel{Color: theme.Text}},
			},
			Scales: map[string]Scale{
				"x": axis("Month"),
				"y": axis("Einnahmen"),
			},
		},
	}
}

// Status is the sale-status donut. The first slice is pulled out and every slice is
// labelled with its name and share of the total.
func Status(rows []models.SaleStatus) Figure {
	labels := make([]string, len(rows))
	counts := make([]float64, len(rows))
	colors := make([]string, len(rows))
	offsets := make([]int, len(rows))
	for i, row := range rows {
		labels[i] = row.Status
		counts[i] = row.Count
		colors[i] = theme.SequenceColor(i)
	}
	if len(offsets) > 0 {
		offsets[0] = pullOffset
	}

	return Figure{
		Type: "doughnut",
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Data:            counts,
				BorderColor:     theme.Background,
				BackgroundColor: colors,
				BorderWidth:     2,
				Offset:          offsets,
				ValueLabels:     StatusLabels(rows),
			}},
		},
		Options: Options{
			Responsive: true,
			Cutout:     donutCutout,
			Plugins: Plugins{
				Title:  title("Verkaufsstatus", titleSize),
				Legend: Legend{Display: false, Labels: LegendLabel{Color: theme.Text}},
			},
		},
	}
}

// StatusLabels renders "<status> <percent>%" for each row's share of the total count.
func StatusLabels(rows []models.SaleStatus) []string {
	var total float64
	for _, row := range rows {
		total += row.Count
	}

	labels := make([]string, len(rows))
	for i, row := range rows {
		var pct float64
		if total != 0 {
			pct = row.Count / total * 100
		}
		labels[i] = row.Status + " " + FormatPercent(pct) + "%"
	}
	return labels
}

// FormatPercent prints pct with three significant digits and trailing zeros
// dropped (62, 25.3, 0.05), the way pie charts label their slices.
func FormatPercent(pct float64) string {
	if pct == 0 {
		return "0"
	}
	sci := strconv.FormatFloat(pct, 'e', 2, 64)
	mantissa, expText, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expText)
	if exp < -6 {
		return mantissa + "e" + strconv.Itoa(exp)
	}

	s := strconv.FormatFloat(pct, 'f', max(0, 2-exp), 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// Daily is the bar chart of sales per weekday with the value printed on each bar.
func Daily(rows []models.DailySales) Figure {
	labels := make([]string, len(rows))
	sales := make([]float64, len(rows))
	text := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = row.Day
		sales[i] = row.Sales
		text[i] = FormatValue(row.Sales)
	}

	return Figure{
		Type: "bar",
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Label:           "Verkäufe",
				Data:            sales,
				BackgroundColor: []string{theme.Primary},
				BorderWidth:     0,
				ValueLabels:     text,
			}},
		},
		Options: Options{
			Responsive: true,
			Plugins: Plugins{
				Title:  title("Tägliche Verkäufe", titleSize),
				Legend: Legend{Display: false, Labels: LegendLabel{Color: theme.Text}},
			},
			Scales: map[string]Scale{
				"x": axis("Wochentag"),
				"y": axis("Verkäufe"),
			},
		},
	}
}

// FormatValue prints a number the shortest way that round-trips, so whole counts
// have no decimals.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Build returns the named figure for the loaded data.
func Build(name string, data *services.Datasets) (Figure, error) {
	switch name {
	case EarningsFigure:
		return Earnings(data.MonthlyEarnings), nil
	case StatusFigure:
		return Status(data.SaleStatus), nil
	case DailyFigure:
		return Daily(data.DailySales), nil
	default:
		return Figure{}, ErrUnknownFigure
	}
}

// All builds every figure, keyed by name.
func All(data *services.Datasets) map[string]Figure {
	figures := make(map[string]Figure, len(Names))
	for _, name := range Names {
		fig, _ := Build(name, data)
		figures[name] = fig
	}
	return figures
}
