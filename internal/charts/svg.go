package charts

import (
	"errors"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/theme"
)

var ErrNoData = errors.New("figure has no data to draw")

const (
	svgWidth  = 900
	svgHeight = 420
)

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func panelStyle() chart.Style {
	return chart.Style{
		FillColor:   hexColor(theme.Panel),
		StrokeColor: hexColor(theme.Panel),
		FontColor:   drawing.ColorWhite,
	}
}

func titleStyle(size float64) chart.Style {
	return chart.Style{
		FontColor: hexColor(theme.Primary),
		FontSize:  size,
	}
}

func axisStyle() chart.Style {
	return chart.Style{
		FontColor:   drawing.ColorWhite,
		StrokeColor: drawing.ColorWhite,
	}
}

// RenderSVG writes a static snapshot of the named figure.
func RenderSVG(w io.Writer, name string, data *services.Datasets) error {
	switch name {
	case EarningsFigure:
		return renderEarningsSVG(w, data.MonthlyEarnings)
	case StatusFigure:
		return renderStatusSVG(w, data.SaleStatus)
	case DailyFigure:
		return renderDailySVG(w, data.DailySales)
	default:
		return ErrUnknownFigure
	}
}

func renderEarningsSVG(w io.Writer, rows []models.MonthlyEarning) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	xs := make([]float64, len(rows))
	current := make([]float64, len(rows))
	last := make([]float64, len(rows))
	ticks := make([]chart.Tick, len(rows))
	for i, row := range rows {
		xs[i] = float64(i)
		current[i] = row.CurrentIncome
		last[i] = row.LastMonthIncome
		ticks[i] = chart.Tick{Value: float64(i), Label: row.Month}
	}
	// a single point has an empty x range; draw it as a flat segment
	if len(rows) == 1 {
		xs = []float64{0, 1}
		current = []float64{current[0], current[0]}
		last = []float64{last[0], last[0]}
		ticks = append(ticks, chart.Tick{Value: 1})
	}

	yAxis := chart.YAxis{
		Name:  "Einnahmen",
		Style: axisStyle(),
	}
	// go-chart refuses a zero-height value range
	if lo, hi := minMax(current, last); lo == hi {
		yAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	c := chart.Chart{
		Title:      "Monatliche Einnahmen (aktuell vs. Vormonat)",
		TitleStyle: titleStyle(22),
		Width:      svgWidth,
		Height:     svgHeight,
		Background: chart.Style{
			FillColor: hexColor(theme.Panel),
			Padding:   chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 30},
		},
		Canvas: panelStyle(),
		XAxis: chart.XAxis{
			Name:  "Month",
			Style: axisStyle(),
			Ticks: ticks,
		},
		YAxis: yAxis,
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Current_Income",
				XValues: xs,
				YValues: current,
				Style:   chart.Style{StrokeColor: hexColor(theme.Primary), StrokeWidth: 2},
			},
			chart.ContinuousSeries{
				Name:    "Last_Month_Income",
				XValues: xs,
				YValues: last,
				Style:   chart.Style{StrokeColor: hexColor(theme.Accent), StrokeWidth: 2},
			},
		},
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}

	return c.Render(chart.SVG, w)
}

func minMax(series ...[]float64) (lo, hi float64) {
	first := true
	for _, values := range series {
		for _, v := range values {
			if first || v < lo {
				lo = v
			}
			if first || v > hi {
				hi = v
			}
			first = false
		}
	}
	return lo, hi
}

func renderStatusSVG(w io.Writer, rows []models.SaleStatus) error {
	// a donut needs at least one non-zero slice
	if _, hi := minMax(statusCounts(rows)); hi <= 0 {
		return ErrNoData
	}

	labels := StatusLabels(rows)
	values := make([]chart.Value, len(rows))
	for i, row := range rows {
		values[i] = chart.Value{
			Label: labels[i],
			Value: row.Count,
			Style: chart.Style{
				FillColor:   hexColor(theme.SequenceColor(i)),
				StrokeColor: hexColor(theme.Background),
				StrokeWidth: 2,
				FontColor:   drawing.ColorWhite,
			},
		}
	}

	c := chart.DonutChart{
		Title:      "Verkaufsstatus",
		TitleStyle: titleStyle(titleSize),
		Width:      svgHeight,
		Height:     svgHeight,
		Background: chart.Style{
			FillColor: hexColor(theme.Panel),
			Padding:   chart.Box{Top: 50},
		},
		Canvas: panelStyle(),
		Values: values,
	}

	return c.Render(chart.SVG, w)
}

func statusCounts(rows []models.SaleStatus) []float64 {
	counts := make([]float64, len(rows))
	for i, row := range rows {
		counts[i] = row.Count
	}
	return counts
}

func renderDailySVG(w io.Writer, rows []models.DailySales) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	sales := make([]float64, len(rows))
	bars := make([]chart.Value, len(rows))
	for i, row := range rows {
		sales[i] = row.Sales
		bars[i] = chart.Value{
			Label: row.Day,
			Value: row.Sales,
			Style: chart.Style{
				FillColor:   hexColor(theme.Primary),
				StrokeColor: hexColor(theme.Primary),
			},
		}
	}

	// bars grow from zero
	lo, hi := minMax(sales)
	lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	if lo == hi {
		hi = lo + 1
	}

	c := chart.BarChart{
		Title:      "Tägliche Verkäufe",
		TitleStyle: titleStyle(titleSize),
		Width:      svgWidth,
		Height:     svgHeight,
		BarWidth:   60,
		Background: chart.Style{
			FillColor: hexColor(theme.Panel),
			Padding:   chart.Box{Top: 50},
		},
		Canvas: panelStyle(),
		XAxis:  axisStyle(),
		YAxis: chart.YAxis{
			Name:  "Verkäufe",
			Style: axisStyle(),
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		UseBaseValue: true,
		Bars:         bars,
	}

	return c.Render(chart.SVG, w)
}
