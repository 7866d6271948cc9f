package services

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

var (
	ErrEmptyFile     = errors.New("file has no header row")
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidNumber = errors.New("invalid numeric value")
)

const byteOrderMark = "\ufeff"

// csvTable is a fully read CSV file with cells exactly as written; only a
// leading byte order mark is removed. Typed readers trim through text().
// lines[i] is the 1-based line number of records[i].
type csvTable struct {
	path    string
	header  []string
	index   map[string]int
	records [][]string
	lines   []int
}

func readCSV(ctx context.Context, path string) (*csvTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	t := &csvTable{
		path:   path,
		header: make([]string, len(header)),
		index:  make(map[string]int, len(header)),
	}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, byteOrderMark)
		}
		t.header[i] = name
		// lookups ignore padding around header names
		key := strings.TrimSpace(name)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		line, _ := reader.FieldPos(0)
		t.records = append(t.records, record)
		t.lines = append(t.lines, line)
	}

	return t, nil
}

func (t *csvTable) column(name string) (int, error) {
	idx, ok := t.index[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w %q", t.path, ErrMissingColumn, name)
	}
	return idx, nil
}

// columns resolves every name or reports the first one that is missing.
func (t *csvTable) columns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		col, err := t.column(name)
		if err != nil {
			return nil, err
		}
		idx[i] = col
	}
	return idx, nil
}

func (t *csvTable) text(row, col int) string {
	return strings.TrimSpace(t.records[row][col])
}

func (t *csvTable) float(row, col int) (float64, error) {
	raw := t.text(row, col)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, t.numberError(row, col, raw)
	}
	return value, nil
}

func (t *csvTable) decimal(row, col int) (decimal.Decimal, error) {
	raw := t.text(row, col)
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, t.numberError(row, col, raw)
	}
	return value, nil
}

func (t *csvTable) numberError(row, col int, raw string) error {
	return fmt.Errorf("%s line %d column %q: %w %q", t.path, t.lines[row], t.header[col], ErrInvalidNumber, raw)
}

func readKPIs(ctx context.Context, path string) ([]models.KPI, error) {
	t, err := readCSV(ctx, path)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns("Field", "Value", "Change")
	if err != nil {
		return nil, err
	}

	kpis := make([]models.KPI, 0, len(t.records))
	changes := make([]float64, 0, len(t.records))
	for i := range t.records {
		value, err := t.decimal(i, cols[1])
		if err != nil {
			return nil, err
		}
		change, err := t.float(i, cols[2])
		if err != nil {
			return nil, err
		}
		kpis = append(kpis, models.KPI{
			Field:  t.text(i, cols[0]),
			Value:  value,
			Change: change,
		})
		changes = append(changes, change)
	}

	// The column is typed as a whole: integers print as integers only when
	// every cell is one, otherwise every cell prints as a float.
	ints, allInts := t.integers(cols[2])
	for i := range kpis {
		if allInts {
			kpis[i].ChangeText = strconv.FormatInt(ints[i], 10)
		} else {
			kpis[i].ChangeText = FormatFloat(changes[i])
		}
	}
	return kpis, nil
}

// integers parses every cell of col as an int64. ok is false as soon as one
// cell is not an integer.
func (t *csvTable) integers(col int) (values []int64, ok bool) {
	values = make([]int64, len(t.records))
	for i := range t.records {
		v, err := strconv.ParseInt(t.text(i, col), 10, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// FormatFloat prints v as the shortest text that parses back to v, always with
// a fractional part or an exponent: 8 -> "8.0", 12.50 -> "12.5", 1e-05 -> "1e-05".
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func readTransactions(ctx context.Context, path string) (models.TransactionTable, error) {
	t, err := readCSV(ctx, path)
	if err != nil {
		return models.TransactionTable{}, err
	}
	rows := t.records
	if rows == nil {
		rows = [][]string{}
	}
	return models.TransactionTable{
		Columns: t.header,
		Rows:    rows,
	}, nil
}

func readMonthlyEarnings(ctx context.Context, path string) ([]models.MonthlyEarning, error) {
	t, err := readCSV(ctx, path)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns("Month", "Current_Income", "Last_Month_Income")
	if err != nil {
		return nil, err
	}

	earnings := make([]models.MonthlyEarning, 0, len(t.records))
	for i := range t.records {
		current, err := t.float(i, cols[1])
		if err != nil {
			return nil, err
		}
		last, err := t.float(i, cols[2])
		if err != nil {
			return nil, err
		}
		earnings = append(earnings, models.MonthlyEarning{
			Month:           t.text(i, cols[0]),
			CurrentIncome:   current,
			LastMonthIncome: last,
		})
	}
	return earnings, nil
}

func readSaleStatus(ctx context.Context, path string) ([]models.SaleStatus, error) {
	t, err := readCSV(ctx, path)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns("Status", "Count")
	if err != nil {
		return nil, err
	}

	statuses := make([]models.SaleStatus, 0, len(t.records))
	for i := range t.records {
		count, err := t.float(i, cols[1])
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, models.SaleStatus{Status: t.text(i, cols[0]), Count: count})
	}
	return statuses, nil
}

func readDailySales(ctx context.Context, path string) ([]models.DailySales, error) {
	t, err := readCSV(ctx, path)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns("Day", "Sales")
	if err != nil {
		return nil, err
	}

	days := make([]models.DailySales, 0, len(t.records))
	for i := range t.records {
		sales, err := t.float(i, cols[1])
		if err != nil {
			return nil, err
		}
		days = append(days, models.DailySales{Day: t.text(i, cols[0]), Sales: sales})
	}
	return days, nil
}
