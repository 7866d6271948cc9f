package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
)

// Sources names the five CSV files the dashboard is built from.
type Sources struct {
	KPIs            string `json:"kpis"`
	Transactions    string `json:"transactions"`
	MonthlyEarnings string `json:"monthly_earnings"`
	SaleStatus      string `json:"sale_status"`
	DailySales      string `json:"daily_sales"`
}

type Datasets struct {
	KPIs            []models.KPI            `json:"kpis"`
	Transactions    models.TransactionTable `json:"transactions"`
	MonthlyEarnings []models.MonthlyEarning `json:"monthly_earnings"`
	SaleStatus      []models.SaleStatus     `json:"sale_status"`
	DailySales      []models.DailySales     `json:"daily_sales"`
	LoadedAt        time.Time               `json:"loaded_at"`
}

// Dashboard holds the loaded tables. They are published once and only read afterwards.
type Dashboard struct {
	mu      sync.RWMutex
	data    *Datasets
	sources Sources
	logger  *slog.Logger
}

func NewDashboard() *Dashboard {
	return &Dashboard{
		data:   &Datasets{},
		logger: slog.Default(),
	}
}

func (d *Dashboard) SetData(data *Datasets) {
	if data.LoadedAt.IsZero() {
		data.LoadedAt = time.Now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.data = data
}

// LoadFromCSV reads all five files concurrently. Nothing is published unless every
// file loads cleanly.
func (d *Dashboard) LoadFromCSV(ctx context.Context, src Sources) error {
	start := time.Now()
	d.logger.Info("loading dashboard data",
		"kpis", src.KPIs,
		"transactions", src.Transactions,
		"monthly_earnings", src.MonthlyEarnings,
		"sale_status", src.SaleStatus,
		"daily_sales", src.DailySales,
	)

	var data Datasets
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		kpis, err := readKPIs(ctx, src.KPIs)
		if err != nil {
			return fmt.Errorf("load kpis: %w", err)
		}
		data.KPIs = kpis
		return nil
	})
	g.Go(func() error {
		table, err := readTransactions(ctx, src.Transactions)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		data.Transactions = table
		return nil
	})
	g.Go(func() error {
		earnings, err := readMonthlyEarnings(ctx, src.MonthlyEarnings)
		if err != nil {
			return fmt.Errorf("load monthly earnings: %w", err)
		}
		data.MonthlyEarnings = earnings
		return nil
	})
	g.Go(func() error {
		statuses, err := readSaleStatus(ctx, src.SaleStatus)
		if err != nil {
			return fmt.Errorf("load sale status: %w", err)
		}
		data.SaleStatus = statuses
		return nil
	})
	g.Go(func() error {
		days, err := readDailySales(ctx, src.DailySales)
		if err != nil {
			return fmt.Errorf("load daily sales: %w", err)
		}
		data.DailySales = days
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	data.LoadedAt = time.Now()

	d.mu.Lock()
	d.data = &data
	d.sources = src
	d.mu.Unlock()

	d.logger.Info("dashboard data loaded",
		"kpis", len(data.KPIs),
		"transactions", len(data.Transactions.Rows),
		"months", len(data.MonthlyEarnings),
		"statuses", len(data.SaleStatus),
		"days", len(data.DailySales),
		"duration", time.Since(start),
	)
	return nil
}

func (d *Dashboard) Data() *Datasets {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data
}

func (d *Dashboard) KPIs() []models.KPI {
	return d.Data().KPIs
}

func (d *Dashboard) Transactions() models.TransactionTable {
	return d.Data().Transactions
}

func (d *Dashboard) MonthlyEarnings() []models.MonthlyEarning {
	return d.Data().MonthlyEarnings
}

func (d *Dashboard) SaleStatus() []models.SaleStatus {
	return d.Data().SaleStatus
}

func (d *Dashboard) DailySales() []models.DailySales {
	return d.Data().DailySales
}

// Stats summarises what was loaded, for the admin endpoint and the validate command.
func (d *Dashboard) Stats() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return map[string]any{
		"loaded_at":           d.data.LoadedAt,
		"kpis":                len(d.data.KPIs),
		"transactions":        len(d.data.Transactions.Rows),
		"transaction_columns": len(d.data.Transactions.Columns),
		"months":              len(d.data.MonthlyEarnings),
		"statuses":            len(d.data.SaleStatus),
		"days":                len(d.data.DailySales),
		"sources":             d.sources,
	}
}
