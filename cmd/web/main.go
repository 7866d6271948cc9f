package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/metrics"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
	"sales-dashboard/internal/widgets"
)

const renderTimeout = 10 * time.Second

type options struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "sales-dashboard",
		Short:        "Serve the sales analytics dashboard",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file (or set CONFIG_FILE)")

	root.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load the data files, report row counts and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	})

	return root
}

// dashboardHandler renders the page. The view is built once; the data behind it
// never changes after start-up.
func dashboardHandler(view templates.DashboardView) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		var buf bytes.Buffer
		if err := templates.Dashboard(view).Render(ctx, &buf); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		errors.Cached(5 * time.Minute)(w.Header())
		_, _ = buf.WriteTo(w)
	}
}

func newDashboardView(cfg config.DashboardConfig, dashboard *services.Dashboard) templates.DashboardView {
	data := dashboard.Data()
	return templates.DashboardView{
		Title:   cfg.Title,
		Footer:  cfg.Footer,
		Cards:   widgets.NewKPICards(data.KPIs),
		Table:   widgets.NewTable(data.Transactions),
		Figures: charts.All(data),
	}
}

func sources(d config.DataConfig) services.Sources {
	return services.Sources{
		KPIs:            d.Path(d.KPIs),
		Transactions:    d.Path(d.Transactions),
		MonthlyEarnings: d.Path(d.MonthlyEarnings),
		SaleStatus:      d.Path(d.SaleStatus),
		DailySales:      d.Path(d.DailySales),
	}
}

// bootstrap loads configuration and data. Any failure here stops the process.
func bootstrap(ctx context.Context, opts *options) (*config.Config, *slog.Logger, *services.Dashboard, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return nil, nil, nil, err
	}

	logger := observability.NewLogger(cfg.Logger, os.Stdout)
	slog.SetDefault(logger)

	dashboard := services.NewDashboard()
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Data.LoadTimeout)
	defer cancel()

	if err := dashboard.LoadFromCSV(loadCtx, sources(cfg.Data)); err != nil {
		logger.Error("failed to load CSV data", "error", err)
		return nil, nil, nil, err
	}

	return cfg, logger, dashboard, nil
}

func runValidate(ctx context.Context, out io.Writer, opts *options) error {
	_, _, dashboard, err := bootstrap(ctx, opts)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(out)
	defer enc.Close()
	return enc.Encode(dashboard.Stats())
}

func runServe(ctx context.Context, opts *options) error {
	cfg, logger, dashboard, err := bootstrap(ctx, opts)
	if err != nil {
		return err
	}

	logger.Info("starting application",
		"version", handlers.Version,
		"addr", cfg.Address(),
		"data_dir", cfg.Data.Dir,
	)

	latency := metrics.NewLatency()
	page := dashboardHandler(newDashboardView(cfg.Dashboard, dashboard))
	srv := server.NewServer(dashboard, latency, logger, page)

	compress, err := middleware.Compress(cfg.Security)
	if err != nil {
		return fmt.Errorf("configure compression: %w", err)
	}
	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Metrics(latency),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		compress,
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      middlewareChain(srv),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook("request-stats", func(ctx context.Context) error {
		logger.Info("request statistics at shutdown", "requests", latency.Snapshot())
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		return err
	}

	logger.Info("application stopped gracefully")
	return nil
}
