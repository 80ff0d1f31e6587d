package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"retail-dashboard/internal/config"
	"retail-dashboard/internal/middleware"
	"retail-dashboard/internal/models"
	"retail-dashboard/internal/observability"
	"retail-dashboard/internal/server"
	"retail-dashboard/internal/services"
	"retail-dashboard/internal/ui/templates"
)

const (
	version          = "1.0.0"
	renderTimeout    = 10 * time.Second
	cacheMaxAge      = "public, max-age=300"
	limiterPruneTick = time.Minute
)

func dashboardHandler(analytics *services.Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", cacheMaxAge)
		if err := templates.Dashboard(analytics.Options()).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	serveCmd := newServeCmd(&configPath)
	root := &cobra.Command{
		Use:           "retail-dashboard",
		Short:         "Retail transactions dashboard",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults to $CONFIG_FILE)")

	root.AddCommand(serveCmd, newExportCmd(&configPath))
	return root
}

// setup loads configuration, installs the logger and loads the dataset.
func setup(ctx context.Context, configPath string, logOut io.Writer) (*config.Config, *slog.Logger, *services.Analytics, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := observability.NewLogger(logOut, cfg.Logger)
	slog.SetDefault(logger)

	analytics := services.NewAnalytics()
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Server.LoadTimeout)
	defer cancel()

	start := time.Now()
	if err := analytics.LoadFromSources(loadCtx, cfg.Data); err != nil {
		return nil, nil, nil, fmt.Errorf("load data from %s: %w", cfg.Data.Dir, err)
	}
	logger.Info("data loaded successfully",
		"duration", time.Since(start),
		"records", analytics.Dataset().Len(),
	)

	return cfg, logger, analytics, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the data and serve the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, analytics, err := setup(cmd.Context(), *configPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			logger.Info("starting application",
				"version", version,
				"addr", cfg.Address(),
				"basic_auth", cfg.Security.BasicAuthEnabled(),
			)

			return serve(cmd.Context(), cfg, logger, analytics)
		},
	}
}

func newHandler(cfg *config.Config, logger *slog.Logger, analytics *services.Analytics, limiter *middleware.RateLimiter) http.Handler {
	srv := server.NewServer(analytics, logger, &server.TemplateHandlers{
		Dashboard: dashboardHandler(analytics),
	})

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(limiter, logger),
		middleware.BasicAuth(cfg.Security, logger),
	)

	return middlewareChain(srv)
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, analytics *services.Analytics) error {
	limiter := middleware.NewRateLimiter(cfg.Security)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, logger, analytics, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	pruneCtx, stopPrune := context.WithCancel(ctx)
	go limiter.Run(pruneCtx, limiterPruneTick)

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("stopping rate limiter pruning")
		stopPrune()
		return nil
	})

	if err := gracefulServer.ListenAndServe(ctx); err != nil {
		return err
	}

	logger.Info("application stopped gracefully")
	return nil
}

type exportFlags struct {
	out      string
	start    string
	end      string
	category string
	channel  string
	day      string
}

func newExportCmd(configPath *string) *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every chart series to an .xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, analytics, err := setup(cmd.Context(), *configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			params, err := flags.params(analytics.Options())
			if err != nil {
				return err
			}

			f, err := os.Create(flags.out)
			if err != nil {
				return fmt.Errorf("create %s: %w", flags.out, err)
			}
			defer f.Close()

			if err := analytics.ExportWorkbook(cmd.Context(), f, params); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", flags.out, err)
			}

			logger.Info("workbook written", "path", flags.out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.out, "out", "o", "retail-dashboard.xlsx", "output workbook path")
	cmd.Flags().StringVar(&flags.start, "start", "", "first day, YYYY-MM-DD (defaults to the earliest transaction)")
	cmd.Flags().StringVar(&flags.end, "end", "", "last day, YYYY-MM-DD (defaults to the latest transaction)")
	cmd.Flags().StringVar(&flags.category, "category", "", "product category (defaults to the first one)")
	cmd.Flags().StringVar(&flags.channel, "channel", "", "sales channel (defaults to the first one)")
	cmd.Flags().StringVar(&flags.day, "day", "Monday", "weekday for the channel split")
	return cmd
}

func (f exportFlags) params(opts models.DatasetOptions) (services.ExportParams, error) {
	p := services.ExportParams{
		Start:    opts.MinDate,
		End:      opts.MaxDate,
		Category: f.category,
		Channel:  f.channel,
		Weekday:  f.day,
	}

	if f.start != "" {
		d, err := time.Parse(time.DateOnly, f.start)
		if err != nil {
			return p, fmt.Errorf("invalid --start: %w", err)
		}
		p.Start = d
	}
	if f.end != "" {
		d, err := time.Parse(time.DateOnly, f.end)
		if err != nil {
			return p, fmt.Errorf("invalid --end: %w", err)
		}
		p.End = d
	}
	if p.End.Before(p.Start) {
		return p, fmt.Errorf("--end %s is before --start %s", p.End.Format(time.DateOnly), p.Start.Format(time.DateOnly))
	}

	if p.Category == "" && len(opts.Categories) > 0 {
		p.Category = opts.Categories[0]
	}
	if p.Channel == "" && len(opts.Channels) > 0 {
		p.Channel = opts.Channels[0]
	}
	if _, ok := services.ParseWeekday(p.Weekday); !ok {
		return p, fmt.Errorf("invalid --day %q", p.Weekday)
	}
	return p, nil
}
