package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leowang-dev/polytriage/internal/monitor"
	"github.com/leowang-dev/polytriage/internal/server"
	"github.com/leowang-dev/polytriage/internal/server/handler"
	"github.com/leowang-dev/polytriage/internal/server/ws"
)

// shutdownGrace is how long in-flight HTTP requests get to finish.
const shutdownGrace = 10 * time.Second

// MonitorMode runs the periodic scan loop, optionally alongside the HTTP
// API. This is the normal long-running deployment.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	g, ctx := errgroup.WithContext(ctx)

	mon := monitor.New(
		deps.Provider,
		deps.Engine,
		deps.Cache,
		deps.Archiver,
		deps.Notifier,
		a.monitorOptions(),
		a.logger,
	)

	var hub *ws.Hub
	if a.cfg.Server.Enabled {
		hub = ws.NewHub(a.logger)
		mon.OnResult(hub.BroadcastResult)

		g.Go(func() error {
			if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})

		a.startServer(ctx, g, deps, hub)
	}

	g.Go(func() error {
		if err := mon.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})

	return g.Wait()
}

// ScanMode performs a single scan cycle, writes the report to stdout, and
// exits. Intended for cron jobs and manual inspection.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	mon := monitor.New(
		deps.Provider,
		deps.Engine,
		deps.Cache,
		deps.Archiver,
		deps.Notifier,
		a.monitorOptions(),
		a.logger,
	)

	report, err := mon.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("app: scan: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("app: scan: encode report: %w", err)
	}
	return nil
}

// ServeMode runs only the HTTP API, reading results produced by a monitor
// process elsewhere through the shared Redis cache.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(a.logger)
	g.Go(func() error {
		if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})

	a.startServer(ctx, g, deps, hub)

	return g.Wait()
}

// startServer registers the HTTP server goroutines on the group: one
// serving requests, one waiting on the context to trigger a graceful
// shutdown.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, hub *ws.Hub) {
	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(a.logger),
		Result:    handler.NewResultHandler(deps.Cache, a.logger),
		Portfolio: handler.NewPortfolioHandler(deps.Engine, a.logger),
		Strategy:  handler.NewStrategyHandler(deps.Engine),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, deps.Limiter, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown failed",
				slog.String("error", err.Error()),
			)
		}
		return nil
	})
}

func (a *App) monitorOptions() monitor.Options {
	opts := monitor.Options{
		Interval:          a.cfg.Monitor.Interval.Duration,
		DailyResetHourUTC: a.cfg.Monitor.DailyResetHourUTC,
	}
	if a.cfg.Monitor.WriteReportFile {
		opts.ReportPath = a.cfg.Monitor.ReportPath
	}
	return opts
}
