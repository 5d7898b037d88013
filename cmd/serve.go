// ABOUTME: serve command: runs the HTTP API and the rate limiter sweeper
// ABOUTME: Shuts down gracefully on SIGINT or SIGTERM

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/markalston/agent-dashboard/board"
	"github.com/markalston/agent-dashboard/config"
	"github.com/markalston/agent-dashboard/handlers"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}
		if seed, _ := cmd.Flags().GetBool("seed"); seed {
			cfg.SeedDemoData = true
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "Listen port (env: PORT)")
	serveCmd.Flags().Bool("seed", false, "Load demo records into the board (env: SEED_DEMO_DATA)")
	rootCmd.AddCommand(serveCmd)
}

// serve runs the API until ctx is cancelled or the listener fails.
func serve(ctx context.Context, cfg *config.Config) error {
	slog.Info("Starting agent dashboard API")

	b := board.New()
	if cfg.SeedDemoData {
		if err := b.SeedDemo(); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		slog.Info("Demo data loaded")
	}

	h, err := handlers.NewHandler(cfg, handlers.Deps{Board: b})
	if err != nil {
		return err
	}
	defer h.Close()

	if cfg.AuthEnabled {
		slog.Info("Session auth enabled", "cookie", cfg.CookieName)
	} else {
		slog.Warn("Session auth disabled, reads are public")
	}
	if !cfg.MutationsConfigured() {
		slog.Warn("MUTATION_SECRET not set, every write will be rejected")
	}
	if limiter := h.RateLimiter(); limiter != nil {
		slog.Info("Mutation rate limit", "max", limiter.Limit(), "window", limiter.Window())
	} else {
		slog.Warn("Mutation rate limiting disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if limiter := h.RateLimiter(); limiter != nil {
		g.Go(func() error {
			return limiter.RunSweeper(gctx, cfg.RateLimitSweepInterval)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Server stopped")
	return nil
}
