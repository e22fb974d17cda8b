package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventario/internal/api"
	"github.com/erazemk/inventario/internal/auth"
	"github.com/erazemk/inventario/internal/session"
	"github.com/erazemk/inventario/internal/store"
	"github.com/erazemk/inventario/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web form and JSON API",
	Long: `Serve the inventory over HTTP.

The access password is generated and printed on first run. With the memory
backend every login gets its own empty table, discarded at logout or after
the session has been idle for the session TTL.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	d := serveCmd.Flags()
	d.StringP("addr", "a", ":8080", "listen address")
	d.String("upload-url", "", "photo upload bridge URL (default: keep photos in the database)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()

	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()
	slog.Info("database ready", "path", cfg.DBPath)

	password, err := auth.EnsurePassword(ctx, database)
	if err != nil {
		return fmt.Errorf("setting up access password: %w", err)
	}
	if password != "" {
		printPassword(password)
	}

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	services, manager, closeBackend, err := newServices(ctx, database)
	if err != nil {
		return err
	}
	defer closeBackend()
	slog.Info("item table ready", "backend", cfg.Backend)

	var onLogout func(string)
	if manager != nil {
		onLogout = manager.End
	}

	tasks := []func(){func() {
		n, err := store.PurgeRevocations(context.Background(), database, time.Now())
		if err != nil {
			slog.Error("failed to purge revoked sessions", "error", err)
			return
		}
		if n > 0 {
			slog.Info("purged revoked sessions", "count", n)
		}
	}}
	if manager != nil {
		tasks = append(tasks, func() { manager.Sweep() })
	}
	sweeper, err := session.NewSweeper(cfg.SweepSchedule, tasks...)
	if err != nil {
		return err
	}
	sweeper.Start()
	defer func() { <-sweeper.Stop().Done() }()

	apiRouter := api.NewRouter(api.Deps{
		DB:         database,
		JWTSecret:  jwtSecret,
		Services:   services,
		SessionTTL: cfg.SessionTTL,
		OnLogout:   onLogout,
	})
	webRouter, err := web.NewRouter(web.Deps{
		DB:         database,
		JWTSecret:  jwtSecret,
		Services:   services,
		SessionTTL: cfg.SessionTTL,
		OnLogout:   onLogout,
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// printPassword prints a newly generated access password to stdout.
func printPassword(password string) {
	fmt.Println("Access password created:")
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("Change it with PUT /api/auth/password or `inventario init --reset-password`.")
	fmt.Println()
}
