package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/overtime-board/api"
	"github.com/warp/overtime-board/config"
	"github.com/warp/overtime-board/overtime"
	"github.com/warp/overtime-board/roster"
	"github.com/warp/overtime-board/store/gormstore"
	"github.com/warp/overtime-board/store/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Starts the JSON API and, if configured, serves the front-end.

STARTUP SEQUENCE:
  1. Open the entry store (sqlite, gorm-sqlite or postgres)
  2. Load the roster (an unreadable roster logs an error and starts empty)
  3. Build the tracker and router
  4. Serve until SIGINT/SIGTERM, then drain requests and close the store`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.Int("port", 0, "HTTP server port")
	f.String("db", "", `Database path or URL (":memory:" for in-memory SQLite)`)
	f.String("driver", "", "Store driver: sqlite, gorm-sqlite or postgres")
	f.String("roster", "", "Roster CSV path")
	f.String("static", "", "Front-end directory")
	f.Bool("lenient", false, "Accept logins that are not in the roster")

	_ = v.BindPFlag("server.port", f.Lookup("port"))
	_ = v.BindPFlag("db.url", f.Lookup("db"))
	_ = v.BindPFlag("db.driver", f.Lookup("driver"))
	_ = v.BindPFlag("roster.path", f.Lookup("roster"))
	_ = v.BindPFlag("server.static_dir", f.Lookup("static"))
}

func runServe(cmd *cobra.Command, args []string) error {
	if lenient, _ := cmd.Flags().GetBool("lenient"); lenient {
		cfg.Roster.Strict = false
	}

	store, err := openStore(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	lookup := roster.LoadOrEmpty(cfg.Roster.Path, logger)

	managers, err := cfg.ManagerTable()
	if err != nil {
		return fmt.Errorf("invalid managers config: %w", err)
	}

	tracker := overtime.NewTracker(store, lookup, managers,
		overtime.WithLogger(logger),
		overtime.WithStrictLogins(cfg.Roster.Strict),
	)

	handler := api.NewHandler(tracker, logger)
	router := api.NewRouter(handler, api.RouterOptions{
		StaticDir:   cfg.Server.StaticDir,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"port":    cfg.Server.Port,
			"driver":  cfg.Database.Driver,
			"roster":  lookup.Len(),
			"strict":  cfg.Roster.Strict,
			"buckets": managers.Buckets(),
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

// openStore picks the Store implementation for cfg.Driver.
func openStore(cfg config.DatabaseConfig, logger *logrus.Logger) (overtime.Store, error) {
	opts := gormstore.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}

	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.URL)
	case config.DriverGormSQLite:
		return gormstore.Open(gormstore.DialectSQLite, cfg.URL, opts, logger)
	case config.DriverPostgres:
		return gormstore.Open(gormstore.DialectPostgres, cfg.URL, opts, logger)
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}
