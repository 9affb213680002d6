package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/jmcleod/graphgate/api"
	"github.com/jmcleod/graphgate/auth"
	"github.com/jmcleod/graphgate/backup"
	"github.com/jmcleod/graphgate/config"
	"github.com/jmcleod/graphgate/engine"
	"github.com/jmcleod/graphgate/lifecycle"
	"github.com/jmcleod/graphgate/space"
	bboltstorage "github.com/jmcleod/graphgate/storage/bbolt"
)

const defaultPassword = "admin"

var (
	port    int
	dataDir string
	noAuth  bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the GraphGate server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.HTTP.Port = port
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir = dataDir
		}
		if noAuth {
			cfg.Auth.Enabled = false
		}

		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

		users, err := bboltstorage.NewStoreFromFile(cfg.UsersDB(), nil)
		if err != nil {
			return fmt.Errorf("failed to open credential store: %w", err)
		}
		defer users.Close()

		registry := auth.NewRegistry(users)
		if err := registry.Bootstrap(cfg.Auth.Admin, defaultPassword); err != nil {
			return fmt.Errorf("failed to bootstrap default account: %w", err)
		}

		sessions := auth.NewSessions()
		defer sessions.Close()

		eng := &engine.DirEngine{Root: cfg.InstancesRoot()}
		manager := lifecycle.NewManager(eng, logger)
		// Close whatever is open when the server exits, however it exits.
		defer manager.Shutdown()

		archiver := backup.NewArchiver(cfg.InstancesRoot(), cfg.BackupsRoot(), manager, eng, logger)
		accountant := space.NewAccountant(cfg.InstancesRoot(), cfg.LogsRoot(), logger)

		opts := []api.Option{
			api.WithLogger(logger),
			api.WithAdminUser(cfg.Auth.Admin),
			api.WithRoots(cfg.InstancesRoot(), cfg.BackupsRoot(), cfg.LogsRoot()),
		}
		if !cfg.Auth.Enabled {
			opts = append(opts, api.WithAuthDisabled())
		}
		a := api.New(registry, sessions, manager, archiver, accountant, opts...)

		r := chi.NewRouter()
		r.Use(chimiddleware.Logger)
		r.Use(chimiddleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/", a.Router())

		server := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		fmt.Printf("Starting server on %s (data: %s)...\n", server.Addr, cfg.DataDir)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 7474, "Port to listen on")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persistent data")
	serverCmd.Flags().BoolVar(&noAuth, "no-auth", false, "Disable the access gate")
}
