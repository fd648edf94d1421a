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

	"github.com/gorilla/mux"

	"github.com/mvpcad/mvpcad/internal/auth"
	"github.com/mvpcad/mvpcad/internal/config"
	"github.com/mvpcad/mvpcad/internal/editor"
	"github.com/mvpcad/mvpcad/internal/interaction"
	mw "github.com/mvpcad/mvpcad/internal/middleware"
	"github.com/mvpcad/mvpcad/internal/project"
	"github.com/mvpcad/mvpcad/internal/render"
	"github.com/mvpcad/mvpcad/internal/session"
	"github.com/mvpcad/mvpcad/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Editor core
	store := editor.NewStore()
	engine := render.NewEngine(store)

	var ctrlOpts []interaction.Option
	if cfg.SnapToGrid {
		ctrlOpts = append(ctrlOpts, interaction.WithSnap(cfg.GridSize))
	}
	ctrl := interaction.NewController(store, engine, ctrlOpts...)

	hub := session.NewHub(store, engine, ctrl, slog.Default())
	go hub.Run(ctx)

	// Project files and optional snapshot library
	dir, err := storage.NewDir(cfg.DataDir)
	if err != nil {
		slog.Error("open data dir", "error", err)
		os.Exit(1)
	}

	projectOpts := []project.Option{project.WithExportScale(cfg.ExportScale)}
	if cfg.DatabaseURL != "" {
		pg, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()

		if err := pg.Migrate(ctx); err != nil {
			slog.Error("migrate database", "error", err)
			os.Exit(1)
		}
		projectOpts = append(projectOpts, project.WithLibrary(pg))
	}

	projectService := project.NewService(hub.Document(), dir, projectOpts...)
	projectHandler := project.NewHandler(projectService)
	sessionHandler := session.NewHandler(hub, cfg.Origins())

	authService, err := auth.NewService(cfg.SessionSecret, auth.DefaultTTL)
	if err != nil {
		slog.Error("create auth service", "error", err)
		os.Exit(1)
	}
	token, err := authService.NewSession()
	if err != nil {
		slog.Error("issue session token", "error", err)
		os.Exit(1)
	}
	slog.Info("session token issued", "token", token.Token, "expires", token.ExpiresAt)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.Handle("/auth/refresh", authService.Middleware(http.HandlerFunc(authService.Refresh))).Methods("POST", "OPTIONS")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.Middleware)

	api.HandleFunc("/state", sessionHandler.State).Methods("GET")
	api.HandleFunc("/project/save", projectHandler.Save).Methods("POST")
	api.HandleFunc("/project/load", projectHandler.Load).Methods("POST")
	api.HandleFunc("/export/{format}", projectHandler.Export).Methods("POST")
	api.HandleFunc("/projects", projectHandler.List).Methods("GET")
	api.HandleFunc("/projects/{name}/snapshots", projectHandler.Snapshot).Methods("POST")
	api.HandleFunc("/projects/{name}/restore", projectHandler.Restore).Methods("POST")

	// WebSocket endpoint
	r.Handle("/ws", authService.Middleware(http.HandlerFunc(sessionHandler.WebSocket)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so open sockets are closed
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "data_dir", dir.Root(), "snapshots", cfg.DatabaseURL != "")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
