package main

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

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/popcanvas/popcanvas/internal/asset"
	"github.com/popcanvas/popcanvas/internal/auth"
	"github.com/popcanvas/popcanvas/internal/collab"
	"github.com/popcanvas/popcanvas/internal/config"
	"github.com/popcanvas/popcanvas/internal/design"
	mw "github.com/popcanvas/popcanvas/internal/middleware"
	"github.com/popcanvas/popcanvas/internal/store"
	"github.com/popcanvas/popcanvas/internal/toolbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.DatabaseDriver, cfg.DSN())
	if err != nil {
		slog.Error("open store", "error", err, "driver", cfg.DatabaseDriver)
		os.Exit(1)
	}
	defer st.Close()

	authService := auth.NewService(st, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	designService := design.NewService(st)
	designHandler := design.NewHandler(designService)

	tools := toolbox.New()
	if cfg.PresetsFile != "" {
		if err := tools.Watch(ctx, cfg.PresetsFile); err != nil {
			slog.Warn("toolbox presets not loaded, using built-ins", "error", err)
		}
	}

	hub := collab.NewHub(designService.LoadCanvas, designService.StoreCanvas,
		collab.WithHistoryLimit(cfg.HistoryLimit))
	go hub.Run()

	autosave, err := collab.StartAutosave(ctx, hub, cfg.AutosaveSchedule)
	if err != nil {
		slog.Error("start autosave", "error", err)
		os.Exit(1)
	}

	assetHandler := asset.NewHandler(cfg.AssetDir)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.Handle("/toolbox", tools).Methods("GET")

	// Asset endpoints are public so the playground can place images
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)
	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	designHandler.Routes(api)

	r.HandleFunc("/ws/design/{designId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, designService, cfg.OriginHosts())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mw.CORS(cfg.Origins())(r), // outside the router so preflights reach it
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		<-autosave.Stop().Done()

		// Stop hub first to save all dirty designs
		hub.Stop()
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "driver", cfg.DatabaseDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, designs *design.Service, origins []string) {
	designID := mux.Vars(r)["designId"]

	var userID, displayName string

	if designID == design.PlaygroundID {
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		// Auth via query param for real designs
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		var err error
		userID, err = authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if err := designs.CanAccess(r.Context(), designID, userID); err != nil {
			switch {
			case errors.Is(err, design.ErrNotFound):
				http.Error(w, "design not found", http.StatusNotFound)
			case errors.Is(err, design.ErrForbidden):
				http.Error(w, "not your design", http.StatusForbidden)
			default:
				slog.Error("check design access", "error", err, "designId", designID)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		user, err := authSvc.GetUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusInternalServerError)
			return
		}
		displayName = user.DisplayName
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(hub, conn, userID, displayName, designID, uuid.New().String())
	client.Serve(r.Context())
}
