package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quietdesk/guidechat/internal/config"
	"github.com/quietdesk/guidechat/internal/convo"
	"github.com/quietdesk/guidechat/internal/logger"
	"github.com/quietdesk/guidechat/internal/model"
	"github.com/quietdesk/guidechat/internal/server"
	"github.com/quietdesk/guidechat/internal/session"
	"github.com/quietdesk/guidechat/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	deck, err := config.LoadCopy(cfg.UICopyPath)
	if err != nil {
		zlog.Fatal("copy deck", "err", err)
	}

	archive, err := store.NewBoltStore(cfg.DataDir + "/guidechat.db")
	if err != nil {
		zlog.Fatal("store", "err", err)
	}
	defer archive.Close()

	ctx := context.Background()
	var completer model.Completer
	switch cfg.ModelProvider {
	case config.ProviderGemini:
		completer, err = model.NewGeminiClient(ctx, zlog, cfg.ModelAPIKey, cfg.ModelName, cfg.RequestTimeout)
		if err != nil {
			zlog.Fatal("gemini client", "err", err)
		}
	default:
		completer = model.NewClient(zlog, cfg.ModelEndpoint, cfg.ModelAPIKey, cfg.ModelName, cfg.RequestTimeout)
	}

	sessions := session.NewManager()
	machine := convo.NewMachine(completer, zlog)
	handler := server.NewHandler(sessions, machine, deck, archive, zlog)

	// Periodic cleanup of idle sessions to prevent memory leaks
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if dropped := sessions.Cleanup(2 * time.Hour); dropped > 0 {
				zlog.Info("session cleanup", "dropped", dropped)
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	handler.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info("listening", "port", cfg.Port, "provider", cfg.ModelProvider, "model", cfg.ModelName)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("shutdown", "err", err)
	}
	zlog.Info("stopped")
}
