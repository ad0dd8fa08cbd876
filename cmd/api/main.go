package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/safetybuddy/backend/internal/config"
	"github.com/safetybuddy/backend/internal/handler"
	"github.com/safetybuddy/backend/internal/model/knowledge"
	"github.com/safetybuddy/backend/internal/service/ai"
	chatservice "github.com/safetybuddy/backend/internal/service/chat"
	"github.com/safetybuddy/backend/internal/service/conversation"
	"github.com/safetybuddy/backend/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	log.Init(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	index, err := knowledge.Load(cfg.Knowledge.Dir)
	if err != nil {
		log.Fatalf("failed to load knowledge corpus: %v", err)
	}
	log.Infof("knowledge corpus loaded: %d injuries", len(index.Injuries()))

	provider, err := ai.NewGeminiProvider(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize generative provider: %v", err)
	}
	log.Infof("generative provider ready model=%s", cfg.AI.Model)

	store := conversation.NewStore()
	composer := ai.NewComposer(cfg.Chat.HistoryLimit)
	engine := chatservice.NewService(index, store, composer, provider)

	router := handler.NewRouter(engine, index, cfg.Webhook)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Infof("SafetyBuddy backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
