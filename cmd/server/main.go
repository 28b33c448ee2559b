package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"linkeats/console/internal/api"
	"linkeats/console/internal/config"
	internalhttp "linkeats/console/internal/http"
	"linkeats/console/internal/jobs"
	"linkeats/console/internal/session"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var backend session.Backend = session.NewMemoryBackend()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("redis ping failed: %v", err)
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}()
		backend = session.NewRedisBackend(redisClient)
	} else {
		logger.Warn("REDIS_ADDR not set, sessions are kept in memory")
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)
	sessions := session.NewStore(backend, session.Options{TTL: cfg.SessionTTL, Secure: cfg.CookieSecure})
	flows := internalhttp.NewRecoveryRegistry(cfg, client)

	server, err := internalhttp.NewServer(cfg, client, sessions, flows, logger)
	if err != nil {
		log.Fatalf("server init failed: %v", err)
	}
	defer server.Close()

	jobs.StartRecoverySweepJob(ctx, cfg, flows)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("console listening", "addr", cfg.HTTPAddr, "api", cfg.APIBaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
