package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/omnibothq/omnibot/internal/auth"
	"github.com/omnibothq/omnibot/internal/cache"
	"github.com/omnibothq/omnibot/internal/config"
	"github.com/omnibothq/omnibot/internal/crypto"
	"github.com/omnibothq/omnibot/internal/ev"
	"github.com/omnibothq/omnibot/internal/geo"
	httpx "github.com/omnibothq/omnibot/internal/http"
	"github.com/omnibothq/omnibot/internal/imagegen"
	"github.com/omnibothq/omnibot/internal/observability"
	"github.com/omnibothq/omnibot/internal/repo/file"
	"github.com/omnibothq/omnibot/internal/upstream"
	"github.com/omnibothq/omnibot/internal/video"
	"github.com/omnibothq/omnibot/internal/weather"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	if cfg.UsingDefaultSecret() {
		log.Warn("JWT_SECRET_KEY is not set, using the built-in development secret. Do not run production like this.")
	}

	// tracing is opt-in via OTEL_EXPORTER_OTLP_ENDPOINT

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "omnibot", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed, continuing without tracing", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	// metrics

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(registry)

	// user store, loaded before the server accepts traffic

	users, err := file.Open(cfg.UsersFile, cfg.StrictStore, log)

	if err != nil {
		log.Error("could not open users file", "path", cfg.UsersFile, "err", err)
		os.Exit(1)
	}

	log.Info("user store loaded", "path", cfg.UsersFile, "users", users.Count())

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	// shared response cache: Redis when configured and reachable, else in-process

	var store cache.Store = cache.NewMemory(cfg.CacheTTL)

	if cfg.RedisAddr != "" {
		redisStore := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			TTL:      cfg.CacheTTL,
		})

		pingCtx, cancel := config.WithTimeout(2 * time.Second)

		if err := redisStore.Ping(pingCtx); err != nil {
			log.Error("redis unreachable, falling back to in-memory cache", "addr", cfg.RedisAddr, "err", err)
			_ = redisStore.Close()
		} else {
			store = redisStore
			defer redisStore.Close()
		}

		cancel()
	}

	// upstream services

	client := upstream.New(cfg.UpstreamTimeout)

	deps := httpx.Deps{
		Users:    users,
		JWT:      jwtManager,
		Crypto:   crypto.NewService(client, cfg.AlpacaKey, cfg.AlpacaSecret, log, prom),
		Images:   imagegen.NewService(client, cfg.StabilityKey, log, prom),
		Geocoder: geo.NewGeocoder(client, cfg.OpenCageKey),
		Weather:  weather.NewService(client, cfg.OpenWeatherKey),
		EV:       ev.NewService(client),
		Videos:   video.NewService(client),
		Summary:  video.NewGeminiSummarizer(client, cfg.GeminiKey, log),
		Cache:    store,
		Prom:     prom,
		Registry: registry,
	}

	router := httpx.NewRouter(cfg, log, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
