package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/flood-zone-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-zone-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-zone-service/internal/adapter/mapbox"
	"github.com/couchcryptid/flood-zone-service/internal/adapter/postgres"
	redisadapter "github.com/couchcryptid/flood-zone-service/internal/adapter/redis"
	"github.com/couchcryptid/flood-zone-service/internal/adapter/ws"
	"github.com/couchcryptid/flood-zone-service/internal/alert"
	"github.com/couchcryptid/flood-zone-service/internal/classifier"
	"github.com/couchcryptid/flood-zone-service/internal/config"
	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/couchcryptid/flood-zone-service/internal/observability"
	"github.com/couchcryptid/flood-zone-service/internal/pipeline"
	"github.com/couchcryptid/flood-zone-service/internal/refresh"
	"github.com/couchcryptid/flood-zone-service/internal/zone"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	storeOpts := []zone.StoreOption{zone.WithPersistTimeout(cfg.PersistTimeout)}

	var mirror *redisadapter.Mirror
	var restored []domain.FloodZone
	if client := redisadapter.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); client != nil {
		defer client.Close()
		mirror = redisadapter.NewMirror(client, cfg.RedisKeyPrefix, logger)
		if err := mirror.Ping(ctx); err != nil {
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		restored, err = mirror.LoadAll(ctx)
		if err != nil {
			logger.Error("failed to restore zones from redis", "error", err)
			os.Exit(1)
		}
		storeOpts = append(storeOpts, zone.WithPersister("redis", mirror))
		logger.Info("redis mirror enabled", "addr", cfg.RedisAddr, "restored", len(restored))
	}

	var archive *postgres.Archive
	if cfg.PostgresDSN != "" {
		archive, err = postgres.Open(cfg.PostgresDSN)
		if err != nil {
			logger.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer archive.Close()
		if err := archive.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare history schema", "error", err)
			os.Exit(1)
		}
		storeOpts = append(storeOpts, zone.WithPersister("postgres", archive))
		logger.Info("postgres history archive enabled")
	}

	store := zone.NewStore(logger, metrics, storeOpts...)
	if len(restored) > 0 {
		store.Replace(restored)
	}

	hub := ws.NewHub(logger)
	go hub.Run(ctx)
	store.Subscribe(hub.ObserveZones())

	alertWriter := kafkaadapter.NewAlertWriter(cfg)
	dispatcher := alert.NewDispatcher(logger, metrics,
		alert.WithNotifier(hub),
		alert.WithNotifier(alertWriter),
	)
	store.Subscribe(dispatcher.Observe(ctx))

	if mirror != nil {
		go func() {
			if err := mirror.Watch(ctx, store); err != nil {
				logger.Error("redis watch error", "error", err)
			}
		}()
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg)
	transformer := pipeline.NewTransformer(geocoder, logger)

	p := pipeline.New(reader, transformer, store, writer, logger, metrics, cfg.BatchSize)

	api := httpadapter.API{
		Zones:    store,
		Alerts:   dispatcher,
		Ingester: p,
		Feed:     hub,
	}
	if archive != nil {
		api.History = archive
	}

	if cfg.ClassifierURL != "" {
		src := classifier.WithFallback(
			classifier.NewClient(cfg.ClassifierURL, cfg.ClassifierTimeout, metrics, logger),
			cfg.ClassifierTimeout, metrics, logger,
		)
		refresher := refresh.New(src, store, logger)
		api.Refresher = refresher
		go func() {
			if err := refresher.Run(ctx, cfg.RefreshInterval); err != nil {
				logger.Error("refresher error", "error", err)
			}
		}()
	} else {
		logger.Info("live weather refresh disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, api, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start zone pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	store.Close()
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if err := alertWriter.Close(); err != nil {
		logger.Error("kafka alert writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
