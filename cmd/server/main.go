package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/api"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/checkout"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/config"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/events"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/guestcart"
	h "github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/http"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/kv"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/merge"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/session"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if cfg.OTLPEndpoint != "" {
		shutdown, err := initTracing(cfg.OTLPEndpoint)
		if err != nil {
			log.WithError(err).Fatal("failed to init tracing")
		}
		defer shutdown()
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.WithError(err).Fatal("failed to connect to redis")
	}
	cancel()

	store := kv.NewRedis(redisClient, cfg.GuestCartTTL)
	guest := guestcart.NewStore(store, log)

	core := api.NewClient(cfg.CoreAPIURL, cfg.CoreAPITimeout)
	sessions := session.NewManager(core, merge.NewProtocol(guest, core), store, log)

	publisher := events.NewKafka(cfg.KafkaBrokers...)
	defer publisher.Close()

	flow := checkout.NewOrchestrator(core, core, core, publisher, cfg.CourierFee, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h.NewRouter(guest, sessions, flow, cfg.RequestTimeout, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}

func initTracing(endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logrus.WithError(err).Warn("tracer shutdown failed")
		}
	}, nil
}
