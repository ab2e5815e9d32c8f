package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ILLUVRSE/adoptions/campaign-service/internal/attachments"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/auth"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/config"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/httpserver"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/notify"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/service"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	base, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Fatal("store init", zap.Error(err))
	}
	defer closeStore()

	campaignStore := store.NewRetrying(base, store.RetryConfig{
		Attempts: cfg.StoreRetries,
		Delay:    cfg.StoreRetryDelay,
		Logger:   logger.Named("store"),
	})

	var publisher notify.Publisher = notify.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := notify.NewKafkaPublisher(notify.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			logger.Fatal("kafka publisher init", zap.Error(err))
		}
		publisher = kp
		logger.Info("publishing events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close publisher", zap.Error(err))
		}
	}()

	var uploader attachments.Uploader
	if cfg.S3Bucket != "" {
		initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		up, err := attachments.NewS3Uploader(initCtx, cfg.S3Bucket)
		cancel()
		if err != nil {
			logger.Fatal("s3 uploader init", zap.Error(err))
		}
		uploader = up
	} else {
		logger.Info("S3_BUCKET not set; image uploads disabled")
	}

	campaigns := service.NewCampaignService(campaignStore, publisher, uploader, logger.Named("campaigns"), service.Config{
		Location:          cfg.Location(),
		AttachmentBaseURL: cfg.AttachmentBaseURL,
		AttachmentPrefix:  cfg.S3Prefix,
	})
	points := service.NewCollectionPointService(campaignStore, logger.Named("collection-points"))
	verifier := auth.NewVerifier(cfg.AdminJWTSecret, cfg.AdminJWTScope, cfg.AdminJWTIssuer)
	if !verifier.Enabled() {
		logger.Warn("ADMIN_JWT_SECRET not set; admin writes are unauthenticated")
	}

	server := httpserver.New(httpserver.Config{
		RequestTimeout: cfg.RequestTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, campaignStore, campaigns, points, verifier, logger.Named("http"))
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("campaign service listening",
			zap.String("addr", cfg.Addr),
			zap.String("store", cfg.StoreKind),
			zap.String("timezone", cfg.Timezone))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	shutdown(httpServer, logger)
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL %q: %w", level, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func openStore(cfg config.Config) (store.Store, func(), error) {
	if cfg.StoreKind == config.StoreMemory {
		return store.NewMemoryStore(), func() {}, nil
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("db open: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}
	return store.NewPGStore(db), func() { _ = db.Close() }, nil
}

func shutdown(s *http.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}
