package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/port"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/config"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/email"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/gcs"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/gemini"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/httpapi"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/metrics"
	miniostorage "github.com/safewatch/safewatch-analysis-service/internal/infra/minio"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/openai"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/rabbitmq"
	"github.com/safewatch/safewatch-analysis-service/internal/infra/tracing"
	"github.com/safewatch/safewatch-analysis-service/internal/usecase"
	"github.com/safewatch/safewatch-analysis-service/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting safewatch-analysis-service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	if cfg.JaegerEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	fatalOnErr(os.MkdirAll(cfg.TempDir, 0755), "create temp dir")

	blobs, closeBlobs, err := newBlobStore(ctx, cfg)
	fatalOnErr(err, "create blob store")
	defer closeBlobs()

	model, err := newVisionModel(ctx, cfg, log)
	fatalOnErr(err, "create model client")

	var notifiers []port.RiskNotifier
	if cfg.RabbitMQURL != "" {
		rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
		fatalOnErr(err, "connect to rabbitmq")
		defer rmqConn.Close()

		pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
		fatalOnErr(err, "create rabbitmq publisher")
		defer pub.Close()

		notifiers = append(notifiers, rabbitmq.NewRiskPublisher(pub))
	}
	if cfg.SMTPHost != "" {
		notifiers = append(notifiers, email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.NotificationTo, log))
	}

	analyze := usecase.NewAnalyzeVideoUseCase(
		newFrameExtractor(cfg, log), blobs, model, notifiers,
		log,
		usecase.AnalyzeVideoConfig{TempDir: cfg.TempDir},
	)
	listModels := usecase.NewListModelsUseCase(model)

	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)

	srv := httpapi.NewServer(httpapi.ServerConfig{
		Port:           cfg.Port,
		StaticDir:      cfg.StaticDir,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}, analyze, listModels, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("safewatch-analysis-service started",
		zap.Int("port", cfg.Port),
		zap.String("blob_backend", cfg.BlobBackend),
		zap.String("model_provider", cfg.ModelProvider),
		zap.Int("notifiers", len(notifiers)),
	)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown", zap.Error(err))
	}
	metricsSrv.Shutdown(shutdownCtx)

	log.Info("safewatch-analysis-service stopped")
}

func newBlobStore(ctx context.Context, cfg *config.Config) (port.BlobStore, func(), error) {
	switch cfg.BlobBackend {
	case config.BlobBackendMinIO:
		storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
			Bucket:    cfg.MinIOBucket,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := storage.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		return storage, func() {}, nil
	case config.BlobBackendGCS:
		storage, err := gcs.NewStorage(ctx, cfg.GCSBucketName)
		if err != nil {
			return nil, nil, err
		}
		if cfg.GCPProjectID != "" {
			if err := storage.EnsureBucket(ctx, cfg.GCPProjectID); err != nil {
				storage.Close()
				return nil, nil, err
			}
		}
		return storage, func() { storage.Close() }, nil
	}
	return nil, nil, errors.New("unknown blob backend " + cfg.BlobBackend)
}

func newVisionModel(ctx context.Context, cfg *config.Config, log *zap.Logger) (port.VisionModel, error) {
	switch cfg.ModelProvider {
	case config.ModelProviderOpenAI:
		return openai.NewClient(openai.ClientConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}, log), nil
	case config.ModelProviderGemini:
		return gemini.NewClient(ctx, gemini.ClientConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		}, log)
	}
	return nil, errors.New("unknown model provider " + cfg.ModelProvider)
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
