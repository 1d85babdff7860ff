package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	kafkaadapter "github.com/couchcryptid/covid-report-etl/internal/adapter/kafka"
	"github.com/couchcryptid/covid-report-etl/internal/adapter/localfile"
	"github.com/couchcryptid/covid-report-etl/internal/adapter/reportsapi"
	s3adapter "github.com/couchcryptid/covid-report-etl/internal/adapter/s3"
	"github.com/couchcryptid/covid-report-etl/internal/config"
	"github.com/couchcryptid/covid-report-etl/internal/domain"
	"github.com/couchcryptid/covid-report-etl/internal/observability"
	"github.com/couchcryptid/covid-report-etl/internal/pipeline"
)

func main() {
	// A missing .env file is fine; plain environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	extractor := reportsapi.NewClient(cfg.BaseAPIURL, cfg.APITimeout, cfg.APIRetryMax, cfg.APIRateLimitRPM, logger)
	transformer := pipeline.NewTransformer(domain.Thresholds{
		Low:    cfg.RiskLow,
		Medium: cfg.RiskMedium,
		High:   cfg.RiskHigh,
	}, clock)
	loader := localfile.NewWriter(cfg.OutputBasePath, cfg.OutputFormat)

	// S3 upload is feature-flagged via S3_BUCKET / S3_ENABLED.
	var uploader pipeline.Uploader
	if cfg.S3Enabled {
		up, err := s3adapter.NewUploader(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3KeyPrefix)
		if err != nil {
			logger.Error("failed to set up s3 upload", "error", err)
			os.Exit(1)
		}
		uploader = up
		logger.Info("s3 upload enabled", "bucket", cfg.S3Bucket, "prefix", cfg.S3KeyPrefix)
	} else {
		logger.Info("s3 upload disabled")
	}

	// Kafka summary publishing is feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED.
	var publisher pipeline.SummaryPublisher
	var summaryWriter *kafkaadapter.SummaryWriter
	if cfg.KafkaEnabled {
		summaryWriter = kafkaadapter.NewSummaryWriter(cfg, logger)
		publisher = summaryWriter
		logger.Info("kafka summary publishing enabled", "topic", cfg.KafkaSummaryTopic)
	} else {
		logger.Info("kafka summary publishing disabled")
	}

	p := pipeline.New(extractor, transformer, loader, uploader, publisher,
		clock, logger, metrics, cfg.RunDate, cfg.Countries)

	runErr := p.Run(ctx)
	if runErr != nil {
		logger.Error("pipeline error", "error", runErr)
	}

	if cfg.PushgatewayURL != "" {
		if err := metrics.PushToGateway(cfg.PushgatewayURL, "covid_etl"); err != nil {
			logger.Error("metrics push error", "error", err)
		} else {
			logger.Info("metrics pushed", "gateway", cfg.PushgatewayURL)
		}
	}

	if summaryWriter != nil {
		if err := summaryWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if runErr != nil {
		os.Exit(1)
	}
	logger.Info("run complete")
}
