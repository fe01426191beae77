package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"present-delivery-service/internal/adapters/letters"
	"present-delivery-service/internal/adapters/repositories"
	"present-delivery-service/internal/app"
	"present-delivery-service/internal/config"
	"present-delivery-service/internal/platform/db"
	"present-delivery-service/internal/platform/metrics"
	"present-delivery-service/internal/platform/obs"
	"present-delivery-service/internal/services"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type ingester interface {
	Process(ctx context.Context, msgs []services.LetterMessage) services.BatchResult
}

type handler struct {
	pipeline ingester
	logger   *slog.Logger

	// Held so they can be released when the runtime shuts down.
	pool interface{ Close() }
	rdb  *redis.Client
}

// Handle processes one SQS batch. Failed messages are reported back so only
// they are redelivered; the invocation itself never fails.
func (h *handler) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	id := uuid.NewString()
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		id = lc.AwsRequestID
	}
	ctx = obs.WithRequestID(ctx, id)

	h.logger.InfoContext(ctx, "batch received", "req_id", id, "records", len(ev.Records))

	res := h.pipeline.Process(ctx, toMessages(ev))
	return toResponse(res), nil
}

func toMessages(ev events.SQSEvent) []services.LetterMessage {
	msgs := make([]services.LetterMessage, 0, len(ev.Records))
	for _, r := range ev.Records {
		msgs = append(msgs, services.LetterMessage{ID: r.MessageId, Body: r.Body})
	}
	return msgs
}

func toResponse(res services.BatchResult) events.SQSEventResponse {
	out := events.SQSEventResponse{
		BatchItemFailures: make([]events.SQSBatchItemFailure, 0, len(res.Failed)),
	}
	for _, id := range res.Failed {
		out.BatchItemFailures = append(out.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: id})
	}
	return out
}

// newHandler builds the handles reused across warm invocations.
func newHandler(ctx context.Context) (*handler, error) {
	cfg, err := config.Load(obs.NewLogger(os.Stdout, "info"))
	if err != nil {
		return nil, err
	}

	logger := obs.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	metrics.RegisterDefault()

	if cfg.BedrockModelID == "" {
		return nil, errors.New("BEDROCK_MODEL_ID is required")
	}

	if err := app.ResolveSecrets(ctx, &cfg, logger); err != nil {
		return nil, err
	}

	awsCfg, err := app.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	resolver, rdb, err := app.NewAddressResolver(cfg, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if rdb != nil {
		// The cache is optional; lookups fall through to GSI when it is down.
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("geocode cache unreachable", "err", err)
		}
	}

	extraction := cfg.Policy(config.PolicyExtraction)
	pipeline := services.NewLetterIngestion(
		letters.NewS3Source(letters.NewS3Client(awsCfg, cfg.S3Region), logger),
		letters.NewBedrockExtractor(letters.NewBedrockClient(awsCfg, cfg.BedrockRegion, extraction.MaxAttempts), cfg.BedrockModelID, extraction, logger),
		resolver,
		repositories.NewPostgresDeliveryStore(pool, logger),
		logger,
	)

	return &handler{pipeline: pipeline, logger: logger, pool: pool, rdb: rdb}, nil
}

func (h *handler) close() {
	if h.rdb != nil {
		if err := h.rdb.Close(); err != nil {
			h.logger.Warn("close geocode cache failed", "err", err)
		}
	}
	if h.pool != nil {
		h.pool.Close()
	}
}

func main() {
	h, err := newHandler(context.Background())
	if err != nil {
		slog.Error("letters: init failed", "err", err)
		os.Exit(1)
	}
	lambda.StartWithOptions(h.Handle, lambda.WithEnableSIGTERM(h.close))
}
