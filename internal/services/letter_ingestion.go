package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"present-delivery-service/internal/pkg/errs"
	"present-delivery-service/internal/platform/metrics"
	"present-delivery-service/internal/platform/obs"
	"present-delivery-service/internal/ports"

	"github.com/aws/aws-lambda-go/events"
)

// LetterMessage is one queued notification that a letter image was stored.
type LetterMessage struct {
	ID   string
	Body string
}

// ItemResult is the outcome of a single message.
type ItemResult struct {
	ID  string
	Err error
}

// BatchResult lists the IDs of messages that must be redelivered.
type BatchResult struct {
	Failed []string
}

func (r BatchResult) OK() bool { return len(r.Failed) == 0 }

func foldResults(items []ItemResult) BatchResult {
	res := BatchResult{Failed: []string{}}
	for _, it := range items {
		if it.Err != nil {
			res.Failed = append(res.Failed, it.ID)
		}
	}
	return res
}

// LetterIngestion turns letter images into stored presents.
type LetterIngestion struct {
	source    ports.LetterSource
	extractor ports.LetterExtractor
	resolver  ports.AddressResolver
	store     ports.DeliveryStore
	logger    *slog.Logger
}

func NewLetterIngestion(
	source ports.LetterSource,
	extractor ports.LetterExtractor,
	resolver ports.AddressResolver,
	store ports.DeliveryStore,
	logger *slog.Logger,
) *LetterIngestion {
	return &LetterIngestion{
		source:    source,
		extractor: extractor,
		resolver:  resolver,
		store:     store,
		logger:    logger.With("component", "letter_ingestion"),
	}
}

// Process handles messages one at a time in order. A failing message never
// stops the batch; it is reported in the result instead.
func (l *LetterIngestion) Process(ctx context.Context, msgs []LetterMessage) BatchResult {
	items := make([]ItemResult, 0, len(msgs))

	for _, m := range msgs {
		err := l.processOne(ctx, m)
		if err != nil {
			l.logger.ErrorContext(ctx, "letter failed",
				"message_id", m.ID,
				"kind", kindLabel(err),
				"err", err,
			)
		}
		metrics.LetterItems.WithLabelValues(metrics.Outcome(err)).Inc()
		items = append(items, ItemResult{ID: m.ID, Err: err})
	}

	res := foldResults(items)

	outcome := "ok"
	if !res.OK() {
		outcome = "partial"
	}
	metrics.PipelineRuns.WithLabelValues("letter_ingestion", outcome).Inc()
	l.logger.InfoContext(ctx, "batch done", "messages", len(msgs), "failed", len(res.Failed))

	return res
}

func (l *LetterIngestion) processOne(ctx context.Context, m LetterMessage) (err error) {
	const op = "ingestion.processOne"
	defer obs.Time(ctx, l.logger, op)(&err)

	loc, err := ParseLetterLocator(m.Body)
	if err != nil {
		return err
	}
	l.logger.InfoContext(ctx, "letter", "message_id", m.ID, "bucket", loc.Bucket, "key", loc.Key)

	image, err := l.source.Fetch(ctx, loc)
	if err != nil {
		return fmt.Errorf("fetch letter: %w", err)
	}

	info, err := l.extractor.Extract(ctx, image)
	if err != nil {
		return fmt.Errorf("extract letter: %w", err)
	}

	addr, err := l.resolver.Resolve(ctx, info.Address)
	if err != nil {
		return fmt.Errorf("resolve address: %w", err)
	}

	if err := l.store.InsertPresent(ctx, info.PresentName, addr); err != nil {
		return fmt.Errorf("store present: %w", err)
	}
	return nil
}

// ParseLetterLocator reads the S3 event notification carried in a queue
// message body. Only the first record is used.
func ParseLetterLocator(body string) (ports.ObjectLocator, error) {
	const op = "ingestion.ParseLetterLocator"

	var ev events.S3Event
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		return ports.ObjectLocator{}, errs.ValidationError(op, fmt.Errorf("decode s3 event: %w", err))
	}
	if len(ev.Records) == 0 {
		return ports.ObjectLocator{}, errs.ValidationError(op, errors.New("s3 event has no records"))
	}

	rec := ev.Records[0].S3
	// Object keys arrive form-encoded.
	key, err := url.QueryUnescape(rec.Object.Key)
	if err != nil {
		return ports.ObjectLocator{}, errs.ValidationError(op, fmt.Errorf("decode object key %q: %w", rec.Object.Key, err))
	}
	if rec.Bucket.Name == "" || key == "" {
		return ports.ObjectLocator{}, errs.ValidationError(op, errors.New("s3 event has no bucket or key"))
	}

	return ports.ObjectLocator{Bucket: rec.Bucket.Name, Key: key}, nil
}

func kindLabel(err error) string {
	if k := errs.KindOf(err); k != nil {
		return k.Error()
	}
	return "unknown"
}
