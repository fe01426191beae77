package obs

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID returns a context carrying the request/invocation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs the duration of an operation. Use it as
//
//	defer obs.Time(ctx, logger, "op")(&err)
func Time(ctx context.Context, logger *slog.Logger, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		attrs := []any{
			"req_id", RequestID(ctx),
			"op", name,
			"dur_ms", time.Since(start).Milliseconds(),
		}

		if errp != nil && *errp != nil {
			logger.ErrorContext(ctx, "operation failed", append(attrs, "err", (*errp).Error())...)
			return
		}
		logger.InfoContext(ctx, "operation done", attrs...)
	}
}
