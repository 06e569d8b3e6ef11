package observability

import (
	"context"
	"log/slog"
	"time"
)

// TimeOperationResult runs fn and records its duration and outcome under
// operation. Failures are logged at warn, successes at debug. Either of logger
// and metrics may be nil.
func TimeOperationResult[T any](ctx context.Context, logger *slog.Logger, metrics Metrics, operation string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	recordOperation(ctx, logger, metrics, operation, time.Since(start), err)
	return result, err
}

func recordOperation(ctx context.Context, logger *slog.Logger, metrics Metrics, operation string, took time.Duration, err error) {
	if logger != nil {
		attrs := []slog.Attr{
			slog.String(OperationKey, operation),
			slog.Int64(DurationKey, took.Milliseconds()),
		}
		if err != nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "operation failed", append(attrs, slog.String(ErrorKey, err.Error()))...)
		} else {
			logger.LogAttrs(ctx, slog.LevelDebug, "operation completed", attrs...)
		}
	}

	if metrics == nil {
		return
	}
	tag := T(OperationKey, operation)
	metrics.Timing(MetricOperationDuration, took, tag)
	metrics.Counter(MetricOperationTotal, 1, tag)
	if err != nil {
		metrics.Counter(MetricOperationErrors, 1, tag)
	}
}
