package commands

import (
	"context"

	"marketplace/internal/pkg/errs"

	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultConflictAttempts is how often a read-modify-write runs before a conflict is returned.
const DefaultConflictAttempts = 3

var tracer = otel.Tracer("marketplace/internal/core/application/usecases/commands")

// retryOnConflict reruns run while it fails with a retryable conflict, at most attempts times.
// run must do the whole read-modify-write, including the load.
func retryOnConflict(ctx context.Context, attempts int, run func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = run(ctx); err == nil || !errs.Retryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		zctx.From(ctx).Debug("Order changed concurrently, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return err
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errs.Kind(err))
	}
	span.End()
}
