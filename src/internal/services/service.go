// Package services exposes the named operations callers invoke. Each operation validates
// its typed input, delegates to the relationship manager for writes or the aggregation
// engine for reads, and translates store failures into the application error taxonomy.
package services

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	apperrors "github.com/casapps/tasktracker/src/internal/errors"
	"github.com/casapps/tasktracker/src/internal/repositories"
	"github.com/casapps/tasktracker/src/internal/telemetry"
)

// base carries what every service shares
type base struct {
	logger *slog.Logger
	tracer trace.Tracer
}

func newBase(logger *slog.Logger, tracer trace.Tracer) base {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(telemetry.TracerName)
	}
	return base{logger: logger, tracer: tracer}
}

// storeFailure passes classified errors through and wraps anything else as a StoreError.
// The driver text stays in Cause, which is never serialized.
func (b base) storeFailure(ctx context.Context, op string, err error, attrs ...any) error {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		return ce
	}

	kind := repositories.ConstraintNone
	var se *repositories.StoreError
	if errors.As(err, &se) {
		kind = se.Kind
	}
	b.logger.WarnContext(ctx, "Store operation failed",
		append([]any{"op", op, "kind", kind.String(), "error", err}, attrs...)...)
	return apperrors.StoreError(op, err)
}

// warnWrite logs a rejected write with its classified kind and ids
func (b base) warnWrite(ctx context.Context, op string, kind repositories.ConstraintKind, attrs ...any) {
	b.logger.WarnContext(ctx, "Write rejected",
		append([]any{"op", op, "kind", kind.String()}, attrs...)...)
}
