package tracing

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/sidediff/internal/diff"
)

// ComputeFunc produces a diff result. It matches diff.Compute and the cached
// engine's Compute once bound to its inputs.
type ComputeFunc func(ctx context.Context) (diff.Result, error)

// TraceCompute wraps fn in a diff.compute span carrying the request shape and
// the result size. A nil tracer runs fn untraced.
func TraceCompute(ctx context.Context, tracer trace.Tracer, oldText, newText string, opts diff.Options, fn ComputeFunc) (diff.Result, error) {
	if tracer == nil {
		return fn(ctx)
	}

	ctx, span := tracer.Start(ctx, SpanCompute, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	method := opts.CompareMethod
	if !method.Valid() {
		method = diff.DefaultMethod
	}
	span.SetAttributes(
		attribute.String(AttrDiffMethod, string(method)),
		attribute.Bool(AttrDiffWordDiff, !opts.DisableWordDiff),
		attribute.Int(AttrDiffLinesOffset, opts.LinesOffset),
		attribute.Int(AttrDiffOldBytes, len(oldText)),
		attribute.Int(AttrDiffNewBytes, len(newText)),
	)

	res, err := fn(ctx)
	if err != nil {
		RecordError(span, err)
		return res, err
	}

	span.SetAttributes(
		attribute.Int(AttrDiffRecords, len(res.Lines)),
		attribute.Int(AttrDiffBlocks, len(res.DiffBlockStarts)),
	)
	span.SetStatus(codes.Ok, "")
	return res, nil
}

// RecordError marks span as failed. Invalid input also gets its own event so
// client mistakes can be told apart from engine failures.
func RecordError(span trace.Span, err error) {
	if errors.Is(err, diff.ErrInvalidInput) {
		span.AddEvent(EventInvalidInput)
	}
	span.RecordError(err)
	span.SetAttributes(
		attribute.String(AttrErrorMessage, err.Error()),
		attribute.String(AttrErrorType, fmt.Sprintf("%T", err)),
	)
	span.SetStatus(codes.Error, err.Error())
}
