package batch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/sidediff/internal/cachemanager"
	"github.com/zjrosen/sidediff/internal/diff"
	"github.com/zjrosen/sidediff/internal/log"
	"github.com/zjrosen/sidediff/internal/tracing"
)

// Computer computes one diff. *cachemanager.DiffEngine satisfies it.
type Computer interface {
	Compute(ctx context.Context, req cachemanager.DiffRequest) (diff.Result, error)
}

// Config configures a Runner.
type Config struct {
	// Workers bounds concurrent computations. Values < 1 mean 1.
	Workers int
	// Defaults apply to every request before its own overrides.
	Defaults diff.Options
	// Tracer, if set, records a span for the batch and one per item.
	Tracer trace.Tracer
}

// Item is the outcome of one request, at the request's position.
type Item struct {
	ID     string
	Result diff.Result
	Err    error
}

// Runner computes batches of requests.
type Runner struct {
	engine  Computer
	workers int
	opts    diff.Options
	tracer  trace.Tracer
}

// NewRunner returns a runner computing through engine.
func NewRunner(engine Computer, cfg Config) *Runner {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	return &Runner{
		engine:  engine,
		workers: max(cfg.Workers, 1),
		opts:    cfg.Defaults,
		tracer:  tracer,
	}
}

// Run computes every request and returns one Item per request in input
// order. A failing request records its error in its Item and does not stop
// the batch. Run itself fails only when ctx is cancelled; completed results
// are dropped in that case.
func (r *Runner) Run(ctx context.Context, reqs []Request) ([]Item, error) {
	batchID := uuid.NewString()
	ctx, span := r.tracer.Start(ctx, tracing.SpanBatch)
	defer span.End()
	span.SetAttributes(
		attribute.String(tracing.AttrBatchID, batchID),
		attribute.Int(tracing.AttrBatchSize, len(reqs)),
	)
	log.Debug(log.CatBatch, "Batch started", "batch", batchID, "requests", len(reqs), "workers", r.workers)

	items := make([]Item, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = r.runOne(gctx, batchID, i, req)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("batch %s: %w", batchID, err)
	}

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	log.Info(log.CatBatch, "Batch finished", "batch", batchID, "requests", len(reqs), "failed", failed)
	return items, nil
}

func (r *Runner) runOne(ctx context.Context, batchID string, index int, req Request) Item {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	item := Item{ID: id}

	oldText, newText, err := req.Texts()
	if err != nil {
		item.Err = err
		log.Debug(log.CatBatch, "Batch item rejected", "id", id, "error", err)
		return item
	}

	opts := req.Options(r.opts)
	item.Result, item.Err = tracing.TraceCompute(ctx, r.tracer, oldText, newText, opts,
		func(ctx context.Context) (diff.Result, error) {
			trace.SpanFromContext(ctx).SetAttributes(
				attribute.String(tracing.AttrBatchID, batchID),
				attribute.Int(tracing.AttrBatchItem, index),
				attribute.String(tracing.AttrBatchItemID, id),
			)
			return r.engine.Compute(ctx, cachemanager.DiffRequest{Old: oldText, New: newText, Options: opts})
		})
	if item.Err != nil {
		log.Debug(log.CatBatch, "Batch item failed", "id", id, "error", item.Err)
	}
	return item
}
