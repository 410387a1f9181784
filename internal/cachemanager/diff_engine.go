package cachemanager

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/sidediff/internal/diff"
	"github.com/zjrosen/sidediff/internal/tracing"
)

// DiffRequest is one engine call.
type DiffRequest struct {
	Old     string
	New     string
	Options diff.Options
}

// Key returns the cache key for r: an xxhash of the length-prefixed inputs
// and every option, followed by both input lengths.
func (r DiffRequest) Key() string {
	h := xxhash.New()
	writeString(h, r.Old)
	writeString(h, r.New)
	writeString(h, string(r.Options.CompareMethod))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(r.Options.LinesOffset))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte{boolByte(r.Options.DisableWordDiff), boolByte(r.Options.SemanticCleanup)})
	return fmt.Sprintf("%016x-%d-%d", h.Sum64(), len(r.Old), len(r.New))
}

func writeString(h *xxhash.Digest, s string) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
	_, _ = h.Write(buf[:])
	_, _ = h.WriteString(s)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// DiffEngine memoises diff.Compute. Cached results are shared between
// callers and must be treated as read-only.
type DiffEngine struct {
	rt      *ReadThroughCache[string, diff.Result, DiffRequest]
	ttl     time.Duration
	enabled bool
}

// NewDiffEngine returns an engine backed by cache. With enabled false every
// call computes.
func NewDiffEngine(cache CacheManager[string, diff.Result], ttl time.Duration, enabled bool) *DiffEngine {
	compute := func(ctx context.Context, req DiffRequest) (diff.Result, error) {
		if enabled {
			span := trace.SpanFromContext(ctx)
			span.AddEvent(tracing.EventCacheMiss)
			span.SetAttributes(attribute.Bool(tracing.AttrDiffCacheHit, false))
		}
		return diff.Compute(req.Old, req.New, req.Options)
	}
	return &DiffEngine{
		rt:      NewReadThroughCache[string, diff.Result, DiffRequest](cache, compute, !enabled),
		ttl:     ttl,
		enabled: enabled,
	}
}

// Compute returns the diff of req, from the cache when possible. Each hit
// refreshes the entry's ttl. The span in ctx, if any, is tagged with
// whether the cache served the call.
func (e *DiffEngine) Compute(ctx context.Context, req DiffRequest) (diff.Result, error) {
	if e.enabled {
		// Overwritten by the compute path on a miss.
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool(tracing.AttrDiffCacheHit, true))
	}
	return e.rt.GetWithRefresh(ctx, req.Key(), req, e.ttl)
}

// Enabled reports whether results are cached.
func (e *DiffEngine) Enabled() bool {
	return e.enabled
}
