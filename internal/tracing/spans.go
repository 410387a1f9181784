package tracing

// Span attribute keys.
const (
	// Diff attributes
	AttrDiffMethod      = "diff.method"
	AttrDiffWordDiff    = "diff.word_diff"
	AttrDiffLinesOffset = "diff.lines_offset"
	AttrDiffOldBytes    = "diff.old_bytes"
	AttrDiffNewBytes    = "diff.new_bytes"
	AttrDiffRecords     = "diff.records"
	AttrDiffBlocks      = "diff.blocks"
	AttrDiffCacheHit    = "diff.cache_hit"

	// Batch attributes
	AttrBatchID     = "batch.id"
	AttrBatchSize   = "batch.size"
	AttrBatchItem   = "batch.item"
	AttrBatchItemID = "batch.item_id"

	// Watch attributes
	AttrWatchOld = "watch.old_path"
	AttrWatchNew = "watch.new_path"

	// HTTP attributes
	AttrHTTPMethod    = "http.method"
	AttrHTTPRoute     = "http.route"
	AttrHTTPStatus    = "http.status_code"
	AttrHTTPRequestID = "http.request_id"

	// Error attributes
	AttrErrorMessage = "error.message"
	AttrErrorType    = "error.type"
)

// Span names.
const (
	SpanCompute = "diff.compute"
	SpanBatch   = "batch.run"
	SpanWatch   = "watch.recompute"

	SpanPrefixHTTP = "http."
)

// Event names.
const (
	EventCacheMiss    = "cache.miss"
	EventInvalidInput = "diff.invalid_input"
)
