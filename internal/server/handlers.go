package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/zjrosen/sidediff/internal/cachemanager"
	"github.com/zjrosen/sidediff/internal/diff"
	"github.com/zjrosen/sidediff/internal/fold"
	"github.com/zjrosen/sidediff/internal/log"
	"github.com/zjrosen/sidediff/internal/presentation"
	"github.com/zjrosen/sidediff/internal/tracing"
)

// diffBody is the POST /v1/diff request. Old and New are decoded untyped so
// non-string values are reported as invalid input rather than decode errors.
type diffBody struct {
	Old             any       `json:"old"`
	New             any       `json:"new"`
	Method          string    `json:"method"`
	DisableWordDiff *bool     `json:"disable_word_diff"`
	LinesOffset     *int      `json:"lines_offset"`
	Fold            *foldBody `json:"fold"`
}

type foldBody struct {
	ContextLines *int  `json:"context_lines"`
	Expanded     []int `json:"expanded"`
}

func (b diffBody) options(defaults diff.Options) diff.Options {
	opts := defaults
	if b.Method != "" {
		opts.CompareMethod, _ = diff.ParseMethod(b.Method)
	}
	if b.DisableWordDiff != nil {
		opts.DisableWordDiff = *b.DisableWordDiff
	}
	if b.LinesOffset != nil {
		opts.LinesOffset = *b.LinesOffset
	}
	return opts
}

func (f foldBody) options(defaults fold.Options) fold.Options {
	opts := fold.Options{DiffOnly: true, ContextLines: defaults.ContextLines, Expanded: f.Expanded}
	if f.ContextLines != nil {
		opts.ContextLines = *f.ContextLines
	}
	return opts
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	format, ok := s.format(w, r)
	if !ok {
		s.metrics.requestsTotal.WithLabelValues(strconv.Itoa(http.StatusBadRequest)).Inc()
		return
	}
	status := s.serveDiff(w, r, format)
	s.metrics.requestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// serveDiff writes the response and returns its status code.
func (s *Server) serveDiff(w http.ResponseWriter, r *http.Request, format presentation.Format) int {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var body diffBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return s.fail(w, r, format, http.StatusRequestEntityTooLarge,
				fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return s.fail(w, r, format, http.StatusBadRequest, fmt.Errorf("decoding request body: %w", err))
	}

	oldText, err := diff.TextValue("old", body.Old)
	if err != nil {
		return s.fail(w, r, format, http.StatusBadRequest, err)
	}
	newText, err := diff.TextValue("new", body.New)
	if err != nil {
		return s.fail(w, r, format, http.StatusBadRequest, err)
	}

	opts := body.options(s.cfg.Defaults)
	start := time.Now()
	res, err := tracing.TraceCompute(r.Context(), s.cfg.Tracer, oldText, newText, opts,
		func(ctx context.Context) (diff.Result, error) {
			return s.engine.Compute(ctx, cachemanager.DiffRequest{Old: oldText, New: newText, Options: opts})
		})
	s.metrics.computeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, diff.ErrInvalidInput) {
			return s.fail(w, r, format, http.StatusBadRequest, err)
		}
		log.ErrorErr(log.CatServer, "Diff failed", err, "request_id", middleware.GetReqID(r.Context()))
		return s.fail(w, r, format, http.StatusInternalServerError, errors.New("internal error"))
	}
	s.metrics.observeLines(fold.Summarize(res))

	f := s.begin(w, format, http.StatusOK)
	if body.Fold != nil {
		rows := fold.Plan(res, body.Fold.options(s.cfg.Fold))
		s.finish(r, f.FormatPlan(presentation.FromPlan(res, rows)))
	} else {
		s.finish(r, f.FormatResult(presentation.FromResult(res)))
	}
	return http.StatusOK
}

func (s *Server) handleMethods(w http.ResponseWriter, r *http.Request) {
	format, ok := s.format(w, r)
	if !ok {
		return
	}
	s.finish(r, s.begin(w, format, http.StatusOK).FormatMethods(presentation.FromMethods()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.finish(r, s.begin(w, presentation.FormatJSON, http.StatusOK).FormatStatus(map[string]string{"status": "ok"}))
}

// format reads the ?format= query parameter, writing a 400 when it is unknown.
func (s *Server) format(w http.ResponseWriter, r *http.Request) (presentation.Format, bool) {
	format, err := presentation.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.fail(w, r, presentation.FormatJSON, http.StatusBadRequest, err)
		return "", false
	}
	return format, true
}

func (s *Server) begin(w http.ResponseWriter, format presentation.Format, status int) *presentation.Formatter {
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(status)
	return presentation.NewFormatter(w, format)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, format presentation.Format, status int, err error) int {
	id := middleware.GetReqID(r.Context())
	log.Debug(log.CatServer, "Request rejected", "status", status, "error", err, "request_id", id)
	s.finish(r, s.begin(w, format, status).FormatError(presentation.ErrorDTO{Error: err.Error(), RequestID: id}))
	return status
}

// finish logs a failed response write. The status line is already sent.
func (s *Server) finish(r *http.Request, err error) {
	if err != nil {
		log.Warn(log.CatServer, "Writing response failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
	}
}
