package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/sidediff/internal/diff"
	"github.com/zjrosen/sidediff/internal/fold"
	"github.com/zjrosen/sidediff/internal/log"
	"github.com/zjrosen/sidediff/internal/presentation"
	"github.com/zjrosen/sidediff/internal/tracing"
	"github.com/zjrosen/sidediff/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		f        diffFlags
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch OLD NEW",
		Short: "Re-diff two files whenever either changes",
		Long: `Watch two files and print a one-line summary each time either changes.
Bursts of writes are coalesced by the debounce interval. Stop with Ctrl+C.

Example:
  sidediff watch --method words draft.md final.md`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "-" || args[1] == "-" {
				return errors.New("watch needs two files, not stdin")
			}
			opts, err := f.diffOptions(cmd, a)
			if err != nil {
				return err
			}
			wcfg := watcher.Config{OldPath: args[0], NewPath: args[1], Debounce: a.cfg.Watch.Debounce}
			if cmd.Flags().Changed("debounce") {
				wcfg.Debounce = debounce
			}

			w, err := watcher.New(wcfg)
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()
			changes, err := w.Start()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watchLoop(ctx, cmd.OutOrStdout(), args[0], args[1], opts, changes)
		},
	}
	f.registerEngine(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before re-diffing (default from config)")
	return cmd
}

// watchLoop prints a summary now and after every change signal until ctx is done.
func (a *app) watchLoop(ctx context.Context, w io.Writer, oldPath, newPath string, opts diff.Options, changes <-chan struct{}) error {
	out := presentation.NewFormatter(w, presentation.FormatJSON)
	label := oldPath + " -> " + newPath

	report := func() error {
		summary, err := a.recompute(ctx, oldPath, newPath, opts)
		if err != nil {
			// Files are often briefly missing mid-save; keep watching.
			log.Warn(log.CatWatcher, "Recompute failed", "old", oldPath, "new", newPath, "error", err)
			_, werr := fmt.Fprintf(w, "%s: error: %v\n", label, err)
			return werr
		}
		return out.FormatSummaryLine(label, summary)
	}

	if err := report(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := report(); err != nil {
				return err
			}
		}
	}
}

func (a *app) recompute(ctx context.Context, oldPath, newPath string, opts diff.Options) (fold.Summary, error) {
	ctx, span := a.tracing.Tracer().Start(ctx, tracing.SpanWatch)
	defer span.End()
	span.SetAttributes(
		attribute.String(tracing.AttrWatchOld, oldPath),
		attribute.String(tracing.AttrWatchNew, newPath),
	)

	oldText, err := readInput(nil, oldPath)
	if err != nil {
		tracing.RecordError(span, err)
		return fold.Summary{}, err
	}
	newText, err := readInput(nil, newPath)
	if err != nil {
		tracing.RecordError(span, err)
		return fold.Summary{}, err
	}
	res, err := a.compute(ctx, oldText, newText, opts)
	if err != nil {
		return fold.Summary{}, err
	}
	return fold.Summarize(res), nil
}
