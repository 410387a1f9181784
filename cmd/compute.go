package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/sidediff/internal/cachemanager"
	"github.com/zjrosen/sidediff/internal/diff"
	"github.com/zjrosen/sidediff/internal/fold"
	"github.com/zjrosen/sidediff/internal/git"
	"github.com/zjrosen/sidediff/internal/log"
	"github.com/zjrosen/sidediff/internal/presentation"
	"github.com/zjrosen/sidediff/internal/tracing"
)

// diffFlags are the engine and output overrides shared by compute and batch.
type diffFlags struct {
	method     string
	noWordDiff bool
	offset     int
	format     string
	fold       bool
	context    int
	expand     []int
}

func (f *diffFlags) registerEngine(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.method, "method", "m", "", "intra-line granularity, e.g. words or diffWords (see sidediff methods)")
	cmd.Flags().BoolVar(&f.noWordDiff, "no-word-diff", false, "report changed lines without intra-line tokens")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "add N to every reported line number")
}

func (f *diffFlags) registerFormat(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: json or yaml (default from config)")
}

func (f *diffFlags) registerFold(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.fold, "fold", false, "collapse unchanged lines outside the context of a change")
	cmd.Flags().IntVar(&f.context, "context", 0, "unchanged lines kept around each change when folding (default from config)")
	cmd.Flags().IntSliceVar(&f.expand, "expand", nil, "fold ids to show expanded (repeatable)")
}

// diffOptions applies the changed engine flags to the configured defaults.
func (f *diffFlags) diffOptions(cmd *cobra.Command, a *app) (diff.Options, error) {
	opts := a.options()
	if cmd.Flags().Changed("method") {
		m, ok := diff.ParseMethod(f.method)
		if !ok {
			return opts, fmt.Errorf("unknown method %q (run `sidediff methods` for the list)", f.method)
		}
		opts.CompareMethod = m
	}
	if cmd.Flags().Changed("no-word-diff") {
		opts.DisableWordDiff = f.noWordDiff
	}
	if cmd.Flags().Changed("offset") {
		opts.LinesOffset = f.offset
	}
	return opts, nil
}

func (f *diffFlags) foldOptions(cmd *cobra.Command, a *app) fold.Options {
	opts := fold.Options{DiffOnly: a.cfg.Fold.DiffOnly, ContextLines: a.cfg.Fold.ContextLines, Expanded: f.expand}
	if cmd.Flags().Changed("fold") {
		opts.DiffOnly = f.fold
	}
	if cmd.Flags().Changed("context") {
		opts.ContextLines = f.context
	}
	if len(f.expand) > 0 {
		opts.DiffOnly = true
	}
	return opts
}

func (f *diffFlags) formatter(cmd *cobra.Command, a *app) (*presentation.Formatter, error) {
	name := a.cfg.Output.Format
	if cmd.Flags().Changed("format") {
		name = f.format
	}
	format, err := presentation.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return presentation.NewFormatter(cmd.OutOrStdout(), format), nil
}

func newComputeCmd(a *app) *cobra.Command {
	var (
		f   diffFlags
		rev string
	)
	cmd := &cobra.Command{
		Use:   "compute OLD NEW | compute --rev REV FILE",
		Short: "Diff two files",
		Long: `Diff two files and write the aligned rows as JSON or YAML.

Either file may be "-" to read it from stdin. With --rev, the old side is
FILE as committed at REV and the new side is FILE in the working tree.

Examples:
  # Character-level highlighting (default)
  sidediff compute a.txt b.txt

  # Word-level highlighting, line numbers starting at 101
  sidediff compute --method words --offset 100 a.txt b.txt

  # Collapse unchanged lines, keeping 2 lines of context, and expand fold 40
  sidediff compute --fold --context 2 --expand 40 a.txt b.txt

  # Working copy against the last commit
  sidediff compute --rev HEAD main.go

  # Pipe the new side in
  curl -s https://example.com/main.go | sidediff compute main.go - | jq '.summary'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("rev") {
				if len(args) != 1 {
					return errors.New("--rev takes exactly one FILE")
				}
				return runComputeRev(cmd, a, &f, git.NewRealExecutor(""), rev, args[0])
			}
			if len(args) != 2 {
				return errors.New("compute needs OLD and NEW (or --rev REV FILE)")
			}
			return runCompute(cmd, a, &f, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&rev, "rev", "", "compare FILE against its contents at this git revision")
	f.registerEngine(cmd)
	f.registerFormat(cmd)
	f.registerFold(cmd)
	return cmd
}

func runCompute(cmd *cobra.Command, a *app, f *diffFlags, oldPath, newPath string) error {
	if oldPath == "-" && newPath == "-" {
		return errors.New("only one of OLD and NEW may be read from stdin")
	}
	opts, err := f.diffOptions(cmd, a)
	if err != nil {
		return err
	}
	out, err := f.formatter(cmd, a)
	if err != nil {
		return err
	}

	oldText, err := readInput(cmd.InOrStdin(), oldPath)
	if err != nil {
		return err
	}
	newText, err := readInput(cmd.InOrStdin(), newPath)
	if err != nil {
		return err
	}
	return a.writeDiff(cmd, f, out, oldText, newText, opts)
}

// runComputeRev diffs path as committed at rev against the working tree copy.
func runComputeRev(cmd *cobra.Command, a *app, f *diffFlags, repo git.Reader, rev, path string) error {
	if path == "-" {
		return errors.New("--rev needs a file path, not stdin")
	}
	opts, err := f.diffOptions(cmd, a)
	if err != nil {
		return err
	}
	out, err := f.formatter(cmd, a)
	if err != nil {
		return err
	}

	oldText, err := repo.ShowFile(cmd.Context(), rev, path)
	if err != nil {
		return fmt.Errorf("reading %s at %s: %w", path, rev, err)
	}
	newText, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	log.Debug(log.CatDiff, "Comparing against revision", "rev", rev, "path", path)
	return a.writeDiff(cmd, f, out, oldText, newText, opts)
}

func (a *app) writeDiff(cmd *cobra.Command, f *diffFlags, out *presentation.Formatter, oldText, newText string, opts diff.Options) error {
	res, err := a.compute(cmd.Context(), oldText, newText, opts)
	if err != nil {
		return err
	}

	foldOpts := f.foldOptions(cmd, a)
	if foldOpts.DiffOnly {
		return out.FormatPlan(presentation.FromPlan(res, fold.Plan(res, foldOpts)))
	}
	return out.FormatResult(presentation.FromResult(res))
}

// compute runs one traced engine call.
func (a *app) compute(ctx context.Context, oldText, newText string, opts diff.Options) (diff.Result, error) {
	return tracing.TraceCompute(ctx, a.tracing.Tracer(), oldText, newText, opts,
		func(ctx context.Context) (diff.Result, error) {
			return a.engine.Compute(ctx, cachemanager.DiffRequest{Old: oldText, New: newText, Options: opts})
		})
}

func readInput(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
