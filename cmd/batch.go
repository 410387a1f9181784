package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/sidediff/internal/batch"
	"github.com/zjrosen/sidediff/internal/fold"
	"github.com/zjrosen/sidediff/internal/presentation"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		f       diffFlags
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Compute many diffs from a request file",
		Long: `Compute every request in a YAML or JSON file concurrently and write the
outcomes in request order. A failing request is reported in its own entry
and the command exits non-zero after writing all results.

Request file:
  requests:
    - id: readme
      old_file: README.old.md     # relative to the request file
      new_file: README.md
      method: words
    - old: "inline\ntext"
      new: "inline\ntest"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.diffOptions(cmd, a)
			if err != nil {
				return err
			}
			out, err := f.formatter(cmd, a)
			if err != nil {
				return err
			}
			reqs, err := batch.Load(args[0])
			if err != nil {
				return err
			}

			cfg := batch.Config{Workers: a.cfg.Batch.Workers, Defaults: opts, Tracer: a.tracing.Tracer()}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			items, err := batch.NewRunner(a.engine, cfg).Run(cmd.Context(), reqs)
			if err != nil {
				return err
			}

			foldOpts := f.foldOptions(cmd, a)
			dtos, failed := batchDTOs(items, foldOpts)
			if err := out.FormatBatch(dtos); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d requests failed", failed, len(items))
			}
			return nil
		},
	}
	f.registerEngine(cmd)
	f.registerFormat(cmd)
	f.registerFold(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent computations (default from config)")
	return cmd
}

func batchDTOs(items []batch.Item, foldOpts fold.Options) ([]presentation.BatchItemDTO, int) {
	dtos := make([]presentation.BatchItemDTO, len(items))
	failed := 0
	for i, it := range items {
		dtos[i].ID = it.ID
		switch {
		case it.Err != nil:
			dtos[i].Error = it.Err.Error()
			failed++
		case foldOpts.DiffOnly:
			plan := presentation.FromPlan(it.Result, fold.Plan(it.Result, foldOpts))
			dtos[i].Plan = &plan
		default:
			res := presentation.FromResult(it.Result)
			dtos[i].Result = &res
		}
	}
	return dtos, failed
}
