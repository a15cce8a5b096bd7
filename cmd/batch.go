package main

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/risk-cli/internal/pipeline"
)

var batchLimit int

var batchCmd = &cobra.Command{
	Use:   "batch [case-id...]",
	Short: "Process many cases concurrently",
	Long:  "Processes the given case IDs (or every case in the directory when none are given). Each case runs its own synchronous pipeline; cases run concurrently up to the configured limit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		ids := args
		if len(ids) == 0 {
			ids = env.Pipeline.CaseIDs()
		}

		return processBatch(ctx, env.Pipeline, ids, batchLimit, cfg.Batch.MaxConcurrentCases)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of cases to process (0 = all)")
	rootCmd.AddCommand(batchCmd)
}

// processBatch applies limit, then runs cases concurrently. Individual case
// failures are logged and counted, never abort the batch.
func processBatch(ctx context.Context, p *pipeline.Pipeline, ids []string, limit, concurrency int) error {
	if len(ids) == 0 {
		zap.L().Info("no cases to process")
		return nil
	}

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("cases", len(ids)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, id := range ids {
		g.Go(func() error {
			result := p.ProcessCase(gctx, id, true)
			if !result.Success {
				failed.Add(1)
				zap.L().Error("case failed",
					zap.String("case_id", id),
					zap.String("error", result.Error),
				)
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
