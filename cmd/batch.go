package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/leadscope/lead-cli/internal/model"
	"github.com/leadscope/lead-cli/internal/service"
)

var (
	batchFile     string
	batchBusiness string
	batchTier     string
	batchLimit    int
)

// batchLead is one line of a batch input file. business_id and tier fall
// back to the --business and --tier flags when omitted.
type batchLead struct {
	Profile    model.Profile `json:"profile"`
	BusinessID string        `json:"business_id,omitempty"`
	Tier       model.Tier    `json:"tier,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch analyze leads from a file",
	Long:  "Reads leads from a JSON array or JSONL file and analyzes them in rate-limited concurrent groups. Individual failures are logged and skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		leads, err := loadBatchLeads(batchFile)
		if err != nil {
			return err
		}

		return processBatch(ctx, leads, batchLimit, env.Analyzer)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "path to leads file, JSON array or JSONL (required)")
	batchCmd.Flags().StringVar(&batchBusiness, "business", "", "default business ID for leads that omit one")
	batchCmd.Flags().StringVar(&batchTier, "tier", "light", "default analysis tier for leads that omit one")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of leads to process (0 = all)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

// loadBatchLeads parses the input file as either a JSON array or JSONL.
func loadBatchLeads(path string) ([]batchLead, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read batch file")
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, eris.New("batch file is empty")
	}

	var leads []batchLead
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &leads); err != nil {
			return nil, eris.Wrap(err, "parse batch file")
		}
		return leads, nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var lead batchLead
		if err := json.Unmarshal(text, &lead); err != nil {
			return nil, eris.Wrapf(err, "parse batch file line %d", line)
		}
		leads = append(leads, lead)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "scan batch file")
	}
	return leads, nil
}

// processBatch runs leads in groups of cfg.Batch.GroupSize, pausing between
// groups per cfg.Batch.GroupPauseSecs. An individual lead failure never
// aborts the batch.
func processBatch(ctx context.Context, leads []batchLead, limit int, analyzer *service.Analyzer) error {
	if len(leads) == 0 {
		zap.L().Info("no leads to process")
		return nil
	}
	if limit > 0 && len(leads) > limit {
		leads = leads[:limit]
	}

	groupSize := cfg.Batch.GroupSize
	pause := time.Duration(cfg.Batch.GroupPauseSecs) * time.Second

	zap.L().Info("processing batch",
		zap.Int("leads", len(leads)),
		zap.Int("group_size", groupSize),
		zap.Duration("group_pause", pause),
	)

	var limiter *rate.Limiter
	if pause > 0 {
		limiter = rate.NewLimiter(rate.Every(pause), 1)
	}

	var succeeded, failed atomic.Int64

	for start := 0; start < len(leads); start += groupSize {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return eris.Wrap(err, "batch: rate limit wait")
			}
		}

		end := start + groupSize
		if end > len(leads) {
			end = len(leads)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(groupSize)

		for _, lead := range leads[start:end] {
			businessID := lead.BusinessID
			if businessID == "" {
				businessID = batchBusiness
			}
			tier := lead.Tier
			if tier == "" {
				tier = model.Tier(batchTier)
			}

			g.Go(func() error {
				log := zap.L().With(
					zap.String("username", lead.Profile.Username),
					zap.String("business", businessID),
				)

				run, err := analyzer.Analyze(gctx, lead.Profile, businessID, tier)
				if err != nil {
					failed.Add(1)
					log.Error("lead analysis failed", zap.Error(err))
					return nil // don't abort batch on individual failure
				}

				succeeded.Add(1)
				log.Info("lead analysis complete",
					zap.String("run_id", run.ID),
					zap.Float64("cost", run.Result.TotalCost.ActualCost),
				)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch processing")
		}
		if ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "batch interrupted")
		}
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
