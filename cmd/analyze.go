package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadscope/lead-cli/internal/model"
)

var (
	analyzeProfile  string
	analyzeBusiness string
	analyzeTier     string
	analyzeBizName  string
	analyzeOneLiner string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single lead profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		tier := model.Tier(analyzeTier)
		if !tier.Valid() {
			return eris.Errorf("invalid tier %q (expected light, deep, or xray)", analyzeTier)
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		profile, err := loadProfile(analyzeProfile)
		if err != nil {
			return err
		}

		// Register or refresh the business record when a name is given, so
		// a first analysis does not require a separate setup step.
		if analyzeBizName != "" {
			b := model.Business{
				ID:       analyzeBusiness,
				Name:     analyzeBizName,
				OneLiner: analyzeOneLiner,
			}
			if err := env.Store.UpsertBusiness(ctx, b); err != nil {
				return eris.Wrap(err, "upsert business")
			}
		}

		run, runErr := env.Analyzer.Analyze(ctx, *profile, analyzeBusiness, tier)
		if run != nil {
			if run.Result != nil {
				zap.L().Info("analysis finished",
					zap.String("username", profile.Username),
					zap.String("verdict", string(run.Result.Verdict)),
					zap.Float64("total_cost", run.Result.TotalCost.ActualCost),
					zap.Int64("total_ms", run.Result.Performance.TotalMs),
				)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(run); encErr != nil {
				return encErr
			}
		}
		return runErr
	},
}

// loadProfile reads a lead profile from a JSON file.
func loadProfile(path string) (*model.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read profile file")
	}
	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, eris.Wrap(err, "parse profile file")
	}
	if profile.Username == "" {
		return nil, eris.New("profile file missing username")
	}
	return &profile, nil
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeProfile, "profile", "", "path to lead profile JSON (required)")
	analyzeCmd.Flags().StringVar(&analyzeBusiness, "business", "", "business ID (required)")
	analyzeCmd.Flags().StringVar(&analyzeTier, "tier", "light", "analysis tier (light, deep, xray)")
	analyzeCmd.Flags().StringVar(&analyzeBizName, "business-name", "", "business name (upserts the business record)")
	analyzeCmd.Flags().StringVar(&analyzeOneLiner, "one-liner", "", "ideal customer one-liner (with --business-name)")
	_ = analyzeCmd.MarkFlagRequired("profile")
	_ = analyzeCmd.MarkFlagRequired("business")
	rootCmd.AddCommand(analyzeCmd)
}
