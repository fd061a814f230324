// Package service glues the orchestrator to its persistence and billing
// collaborators: it owns the run lifecycle, writes back synthesized
// business context, and charges credits for successful analyses.
package service

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadscope/lead-cli/internal/billing"
	"github.com/leadscope/lead-cli/internal/model"
	"github.com/leadscope/lead-cli/internal/orchestrator"
	"github.com/leadscope/lead-cli/internal/store"
)

// Analyzer runs one lead analysis end to end.
type Analyzer struct {
	store   store.Store
	orch    *orchestrator.Orchestrator
	charger *billing.Charger
}

// New creates an Analyzer.
func New(st store.Store, orch *orchestrator.Orchestrator) *Analyzer {
	return &Analyzer{
		store:   st,
		orch:    orch,
		charger: billing.NewCharger(st),
	}
}

// Analyze creates a run record for the profile and performs the analysis.
func (a *Analyzer) Analyze(ctx context.Context, profile model.Profile, businessID string, tier model.Tier) (*model.Run, error) {
	if !tier.Valid() {
		return nil, eris.Errorf("service: unknown tier %q", tier)
	}

	run, err := a.store.CreateRun(ctx, profile.Username, businessID, tier)
	if err != nil {
		return nil, eris.Wrap(err, "service: create run")
	}
	return a.AnalyzeRun(ctx, run, profile)
}

// AnalyzeRun performs the analysis for an already-created run record: it
// loads the business, runs the orchestration, and persists the outcome.
// Credits are charged only on a success verdict; a run that ended in
// verdict "error" is stored with its partial cost and timing data and
// bills nothing. The serve command uses this directly to return a
// pollable run ID before the analysis finishes.
func (a *Analyzer) AnalyzeRun(ctx context.Context, run *model.Run, profile model.Profile) (*model.Run, error) {
	business, err := a.store.GetBusiness(ctx, run.BusinessID)
	if err != nil {
		if statusErr := a.store.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed); statusErr != nil {
			zap.L().Warn("service: failed to mark run failed", zap.String("run_id", run.ID), zap.Error(statusErr))
		}
		return nil, eris.Wrap(err, "service: load business")
	}

	if err := a.store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		zap.L().Warn("service: failed to mark run running", zap.String("run_id", run.ID), zap.Error(err))
	}

	result, resolved := a.orch.Run(ctx, orchestrator.Request{
		Profile:  profile,
		Business: *business,
		Tier:     run.Tier,
	})

	// Persist synthesized context so the one-time setup cost amortizes
	// across future analyses for this business.
	if resolved.ContextComplete() && !business.ContextComplete() {
		if err := a.store.SaveBusinessContext(ctx, run.BusinessID, resolved.OneLiner, resolved.ContextPack); err != nil {
			zap.L().Warn("service: failed to persist synthesized context",
				zap.String("business", run.BusinessID),
				zap.Error(err),
			)
		}
	}

	if err := a.store.CompleteRun(ctx, run.ID, result); err != nil {
		return nil, eris.Wrap(err, "service: save run result")
	}

	if _, err := a.charger.Charge(ctx, run.BusinessID, run.ID, run.Tier, result.Verdict); err != nil {
		// The analysis result is already saved; surface the billing
		// failure rather than silently skipping the deduction.
		return nil, eris.Wrap(err, "service: charge run")
	}

	run.Result = result
	run.Status = model.RunStatusComplete
	if result.Verdict == model.VerdictError {
		run.Status = model.RunStatusFailed
		return run, eris.Errorf("service: analysis failed: %s", result.Error)
	}
	return run, nil
}
