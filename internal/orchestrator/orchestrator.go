package orchestrator

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadscope/lead-cli/internal/config"
	"github.com/leadscope/lead-cli/internal/cost"
	"github.com/leadscope/lead-cli/internal/model"
	"github.com/leadscope/lead-cli/pkg/anthropic"
)

// State names the positions of the orchestration state machine. Every run
// walks STARTED → CONTEXT_RESOLVED → TRIAGED → PREPROCESSED (or skipped) →
// ANALYZED → AGGREGATED; a fatal error from any non-terminal state moves to
// FAILED. Each stage is attempted exactly once per request.
type State string

const (
	StateStarted         State = "STARTED"
	StateContextResolved State = "CONTEXT_RESOLVED"
	StateTriaged         State = "TRIAGED"
	StatePreprocessed    State = "PREPROCESSED"
	StateAnalyzed        State = "ANALYZED"
	StateAggregated      State = "AGGREGATED"
	StateFailed          State = "FAILED"
)

// Request carries the request-scoped inputs of one orchestration run.
// Runs share no mutable state with each other.
type Request struct {
	Profile  model.Profile
	Business model.Business
	Tier     model.Tier
}

// Orchestrator composes the context resolver, snapshot builder, stage
// runners, escalation policy, and cost aggregator into one request
// lifecycle. It never persists anything itself; the caller hands the result
// to the persistence and billing collaborators.
type Orchestrator struct {
	cfg      *config.Config
	client   anthropic.Client
	calc     *cost.Calculator
	resolver *ContextResolver
}

// New creates an Orchestrator with all dependencies.
func New(cfg *config.Config, client anthropic.Client) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		client:   client,
		calc:     cost.NewCalculator(cfg.Pricing),
		resolver: NewContextResolver(client, cfg.Anthropic),
	}
}

// Run executes one lead analysis. It always returns a well-formed
// OrchestrationResult — a fatal failure yields verdict "error" with the
// partial cost and timing data collected up to that point, never a panic or
// an unmodeled error. The returned business carries any context synthesized
// during the run, for the caller to persist.
func (o *Orchestrator) Run(ctx context.Context, req Request) (result *model.OrchestrationResult, resolved model.Business) {
	log := zap.L().With(
		zap.String("username", req.Profile.Username),
		zap.String("business", req.Business.ID),
		zap.String("tier", string(req.Tier)),
	)
	log.Info("orchestrator: starting analysis")

	start := time.Now()
	state := StateStarted
	resolved = req.Business

	var records []model.CostRecord
	var perf model.Performance

	fail := func(err error) *model.OrchestrationResult {
		failedFrom := state
		state = StateFailed
		perf.TotalMs = time.Since(start).Milliseconds()
		log.Error("orchestrator: run failed",
			zap.String("state", string(failedFrom)),
			zap.Int64("total_ms", perf.TotalMs),
			zap.Error(err),
		)
		return &model.OrchestrationResult{
			TotalCost:   cost.Aggregate(records),
			Performance: perf,
			Verdict:     model.VerdictError,
			Error:       err.Error(),
		}
	}

	// A panic below any stage boundary must still surface as a modeled
	// error result.
	defer func() {
		if r := recover(); r != nil {
			result = fail(eris.Errorf("orchestrator: panic: %v", r))
		}
	}()

	// Resolve business context. Fatal when both fields were missing and
	// synthesis failed; nothing has been charged or recorded yet.
	business, _, err := o.resolver.Resolve(ctx, req.Business)
	if err != nil {
		return fail(err), resolved
	}
	resolved = business
	state = StateContextResolved

	snap := BuildSnapshot(req.Profile)

	// Triage: always runs, failure is fatal — escalation and analysis
	// context both depend on it.
	tStart := time.Now()
	triage, err := RunTriage(ctx, o.client, o.cfg.Anthropic, o.calc, snap, business.OneLiner)
	perf.TriageMs = time.Since(tStart).Milliseconds()
	if err != nil {
		return fail(err), resolved
	}
	records = append(records, triage.Cost)
	state = StateTriaged

	// Preprocessor: runs only when the escalation policy says so; its
	// failure is absorbed and the request continues without its context.
	var pre *model.PreprocessorOutcome
	if ShouldRunPreprocessor(req.Tier, triage.Payload) {
		pStart := time.Now()
		preRes, preErr := RunPreprocessor(ctx, o.client, o.cfg.Anthropic, o.calc, req.Profile, business.OneLiner)
		perf.PreprocessorMs = time.Since(pStart).Milliseconds()
		if preErr != nil {
			log.Warn("orchestrator: preprocessor failed, continuing without content signals",
				zap.Error(preErr),
			)
		} else {
			records = append(records, preRes.Cost)
			pre = &preRes.Payload
		}
		state = StatePreprocessed
	}

	// Main analysis: the billable deliverable, failure is fatal.
	aStart := time.Now()
	analysis, err := RunAnalysis(ctx, o.client, o.cfg.Anthropic, o.calc, req.Profile, business, req.Tier, triage.Payload, pre)
	perf.AnalysisMs = time.Since(aStart).Milliseconds()
	if err != nil {
		return fail(err), resolved
	}
	records = append(records, analysis.Cost)
	state = StateAnalyzed

	summary := cost.Aggregate(records)
	perf.TotalMs = time.Since(start).Milliseconds()
	state = StateAggregated

	log.Info("orchestrator: analysis complete",
		zap.String("state", string(state)),
		zap.Int("score", analysis.Payload.Score),
		zap.Strings("stages", summary.Stages),
		zap.Float64("cost_usd", summary.ActualCost),
		zap.Int64("total_ms", perf.TotalMs),
	)

	return &model.OrchestrationResult{
		Result:      &analysis.Payload,
		TotalCost:   summary,
		Performance: perf,
		Verdict:     model.VerdictSuccess,
	}, resolved
}
