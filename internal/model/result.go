package model

import "time"

// CostRecord is the dollar/token accounting unit emitted by one stage
// execution. ActualCost is USD; credits billed to the user are a separate
// flat tier price.
type CostRecord struct {
	Stage      string  `json:"stage"`
	ActualCost float64 `json:"actual_cost"`
	TokensIn   int     `json:"tokens_in"`
	TokensOut  int     `json:"tokens_out"`
}

// CostSummary is the fold of the cost records actually produced during a
// request. Stages lists the stage names that ran, in execution order, so
// its length varies with the escalation decision.
type CostSummary struct {
	ActualCost float64  `json:"actual_cost"`
	TokensIn   int      `json:"tokens_in"`
	TokensOut  int      `json:"tokens_out"`
	Stages     []string `json:"stages"`
}

// Performance records wall-clock stage durations in milliseconds. Durations
// are captured independent of success or failure so even a failed request
// reports partial timings.
type Performance struct {
	TriageMs       int64 `json:"triage_ms"`
	PreprocessorMs int64 `json:"preprocessor_ms"`
	AnalysisMs     int64 `json:"analysis_ms"`
	TotalMs        int64 `json:"total_ms"`
}

// Verdict is the terminal outcome of an orchestration run.
type Verdict string

const (
	VerdictSuccess   Verdict = "success"
	VerdictEarlyExit Verdict = "early_exit" // reserved; never emitted today
	VerdictError     Verdict = "error"
)

// OrchestrationResult is the single value produced per request. It is
// created once by the orchestrator, never mutated after return, and always
// well-formed — a fatal failure yields verdict "error" with whatever partial
// cost and timing data was collected.
type OrchestrationResult struct {
	Result          *AnalysisOutcome `json:"result,omitempty"`
	TotalCost       CostSummary      `json:"total_cost"`
	Performance     Performance      `json:"performance"`
	Verdict         Verdict          `json:"verdict"`
	EarlyExitReason string           `json:"early_exit_reason,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// RunStatus tracks a persisted analysis run through its lifecycle.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is the persisted record of one lead analysis.
type Run struct {
	ID         string               `json:"id"`
	Username   string               `json:"username"`
	BusinessID string               `json:"business_id"`
	Tier       Tier                 `json:"tier"`
	Status     RunStatus            `json:"status"`
	Result     *OrchestrationResult `json:"result,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// LedgerEntry is one credit deduction in the billing ledger.
type LedgerEntry struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	RunID      string    `json:"run_id"`
	Tier       Tier      `json:"tier"`
	Credits    int       `json:"credits"`
	CreatedAt  time.Time `json:"created_at"`
}
