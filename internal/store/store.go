package store

import (
	"context"

	"github.com/leadscope/lead-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status     model.RunStatus `json:"status,omitempty"`
	BusinessID string          `json:"business_id,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Offset     int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the analysis service: run
// records, businesses (with synthesized-context write-back), and the credit
// ledger. The orchestrator itself never touches it.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, username, businessID string, tier model.Tier) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, result *model.OrchestrationResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Businesses
	UpsertBusiness(ctx context.Context, b model.Business) error
	GetBusiness(ctx context.Context, id string) (*model.Business, error)
	SaveBusinessContext(ctx context.Context, id, oneLiner string, pack *model.ContextPack) error

	// Credit ledger
	DeductCredits(ctx context.Context, entry model.LedgerEntry) error
	CreditsSpent(ctx context.Context, businessID string) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// runStatusFor maps a verdict to the terminal run status.
func runStatusFor(result *model.OrchestrationResult) model.RunStatus {
	if result != nil && result.Verdict == model.VerdictError {
		return model.RunStatusFailed
	}
	return model.RunStatusComplete
}
