// Package billing charges flat per-tier credit prices for successful
// analyses. Credits are the user-facing price; the dollar amounts inside an
// OrchestrationResult are the audit trail and never drive billing.
package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadscope/lead-cli/internal/model"
)

// Ledger records credit deductions. The store implements it.
type Ledger interface {
	DeductCredits(ctx context.Context, entry model.LedgerEntry) error
}

// Charger deducts credits for completed runs.
type Charger struct {
	ledger Ledger
}

// NewCharger creates a Charger over the given ledger.
func NewCharger(ledger Ledger) *Charger {
	return &Charger{ledger: ledger}
}

// Charge deducts the tier's flat credit price for a successful run and
// returns the credits charged. A run that did not succeed charges nothing:
// no partial credits are ever billed for a fatal failure.
func (c *Charger) Charge(ctx context.Context, businessID, runID string, tier model.Tier, verdict model.Verdict) (int, error) {
	if verdict != model.VerdictSuccess {
		return 0, nil
	}

	credits := tier.Credits()
	if credits == 0 {
		return 0, eris.Errorf("billing: no credit price for tier %q", tier)
	}

	entry := model.LedgerEntry{
		ID:         uuid.New().String(),
		BusinessID: businessID,
		RunID:      runID,
		Tier:       tier,
		Credits:    credits,
		CreatedAt:  time.Now().UTC(),
	}
	if err := c.ledger.DeductCredits(ctx, entry); err != nil {
		return 0, eris.Wrap(err, "billing: deduct credits")
	}

	zap.L().Info("billing: credits charged",
		zap.String("run_id", runID),
		zap.String("business", businessID),
		zap.String("tier", string(tier)),
		zap.Int("credits", credits),
	)
	return credits, nil
}
