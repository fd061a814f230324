package cost

import "github.com/leadscope/lead-cli/internal/model"

// Aggregate folds the cost records actually produced during a request into
// one total. Stage names are kept in execution order, so the list length
// reflects the escalation decision: 2 entries for light and unescalated
// deep, 3 for xray and escalated deep. An empty input (total failure before
// any stage ran) yields all-zero costs and no stages.
func Aggregate(records []model.CostRecord) model.CostSummary {
	summary := model.CostSummary{}
	for _, r := range records {
		summary.ActualCost += r.ActualCost
		summary.TokensIn += r.TokensIn
		summary.TokensOut += r.TokensOut
		summary.Stages = append(summary.Stages, r.Stage)
	}
	return summary
}
