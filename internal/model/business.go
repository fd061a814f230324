package model

// ContextPack is the structured business context used to frame every
// analysis prompt. Cardinalities are part of the synthesis contract:
// 3 must-avoid archetypes, 4 priority-fit signals, 3 tone descriptors.
type ContextPack struct {
	Niche           string   `json:"niche"`
	ValueProp       string   `json:"value_prop"`
	MustAvoid       []string `json:"must_avoid"`
	PrioritySignals []string `json:"priority_signals"`
	ToneWords       []string `json:"tone_words"`
}

// Business is the business side of the lead comparison. OneLiner and
// ContextPack may be absent on a cold business; the context resolver
// synthesizes both in one AI call and merges them in-memory for the
// remainder of the request.
type Business struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	OneLiner    string       `json:"one_liner,omitempty"`
	ContextPack *ContextPack `json:"context_pack,omitempty"`
}

// ContextComplete reports whether both context fields are already present,
// in which case the resolver passes them through without an AI call.
func (b Business) ContextComplete() bool {
	return b.OneLiner != "" && b.ContextPack != nil
}
