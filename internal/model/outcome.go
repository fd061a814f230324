package model

// TriageOutcome is the coarse fit/richness estimate from the always-run
// cheapest stage. DataRichness gates preprocessor escalation, so range and
// cardinality violations are stage failures, never clamped.
type TriageOutcome struct {
	LeadScore    int      `json:"lead_score"`
	DataRichness int      `json:"data_richness"`
	Confidence   float64  `json:"confidence"`
	EarlyExit    bool     `json:"early_exit"` // reserved, currently always false
	FocusPoints  []string `json:"focus_points"`
}

// PreprocessorOutcome holds normalized content signals extracted from the
// full profile. All fields are free-text; this stage carries no numeric
// scores. ContentThemes and AudienceSignals are capped at 5 and 4 items.
type PreprocessorOutcome struct {
	PostingCadence       string   `json:"posting_cadence"`
	ContentThemes        []string `json:"content_themes"`
	AudienceSignals      []string `json:"audience_signals"`
	BrandMentions        string   `json:"brand_mentions"`
	EngagementPatterns   string   `json:"engagement_patterns"`
	CollaborationHistory string   `json:"collaboration_history"`
	ContactReadiness     string   `json:"contact_readiness"`
	ContentQuality       string   `json:"content_quality"`
}

// MaxContentThemes and MaxAudienceSignals bound the preprocessor's list
// fields. Excess items are truncated, not rejected — this stage is advisory.
const (
	MaxContentThemes   = 5
	MaxAudienceSignals = 4
)

// AnalysisOutcome is the billable deliverable. The base fields are present
// for every tier; deep adds the audience/outreach block; xray additionally
// adds the copywriter intelligence block. Fields outside the tier's shape
// are stripped by the stage's output contract.
type AnalysisOutcome struct {
	Score           int     `json:"score"`
	NicheFit        int     `json:"niche_fit"`
	EngagementScore int     `json:"engagement_score"`
	ConfidenceLevel float64 `json:"confidence_level"`
	QuickSummary    string  `json:"quick_summary"`

	// deep and xray
	AudienceQuality string   `json:"audience_quality,omitempty"`
	SellingPoints   []string `json:"selling_points,omitempty"`
	Reasons         []string `json:"reasons,omitempty"`
	DeepSummary     string   `json:"deep_summary,omitempty"`
	OutreachMessage string   `json:"outreach_message,omitempty"`

	// xray only
	CopywriterProfile      *CopywriterProfile      `json:"copywriter_profile,omitempty"`
	CommercialIntelligence *CommercialIntelligence `json:"commercial_intelligence,omitempty"`
	PersuasionStrategy     *PersuasionStrategy     `json:"persuasion_strategy,omitempty"`
}

// CopywriterProfile models the lead the way a direct-response copywriter
// would brief it.
type CopywriterProfile struct {
	Demographics string   `json:"demographics"`
	PainPoints   []string `json:"pain_points"`
	Dreams       []string `json:"dreams"`
	Objections   []string `json:"objections"`
}

// CommercialIntelligence captures buying-readiness signals.
type CommercialIntelligence struct {
	BudgetTier     string   `json:"budget_tier"`
	DecisionRole   string   `json:"decision_role"`
	BuyingStage    string   `json:"buying_stage"`
	PaymentSignals []string `json:"payment_signals"`
}

// PersuasionStrategy is the recommended outreach angle for the lead.
type PersuasionStrategy struct {
	PrimaryAngle       string   `json:"primary_angle"`
	HookStyle          string   `json:"hook_style"`
	ProofElements      []string `json:"proof_elements"`
	CommunicationStyle string   `json:"communication_style"`
}

// StageResult pairs a stage's typed payload with the cost record it emitted.
// Every stage that executes produces exactly one CostRecord; a skipped stage
// produces none.
type StageResult[T any] struct {
	Payload T
	Cost    CostRecord
}
