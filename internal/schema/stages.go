package schema

// Stage output schemas. These are the stable contract the AI-call responses
// must honor: additionalProperties is forbidden and required-field lists are
// exhaustive. A nonconforming payload is rejected at the boundary, never
// coerced, because the escalation policy and billing depend on trustworthy
// values.

// Triage is the schema for the triage stage. Range and cardinality
// constraints are enforced here rather than clamped in code.
const Triage = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["lead_score", "data_richness", "confidence", "early_exit", "focus_points"],
	"properties": {
		"lead_score":    {"type": "integer", "minimum": 0, "maximum": 100},
		"data_richness": {"type": "integer", "minimum": 0, "maximum": 100},
		"confidence":    {"type": "number", "minimum": 0, "maximum": 1},
		"early_exit":    {"type": "boolean"},
		"focus_points":  {"type": "array", "items": {"type": "string"}, "minItems": 2, "maxItems": 4}
	}
}`

// Preprocessor is the schema for the preprocessor stage. The list fields
// deliberately carry no maxItems: excess items are truncated in code, not
// rejected, since this stage is advisory.
const Preprocessor = `{
	"type": "object",
	"additionalProperties": false,
	"required": [
		"posting_cadence", "content_themes", "audience_signals", "brand_mentions",
		"engagement_patterns", "collaboration_history", "contact_readiness", "content_quality"
	],
	"properties": {
		"posting_cadence":       {"type": "string"},
		"content_themes":        {"type": "array", "items": {"type": "string"}},
		"audience_signals":      {"type": "array", "items": {"type": "string"}},
		"brand_mentions":        {"type": "string"},
		"engagement_patterns":   {"type": "string"},
		"collaboration_history": {"type": "string"},
		"contact_readiness":     {"type": "string"},
		"content_quality":       {"type": "string"}
	}
}`

const analysisBaseProps = `
		"score":            {"type": "integer", "minimum": 0, "maximum": 100},
		"niche_fit":        {"type": "integer", "minimum": 0, "maximum": 100},
		"engagement_score": {"type": "integer", "minimum": 0, "maximum": 100},
		"confidence_level": {"type": "number", "minimum": 0, "maximum": 1},
		"quick_summary":    {"type": "string"}`

const analysisDeepProps = `
		"audience_quality": {"type": "string"},
		"selling_points":   {"type": "array", "items": {"type": "string"}},
		"reasons":          {"type": "array", "items": {"type": "string"}},
		"deep_summary":     {"type": "string"},
		"outreach_message": {"type": "string"}`

const analysisXRayProps = `
		"copywriter_profile": {
			"type": "object",
			"additionalProperties": false,
			"required": ["demographics", "pain_points", "dreams", "objections"],
			"properties": {
				"demographics": {"type": "string"},
				"pain_points":  {"type": "array", "items": {"type": "string"}},
				"dreams":       {"type": "array", "items": {"type": "string"}},
				"objections":   {"type": "array", "items": {"type": "string"}}
			}
		},
		"commercial_intelligence": {
			"type": "object",
			"additionalProperties": false,
			"required": ["budget_tier", "decision_role", "buying_stage", "payment_signals"],
			"properties": {
				"budget_tier":     {"type": "string"},
				"decision_role":   {"type": "string"},
				"buying_stage":    {"type": "string"},
				"payment_signals": {"type": "array", "items": {"type": "string"}}
			}
		},
		"persuasion_strategy": {
			"type": "object",
			"additionalProperties": false,
			"required": ["primary_angle", "hook_style", "proof_elements", "communication_style"],
			"properties": {
				"primary_angle":       {"type": "string"},
				"hook_style":          {"type": "string"},
				"proof_elements":      {"type": "array", "items": {"type": "string"}},
				"communication_style": {"type": "string"}
			}
		}`

// AnalysisLight validates the shaped light-tier analysis payload.
const AnalysisLight = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["score", "niche_fit", "engagement_score", "confidence_level", "quick_summary"],
	"properties": {` + analysisBaseProps + `
	}
}`

// AnalysisDeep validates the shaped deep-tier analysis payload.
const AnalysisDeep = `{
	"type": "object",
	"additionalProperties": false,
	"required": [
		"score", "niche_fit", "engagement_score", "confidence_level", "quick_summary",
		"audience_quality", "selling_points", "reasons", "deep_summary", "outreach_message"
	],
	"properties": {` + analysisBaseProps + `,` + analysisDeepProps + `
	}
}`

// AnalysisXRay validates the shaped xray-tier analysis payload.
const AnalysisXRay = `{
	"type": "object",
	"additionalProperties": false,
	"required": [
		"score", "niche_fit", "engagement_score", "confidence_level", "quick_summary",
		"audience_quality", "selling_points", "reasons", "deep_summary", "outreach_message",
		"copywriter_profile", "commercial_intelligence", "persuasion_strategy"
	],
	"properties": {` + analysisBaseProps + `,` + analysisDeepProps + `,` + analysisXRayProps + `
	}
}`

// BusinessContext validates the one-call synthesis of the business
// one-liner and context pack. Cardinalities are exact: 3 must-avoid
// archetypes, 4 priority signals, 3 tone words.
const BusinessContext = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["business_one_liner", "business_context_pack"],
	"properties": {
		"business_one_liner": {"type": "string", "minLength": 1, "maxLength": 140},
		"business_context_pack": {
			"type": "object",
			"additionalProperties": false,
			"required": ["niche", "value_prop", "must_avoid", "priority_signals", "tone_words"],
			"properties": {
				"niche":            {"type": "string"},
				"value_prop":       {"type": "string"},
				"must_avoid":       {"type": "array", "items": {"type": "string"}, "minItems": 3, "maxItems": 3},
				"priority_signals": {"type": "array", "items": {"type": "string"}, "minItems": 4, "maxItems": 4},
				"tone_words":       {"type": "array", "items": {"type": "string"}, "minItems": 3, "maxItems": 3}
			}
		}
	}
}`
