package model

import "time"

// Tier selects analysis depth. The tier determines which stages may run and
// the flat credit price billed on success.
type Tier string

const (
	TierLight Tier = "light"
	TierDeep  Tier = "deep"
	TierXRay  Tier = "xray"
)

// Valid reports whether t is one of the three supported tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierLight, TierDeep, TierXRay:
		return true
	}
	return false
}

// Credits returns the flat credit price for the tier. Credits are a fixed
// tier price independent of actual AI dollar cost; dollars are the audit
// trail. Unknown tiers price at 0.
func (t Tier) Credits() int {
	switch t {
	case TierLight:
		return 1
	case TierDeep:
		return 2
	case TierXRay:
		return 3
	}
	return 0
}

// Stage name constants for cost records. The main analysis stage is tagged
// with the tier name itself.
const (
	StageTriage       = "triage"
	StagePreprocessor = "preprocessor"
)

// Profile is the normalized profile record handed in by the scraping
// collaborator. It is richer than the snapshot: full post history and
// engagement detail feed the preprocessor and main analysis stages.
type Profile struct {
	Username       string              `json:"username"`
	FullName       string              `json:"full_name,omitempty"`
	Bio            string              `json:"bio,omitempty"`
	ExternalURL    string              `json:"external_url,omitempty"`
	FollowerCount  int                 `json:"follower_count"`
	FollowingCount int                 `json:"following_count"`
	PostCount      int                 `json:"post_count"`
	Verified       bool                `json:"verified"`
	Private        bool                `json:"private"`
	Posts          []Post              `json:"posts,omitempty"`
	Engagement     *EngagementSummary  `json:"engagement,omitempty"`
}

// Post is a single recent post on the profile.
type Post struct {
	Caption  string    `json:"caption,omitempty"`
	Likes    int       `json:"likes"`
	Comments int       `json:"comments"`
	IsVideo  bool      `json:"is_video,omitempty"`
	TakenAt  time.Time `json:"taken_at,omitempty"`
}

// EngagementSummary aggregates engagement signals across sampled posts.
type EngagementSummary struct {
	AvgLikes       float64 `json:"avg_likes"`
	AvgComments    float64 `json:"avg_comments"`
	EngagementRate float64 `json:"engagement_rate"`
	SampleSize     int     `json:"sample_size"`
}

// ProfileSnapshot is the compact, stable-shaped reduction of a Profile used
// as input to the cheapest stage. Derived once per request and never mutated.
type ProfileSnapshot struct {
	Username        string             `json:"username"`
	FollowerCount   int                `json:"follower_count"`
	Verified        bool               `json:"verified"`
	Private         bool               `json:"private"`
	BioExcerpt      string             `json:"bio_excerpt,omitempty"`
	LinkDomains     []string           `json:"link_domains,omitempty"`
	RecentPostCount int                `json:"recent_post_count"`
	Engagement      *EngagementSummary `json:"engagement,omitempty"`
}
