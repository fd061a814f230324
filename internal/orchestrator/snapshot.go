package orchestrator

import (
	"net/url"
	"strings"

	"github.com/leadscope/lead-cli/internal/model"
)

// maxBioExcerptLen bounds the bio excerpt carried into the triage prompt.
const maxBioExcerptLen = 160

// BuildSnapshot reduces a full profile record into the compact,
// stable-shaped summary used as model input for the cheapest stage. Derived
// once per request; the snapshot is a value and is never mutated.
func BuildSnapshot(p model.Profile) model.ProfileSnapshot {
	snap := model.ProfileSnapshot{
		Username:        p.Username,
		FollowerCount:   p.FollowerCount,
		Verified:        p.Verified,
		Private:         p.Private,
		BioExcerpt:      excerpt(p.Bio, maxBioExcerptLen),
		LinkDomains:     linkDomains(p),
		RecentPostCount: len(p.Posts),
		Engagement:      p.Engagement,
	}

	// No post detail available: fall back to the profile's own post count.
	if len(p.Posts) == 0 {
		snap.RecentPostCount = p.PostCount
	}

	return snap
}

// excerpt truncates s to at most n runes, appending an ellipsis when cut.
func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// linkDomains extracts the registered hosts of the profile's external links,
// deduplicated and stripped of a leading www.
func linkDomains(p model.Profile) []string {
	seen := make(map[string]bool)
	var domains []string

	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return
		}
		host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))
		if host == "" || seen[host] {
			return
		}
		seen[host] = true
		domains = append(domains, host)
	}

	add(p.ExternalURL)
	for _, f := range strings.Fields(p.Bio) {
		if strings.HasPrefix(f, "http://") || strings.HasPrefix(f, "https://") {
			add(f)
		}
	}

	return domains
}
