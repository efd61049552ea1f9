package oracle

import (
	"net/url"
	"sort"
	"strings"

	"github.com/bot80-alt/certa/internal/model"
)

// Tier is the authority classification of an evidence source
type Tier int

const (
	TierUnknown   Tier = 0 // not yet classified
	TierPrimary   Tier = 1 // government, intergovernmental, academic
	TierSecondary Tier = 2 // encyclopedias, wire services, fact-checkers
	TierTertiary  Tier = 3 // everything else
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// AuthorityRanker classifies evidence hosts into tiers
type AuthorityRanker struct {
	domainMap map[string]Tier
	primary   []string
	secondary []string
}

// NewAuthorityRanker creates a ranker from configuration
func NewAuthorityRanker(cfg model.AuthorityConfig) *AuthorityRanker {
	r := &AuthorityRanker{domainMap: make(map[string]Tier, len(cfg.DomainMap))}
	for host, tier := range cfg.DomainMap {
		r.domainMap[strings.ToLower(host)] = parseTier(tier)
	}
	for _, d := range cfg.PrimaryDomains {
		r.primary = append(r.primary, strings.ToLower(strings.Trim(d, ".")))
	}
	for _, d := range cfg.SecondaryDomains {
		r.secondary = append(r.secondary, strings.ToLower(strings.Trim(d, ".")))
	}
	return r
}

// Classify returns the tier of rawURL's host
func (r *AuthorityRanker) Classify(rawURL string) Tier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return TierTertiary
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	if tier, ok := r.domainMap[host]; ok {
		return tier
	}
	if matchesDomain(host, r.primary) {
		return TierPrimary
	}
	if matchesDomain(host, r.secondary) {
		return TierSecondary
	}
	return TierTertiary
}

// Rank tags each item with its tier and orders the slice from most to least
// authoritative, keeping search order within a tier
func (r *AuthorityRanker) Rank(evidence []Evidence) []Evidence {
	ranked := make([]Evidence, len(evidence))
	for i, e := range evidence {
		e.Tier = r.Classify(e.URL)
		ranked[i] = e
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Tier < ranked[j].Tier })
	return ranked
}

// matchesDomain reports whether host is one of domains or a subdomain of one
func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func parseTier(tier string) Tier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return TierPrimary
	case "secondary", "2":
		return TierSecondary
	default:
		return TierTertiary
	}
}
