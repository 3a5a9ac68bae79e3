package enrich

import (
	"strings"

	"github.com/sells-group/seed-cli/internal/model"
)

// Selection is the work chosen from a location's unclaimed seeded listings.
type Selection struct {
	// Listed is how many unclaimed, seeded, active listings were read.
	Listed int
	// MissingWebsite counts those without a website but with a source URL.
	MissingWebsite int
	// Work is MissingWebsite capped by the limit.
	Work []model.EnrichmentCandidate
}

// SelectCandidates keeps listings that have no website and do have a source
// URL, then applies limit when it is positive.
func SelectCandidates(listings []model.EnrichmentCandidate, limit int) Selection {
	sel := Selection{Listed: len(listings)}
	var missing []model.EnrichmentCandidate
	for _, l := range listings {
		if strings.TrimSpace(l.Website) != "" || strings.TrimSpace(l.SourceURL) == "" {
			continue
		}
		missing = append(missing, l)
	}
	sel.MissingWebsite = len(missing)
	if limit > 0 && len(missing) > limit {
		missing = missing[:limit]
	}
	sel.Work = missing
	return sel
}
