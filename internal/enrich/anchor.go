// Package enrich discovers a website for seeded listings that lack one by
// reading each listing's source page and picking its most likely outbound
// link.
package enrich

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/seed-cli/internal/contact"
)

// anchorRe matches an opening <a> tag with a quoted href, capturing the
// attributes before href, the double- or single-quoted value, and the
// attributes after it. Quoted values never span a line break.
var anchorRe = regexp.MustCompile(`(?i)<a\b([^>]*?)href=(?:"([^"\r\n]*)"|'([^'\r\n]*)')([^>]*)>`)

// Score weights for markers found in an anchor's attribute text.
const (
	scoreVisitWebsite = 100
	scoreAnalytics    = 50
	scoreWebsiteWord  = 30
)

// Anchor is an outbound link that survived filtering, with its score.
type Anchor struct {
	URL   string
	Score int
}

// ScoreAnchors returns every candidate outbound link in markup, highest
// score first, ties in document order. Links that do not normalize, point
// back to the source page's root domain, or land on a blocked domain are
// dropped.
func ScoreAnchors(markup, sourceURL string) []Anchor {
	sourceRoot := contact.RootDomain(sourceURL)

	var anchors []Anchor
	for _, m := range anchorRe.FindAllStringSubmatch(markup, -1) {
		href := m[2]
		if href == "" {
			href = m[3]
		}
		normalized := contact.NormalizeURL(href)
		if normalized == "" {
			continue
		}
		root := contact.RootDomain(normalized)
		if root == "" || (sourceRoot != "" && root == sourceRoot) {
			continue
		}
		if contact.IsBlockedDomain(normalized) {
			continue
		}
		anchors = append(anchors, Anchor{URL: normalized, Score: scoreAttrs(m[1] + " " + m[4])})
	}

	sort.SliceStable(anchors, func(i, j int) bool {
		return anchors[i].Score > anchors[j].Score
	})
	return anchors
}

func scoreAttrs(attrs string) int {
	attrs = strings.ToLower(attrs)
	score := 0
	if strings.Contains(attrs, "visit website") {
		score += scoreVisitWebsite
	}
	if strings.Contains(attrs, "provider-analytics-event") {
		score += scoreAnalytics
	}
	if strings.Contains(attrs, "website") {
		score += scoreWebsiteWord
	}
	return score
}

// PickWebsite returns the best outbound link in markup, or "" when none
// survives filtering. It is a heuristic: the result pre-fills a field the
// listing owner can correct.
func PickWebsite(markup, sourceURL string) string {
	anchors := ScoreAnchors(markup, sourceURL)
	if len(anchors) == 0 {
		return ""
	}
	return anchors[0].URL
}
