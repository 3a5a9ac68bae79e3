package contact

import "strings"

// blockedDomains are hosts that never count as a business's own website:
// the source platform and its CDN/status pages, social networks, and
// utility domains that show up in page footers.
var blockedDomains = map[string]struct{}{
	"tryst.link":                {},
	"discovery.tryst.a4cdn.org": {},
	"media-v2.tryst.a4cdn.org":  {},
	"assemblyfour.com":          {},
	"tryststatus.link":          {},
	"goodclientguide.com":       {},
	"geonames.org":              {},
	"creativecommons.org":       {},
	"x.com":                     {},
	"twitter.com":               {},
	"instagram.com":             {},
	"facebook.com":              {},
	"tiktok.com":                {},
	"youtube.com":               {},
	"linkedin.com":              {},
	"pinterest.com":             {},
}

// BlockedDomains returns a copy of the blocklist.
func BlockedDomains() []string {
	out := make([]string, 0, len(blockedDomains))
	for d := range blockedDomains {
		out = append(out, d)
	}
	return out
}

// IsBlockedDomain reports whether rawURL has no usable host or its host is,
// or is a subdomain of, a blocklisted domain.
func IsBlockedDomain(rawURL string) bool {
	host := Hostname(rawURL)
	if host == "" {
		return true
	}
	if _, ok := blockedDomains[host]; ok {
		return true
	}
	for d := range blockedDomains {
		if strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
