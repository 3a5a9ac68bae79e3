// Package contact normalizes scraped contact fields (URLs, emails, social
// handles, titles) into comparable forms. Every function is total: invalid
// input yields the empty string instead of an error.
package contact

import (
	"net/url"
	"regexp"
	"strings"
)

// entityReplacements is applied in order; &amp; goes first so that
// double-encoded entities decode one level further.
var entityReplacements = [][2]string{
	{"&amp;", "&"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&#x27;", "'"},
	{"&lt;", "<"},
	{"&gt;", ">"},
}

var (
	schemeRe   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// DecodeEntities replaces the handful of HTML entities commonly found in
// scraped href attributes.
func DecodeEntities(s string) string {
	for _, r := range entityReplacements {
		s = strings.ReplaceAll(s, r[0], r[1])
	}
	return s
}

// NormalizeURL returns an absolute http(s) URL with a dotted hostname, or ""
// when raw cannot be interpreted as one. Relative references and mailto:/tel:
// links are rejected; bare hosts get an https:// prefix.
func NormalizeURL(raw string) string {
	s := DecodeEntities(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "?") || strings.HasPrefix(s, "#") {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return ""
	}
	if !schemeRe.MatchString(s) {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || !strings.Contains(host, ".") {
		return ""
	}
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" && u.RawPath == "" {
		u.Path = "/"
	}
	return u.String()
}

// Hostname returns the lowercased host of raw without a leading "www.".
func Hostname(raw string) string {
	normalized := NormalizeURL(raw)
	if normalized == "" {
		return ""
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// RootDomain returns the last two labels of the host of raw. Multi-part public
// suffixes are not recognized: "www.example.co.uk" yields "co.uk".
func RootDomain(raw string) string {
	host := Hostname(raw)
	if host == "" {
		return ""
	}
	var parts []string
	for _, p := range strings.Split(host, ".") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return host
	}
	return parts[len(parts)-2] + "." + parts[len(parts)-1]
}

// NormalizeEmail lowercases raw and checks it has the local@domain.tld shape.
func NormalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailRe.MatchString(email) {
		return ""
	}
	return email
}

// NormalizeHandle reduces a social handle or profile URL to a bare lowercase
// handle. For profile URLs the last non-empty path segment is used.
func NormalizeHandle(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		var last string
		for _, seg := range strings.Split(u.Path, "/") {
			if seg = strings.TrimSpace(seg); seg != "" {
				last = seg
			}
		}
		if last == "" {
			return ""
		}
		s = last
	}

	return strings.ToLower(strings.TrimLeft(s, "@"))
}

// NormalizeTitle lowercases s and collapses every run of characters outside
// [a-z0-9] into a single space.
func NormalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(s, " "))
}
