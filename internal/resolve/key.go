// Package resolve derives canonical identity keys for listing candidates and
// tracks which keys a run has already seen.
package resolve

import (
	"github.com/sells-group/seed-cli/internal/contact"
	"github.com/sells-group/seed-cli/internal/model"
)

// KeyKind tags which contact field produced a Key.
type KeyKind string

// Key kinds in priority order.
const (
	KindWebsite  KeyKind = "website"
	KindHandle   KeyKind = "handle"
	KindEmail    KeyKind = "email"
	KindFallback KeyKind = "fallback"
)

// Key is the canonical identity of a listing candidate. Two candidates are
// duplicates iff their keys are equal.
type Key struct {
	Kind  KeyKind
	Value string
}

// String renders the key as "kind:value".
func (k Key) String() string {
	if k.Kind == "" {
		return ""
	}
	return string(k.Kind) + ":" + k.Value
}

// IsZero reports whether the key carries no identity. A fallback key built
// from an empty title and empty source is treated as zero.
func (k Key) IsZero() bool {
	return k.Kind == "" || (k.Kind == KindFallback && k.Value == "|")
}

// BuildKey returns the canonical key for f. The first available field wins,
// in order website root domain, handle, email; otherwise the key falls back to
// the normalized title joined with the normalized source.
func BuildKey(f model.ContactFields) Key {
	if domain := contact.RootDomain(f.Website); domain != "" {
		return Key{Kind: KindWebsite, Value: domain}
	}
	if handle := contact.NormalizeHandle(f.Handle); handle != "" {
		return Key{Kind: KindHandle, Value: handle}
	}
	if email := contact.NormalizeEmail(f.Email); email != "" {
		return Key{Kind: KindEmail, Value: email}
	}

	source := contact.NormalizeURL(f.SourceURL)
	if source == "" {
		source = contact.NormalizeTitle(f.SourceURL)
	}
	return Key{Kind: KindFallback, Value: contact.NormalizeTitle(f.Title) + "|" + source}
}
