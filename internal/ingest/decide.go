// Package ingest turns a parsed listing export into seeded listing inserts,
// skipping invalid rows and businesses the directory already has.
package ingest

import (
	"strings"

	"github.com/sells-group/seed-cli/internal/contact"
	"github.com/sells-group/seed-cli/internal/csvtable"
	"github.com/sells-group/seed-cli/internal/model"
	"github.com/sells-group/seed-cli/internal/resolve"
)

// Kind classifies what happens to one CSV row.
type Kind string

const (
	KindInsert        Kind = "insert"
	KindSkipDuplicate Kind = "skip_duplicate"
	KindSkipInvalid   Kind = "skip_invalid"
)

// Reasons a row is rejected as invalid.
const (
	ReasonMissingTitle       = "missing_title"
	ReasonInvalidSourceURL   = "invalid_source_url"
	ReasonMissingLocation    = "missing_location"
	ReasonNoReachableContact = "no_reachable_contact"
)

// Column aliases accepted for each field, in lookup order. Header keys are
// already normalized by csvtable.
var (
	colTitle       = []string{"title"}
	colSourceURL   = []string{"seed_source_url", "source_url", "source"}
	colEmail       = []string{"seed_contact_email", "email", "contact_email"}
	colWebsite     = []string{"seed_contact_website", "website", "contact_website"}
	colHandle      = []string{"seed_contact_handle", "handle", "contact_handle"}
	colLocation    = []string{"location_id"}
	colSourceLabel = []string{"seed_source_label", "source_label"}
	colDescription = []string{"description"}
)

// Decision is the outcome for one row. Listing is set for inserts, Key for
// inserts and duplicates, Reason for invalid rows.
type Decision struct {
	Kind    Kind
	Line    int
	Listing model.Listing
	Key     resolve.Key
	Reason  string
}

// Options are the per-run inputs that shape decisions.
type Options struct {
	// LocationID overrides every row's location_id when set.
	LocationID string
	// SourceLabel applies to rows without their own label.
	SourceLabel string
	// Limit stops planning once this many inserts are accepted. Zero means
	// no limit.
	Limit int
}

// Decide classifies one record against idx. An accepted record's key is
// added to idx before returning so later rows in the same file see it.
func Decide(rec csvtable.Record, idx *resolve.Index, opts Options) Decision {
	d := Decision{Line: rec.Line}

	title := strings.TrimSpace(rec.Get(colTitle...))
	sourceURL := contact.NormalizeURL(rec.Get(colSourceURL...))
	email := contact.NormalizeEmail(rec.Get(colEmail...))
	website := contact.NormalizeURL(rec.Get(colWebsite...))
	handle := contact.NormalizeHandle(rec.Get(colHandle...))

	locationID := strings.TrimSpace(opts.LocationID)
	if locationID == "" {
		locationID = strings.TrimSpace(rec.Get(colLocation...))
	}

	defaultLabel := strings.TrimSpace(opts.SourceLabel)
	if defaultLabel == "" {
		defaultLabel = model.DefaultSourceLabel
	}
	label := strings.TrimSpace(rec.Get(colSourceLabel...))
	if label == "" {
		label = defaultLabel
	}

	switch {
	case title == "":
		d.Kind, d.Reason = KindSkipInvalid, ReasonMissingTitle
		return d
	case sourceURL == "":
		d.Kind, d.Reason = KindSkipInvalid, ReasonInvalidSourceURL
		return d
	case locationID == "":
		d.Kind, d.Reason = KindSkipInvalid, ReasonMissingLocation
		return d
	case email == "" && website == "" && handle == "":
		d.Kind, d.Reason = KindSkipInvalid, ReasonNoReachableContact
		return d
	}

	d.Key = resolve.BuildKey(model.ContactFields{
		Title:     title,
		SourceURL: sourceURL,
		Website:   website,
		Handle:    handle,
		Email:     email,
	})
	if !idx.Add(d.Key) {
		d.Kind = KindSkipDuplicate
		return d
	}

	d.Kind = KindInsert
	d.Listing = model.Listing{
		LocationID:  locationID,
		Title:       title,
		Description: strings.TrimSpace(rec.Get(colDescription...)),
		IsActive:    true,
		IsSeeded:    true,
		SourceURL:   sourceURL,
		SourceLabel: label,
		Email:       email,
		Website:     website,
	}
	if handle != "" {
		d.Listing.Handle = "@" + handle
	}
	return d
}

// Result is the full set of decisions for a table.
type Result struct {
	Decisions  []Decision
	Accepted   []model.Listing
	Duplicates int
	Invalid    int
	// InvalidReasons counts invalid rows by reason.
	InvalidReasons map[string]int
}

// Rows is the number of rows examined, which is less than the table size
// when a limit stopped planning early.
func (r *Result) Rows() int {
	return len(r.Decisions)
}

// Plan decides every record in order, stopping once opts.Limit inserts are
// accepted. Rows are processed strictly sequentially: each accepted key must
// be in idx before the next row is checked.
func Plan(tbl *csvtable.Table, idx *resolve.Index, opts Options) *Result {
	res := &Result{InvalidReasons: make(map[string]int)}
	for _, rec := range tbl.Records {
		if opts.Limit > 0 && len(res.Accepted) >= opts.Limit {
			break
		}
		d := Decide(rec, idx, opts)
		res.Decisions = append(res.Decisions, d)
		switch d.Kind {
		case KindInsert:
			res.Accepted = append(res.Accepted, d.Listing)
		case KindSkipDuplicate:
			res.Duplicates++
		case KindSkipInvalid:
			res.Invalid++
			res.InvalidReasons[d.Reason]++
		}
	}
	return res
}
