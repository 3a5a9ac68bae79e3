// Package store persists seeded listings and the locations they belong to.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/sells-group/seed-cli/internal/model"
)

// Store is the listing persistence used by ingestion and enrichment.
type Store interface {
	// ListSeededContacts pages through every seeded listing, claimed or
	// not, ordered by id.
	ListSeededContacts(ctx context.Context, offset, limit int) ([]model.SeededContact, error)
	LocationExists(ctx context.Context, id string) (bool, error)
	CreateLocation(ctx context.Context, name string) (string, error)

	// InsertListings writes one batch atomically and returns the row count.
	InsertListings(ctx context.Context, listings []model.Listing) (int, error)

	// UpdateWebsiteIfUnclaimed sets the contact website only while the
	// listing is still seeded, unclaimed, active and without a website.
	// It reports whether a row changed.
	UpdateWebsiteIfUnclaimed(ctx context.Context, id, website string) (bool, error)
	ListUnclaimedSeeded(ctx context.Context, locationID string) ([]model.EnrichmentCandidate, error)

	Migrate(ctx context.Context) error
	Close() error
}

// listingColumns is the insert column order shared by both backends.
var listingColumns = []string{
	"id", "location_id", "title", "description", "is_active", "is_seeded",
	"seed_source_url", "seed_source_label",
	"seed_contact_email", "seed_contact_website", "seed_contact_handle",
}

// listingRows converts a batch to insert rows, assigning a UUID to any
// listing without an id.
func listingRows(listings []model.Listing) [][]any {
	rows := make([][]any, len(listings))
	for i, l := range listings {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		rows[i] = listingRow(l)
	}
	return rows
}

func listingRow(l model.Listing) []any {
	return []any{
		l.ID, l.LocationID, l.Title, nullable(l.Description), l.IsActive, l.IsSeeded,
		l.SourceURL, l.SourceLabel,
		nullable(l.Email), nullable(l.Website), nullable(l.Handle),
	}
}

// nullable maps "" to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
