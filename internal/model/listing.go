package model

// DefaultSourceLabel labels seeded rows whose CSV row carries no label.
const DefaultSourceLabel = "public_web_seed"

// ContactFields is the bag of identity-bearing fields for one listing
// candidate. Empty strings mean the field is absent.
type ContactFields struct {
	Title     string `json:"title"`
	SourceURL string `json:"source_url"`
	Website   string `json:"website,omitempty"`
	Handle    string `json:"handle,omitempty"`
	Email     string `json:"email,omitempty"`
}

// SeededContact is an existing seeded listing as read for deduplication.
type SeededContact struct {
	ID string `json:"id"`
	ContactFields
}

// Listing is a seeded directory listing ready to be inserted. Seeded
// listings are created unclaimed (no owning profile) and active.
type Listing struct {
	ID          string `json:"id"`
	LocationID  string `json:"location_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsSeeded    bool   `json:"is_seeded"`
	SourceURL   string `json:"seed_source_url"`
	SourceLabel string `json:"seed_source_label"`
	Email       string `json:"seed_contact_email,omitempty"`
	Website     string `json:"seed_contact_website,omitempty"`
	// Handle is stored with a leading "@".
	Handle string `json:"seed_contact_handle,omitempty"`
}

// Contact returns the listing's identity fields.
func (l Listing) Contact() ContactFields {
	return ContactFields{
		Title:     l.Title,
		SourceURL: l.SourceURL,
		Website:   l.Website,
		Handle:    l.Handle,
		Email:     l.Email,
	}
}

// EnrichmentCandidate is a seeded, unclaimed, active listing considered for
// website discovery.
type EnrichmentCandidate struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	LocationID string `json:"location_id"`
	SourceURL  string `json:"seed_source_url"`
	Website    string `json:"seed_contact_website,omitempty"`
}
