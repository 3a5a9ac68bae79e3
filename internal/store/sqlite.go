package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/seed-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It backs local
// dry runs and offline seeding against a file instead of a shared database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS locations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS listings (
	id                   TEXT PRIMARY KEY,
	profile_id           TEXT,
	location_id          TEXT NOT NULL REFERENCES locations(id),
	title                TEXT NOT NULL,
	description          TEXT,
	services             TEXT NOT NULL DEFAULT '{}',
	rates                TEXT NOT NULL DEFAULT '{}',
	is_active            INTEGER NOT NULL DEFAULT 1,
	is_seeded            INTEGER NOT NULL DEFAULT 0,
	seed_source_url      TEXT,
	seed_source_label    TEXT,
	seed_contact_email   TEXT,
	seed_contact_website TEXT,
	seed_contact_handle  TEXT,
	created_at           DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at           DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_listings_seeded ON listings(is_seeded);
CREATE INDEX IF NOT EXISTS idx_listings_location ON listings(location_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListSeededContacts(ctx context.Context, offset, limit int) ([]model.SeededContact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, COALESCE(seed_source_url, ''), COALESCE(seed_contact_website, ''), COALESCE(seed_contact_handle, ''), COALESCE(seed_contact_email, '')
		FROM listings WHERE is_seeded = 1 ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list seeded listings offset %d", offset)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.SeededContact
	for rows.Next() {
		var c model.SeededContact
		if err := rows.Scan(&c.ID, &c.Title, &c.SourceURL, &c.Website, &c.Handle, &c.Email); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan seeded listing")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list seeded listings iterate")
}

func (s *SQLiteStore) LocationExists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM locations WHERE id = ?)`, id).Scan(&ok)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: check location %s", id)
	}
	return ok, nil
}

func (s *SQLiteStore) CreateLocation(ctx context.Context, name string) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO locations (id, name) VALUES (?, ?)`, id, name); err != nil {
		return "", eris.Wrapf(err, "sqlite: create location %q", name)
	}
	return id, nil
}

func (s *SQLiteStore) InsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin insert listings")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO listings (id, location_id, title, description, is_active, is_seeded,
			seed_source_url, seed_source_label, seed_contact_email, seed_contact_website, seed_contact_handle)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert listing")
	}
	defer stmt.Close() //nolint:errcheck

	for _, row := range listingRows(listings) {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert listing %v", row[0])
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit insert listings")
	}
	return len(listings), nil
}

func (s *SQLiteStore) UpdateWebsiteIfUnclaimed(ctx context.Context, id, website string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE listings SET seed_contact_website = ?, updated_at = datetime('now')
		WHERE id = ? AND profile_id IS NULL AND is_seeded = 1 AND is_active = 1 AND COALESCE(seed_contact_website, '') = ''`,
		website, id,
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: update website %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListUnclaimedSeeded(ctx context.Context, locationID string) ([]model.EnrichmentCandidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, location_id, COALESCE(seed_source_url, ''), COALESCE(seed_contact_website, '')
		FROM listings
		WHERE location_id = ? AND profile_id IS NULL AND is_seeded = 1 AND is_active = 1
		ORDER BY created_at, rowid`,
		locationID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list unclaimed seeded listings for %s", locationID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.EnrichmentCandidate
	for rows.Next() {
		var c model.EnrichmentCandidate
		if err := rows.Scan(&c.ID, &c.Title, &c.LocationID, &c.SourceURL, &c.Website); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan unclaimed listing")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list unclaimed iterate")
}
