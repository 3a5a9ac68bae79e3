package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/seed-cli/internal/db"
	"github.com/sells-group/seed-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `mapstructure:"max_conns"`
	MinConns int32 `mapstructure:"min_conns"`
}

const (
	listSeededSQL = `SELECT id, title, COALESCE(seed_source_url, ''), COALESCE(seed_contact_website, ''), COALESCE(seed_contact_handle, ''), COALESCE(seed_contact_email, '') FROM listings WHERE is_seeded ORDER BY id LIMIT $1 OFFSET $2`

	locationExistsSQL = `SELECT EXISTS (SELECT 1 FROM locations WHERE id = $1)`

	updateWebsiteSQL = `UPDATE listings SET seed_contact_website = $1, updated_at = now() WHERE id = $2 AND profile_id IS NULL AND is_seeded AND is_active AND COALESCE(seed_contact_website, '') = ''`

	listUnclaimedSQL = `SELECT id, title, location_id, COALESCE(seed_source_url, ''), COALESCE(seed_contact_website, '') FROM listings WHERE location_id = $1 AND profile_id IS NULL AND is_seeded AND is_active ORDER BY created_at, id`
)

// preparedStatements are prepared on every new connection. The compare-and-set
// update runs once per discovered website, so it benefits most.
var preparedStatements = map[string]string{
	"list_seeded":     listSeededSQL,
	"location_exists": locationExistsSQL,
	"update_website":  updateWebsiteSQL,
	"list_unclaimed":  listUnclaimedSQL,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				// The schema may not exist yet when the pool backs migrate.
				if isUndefinedTable(err) {
					return nil
				}
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS locations (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS listings (
	id                   TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	profile_id           TEXT,
	location_id          TEXT NOT NULL REFERENCES locations(id),
	title                TEXT NOT NULL,
	description          TEXT,
	services             JSONB NOT NULL DEFAULT '{}',
	rates                JSONB NOT NULL DEFAULT '{}',
	is_active            BOOLEAN NOT NULL DEFAULT true,
	is_seeded            BOOLEAN NOT NULL DEFAULT false,
	seed_source_url      TEXT,
	seed_source_label    TEXT,
	seed_contact_email   TEXT,
	seed_contact_website TEXT,
	seed_contact_handle  TEXT,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_listings_seeded ON listings(id) WHERE is_seeded;
CREATE INDEX IF NOT EXISTS idx_listings_unclaimed_seeded ON listings(location_id, created_at)
	WHERE profile_id IS NULL AND is_seeded AND is_active;
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) ListSeededContacts(ctx context.Context, offset, limit int) ([]model.SeededContact, error) {
	rows, err := s.pool.Query(ctx, listSeededSQL, limit, offset)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list seeded listings offset %d", offset)
	}
	defer rows.Close()

	var out []model.SeededContact
	for rows.Next() {
		var c model.SeededContact
		if err := rows.Scan(&c.ID, &c.Title, &c.SourceURL, &c.Website, &c.Handle, &c.Email); err != nil {
			return nil, eris.Wrap(err, "postgres: scan seeded listing")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list seeded listings iterate")
}

func (s *PostgresStore) LocationExists(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := s.pool.QueryRow(ctx, locationExistsSQL, id).Scan(&ok); err != nil {
		return false, eris.Wrapf(err, "postgres: check location %s", id)
	}
	return ok, nil
}

func (s *PostgresStore) CreateLocation(ctx context.Context, name string) (string, error) {
	id := uuid.NewString()
	if _, err := s.pool.Exec(ctx, `INSERT INTO locations (id, name) VALUES ($1, $2)`, id, name); err != nil {
		return "", eris.Wrapf(err, "postgres: create location %q", name)
	}
	return id, nil
}

func (s *PostgresStore) InsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	n, err := db.CopyInTx(ctx, s.pool, "listings", listingColumns, listingRows(listings))
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert listings")
	}
	return int(n), nil
}

func (s *PostgresStore) UpdateWebsiteIfUnclaimed(ctx context.Context, id, website string) (bool, error) {
	tag, err := s.pool.Exec(ctx, updateWebsiteSQL, website, id)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: update website %s", id)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ListUnclaimedSeeded(ctx context.Context, locationID string) ([]model.EnrichmentCandidate, error) {
	rows, err := s.pool.Query(ctx, listUnclaimedSQL, locationID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list unclaimed seeded listings for %s", locationID)
	}
	defer rows.Close()

	var out []model.EnrichmentCandidate
	for rows.Next() {
		var c model.EnrichmentCandidate
		if err := rows.Scan(&c.ID, &c.Title, &c.LocationID, &c.SourceURL, &c.Website); err != nil {
			return nil, eris.Wrap(err, "postgres: scan unclaimed listing")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list unclaimed iterate")
}
