package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seed-cli/internal/fetcher"
	"github.com/sells-group/seed-cli/internal/model"
	"github.com/sells-group/seed-cli/internal/resilience"
)

// DefaultSampleSize is how many updates a dry run prints.
const DefaultSampleSize = 5

// Store is the listing persistence enrichment needs.
type Store interface {
	Updater
	ListUnclaimedSeeded(ctx context.Context, locationID string) ([]model.EnrichmentCandidate, error)
}

// Options are the per-invocation inputs.
type Options struct {
	LocationID string
	Limit      int
	DryRun     bool
}

// Enricher selects a location's listings without a website, crawls their
// source pages and writes what it finds.
type Enricher struct {
	store   Store
	crawler *Crawler
}

// New returns an Enricher reading and writing st and fetching with f.
func New(st Store, f fetcher.Fetcher, cfg CrawlerConfig) *Enricher {
	return &Enricher{store: st, crawler: NewCrawler(f, cfg)}
}

// Run enriches one location. Fetch failures and skipped or failed updates
// are counted in the summary. Only the candidate read and cancellation
// return an error.
func (e *Enricher) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.LocationID == "" {
		return nil, eris.New("enrich: location id is required")
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("store", "list_unclaimed_seeded")
	listings, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) ([]model.EnrichmentCandidate, error) {
		return e.store.ListUnclaimedSeeded(ctx, opts.LocationID)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: load candidates for %s", opts.LocationID)
	}

	sel := SelectCandidates(listings, opts.Limit)
	zap.L().Info("enrich: candidates selected",
		zap.String("location_id", opts.LocationID),
		zap.Int("seeded_unclaimed_active", sel.Listed),
		zap.Int("missing_website", sel.MissingWebsite),
		zap.Int("processing", len(sel.Work)),
	)

	outcomes := e.crawler.Run(ctx, sel.Work)
	updates, failures := Partition(outcomes)

	sum := &Summary{
		Listed:         sel.Listed,
		MissingWebsite: sel.MissingWebsite,
		Processing:     len(sel.Work),
		Updates:        updates,
		Failures:       failures,
		DryRun:         opts.DryRun,
	}
	if opts.DryRun {
		return sum, nil
	}

	res, err := Apply(ctx, e.store, updates)
	sum.Apply = res
	if err != nil {
		return sum, err
	}

	zap.L().Info("enrich: run complete",
		zap.Int("websites_found", len(updates)),
		zap.Int("updates_applied", res.Applied),
		zap.Int("updates_skipped", res.Skipped),
		zap.Int("update_errors", res.Errors),
		zap.Int("failures", len(failures)),
	)
	return sum, nil
}
