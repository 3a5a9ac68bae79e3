package ingest

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seed-cli/internal/csvtable"
	"github.com/sells-group/seed-cli/internal/model"
	"github.com/sells-group/seed-cli/internal/resilience"
	"github.com/sells-group/seed-cli/internal/resolve"
)

// ErrLocationNotFound is returned when the location override is not a known
// location. No rows are written.
var ErrLocationNotFound = eris.New("ingest: location not found")

// Defaults for Config.
const (
	DefaultBatchSize  = 100
	DefaultSampleSize = 5
)

// Store is the listing persistence the pipeline needs.
type Store interface {
	resolve.ContactSource
	LocationExists(ctx context.Context, id string) (bool, error)
	InsertListings(ctx context.Context, listings []model.Listing) (int, error)
}

// Config sizes the pipeline's store traffic.
type Config struct {
	BatchSize  int
	PageSize   int
	SampleSize int
}

// RunOptions are the per-invocation inputs.
type RunOptions struct {
	Options
	DryRun bool
}

// Pipeline plans a table against the dedup index and writes accepted
// listings in batches.
type Pipeline struct {
	store Store
	cfg   Config
}

// New returns a Pipeline writing to st.
func New(st Store, cfg Config) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = resolve.DefaultPageSize
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = DefaultSampleSize
	}
	return &Pipeline{store: st, cfg: cfg}
}

// Run checks the location override, loads the dedup index when idx is nil,
// plans every row and, unless DryRun, inserts the accepted listings. A failed
// batch is counted and the run continues. Only pre-flight failures and
// cancellation return an error.
func (p *Pipeline) Run(ctx context.Context, tbl *csvtable.Table, idx *resolve.Index, opts RunOptions) (*Summary, error) {
	if opts.LocationID != "" {
		if err := p.checkLocation(ctx, opts.LocationID); err != nil {
			return nil, err
		}
	}

	if idx == nil {
		var err error
		idx, err = resolve.LoadIndex(ctx, p.store, p.cfg.PageSize)
		if err != nil {
			return nil, eris.Wrap(err, "ingest: load dedup index")
		}
	}

	plan := Plan(tbl, idx, opts.Options)
	for _, d := range plan.Decisions {
		switch d.Kind {
		case KindSkipInvalid:
			zap.L().Debug("ingest: invalid row", zap.Int("line", d.Line), zap.String("reason", d.Reason))
		case KindSkipDuplicate:
			zap.L().Debug("ingest: duplicate row", zap.Int("line", d.Line), zap.String("key", d.Key.String()))
		}
	}

	sum := &Summary{
		Rows:              plan.Rows(),
		Accepted:          len(plan.Accepted),
		SkippedDuplicates: plan.Duplicates,
		SkippedInvalid:    plan.Invalid,
		InvalidReasons:    plan.InvalidReasons,
		DryRun:            opts.DryRun,
	}

	if opts.DryRun {
		n := min(p.cfg.SampleSize, len(plan.Accepted))
		sum.Samples = plan.Accepted[:n]
		return sum, nil
	}

	for start := 0; start < len(plan.Accepted); start += p.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return sum, eris.Wrap(err, "ingest: interrupted between batches")
		}
		end := min(start+p.cfg.BatchSize, len(plan.Accepted))
		batch := plan.Accepted[start:end]

		n, err := p.store.InsertListings(ctx, batch)
		if err != nil {
			sum.BatchesFailed++
			zap.L().Error("ingest: insert batch failed",
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			continue
		}
		sum.Inserted += n
	}

	zap.L().Info("ingest: run complete",
		zap.Int("rows", sum.Rows),
		zap.Int("inserted", sum.Inserted),
		zap.Int("skipped_duplicates", sum.SkippedDuplicates),
		zap.Int("skipped_invalid", sum.SkippedInvalid),
		zap.Int("batches_failed", sum.BatchesFailed),
	)
	return sum, nil
}

func (p *Pipeline) checkLocation(ctx context.Context, id string) error {
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("store", "location_exists")

	ok, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (bool, error) {
		return p.store.LocationExists(ctx, id)
	})
	if err != nil {
		return eris.Wrapf(err, "ingest: validate location_id %s", id)
	}
	if !ok {
		return eris.Wrapf(ErrLocationNotFound, "location_id %s", id)
	}
	return nil
}
