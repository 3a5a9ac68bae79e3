package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Updater writes a discovered website if the listing is still eligible.
type Updater interface {
	UpdateWebsiteIfUnclaimed(ctx context.Context, id, website string) (bool, error)
}

// ApplyResult counts what happened to each update.
type ApplyResult struct {
	Applied int
	// Skipped rows were claimed, deactivated or given a website after they
	// were read.
	Skipped int
	Errors  int
}

// Apply writes each update independently. A skipped row or a failed write
// is counted and logged; the rest still run. Only cancellation stops early.
func Apply(ctx context.Context, u Updater, updates []Outcome) (ApplyResult, error) {
	var res ApplyResult
	for _, o := range updates {
		if err := ctx.Err(); err != nil {
			return res, eris.Wrap(err, "enrich: apply interrupted")
		}
		applied, err := u.UpdateWebsiteIfUnclaimed(ctx, o.Candidate.ID, o.Website)
		switch {
		case err != nil:
			res.Errors++
			zap.L().Error("enrich: update failed",
				zap.String("listing_id", o.Candidate.ID),
				zap.String("website", o.Website),
				zap.Error(err),
			)
		case !applied:
			res.Skipped++
			zap.L().Info("enrich: update skipped, listing no longer eligible",
				zap.String("listing_id", o.Candidate.ID),
			)
		default:
			res.Applied++
		}
	}
	return res, nil
}
