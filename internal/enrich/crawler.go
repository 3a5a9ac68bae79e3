package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/seed-cli/internal/fetcher"
	"github.com/sells-group/seed-cli/internal/model"
)

// Failure reasons recorded on an Outcome.
const (
	ReasonTimeout         = "timeout"
	ReasonFetchFailed     = "fetch_failed"
	ReasonCancelled       = "cancelled"
	ReasonNoCandidateLink = "no_candidate_link"
)

// Defaults for CrawlerConfig.
const (
	DefaultConcurrency = 5
	DefaultTimeout     = 20 * time.Second
)

// httpReason is the failure reason for a non-2xx response.
func httpReason(status int) string {
	return fmt.Sprintf("http_%d", status)
}

// Outcome is the terminal result for one candidate: a discovered Website or
// a failure Reason, never both.
type Outcome struct {
	Candidate model.EnrichmentCandidate
	Website   string
	Reason    string
}

// Updated reports whether a website was found.
func (o Outcome) Updated() bool {
	return o.Website != ""
}

// CrawlerConfig sizes the worker pool.
type CrawlerConfig struct {
	Concurrency int
	Timeout     time.Duration
}

// Crawler fetches each candidate's source page once and picks a website
// from it.
type Crawler struct {
	fetch fetcher.Fetcher
	cfg   CrawlerConfig
}

// NewCrawler returns a Crawler using f for page fetches.
func NewCrawler(f fetcher.Fetcher, cfg CrawlerConfig) *Crawler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Crawler{fetch: f, cfg: cfg}
}

// Run processes every candidate exactly once with up to Concurrency workers
// draining a shared queue. Outcomes are returned in candidate order. A
// failed or timed-out fetch affects only its own candidate. Once ctx is
// done, candidates still queued are marked cancelled.
func (c *Crawler) Run(ctx context.Context, candidates []model.EnrichmentCandidate) []Outcome {
	if len(candidates) == 0 {
		return nil
	}

	queue := make(chan int, len(candidates))
	for i := range candidates {
		queue <- i
	}
	close(queue)

	workers := min(c.cfg.Concurrency, len(candidates))
	outcomes := make([]Outcome, len(candidates))
	var done atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for range workers {
		g.Go(func() error {
			for i := range queue {
				cand := candidates[i]
				if ctx.Err() != nil {
					outcomes[i] = Outcome{Candidate: cand, Reason: ReasonCancelled}
					continue
				}
				outcomes[i] = c.process(ctx, cand)
				if n := done.Add(1); n%50 == 0 {
					zap.L().Info("enrich: progress", zap.Int64("processed", n), zap.Int("total", len(candidates)))
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (c *Crawler) process(ctx context.Context, cand model.EnrichmentCandidate) Outcome {
	out := Outcome{Candidate: cand}

	page, err := c.fetch.FetchText(ctx, cand.SourceURL, c.cfg.Timeout)
	if err != nil {
		switch {
		case errors.Is(err, fetcher.ErrTimeout):
			out.Reason = ReasonTimeout
		case ctx.Err() != nil:
			out.Reason = ReasonCancelled
		default:
			out.Reason = ReasonFetchFailed
		}
		zap.L().Debug("enrich: fetch failed",
			zap.String("listing_id", cand.ID),
			zap.String("source", cand.SourceURL),
			zap.String("reason", out.Reason),
			zap.Error(err),
		)
		return out
	}
	if !page.OK() {
		out.Reason = httpReason(page.Status)
		return out
	}

	out.Website = PickWebsite(page.Body, cand.SourceURL)
	if out.Website == "" {
		out.Reason = ReasonNoCandidateLink
	}
	return out
}

// Partition splits outcomes into updates and failures.
func Partition(outcomes []Outcome) (updates, failures []Outcome) {
	for _, o := range outcomes {
		if o.Updated() {
			updates = append(updates, o)
		} else {
			failures = append(failures, o)
		}
	}
	return updates, failures
}
