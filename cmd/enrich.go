package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/seed-cli/internal/enrich"
	"github.com/sells-group/seed-cli/internal/fetcher"
)

type enrichFlags struct {
	locationID  string
	limit       int
	concurrency int
	dryRun      bool
}

var enrichOpts enrichFlags

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Discover missing websites for seeded listings",
	Long:  "Fetches the source page of every unclaimed seeded listing in a location that has no website and saves the most likely outbound link.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if !cmd.Flags().Changed("concurrency") {
			enrichOpts.concurrency = cfg.Enrich.Concurrency
		}

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "init store")
		}
		defer st.Close() //nolint:errcheck

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:    cfg.Enrich.UserAgent,
			MaxBodyBytes: cfg.Enrich.MaxBodyBytes,
			RatePerHost:  cfg.Enrich.RatePerHost,
		})
		return runEnrich(ctx, st, f, enrichOpts, os.Stdout)
	},
}

func runEnrich(ctx context.Context, st enrich.Store, f fetcher.Fetcher, fl enrichFlags, w io.Writer) error {
	e := enrich.New(st, f, enrich.CrawlerConfig{
		Concurrency: fl.concurrency,
		Timeout:     time.Duration(cfg.Enrich.TimeoutSecs) * time.Second,
	})
	sum, err := e.Run(ctx, enrich.Options{
		LocationID: fl.locationID,
		Limit:      fl.limit,
		DryRun:     fl.dryRun,
	})
	if err != nil {
		return eris.Wrap(err, "enrich")
	}

	sampleSize := cfg.Enrich.SampleSize
	if sampleSize <= 0 {
		sampleSize = enrich.DefaultSampleSize
	}
	return sum.Write(w, sampleSize)
}

func init() {
	flags := enrichCmd.Flags()
	flags.StringVar(&enrichOpts.locationID, "location-id", "", "location to enrich (required)")
	flags.IntVar(&enrichOpts.limit, "limit", 0, "process at most this many listings (0 = no limit)")
	flags.IntVar(&enrichOpts.concurrency, "concurrency", enrich.DefaultConcurrency, "concurrent page fetches (default from enrich.concurrency)")
	flags.BoolVar(&enrichOpts.dryRun, "dry-run", false, "report would-be updates without writing")
	_ = enrichCmd.MarkFlagRequired("location-id")
	rootCmd.AddCommand(enrichCmd)
}
