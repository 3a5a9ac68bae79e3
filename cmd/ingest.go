package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/seed-cli/internal/csvtable"
	"github.com/sells-group/seed-cli/internal/ingest"
)

type ingestFlags struct {
	csvPath     string
	locationID  string
	sourceLabel string
	limit       int
	dryRun      bool
}

var ingestOpts ingestFlags

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Import seeded listings from a CSV or XLSX export",
	Long:  "Reads a listing export, skips invalid rows and businesses already seeded, and inserts the rest in batches.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "init store")
		}
		defer st.Close() //nolint:errcheck

		return runIngest(ctx, st, ingestOpts, os.Stdout)
	},
}

func runIngest(ctx context.Context, st ingest.Store, f ingestFlags, w io.Writer) error {
	tbl, err := csvtable.ReadFile(f.csvPath)
	if err != nil {
		return eris.Wrap(err, "read input")
	}

	label := f.sourceLabel
	if label == "" {
		label = cfg.Ingest.SourceLabel
	}

	p := ingest.New(st, ingest.Config{
		BatchSize:  cfg.Ingest.BatchSize,
		PageSize:   cfg.Ingest.PageSize,
		SampleSize: cfg.Ingest.SampleSize,
	})
	sum, err := p.Run(ctx, tbl, nil, ingest.RunOptions{
		Options: ingest.Options{
			LocationID:  f.locationID,
			SourceLabel: label,
			Limit:       f.limit,
		},
		DryRun: f.dryRun,
	})
	if err != nil {
		// An interrupted run still reports what it wrote.
		if sum != nil {
			_ = sum.Write(w, f.csvPath)
		}
		return eris.Wrap(err, "ingest")
	}

	zap.L().Info("ingest complete",
		zap.String("csv", f.csvPath),
		zap.Int("inserted", sum.Inserted),
		zap.Bool("dry_run", sum.DryRun),
	)
	return sum.Write(w, f.csvPath)
}

func init() {
	flags := ingestCmd.Flags()
	flags.StringVar(&ingestOpts.csvPath, "csv", "", "path to CSV or XLSX export (required)")
	flags.StringVar(&ingestOpts.csvPath, "file", "", "alias for --csv")
	_ = flags.MarkHidden("file")
	flags.StringVar(&ingestOpts.locationID, "location-id", "", "override location_id for every row")
	flags.StringVar(&ingestOpts.sourceLabel, "source-label", "", "label for rows without seed_source_label (default from ingest.source_label)")
	flags.IntVar(&ingestOpts.limit, "limit", 0, "stop after this many accepted rows (0 = no limit)")
	flags.BoolVar(&ingestOpts.dryRun, "dry-run", false, "plan without writing")
	ingestCmd.MarkFlagsOneRequired("csv", "file")
	rootCmd.AddCommand(ingestCmd)
}
