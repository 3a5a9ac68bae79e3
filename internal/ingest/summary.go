package ingest

import (
	"fmt"
	"io"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/seed-cli/internal/model"
)

// Summary reports what a run did.
type Summary struct {
	Rows              int
	Accepted          int
	Inserted          int
	SkippedDuplicates int
	SkippedInvalid    int
	BatchesFailed     int
	InvalidReasons    map[string]int
	DryRun            bool
	// Samples holds the first few accepted listings of a dry run.
	Samples []model.Listing
}

// Write prints the summary as key=value lines, one fact per line.
func (s *Summary) Write(w io.Writer, csvPath string) error {
	lines := []string{
		"csv=" + csvPath,
		fmt.Sprintf("rows=%d", s.Rows),
		fmt.Sprintf("accepted=%d", s.Accepted),
	}
	if s.DryRun {
		lines = append(lines, "dry_run=true")
	} else {
		lines = append(lines,
			fmt.Sprintf("inserted=%d", s.Inserted),
			fmt.Sprintf("batches_failed=%d", s.BatchesFailed),
		)
	}
	lines = append(lines,
		fmt.Sprintf("skipped_duplicates=%d", s.SkippedDuplicates),
		fmt.Sprintf("skipped_invalid=%d", s.SkippedInvalid),
	)

	reasons := make([]string, 0, len(s.InvalidReasons))
	for r := range s.InvalidReasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		lines = append(lines, fmt.Sprintf("skipped_invalid_%s=%d", r, s.InvalidReasons[r]))
	}

	for _, l := range s.Samples {
		lines = append(lines, fmt.Sprintf("sample_insert title=%q location_id=%s source=%s website=%s handle=%s email=%s",
			l.Title, l.LocationID, l.SourceURL, l.Website, l.Handle, l.Email))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return eris.Wrap(err, "ingest: write summary")
		}
	}
	return nil
}
