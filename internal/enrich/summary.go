package enrich

import (
	"fmt"
	"io"
	"sort"

	"github.com/rotisserie/eris"
)

// Summary reports what an enrichment run did.
type Summary struct {
	Listed         int
	MissingWebsite int
	Processing     int
	Updates        []Outcome
	Failures       []Outcome
	Apply          ApplyResult
	DryRun         bool
}

// FailureReasons counts failures by reason.
func (s *Summary) FailureReasons() map[string]int {
	counts := make(map[string]int)
	for _, f := range s.Failures {
		counts[f.Reason]++
	}
	return counts
}

// Write prints the summary as key=value lines. A dry run prints up to
// sampleSize would-be updates.
func (s *Summary) Write(w io.Writer, sampleSize int) error {
	lines := []string{
		fmt.Sprintf("seeded_unclaimed_active=%d", s.Listed),
		fmt.Sprintf("candidates_missing_website=%d", s.MissingWebsite),
		fmt.Sprintf("processing=%d", s.Processing),
	}

	if s.DryRun {
		lines = append(lines,
			fmt.Sprintf("dry_run_updates=%d", len(s.Updates)),
			fmt.Sprintf("dry_run_failures=%d", len(s.Failures)),
		)
		for _, u := range s.Updates[:min(sampleSize, len(s.Updates))] {
			lines = append(lines, fmt.Sprintf("sample_update id=%s website=%s", u.Candidate.ID, u.Website))
		}
	} else {
		lines = append(lines,
			fmt.Sprintf("websites_found=%d", len(s.Updates)),
			fmt.Sprintf("updates_applied=%d", s.Apply.Applied),
			fmt.Sprintf("updates_skipped=%d", s.Apply.Skipped),
			fmt.Sprintf("update_errors=%d", s.Apply.Errors),
			fmt.Sprintf("failures=%d", len(s.Failures)),
		)
	}

	reasons := s.FailureReasons()
	lines = append(lines, fmt.Sprintf("failures_%s=%d", ReasonTimeout, reasons[ReasonTimeout]))
	keys := make([]string, 0, len(reasons))
	for r := range reasons {
		if r != ReasonTimeout {
			keys = append(keys, r)
		}
	}
	sort.Strings(keys)
	for _, r := range keys {
		lines = append(lines, fmt.Sprintf("failures_%s=%d", r, reasons[r]))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return eris.Wrap(err, "enrich: write summary")
		}
	}
	return nil
}
