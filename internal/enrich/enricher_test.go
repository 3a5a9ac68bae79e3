package enrich

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/seed-cli/internal/model"
)

func enrichFixture() (*fakeStore, *fakeFetcher) {
	st := &fakeStore{
		listings: []model.EnrichmentCandidate{
			candidate("1", "https://src.example/1"),
			candidate("2", "https://src.example/2"),
			candidate("3", "https://src.example/3"),
			{ID: "4", LocationID: "loc", SourceURL: "https://src.example/4", Website: "https://has.com/"},
			{ID: "9", LocationID: "other", SourceURL: "https://src.example/9"},
		},
		claimed: map[string]bool{"2": true},
	}
	f := newFakeFetcher(map[string]fakeResponse{
		"https://src.example/1": {status: 200, body: `<a href="https://one.com">Visit website</a>`},
		"https://src.example/2": {status: 200, body: `<a href="https://two.com">site</a>`},
		"https://src.example/3": {status: 503},
	})
	return st, f
}

func TestEnricher_Run(t *testing.T) {
	st, f := enrichFixture()
	e := New(st, f, CrawlerConfig{Concurrency: 2, Timeout: time.Second})

	sum, err := e.Run(context.Background(), Options{LocationID: "loc"})
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Listed)
	assert.Equal(t, 3, sum.MissingWebsite)
	assert.Equal(t, 3, sum.Processing)
	assert.Len(t, sum.Updates, 2)
	assert.Len(t, sum.Failures, 1)
	assert.Equal(t, ApplyResult{Applied: 1, Skipped: 1}, sum.Apply)
	assert.Equal(t, map[string]string{"1": "https://one.com/"}, st.updates)
	assert.Equal(t, 0, f.callCount("https://src.example/4"), "listings with a website are not fetched")
}

func TestEnricher_DryRunNeverWrites(t *testing.T) {
	st, f := enrichFixture()
	e := New(st, f, CrawlerConfig{Concurrency: 2, Timeout: time.Second})

	sum, err := e.Run(context.Background(), Options{LocationID: "loc", DryRun: true})
	require.NoError(t, err)
	assert.Len(t, sum.Updates, 2)
	assert.Nil(t, st.updates)

	var buf bytes.Buffer
	require.NoError(t, sum.Write(&buf, DefaultSampleSize))
	out := buf.String()
	assert.Contains(t, out, "dry_run_updates=2\n")
	assert.Contains(t, out, "dry_run_failures=1\n")
	assert.Contains(t, out, "sample_update id=1 website=https://one.com/\n")
	assert.NotContains(t, out, "updates_applied=")
}

func TestEnricher_Limit(t *testing.T) {
	st, f := enrichFixture()
	sum, err := New(st, f, CrawlerConfig{}).Run(context.Background(), Options{LocationID: "loc", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.MissingWebsite)
	assert.Equal(t, 1, sum.Processing)
}

func TestEnricher_RequiresLocation(t *testing.T) {
	st, f := enrichFixture()
	_, err := New(st, f, CrawlerConfig{}).Run(context.Background(), Options{})
	require.Error(t, err)
}

func TestEnricher_ListErrorIsFatal(t *testing.T) {
	st, f := enrichFixture()
	st.listErr = errors.New("permission denied for table listings")
	_, err := New(st, f, CrawlerConfig{}).Run(context.Background(), Options{LocationID: "loc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load candidates")
}

func TestSummary_Write(t *testing.T) {
	sum := &Summary{
		Listed:         4,
		MissingWebsite: 3,
		Processing:     3,
		Updates:        []Outcome{{Website: "https://one.com/"}},
		Failures: []Outcome{
			{Reason: "http_503"},
			{Reason: ReasonTimeout},
		},
		Apply: ApplyResult{Applied: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, sum.Write(&buf, DefaultSampleSize))
	assert.Equal(t, "seeded_unclaimed_active=4\n"+
		"candidates_missing_website=3\n"+
		"processing=3\n"+
		"websites_found=1\n"+
		"updates_applied=1\n"+
		"updates_skipped=0\n"+
		"update_errors=0\n"+
		"failures=2\n"+
		"failures_timeout=1\n"+
		"failures_http_503=1\n", buf.String())
}
