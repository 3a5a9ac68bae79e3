package enrich

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/seed-cli/internal/fetcher"
	"github.com/sells-group/seed-cli/internal/model"
)

type fakeResponse struct {
	status int
	body   string
	err    error
	delay  time.Duration
}

// fakeFetcher serves canned responses by URL and records how often each URL
// was fetched and the peak number of concurrent fetches.
type fakeFetcher struct {
	responses map[string]fakeResponse

	mu    sync.Mutex
	calls map[string]int

	inflight atomic.Int32
	peak     atomic.Int32
}

func newFakeFetcher(responses map[string]fakeResponse) *fakeFetcher {
	return &fakeFetcher{responses: responses, calls: make(map[string]int)}
}

func (f *fakeFetcher) FetchText(ctx context.Context, url string, timeout time.Duration) (*fetcher.Page, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls[url]++
	f.mu.Unlock()

	resp, ok := f.responses[url]
	if !ok {
		return nil, errors.New("dial tcp: no such host")
	}
	if resp.delay > 0 {
		select {
		case <-time.After(resp.delay):
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), "fake fetch")
		}
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return &fetcher.Page{URL: url, Status: resp.status, Body: resp.body}, nil
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type fakeStore struct {
	mu sync.Mutex

	listings []model.EnrichmentCandidate
	listErr  error

	// claimed ids are no longer eligible; failing ids return an error.
	claimed map[string]bool
	failing map[string]bool

	updates map[string]string
}

func (s *fakeStore) ListUnclaimedSeeded(_ context.Context, locationID string) ([]model.EnrichmentCandidate, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.EnrichmentCandidate
	for _, l := range s.listings {
		if l.LocationID == locationID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateWebsiteIfUnclaimed(_ context.Context, id, website string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing[id] {
		return false, errors.New("connection reset by peer")
	}
	if s.claimed[id] {
		return false, nil
	}
	if s.updates == nil {
		s.updates = make(map[string]string)
	}
	s.updates[id] = website
	return true, nil
}
