package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/sells-group/seed-cli/internal/model"
)

type fakeStore struct {
	mu sync.Mutex

	locations map[string]bool
	seeded    []model.SeededContact

	// failBatch makes the nth InsertListings call (1-based) fail.
	failBatch int

	listCalls     int
	locationCalls int
	insertCalls   int
	inserted      []model.Listing
}

func newFakeStore(locations ...string) *fakeStore {
	fs := &fakeStore{locations: map[string]bool{}}
	for _, l := range locations {
		fs.locations[l] = true
	}
	return fs
}

func (f *fakeStore) ListSeededContacts(_ context.Context, offset, limit int) ([]model.SeededContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if offset >= len(f.seeded) {
		return nil, nil
	}
	return f.seeded[offset:min(offset+limit, len(f.seeded))], nil
}

func (f *fakeStore) LocationExists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locationCalls++
	return f.locations[id], nil
}

func (f *fakeStore) InsertListings(_ context.Context, listings []model.Listing) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertCalls == f.failBatch {
		return 0, errors.New("insert or update on table \"listings\" violates foreign key constraint")
	}
	f.inserted = append(f.inserted, listings...)
	return len(listings), nil
}
