package resolve

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seed-cli/internal/model"
	"github.com/sells-group/seed-cli/internal/resilience"
)

// DefaultPageSize is how many seeded listings LoadIndex reads per query.
const DefaultPageSize = 1000

// Index is the set of canonical keys known to a run: every existing seeded
// listing plus each candidate accepted so far. Safe for concurrent use.
type Index struct {
	mu   sync.RWMutex
	keys map[Key]struct{}
}

// NewIndex returns an index seeded with keys. Zero keys are ignored.
func NewIndex(keys ...Key) *Index {
	idx := &Index{keys: make(map[Key]struct{}, len(keys))}
	for _, k := range keys {
		idx.Add(k)
	}
	return idx
}

// Contains reports whether k is in the index.
func (i *Index) Contains(k Key) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.keys[k]
	return ok
}

// Add inserts k and reports whether it was new. Adding a zero key is a no-op.
func (i *Index) Add(k Key) bool {
	if k.IsZero() {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.keys[k]; ok {
		return false
	}
	i.keys[k] = struct{}{}
	return true
}

// Len returns the number of keys.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.keys)
}

// ContactSource pages through existing seeded listings.
type ContactSource interface {
	ListSeededContacts(ctx context.Context, offset, limit int) ([]model.SeededContact, error)
}

// LoadIndex reads every seeded listing from src, page by page, and builds an
// index of their canonical keys. Transient read errors are retried.
func LoadIndex(ctx context.Context, src ContactSource, pageSize int) (*Index, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("store", "list_seeded_contacts")

	idx := NewIndex()
	scanned := 0
	for offset := 0; ; offset += pageSize {
		page, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) ([]model.SeededContact, error) {
			return src.ListSeededContacts(ctx, offset, pageSize)
		})
		if err != nil {
			return nil, eris.Wrapf(err, "resolve: load seeded listings at offset %d", offset)
		}
		for _, c := range page {
			idx.Add(BuildKey(c.ContactFields))
		}
		scanned += len(page)
		if len(page) < pageSize {
			break
		}
	}

	zap.L().Info("resolve: dedup index loaded",
		zap.Int("seeded_listings", scanned),
		zap.Int("keys", idx.Len()),
	)
	return idx, nil
}
