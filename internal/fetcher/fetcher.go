// Package fetcher retrieves listing source pages over HTTP.
package fetcher

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// ErrTimeout marks a fetch that exceeded its own deadline. A cancelled
// parent context is reported as the context error instead.
var ErrTimeout = eris.New("fetcher: timeout")

// Page is the result of a completed HTTP exchange, whatever its status.
type Page struct {
	URL    string
	Status int
	Body   string
}

// OK reports a 2xx status.
func (p *Page) OK() bool {
	return p.Status >= 200 && p.Status < 300
}

// Fetcher downloads a page as text.
type Fetcher interface {
	// FetchText GETs url with its own timeout, which starts only after any
	// rate-limit wait.
	FetchText(ctx context.Context, url string, timeout time.Duration) (*Page, error)
}
