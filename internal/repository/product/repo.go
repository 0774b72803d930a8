package product

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/catalogdash/internal/domain"
	domproduct "github.com/kailas-cloud/catalogdash/internal/domain/product"
	"github.com/kailas-cloud/catalogdash/internal/search"
)

// store is the consumer interface for product fetches (ISP).
type store interface {
	Search(ctx context.Context, q *search.Query) (*search.Result, error)
}

// Repo is the record fetcher: one query, one ordered record list.
type Repo struct {
	store store
	index string
	size  int
}

// New creates a product repository reading from index. size <= 0 leaves the page
// size to the backend.
func New(s store, index string, size int) *Repo {
	return &Repo{store: s, index: index, size: size}
}

// Fetch issues exactly one search and decodes every hit into a Record, in hit order.
// Any failure is returned as *domain.FetchError with a generic message.
func (r *Repo) Fetch(ctx context.Context) ([]domproduct.Record, error) {
	res, err := r.store.Search(ctx, &search.Query{Index: r.index, Size: r.size})
	if err != nil {
		return nil, domain.NewFetchError(fmt.Errorf("search %s: %w", r.index, err))
	}
	if res == nil {
		return nil, domain.NewFetchError(fmt.Errorf("search %s: %w", r.index, domain.ErrMalformedResponse))
	}

	records := make([]domproduct.Record, len(res.Hits))
	for i, h := range res.Hits {
		records[i] = domproduct.FromSource(h.ID, h.Source)
	}
	return records, nil
}

// Index returns the index this repository reads from.
func (r *Repo) Index() string { return r.index }
