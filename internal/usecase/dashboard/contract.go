package dashboard

import (
	"context"

	domproduct "github.com/kailas-cloud/catalogdash/internal/domain/product"
)

// Fetcher returns the current product records in backend order.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domproduct.Record, error)
}

// Builder produces one dashboard from a fresh fetch.
type Builder interface {
	Build(ctx context.Context) (Dashboard, error)
}
