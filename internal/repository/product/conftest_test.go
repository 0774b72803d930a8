package product

import (
	"context"
	"testing"

	"github.com/kailas-cloud/catalogdash/internal/search"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, q *search.Query) (*search.Result, error)
	calls    int
}

func (m *mockStore) Search(ctx context.Context, q *search.Query) (*search.Result, error) {
	m.calls++
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &search.Result{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "products", 10), ms
}
