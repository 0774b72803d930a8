package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/catalogdash/internal/domain"
	domproduct "github.com/kailas-cloud/catalogdash/internal/domain/product"
)

// builderFunc adapts a function to Builder.
type builderFunc func(ctx context.Context) (Dashboard, error)

func (f builderFunc) Build(ctx context.Context) (Dashboard, error) { return f(ctx) }

func dashboardOf(n int) Dashboard {
	records := make([]domproduct.Record, n)
	for i := range records {
		records[i] = domproduct.Record{Name: "p", Price: domproduct.Num(1), Category: "c"}
	}
	d, _ := New(&mockFetcher{records: records}).Build(context.Background())
	return d
}

func TestSession_LatestStartsEmpty(t *testing.T) {
	s := NewSession(builderFunc(func(context.Context) (Dashboard, error) { return dashboardOf(1), nil }))
	if got := s.Latest().Summary.TotalProducts; got != 0 {
		t.Errorf("initial TotalProducts = %d, want 0", got)
	}
}

func TestSession_RefreshPublishes(t *testing.T) {
	s := NewSession(builderFunc(func(context.Context) (Dashboard, error) { return dashboardOf(2), nil }))

	d, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Summary.TotalProducts != 2 || s.Latest().Summary.TotalProducts != 2 {
		t.Errorf("published %d / latest %d, want 2", d.Summary.TotalProducts, s.Latest().Summary.TotalProducts)
	}
}

func TestSession_FailureKeepsPrevious(t *testing.T) {
	fail := false
	s := NewSession(builderFunc(func(context.Context) (Dashboard, error) {
		if fail {
			return Dashboard{}, domain.NewFetchError(errors.New("down"))
		}
		return dashboardOf(3), nil
	}))

	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	fail = true
	_, err := s.Refresh(context.Background())
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if got := s.Latest().Summary.TotalProducts; got != 3 {
		t.Errorf("Latest TotalProducts = %d, want previous 3", got)
	}
}

func TestSession_NewRefreshCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	var mu sync.Mutex
	call := 0

	s := NewSession(builderFunc(func(ctx context.Context) (Dashboard, error) {
		mu.Lock()
		call++
		n := call
		mu.Unlock()

		if n == 1 {
			close(started)
			<-ctx.Done()
			return Dashboard{}, domain.NewFetchError(ctx.Err())
		}
		return dashboardOf(5), nil
	}))

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		firstErr <- err
	}()
	<-started

	d, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if d.Summary.TotalProducts != 5 {
		t.Errorf("TotalProducts = %d, want 5", d.Summary.TotalProducts)
	}

	select {
	case err := <-firstErr:
		if !errors.Is(err, domain.ErrSuperseded) {
			t.Errorf("first refresh error = %v, want ErrSuperseded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first refresh was not cancelled")
	}
	if got := s.Latest().Summary.TotalProducts; got != 5 {
		t.Errorf("Latest TotalProducts = %d, want 5", got)
	}
}

func TestSession_StaleResultDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	call := 0

	// The first run ignores cancellation and completes after the second published.
	s := NewSession(builderFunc(func(context.Context) (Dashboard, error) {
		mu.Lock()
		call++
		n := call
		mu.Unlock()

		if n == 1 {
			close(started)
			<-release
			return dashboardOf(1), nil
		}
		return dashboardOf(7), nil
	}))

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		firstErr <- err
	}()
	<-started

	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	close(release)

	select {
	case err := <-firstErr:
		if !errors.Is(err, domain.ErrSuperseded) {
			t.Errorf("stale refresh error = %v, want ErrSuperseded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stale refresh did not return")
	}
	if got := s.Latest().Summary.TotalProducts; got != 7 {
		t.Errorf("Latest TotalProducts = %d, want 7", got)
	}
}

func TestSession_CallerCancellationIsNotSuperseded(t *testing.T) {
	s := NewSession(builderFunc(func(ctx context.Context) (Dashboard, error) {
		<-ctx.Done()
		return Dashboard{}, domain.NewFetchError(ctx.Err())
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Refresh(ctx)
	if errors.Is(err, domain.ErrSuperseded) {
		t.Fatal("caller cancellation must not be reported as superseded")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}
