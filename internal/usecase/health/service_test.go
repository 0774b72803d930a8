package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockReporter struct {
	status string
	err    error
	fn     func(ctx context.Context) (string, error)
}

func (m *mockReporter) ClusterHealth(ctx context.Context) (string, error) {
	if m.fn != nil {
		return m.fn(ctx)
	}
	return m.status, m.err
}

// --- Tests ---

func TestProbe_Mapping(t *testing.T) {
	tests := []struct {
		raw     string
		want    State
		wantRaw bool
	}{
		{"green", Healthy, true},
		{"yellow", Degraded, true},
		{"red", Unreachable, true},
		{"GREEN", Unreachable, false},
		{"purple", Unreachable, false},
		{"", Unreachable, false},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			svc := New(&mockReporter{status: tc.raw}, time.Second, nil)
			st := svc.Probe(context.Background())

			if st.State != tc.want {
				t.Errorf("State = %q, want %q", st.State, tc.want)
			}
			if tc.wantRaw {
				if st.RawBackendStatus == nil || *st.RawBackendStatus != tc.raw {
					t.Errorf("RawBackendStatus = %v, want %q", st.RawBackendStatus, tc.raw)
				}
			} else if st.RawBackendStatus != nil {
				t.Errorf("RawBackendStatus = %q, want nil", *st.RawBackendStatus)
			}
		})
	}
}

func TestProbe_TransportError(t *testing.T) {
	svc := New(&mockReporter{err: errors.New("connection refused")}, time.Second, nil)
	st := svc.Probe(context.Background())

	if st.State != Unreachable {
		t.Errorf("State = %q, want %q", st.State, Unreachable)
	}
	if st.RawBackendStatus != nil {
		t.Error("RawBackendStatus should be nil on transport failure")
	}
}

func TestProbe_TimeoutWithContextAwareReporter(t *testing.T) {
	svc := New(&mockReporter{fn: func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}, 50*time.Millisecond, nil)

	start := time.Now()
	st := svc.Probe(context.Background())
	elapsed := time.Since(start)

	if st.State != Unreachable || st.RawBackendStatus != nil {
		t.Errorf("got %+v, want unreachable with nil raw status", st)
	}
	if elapsed > time.Second {
		t.Errorf("probe took %v, expected to stop near the 50ms timeout", elapsed)
	}
}

func TestProbe_TimeoutWithReporterIgnoringContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	svc := New(&mockReporter{fn: func(context.Context) (string, error) {
		<-release
		return "green", nil
	}}, 50*time.Millisecond, nil)

	start := time.Now()
	st := svc.Probe(context.Background())
	elapsed := time.Since(start)

	if st.State != Unreachable {
		t.Errorf("State = %q, want %q", st.State, Unreachable)
	}
	if elapsed > time.Second {
		t.Errorf("probe took %v, expected to stop near the 50ms timeout", elapsed)
	}
}

func TestProbe_ReporterPanic(t *testing.T) {
	svc := New(&mockReporter{fn: func(context.Context) (string, error) {
		panic("boom")
	}}, time.Second, nil)

	st := svc.Probe(context.Background())
	if st.State != Unreachable || st.RawBackendStatus != nil {
		t.Errorf("got %+v, want unreachable", st)
	}
}

func TestProbe_AlwaysClosedEnum(t *testing.T) {
	reporters := []*mockReporter{
		{status: "green"},
		{status: "yellow"},
		{status: "red"},
		{status: "{\"weird\":true}"},
		{err: context.DeadlineExceeded},
	}
	valid := map[State]bool{Healthy: true, Degraded: true, Unreachable: true}

	for _, r := range reporters {
		st := New(r, time.Second, nil).Probe(context.Background())
		if !valid[st.State] {
			t.Errorf("State %q outside closed enum", st.State)
		}
	}
}

func TestNew_DefaultTimeout(t *testing.T) {
	svc := New(&mockReporter{}, 0, nil)
	if svc.Timeout() != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", svc.Timeout(), DefaultTimeout)
	}
}
