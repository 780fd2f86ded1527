package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/papertriage/papertriage/internal/backend"
	"github.com/papertriage/papertriage/internal/candidate"
)

func TestTimeoutErrorMessage(t *testing.T) {
	err := &TimeoutError{Timeout: DefaultRefreshTimeout}
	if err.Error() != "refresh timed out after 60s" {
		t.Errorf("Error() = %q", err.Error())
	}
	if got := (&TimeoutError{Timeout: 50 * time.Millisecond}).Error(); got != "refresh timed out after 50ms" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNewRefreshCoordinatorDefault(t *testing.T) {
	if got := NewRefreshCoordinator(0).Timeout(); got != DefaultRefreshTimeout {
		t.Errorf("Timeout = %v, want %v", got, DefaultRefreshTimeout)
	}
}

func TestRefreshTimeoutAllowsLaterRefresh(t *testing.T) {
	f := newFakeBackend(P)
	release := make(chan struct{})
	defer close(release)
	cancelled := make(chan struct{}, 1)
	f.refreshFn = func(ctx context.Context, req candidate.RefreshRequest) (candidate.RefreshResult, error) {
		if f.refreshCalls.Load() > 1 {
			return candidate.RefreshResult{Success: true, Added: 1}, nil
		}
		select {
		case <-release:
		case <-ctx.Done():
			cancelled <- struct{}{}
		}
		return candidate.RefreshResult{Success: true, Added: 1}, nil
	}
	s := loadedSession(t, f, candidate.StatusAll)
	coord := NewRefreshCoordinator(20 * time.Millisecond)
	r := NewReviewer(s, f, coord)

	_, err := r.Refresh(context.Background(), candidate.RefreshRequest{MaxResults: 5})
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("err = %v, want TimeoutError", err)
	}
	if coord.InFlight() {
		t.Fatal("timeout did not release the refresh flag")
	}
	if s.LoadSeq() != 1 {
		t.Error("timed-out refresh reloaded the page")
	}

	res, err := r.Refresh(context.Background(), candidate.RefreshRequest{MaxResults: 5})
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if !res.Success {
		t.Errorf("unexpected result %+v", res)
	}
	if got := f.refreshCalls.Load(); got != 2 {
		t.Errorf("refresh calls = %d, want 2", got)
	}
	select {
	case <-cancelled:
		t.Error("timed-out refresh call was cancelled")
	default:
	}
}

func TestRefreshSingleFlight(t *testing.T) {
	f := newFakeBackend(P)
	started := make(chan struct{})
	release := make(chan struct{})
	f.refreshFn = func(ctx context.Context, req candidate.RefreshRequest) (candidate.RefreshResult, error) {
		close(started)
		<-release
		return candidate.RefreshResult{Success: true}, nil
	}
	s := loadedSession(t, f, candidate.StatusAll)
	coord := NewRefreshCoordinator(time.Minute)
	r := NewReviewer(s, f, coord)

	done := make(chan error, 1)
	go func() {
		_, err := r.Refresh(context.Background(), candidate.RefreshRequest{MaxResults: 5})
		done <- err
	}()
	<-started

	// The second caller goes straight through the coordinator; the session
	// itself is only touched by the first goroutine after release.
	if coord.Begin() {
		t.Fatal("Begin succeeded while a refresh was in flight")
	}
	second := NewReviewer(New(), f, coord)
	if _, err := second.Refresh(context.Background(), candidate.RefreshRequest{}); !errors.Is(err, ErrRefreshInFlight) {
		t.Fatalf("second refresh err = %v, want ErrRefreshInFlight", err)
	}
	if got := f.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if coord.InFlight() {
		t.Error("flag not released after success")
	}
}

func TestRefreshSuccessReloads(t *testing.T) {
	f := newFakeBackend(P, P)
	f.refreshFn = func(ctx context.Context, req candidate.RefreshRequest) (candidate.RefreshResult, error) {
		if req.MaxResults != 7 {
			t.Errorf("max_results = %d", req.MaxResults)
		}
		f.add(makeCandidate(2, P))
		f.add(makeCandidate(3, P))
		return candidate.RefreshResult{Success: true, Added: 2}, nil
	}
	s := loadedSession(t, f, candidate.StatusPending)
	s.SelectByIndex(1)

	res, err := NewReviewer(s, f, nil).Refresh(context.Background(), candidate.RefreshRequest{MaxResults: 7})
	if err != nil {
		t.Fatal(err)
	}
	if res.Added != 2 {
		t.Errorf("Added = %d", res.Added)
	}
	if s.Len() != 4 || s.Total() != 4 || s.Stats().Pending != 4 {
		t.Errorf("after reload: len %d total %d stats %+v", s.Len(), s.Total(), s.Stats())
	}
	assertSelection(t, s, -1)
}

func TestRefreshFailures(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(context.Context, candidate.RefreshRequest) (candidate.RefreshResult, error)
		wantErr error
	}{
		{
			name: "status error",
			fn: func(context.Context, candidate.RefreshRequest) (candidate.RefreshResult, error) {
				return candidate.RefreshResult{}, &backend.StatusError{Code: 429, Detail: "Rate limit exceeded"}
			},
			wantErr: backend.ErrTransport,
		},
		{
			name: "server reported failure",
			fn: func(context.Context, candidate.RefreshRequest) (candidate.RefreshResult, error) {
				return candidate.RefreshResult{Success: false, Message: "no sources"}, nil
			},
			wantErr: ErrRefreshFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeBackend(P)
			f.refreshFn = tt.fn
			s := loadedSession(t, f, candidate.StatusAll)
			coord := NewRefreshCoordinator(time.Minute)

			_, err := NewReviewer(s, f, coord).Refresh(context.Background(), candidate.RefreshRequest{MaxResults: 5})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if coord.InFlight() {
				t.Error("flag not released after failure")
			}
			if s.LoadSeq() != 1 {
				t.Error("failed refresh reloaded the page")
			}
		})
	}
}

func TestRefreshRunHonoursContext(t *testing.T) {
	coord := NewRefreshCoordinator(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	block := make(chan struct{})
	defer close(block)
	_, err := coord.Run(ctx, func(context.Context) (candidate.RefreshResult, error) {
		<-block
		return candidate.RefreshResult{}, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
