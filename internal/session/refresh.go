package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/papertriage/papertriage/internal/candidate"
)

// DefaultRefreshTimeout bounds how long the operator waits for a refresh.
const DefaultRefreshTimeout = 60 * time.Second

var (
	ErrRefreshInFlight = errors.New("refresh already in progress")
	ErrRefreshFailed   = errors.New("refresh failed")
)

// TimeoutError reports that a refresh did not settle before the deadline.
// The backend call itself keeps running.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Timeout%time.Second == 0 {
		return fmt.Sprintf("refresh timed out after %ds", int(e.Timeout/time.Second))
	}
	return fmt.Sprintf("refresh timed out after %s", e.Timeout)
}

// RefreshFunc performs the backend refresh call.
type RefreshFunc func(ctx context.Context) (candidate.RefreshResult, error)

// RefreshCoordinator allows at most one refresh at a time and races each one
// against a timeout.
type RefreshCoordinator struct {
	timeout  time.Duration
	inFlight atomic.Bool
}

// NewRefreshCoordinator returns a coordinator with the given timeout, or
// DefaultRefreshTimeout when timeout is not positive.
func NewRefreshCoordinator(timeout time.Duration) *RefreshCoordinator {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	return &RefreshCoordinator{timeout: timeout}
}

func (r *RefreshCoordinator) Timeout() time.Duration { return r.timeout }

// InFlight reports whether a refresh has begun and not ended.
func (r *RefreshCoordinator) InFlight() bool { return r.inFlight.Load() }

// Begin claims the single refresh slot. It returns false when a refresh is
// already running; the caller must not issue another call.
func (r *RefreshCoordinator) Begin() bool {
	return r.inFlight.CompareAndSwap(false, true)
}

// End releases the slot. Call it on every path after a successful Begin.
func (r *RefreshCoordinator) End() {
	r.inFlight.Store(false)
}

// Run calls fn and waits for whichever comes first: its result, the
// timeout, or ctx being done. fn runs with a context that is not cancelled
// when Run gives up, so a timed-out call finishes in the background and its
// result is dropped.
func (r *RefreshCoordinator) Run(ctx context.Context, fn RefreshFunc) (candidate.RefreshResult, error) {
	type result struct {
		res candidate.RefreshResult
		err error
	}
	done := make(chan result, 1)
	callCtx := context.WithoutCancel(ctx)
	go func() {
		res, err := fn(callCtx)
		done <- result{res, err}
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		if out.err != nil {
			return candidate.RefreshResult{}, out.err
		}
		if !out.res.Success {
			msg := out.res.Message
			if msg == "" {
				msg = "server reported failure"
			}
			return out.res, fmt.Errorf("%w: %s", ErrRefreshFailed, msg)
		}
		return out.res, nil
	case <-timer.C:
		return candidate.RefreshResult{}, &TimeoutError{Timeout: r.timeout}
	case <-ctx.Done():
		return candidate.RefreshResult{}, ctx.Err()
	}
}
