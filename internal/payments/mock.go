package payments

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
)

// MockProvider simulates a card processor: it becomes ready after a short
// asynchronous warm-up and every charge settles successfully after a fixed
// processing delay.
type MockProvider struct {
	ready       atomic.Bool
	chargeDelay time.Duration
	warmup      *time.Timer
	closeOnce   sync.Once
}

// NewMockProvider starts the warm-up clock immediately.
func NewMockProvider(initDelay, chargeDelay time.Duration) *MockProvider {
	if chargeDelay <= 0 {
		chargeDelay = 2 * time.Second
	}
	p := &MockProvider{chargeDelay: chargeDelay}
	if initDelay <= 0 {
		p.ready.Store(true)
	} else {
		p.warmup = time.AfterFunc(initDelay, func() { p.ready.Store(true) })
	}
	return p
}

func (p *MockProvider) Name() string { return "mock" }

func (p *MockProvider) Ready() bool { return p.ready.Load() }

// Charge blocks for the processing delay and always succeeds. A charge
// before the warm-up finishes is rejected so callers surface the retryable
// not-ready state instead of silently waiting.
func (p *MockProvider) Charge(ctx context.Context, amountMinor int64, _ string) (Result, error) {
	if !p.Ready() {
		return Result{}, pkgerrors.New(pkgerrors.CodePaymentNotReady, "payment provider is still initializing")
	}
	if amountMinor <= 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}

	select {
	case <-ctx.Done():
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, ctx.Err(), "charge cancelled")
	case <-time.After(p.chargeDelay):
	}

	return Result{
		Reference: fmt.Sprintf("mock-%s", uuid.NewString()),
		Provider:  p.Name(),
	}, nil
}

// Close cancels a pending warm-up timer.
func (p *MockProvider) Close() {
	p.closeOnce.Do(func() {
		if p.warmup != nil {
			p.warmup.Stop()
		}
	})
}
