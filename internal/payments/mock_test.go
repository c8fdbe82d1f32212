package payments

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
)

func TestMockProvider_NotReadyBeforeWarmup(t *testing.T) {
	p := NewMockProvider(time.Hour, time.Millisecond)
	defer p.Close()

	require.False(t, p.Ready())

	_, err := p.Charge(context.Background(), 1000, "order")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePaymentNotReady, typed.Code())
	assert.True(t, pkgerrors.MetadataFor(typed.Code()).Retryable)
}

func TestMockProvider_ChargesAfterWarmup(t *testing.T) {
	p := NewMockProvider(time.Millisecond, 5*time.Millisecond)
	defer p.Close()

	require.Eventually(t, p.Ready, time.Second, time.Millisecond)

	result, err := p.Charge(context.Background(), 2500, "order")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Reference, "mock-"))
	assert.Equal(t, "mock", result.Provider)
}

func TestMockProvider_ZeroInitDelayIsImmediatelyReady(t *testing.T) {
	p := NewMockProvider(0, time.Millisecond)
	defer p.Close()
	assert.True(t, p.Ready())
}

func TestMockProvider_RejectsNonPositiveAmount(t *testing.T) {
	p := NewMockProvider(0, time.Millisecond)
	defer p.Close()

	_, err := p.Charge(context.Background(), 0, "order")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestMockProvider_ChargeHonorsContext(t *testing.T) {
	p := NewMockProvider(0, time.Hour)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := p.Charge(ctx, 1000, "order")
	require.Error(t, err)
}
