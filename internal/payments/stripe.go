package payments

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	pkgerrors "github.com/quickcart-app/quickcart-backend/pkg/errors"
	pkgstripe "github.com/quickcart-app/quickcart-backend/pkg/stripe"
)

// PaymentIntentClient exposes the subset of Stripe operations the provider
// needs, so it can be stubbed in tests.
type PaymentIntentClient interface {
	Create(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type paymentIntentWrapper struct{}

func (paymentIntentWrapper) Create(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params != nil {
		params.Context = ctx
	}
	return paymentintent.New(params)
}

// StripeProvider settles charges through Stripe payment intents.
type StripeProvider struct {
	intents  PaymentIntentClient
	currency string
}

// NewStripeProvider builds the provider over an initialized Stripe client.
// A nil client yields a provider that is never ready.
func NewStripeProvider(client *pkgstripe.Client) *StripeProvider {
	p := &StripeProvider{currency: string(stripe.CurrencyKZT)}
	if client != nil && client.API() != nil {
		p.intents = paymentIntentWrapper{}
	}
	return p
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) Ready() bool { return p.intents != nil }

func (p *StripeProvider) Charge(ctx context.Context, amountMinor int64, description string) (Result, error) {
	if !p.Ready() {
		return Result{}, pkgerrors.New(pkgerrors.CodePaymentNotReady, "stripe client is not configured")
	}
	if amountMinor <= 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amountMinor),
		Currency:    stripe.String(p.currency),
		Description: stripe.String(description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}

	intent, err := p.intents.Create(ctx, params)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}
	return Result{Reference: intent.ID, Provider: p.Name()}, nil
}
