package payments

import "context"

// Result is the outcome of a settled charge.
type Result struct {
	Reference string `json:"reference"`
	Provider  string `json:"provider"`
}

// Provider settles checkout charges. Ready reports whether the provider has
// finished initializing; submissions before that must be rejected, not
// queued.
type Provider interface {
	Name() string
	Ready() bool
	Charge(ctx context.Context, amountMinor int64, description string) (Result, error)
}
