package pricing

import "github.com/shopspring/decimal"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithBasePrice sets the price every booking starts from.
// Negative values are ignored.
func WithBasePrice(base decimal.Decimal) Option {
	return func(e *Engine) {
		if !base.IsNegative() {
			e.base = base
		}
	}
}
