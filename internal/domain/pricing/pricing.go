// Package pricing computes the dynamic price of a tee time.
//
// The price starts from a base and applies a fixed cascade of additive
// adjustments. Rules are independent of each other; every rule that matches
// contributes its delta and no total is clamped.
package pricing

import (
	"github.com/okian/fairway/internal/domain/model"
	"github.com/shopspring/decimal"
)

// DefaultBasePrice is the price before any adjustment.
var DefaultBasePrice = decimal.NewFromInt(75) //nolint:gochecknoglobals // decimal has no const form

// Rule names reported in a Quote.
const (
	RuleWeekend          = "weekend"
	RuleCart             = "cart"
	RuleWeekdayAfternoon = "weekday_afternoon"
	RuleBadWeather       = "bad_weather"
	RuleLowHandicap      = "low_handicap"
	RuleHighHandicap     = "high_handicap"
	RuleFrequentPlayer   = "frequent_player"
)

// Rule thresholds.
const (
	afternoonAfterHour  = 13
	wetThreshold        = 0.5
	windyThreshold      = 15.0
	coldThreshold       = 15.0
	lowHandicapBelow    = 3.0
	highHandicapAbove   = 15.0
	frequentAfterRounds = 15
)

// Adjustment is one applied rule and the amount it moved the price.
type Adjustment struct {
	Rule  string          `json:"rule"`
	Delta decimal.Decimal `json:"delta"`
}

// Quote is a price with the adjustments that produced it.
type Quote struct {
	Base        decimal.Decimal `json:"base"`
	Total       decimal.Decimal `json:"total"`
	Adjustments []Adjustment    `json:"adjustments"`
}

// Pricer prices a tee time.
type Pricer interface {
	Price(teeTimeHour int, cart bool, f model.FeatureVector) decimal.Decimal
}

// Engine applies the pricing rules. It holds no mutable state.
type Engine struct {
	base decimal.Decimal
}

// New creates a pricing engine.
func New(opts ...Option) *Engine {
	e := &Engine{base: DefaultBasePrice}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Base returns the configured base price.
func (e *Engine) Base() decimal.Decimal { return e.base }

// Price returns the total price for a tee time.
func (e *Engine) Price(teeTimeHour int, cart bool, f model.FeatureVector) decimal.Decimal {
	return e.Quote(teeTimeHour, cart, f).Total
}

// Quote returns the total price and every adjustment that applied, in rule order.
func (e *Engine) Quote(teeTimeHour int, cart bool, f model.FeatureVector) Quote {
	q := Quote{Base: e.base, Total: e.base, Adjustments: make([]Adjustment, 0, 7)}
	apply := func(rule string, delta int64) {
		d := decimal.NewFromInt(delta)
		q.Total = q.Total.Add(d)
		q.Adjustments = append(q.Adjustments, Adjustment{Rule: rule, Delta: d})
	}

	weekend := model.IsWeekend(f.DayOfWeek)
	if weekend {
		apply(RuleWeekend, 20)
	}
	if cart {
		apply(RuleCart, 20)
	}
	if teeTimeHour > afternoonAfterHour && !weekend {
		apply(RuleWeekdayAfternoon, -15)
	}
	if f.Precipitation > wetThreshold || f.WindSpeed > windyThreshold || f.AvgTemp < coldThreshold {
		apply(RuleBadWeather, -5)
	}
	if f.Handicap < lowHandicapBelow {
		apply(RuleLowHandicap, -5)
	}
	if f.Handicap > highHandicapAbove {
		apply(RuleHighHandicap, 5)
	}
	if f.RoundNumber > frequentAfterRounds {
		apply(RuleFrequentPlayer, -5)
	}

	return q
}
