// Package hedge implements the deterministic hedge suggestion rule served
// with every contract: exposure under the scenario, weighted by urgency as
// the due date approaches.
package hedge

import (
	"github.com/shopspring/decimal"

	"github.com/hedgeshield/riskdesk/internal/model"
)

var (
	// Threshold is the absolute urgency-weighted exposure that triggers a
	// BUY or SELL suggestion.
	Threshold = decimal.NewFromInt(50)

	urgencyWeek  = decimal.RequireFromString("1.8")
	urgencyMonth = decimal.RequireFromString("1.3")
	urgencyNone  = decimal.NewFromInt(1)
	hundred      = decimal.NewFromInt(100)
)

// Urgency weights contracts due within a week at 1.8 and within a month at
// 1.3. Past-due contracts weigh as due within a week.
func Urgency(daysLeft int) decimal.Decimal {
	switch {
	case daysLeft <= 7:
		return urgencyWeek
	case daysLeft <= 30:
		return urgencyMonth
	default:
		return urgencyNone
	}
}

// Suggest returns SELL when notional × pct/100 × urgency ≥ Threshold, BUY
// when ≤ -Threshold, HOLD otherwise.
func Suggest(notional, scenarioPct decimal.Decimal, daysLeft int) model.Suggestion {
	exposure := notional.Mul(scenarioPct).Div(hundred)
	score := exposure.Mul(Urgency(daysLeft))

	switch {
	case score.GreaterThanOrEqual(Threshold):
		return model.SuggestSell
	case score.LessThanOrEqual(Threshold.Neg()):
		return model.SuggestBuy
	default:
		return model.SuggestHold
	}
}
