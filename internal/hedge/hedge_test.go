package hedge

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hedgeshield/riskdesk/internal/model"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestUrgency(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{-3, "1.8"}, {0, "1.8"}, {7, "1.8"}, {8, "1.3"}, {30, "1.3"}, {31, "1"}, {365, "1"},
	}
	for _, tt := range tests {
		if got := Urgency(tt.days); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Urgency(%d): expected %s, got %s", tt.days, tt.want, got)
		}
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name     string
		notional float64
		pct      float64
		days     int
		want     model.Suggestion
	}{
		{"zero scenario always holds", 1_000_000, 0, 1, model.SuggestHold},
		{"exactly at threshold sells", 1000, 5, 60, model.SuggestSell},
		{"just below threshold holds", 999, 5, 60, model.SuggestHold},
		{"month urgency pushes over", 800, 5, 20, model.SuggestSell},
		{"month urgency not enough", 600, 5, 20, model.SuggestHold},
		{"negative move buys", 1000, -5, 60, model.SuggestBuy},
		{"week urgency buys", 600, -5, 3, model.SuggestBuy},
		{"small negative holds", 100, -2, 3, model.SuggestHold},
		{"large short dated sells", 10_000, 2, 7, model.SuggestSell},
	}

	for _, tt := range tests {
		got := Suggest(d(tt.notional), d(tt.pct), tt.days)
		if got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}
}
