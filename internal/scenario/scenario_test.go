package scenario

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgeshield/riskdesk/internal/model"
)

func contracts(notionals ...string) []model.Contract {
	out := make([]model.Contract, 0, len(notionals))
	for i, n := range notionals {
		out = append(out, model.Contract{
			ID:       string(rune('a' + i)),
			Notional: model.Num(decimal.RequireFromString(n)),
		})
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProject_Example(t *testing.T) {
	p := Project(contracts("1000", "500"), 5)

	assert.True(t, p.TotalExposure.Equal(dec("1500")), "exposure %s", p.TotalExposure)
	assert.True(t, p.ProjectedPnL.Equal(dec("75")), "pnl %s", p.ProjectedPnL)
	require.Len(t, p.Series, 2)
	assert.True(t, p.Series[0].Original.Equal(dec("1000")))
	assert.True(t, p.Series[0].Projected.Equal(dec("1050")))
	assert.True(t, p.Series[1].Original.Equal(dec("500")))
	assert.True(t, p.Series[1].Projected.Equal(dec("525")))
}

func TestProject_Empty(t *testing.T) {
	for _, s := range Scenarios {
		p := Project(nil, s)
		assert.True(t, p.TotalExposure.IsZero())
		assert.True(t, p.ProjectedPnL.IsZero())
		assert.NotNil(t, p.Series)
		assert.Empty(t, p.Series)
	}
}

func TestProject_ZeroScenarioHasNoPnL(t *testing.T) {
	p := Project(contracts("1000", "2500.75", "0.01"), 0)
	assert.True(t, p.ProjectedPnL.IsZero())
	for _, pt := range p.Series {
		assert.True(t, pt.Original.Equal(pt.Projected))
	}
}

func TestProject_ExposureIndependentOfOrder(t *testing.T) {
	a := Project(contracts("100.10", "2000", "33.33"), -2)
	b := Project(contracts("33.33", "100.10", "2000"), -2)
	assert.True(t, a.TotalExposure.Equal(b.TotalExposure))
	assert.True(t, a.TotalExposure.Equal(dec("2133.43")))
	assert.True(t, a.ProjectedPnL.Equal(b.ProjectedPnL))
}

func TestProject_Idempotent(t *testing.T) {
	in := contracts("1234.56", "789.01")
	a := Project(in, -5)
	b := Project(in, -5)
	assert.Equal(t, a.TotalExposure.String(), b.TotalExposure.String())
	assert.Equal(t, a.ProjectedPnL.String(), b.ProjectedPnL.String())
	require.Len(t, b.Series, len(a.Series))
	for i := range a.Series {
		assert.Equal(t, a.Series[i].Projected.String(), b.Series[i].Projected.String())
	}
}

func TestProject_NegativeScenario(t *testing.T) {
	p := Project(contracts("1000"), -2)
	assert.True(t, p.ProjectedPnL.Equal(dec("-20")))
	assert.True(t, p.Series[0].Projected.Equal(dec("980")))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Scenario
	}{
		{"5", 5}, {"+5", 5}, {"+5%", 5}, {"-2", -2}, {" 0 ", 0}, {"2%", 2}, {"-5%", -5},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"3", "10", "abc", "", "2.5"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidScenario, "input %q", bad)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "+5%", Scenario(5).Label())
	assert.Equal(t, "-2%", Scenario(-2).Label())
	assert.Equal(t, "0%", Scenario(0).Label())
}

func TestMemo_RecomputesOnInputChange(t *testing.T) {
	var m Memo
	c1 := contracts("1000")
	p1 := m.Project(1, c1, 5)
	assert.True(t, p1.TotalExposure.Equal(dec("1000")))

	// same key: cached even if a different slice is passed
	cached := m.Project(1, contracts("9999"), 5)
	assert.True(t, cached.TotalExposure.Equal(dec("1000")))

	// new version
	p2 := m.Project(2, contracts("9999"), 5)
	assert.True(t, p2.TotalExposure.Equal(dec("9999")))

	// new scenario
	p3 := m.Project(2, contracts("9999"), -5)
	assert.True(t, p3.ProjectedPnL.Equal(dec("-499.95")))
}
