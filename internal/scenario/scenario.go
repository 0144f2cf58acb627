// Package scenario projects exposure and PnL under a uniform percentage
// market move. Projections are pure functions of the contract snapshot and
// the selected scenario; all arithmetic is decimal, so repeated calls with
// the same inputs give identical results.
package scenario

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/hedgeshield/riskdesk/internal/model"
)

// Scenario is a market move in whole percent.
type Scenario int

// Scenarios is the fixed set of selectable moves.
var Scenarios = []Scenario{-5, -2, 0, 2, 5}

// Default is the scenario selected at start-up.
const Default Scenario = 0

// ErrInvalidScenario is returned by Parse for values outside Scenarios.
var ErrInvalidScenario = errors.New("scenario: not a selectable scenario")

var hundred = decimal.NewFromInt(100)

// Valid reports whether s is one of Scenarios.
func (s Scenario) Valid() bool {
	for _, v := range Scenarios {
		if v == s {
			return true
		}
	}
	return false
}

// Pct returns the move as a decimal percentage.
func (s Scenario) Pct() decimal.Decimal {
	return decimal.NewFromInt(int64(s))
}

// Factor returns 1 + s/100.
func (s Scenario) Factor() decimal.Decimal {
	return decimal.NewFromInt(1).Add(s.Pct().Div(hundred))
}

// Label formats the scenario as shown on the desk: "+5%", "-2%", "0%".
func (s Scenario) Label() string {
	if s > 0 {
		return fmt.Sprintf("+%d%%", int(s))
	}
	return fmt.Sprintf("%d%%", int(s))
}

func (s Scenario) String() string {
	return s.Label()
}

// Parse accepts "5", "+5", "-2", "5%" and validates the result.
func Parse(text string) (Scenario, error) {
	t := strings.TrimSuffix(strings.TrimSpace(text), "%")
	n, err := strconv.Atoi(strings.TrimPrefix(t, "+"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScenario, text)
	}
	s := Scenario(n)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %d (want one of %v)", ErrInvalidScenario, n, Scenarios)
	}
	return s, nil
}

// Point is one contract's notional before and after the move.
type Point struct {
	Original  decimal.Decimal `json:"original"`
	Projected decimal.Decimal `json:"projected"`
}

// Projection is the derived aggregate for one (contracts, scenario) input.
type Projection struct {
	Scenario      Scenario        `json:"scenario"`
	TotalExposure decimal.Decimal `json:"total_exposure"`
	ProjectedPnL  decimal.Decimal `json:"projected_pnl"`
	Series        []Point         `json:"series"`
}

// Project computes exposure, projected PnL and the per-contract series:
//
//	TotalExposure = Σ notional
//	ProjectedPnL  = TotalExposure × pct / 100
//	Series[i]     = {notional_i, notional_i × (1 + pct/100)}
//
// Series preserves input order. An empty input yields zeros and an empty
// (non-nil) series.
func Project(contracts []model.Contract, s Scenario) Projection {
	factor := s.Factor()
	total := decimal.Zero
	series := make([]Point, 0, len(contracts))

	for _, c := range contracts {
		n := c.Notional.Decimal
		total = total.Add(n)
		series = append(series, Point{
			Original:  n,
			Projected: n.Mul(factor),
		})
	}

	return Projection{
		Scenario:      s,
		TotalExposure: total,
		ProjectedPnL:  total.Mul(s.Pct()).Div(hundred),
		Series:        series,
	}
}

// Memo caches the last projection, keyed by contracts version and scenario.
// It is safe for concurrent use.
type Memo struct {
	mu      sync.Mutex
	valid   bool
	version uint64
	s       Scenario
	last    Projection
}

// Project returns the cached projection when version and s match the last
// call, otherwise recomputes it.
func (m *Memo) Project(version uint64, contracts []model.Contract, s Scenario) Projection {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.version == version && m.s == s {
		return m.last
	}
	m.last = Project(contracts, s)
	m.version = version
	m.s = s
	m.valid = true
	return m.last
}
