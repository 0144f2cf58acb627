// Package view turns a store snapshot and its projection into render-ready
// rows and chart series. Rendering itself sits behind the Renderer
// interface; TextRenderer is the terminal implementation.
package view

import (
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hedgeshield/riskdesk/internal/entity"
	"github.com/hedgeshield/riskdesk/internal/model"
	"github.com/hedgeshield/riskdesk/internal/scenario"
)

// Tab selects which part of the desk is rendered.
type Tab string

const (
	TabDesk      Tab = "desk"
	TabOrders    Tab = "orders"
	TabPortfolio Tab = "portfolio"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabDesk, TabOrders, TabPortfolio}

// Renderer draws a View. Implementations must not mutate v.
type Renderer interface {
	Render(w io.Writer, v View, tab Tab) error
}

// Totals are the headline figures of the desk tab.
type Totals struct {
	Exposure string
	PnL      string
	// Positive is true when projected PnL is >= 0.
	Positive bool
}

// Dataset is one line of the exposure chart.
type Dataset struct {
	Label string
	Data  []decimal.Decimal
}

// Chart is the per-contract exposure chart: one label per contract
// ("C1".."Cn") and the Original / Projected datasets.
type Chart struct {
	Labels   []string
	Datasets []Dataset
}

// ScenarioOption is one button of the scenario selector.
type ScenarioOption struct {
	Label  string
	Active bool
}

type ContractRow struct {
	ID         string
	Pair       string
	Notional   string
	DueDate    string
	DaysLeft   int
	Status     string
	Suggestion string
}

type OrderRow struct {
	ShortID  string
	Pair     string
	Side     string
	Buy      bool
	Price    string
	Scenario string
	At       string
}

type PortfolioRow struct {
	Pair          string
	TotalNotional string
	Count         int
}

// View is everything a renderer needs for one frame.
type View struct {
	Tenant string
	// Syncing names the collections still showing another tenant's rows
	// (or nothing yet), e.g. "contracts (acme)".
	Syncing   []string
	Scenarios []ScenarioOption
	Totals    Totals
	Chart     Chart
	Contracts []ContractRow
	Orders    []OrderRow
	Portfolio []PortfolioRow
}

// Build projects a snapshot into a View.
func Build(snap entity.Snapshot, p scenario.Projection) View {
	v := View{
		Tenant: snap.Tenant,
		Totals: Totals{
			Exposure: p.TotalExposure.StringFixed(2),
			PnL:      p.ProjectedPnL.StringFixed(2),
			Positive: !p.ProjectedPnL.IsNegative(),
		},
		Chart:     buildChart(p),
		Contracts: make([]ContractRow, 0, len(snap.Contracts)),
		Orders:    make([]OrderRow, 0, len(snap.Orders)),
		Portfolio: make([]PortfolioRow, 0, len(snap.Portfolio)),
	}

	for _, col := range snap.Behind() {
		note := string(col)
		if owner := snap.Stamps[col]; owner != "" {
			note += " (" + owner + ")"
		}
		v.Syncing = append(v.Syncing, note)
	}

	for _, s := range scenario.Scenarios {
		v.Scenarios = append(v.Scenarios, ScenarioOption{Label: s.Label(), Active: s == p.Scenario})
	}

	for _, c := range snap.Contracts {
		v.Contracts = append(v.Contracts, ContractRow{
			ID:         c.ID,
			Pair:       c.Pair,
			Notional:   c.Notional.StringFixed(2),
			DueDate:    c.DueDate,
			DaysLeft:   int(c.DaysLeft),
			Status:     c.Status,
			Suggestion: string(c.Suggestion.OrHold()),
		})
	}

	for _, o := range snap.Orders {
		v.Orders = append(v.Orders, OrderRow{
			ShortID:  shortID(o.ID),
			Pair:     o.Pair,
			Side:     string(o.Side),
			Buy:      o.Side == model.SideBuy,
			Price:    o.ExecutedPrice.StringFixed(4),
			Scenario: o.ScenarioPct.StringFixed(1) + "%",
			At:       timestamp(o.CreatedAt),
		})
	}

	for _, r := range snap.Portfolio {
		v.Portfolio = append(v.Portfolio, PortfolioRow{
			Pair:          r.Pair,
			TotalNotional: r.TotalNotional.StringFixed(2),
			Count:         int(r.Count),
		})
	}
	return v
}

func buildChart(p scenario.Projection) Chart {
	labels := make([]string, 0, len(p.Series))
	original := make([]decimal.Decimal, 0, len(p.Series))
	projected := make([]decimal.Decimal, 0, len(p.Series))
	for i, pt := range p.Series {
		labels = append(labels, "C"+strconv.Itoa(i+1))
		original = append(original, pt.Original)
		projected = append(projected, pt.Projected)
	}
	return Chart{
		Labels: labels,
		Datasets: []Dataset{
			{Label: "Original", Data: original},
			{Label: "Projected", Data: projected},
		},
	}
}

func shortID(id string) string {
	r := []rune(id)
	if len(r) > 8 {
		r = r[:8]
	}
	return string(r) + "…"
}

// timestamp renders a server timestamp as "YYYY-MM-DD HH:MM:SS".
func timestamp(s string) string {
	s = strings.Replace(s, "T", " ", 1)
	if len(s) > 19 {
		s = s[:19]
	}
	return s
}
