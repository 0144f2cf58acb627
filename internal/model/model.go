// Package model defines the domain types shared by the risk desk client and
// the reference API server.
// All monetary values use shopspring/decimal (via Numeric), never float64.
package model

// DefaultTenant is the tenant used when none has been selected.
const DefaultTenant = "default"

// Side is the direction of a hedge order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether s is BUY or SELL.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Suggestion is the hedge engine's recommendation for a contract.
type Suggestion string

const (
	SuggestBuy  Suggestion = "BUY"
	SuggestSell Suggestion = "SELL"
	SuggestHold Suggestion = "HOLD"
)

// OrHold returns HOLD when no suggestion was supplied.
func (s Suggestion) OrHold() Suggestion {
	if s == "" {
		return SuggestHold
	}
	return s
}

// StatusActive is the status the server assigns to newly opened contracts.
const StatusActive = "active"

// Contract is a forward-rate contract as served by GET /api/contracts.
// Schema: {id, pair, notional, due_date, days_left, status, suggestion}
type Contract struct {
	ID         string     `json:"id"`
	Pair       string     `json:"pair"`
	BaseCcy    string     `json:"base_ccy,omitempty"`
	QuoteCcy   string     `json:"quote_ccy,omitempty"`
	Notional   Numeric    `json:"notional"`
	DueDate    string     `json:"due_date"` // YYYY-MM-DD
	DaysLeft   Int        `json:"days_left"`
	Status     string     `json:"status"`
	Suggestion Suggestion `json:"suggestion,omitempty"`
	CreatedAt  string     `json:"created_at,omitempty"`
}

// Order is an append-only hedge order record. The client never mutates or
// deletes orders; it only re-pulls the list.
type Order struct {
	ID            string  `json:"id"`
	ContractID    string  `json:"contract_id"`
	Side          Side    `json:"side"`
	ExecutedPrice Numeric `json:"executed_price"`
	ScenarioPct   Numeric `json:"scenario_pct"`
	Pair          string  `json:"pair"`
	CreatedAt     string  `json:"created_at"`
}

// PortfolioRow is the server-side aggregate of contracts for one pair.
type PortfolioRow struct {
	Pair          string  `json:"pair"`
	TotalNotional Numeric `json:"total_notional"`
	Count         Int     `json:"count"`
}

// ContractRequest is the JSON body for POST /api/contracts.
type ContractRequest struct {
	Base     string  `json:"base"`
	Quote    string  `json:"quote"`
	Notional Numeric `json:"notional"`
	DueDate  string  `json:"due_date"`
}

// OrderRequest is the JSON body for POST /api/orders.
type OrderRequest struct {
	ContractID    string  `json:"contract_id"`
	Side          Side    `json:"side"`
	ExecutedPrice Numeric `json:"executed_price"`
	ScenarioPct   Numeric `json:"scenario_pct"`
}
