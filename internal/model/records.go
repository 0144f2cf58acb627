package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractRecord is the server-side row behind a Contract. Every record is
// owned by exactly one company (tenant).
type ContractRecord struct {
	ID        string          `json:"id" db:"id"`
	Company   string          `json:"company" db:"company"`
	BaseCcy   string          `json:"base_ccy" db:"base_ccy"`
	QuoteCcy  string          `json:"quote_ccy" db:"quote_ccy"`
	Notional  decimal.Decimal `json:"notional" db:"notional"`
	DueDate   time.Time       `json:"due_date" db:"due_date"`
	Status    string          `json:"status" db:"status"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// OrderRecord is an immutable hedge order row. Once created, it is never
// modified or deleted.
type OrderRecord struct {
	ID            string          `json:"id" db:"id"`
	Company       string          `json:"company" db:"company"`
	ContractID    string          `json:"contract_id" db:"contract_id"`
	Side          Side            `json:"side" db:"side"`
	ExecutedPrice decimal.Decimal `json:"executed_price" db:"executed_price"`
	ScenarioPct   decimal.Decimal `json:"scenario_pct" db:"scenario_pct"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// OrderEntry is an order joined with its contract's pair.
type OrderEntry struct {
	OrderRecord
	Pair string `json:"pair"`
}
