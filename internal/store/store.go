// Package store defines the persistence interface for the reference API
// server. Implementations include PostgreSQL (source of truth), Redis
// (read-through cache), and in-memory (for testing and development).
//
// Every query is scoped to one company (tenant); no call ever returns rows
// owned by another company.
package store

import (
	"context"
	"errors"

	"github.com/hedgeshield/riskdesk/internal/model"
)

// ErrNotFound is returned when a row does not exist for the company.
var ErrNotFound = errors.New("store: not found")

// OrdersLimit caps the order history returned by ListOrders.
const OrdersLimit = 200

// Store is the persistence interface.
type Store interface {
	// --- Contracts ---

	// CreateContract persists a new contract.
	CreateContract(ctx context.Context, c *model.ContractRecord) error

	// GetContract returns a company's contract by ID, or ErrNotFound.
	GetContract(ctx context.Context, company, id string) (*model.ContractRecord, error)

	// ListContracts returns a company's contracts, newest first.
	ListContracts(ctx context.Context, company string) ([]model.ContractRecord, error)

	// --- Immutable order history ---

	// InsertOrder appends an order record.
	InsertOrder(ctx context.Context, o *model.OrderRecord) error

	// ListOrders returns a company's orders joined with their contract pair,
	// newest first, at most OrdersLimit.
	ListOrders(ctx context.Context, company string) ([]model.OrderEntry, error)

	// --- Aggregates ---

	// Portfolio groups a company's contracts by pair, largest total
	// notional first.
	Portfolio(ctx context.Context, company string) ([]model.PortfolioRow, error)

	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error
}
