// Package dispatch runs the operator's write actions (open a contract, place
// a hedge order) and then re-pulls only the collections the write affects.
// Cached collections are never patched locally; the server stays the source
// of truth.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hedgeshield/riskdesk/internal/entity"
	"github.com/hedgeshield/riskdesk/internal/gateway"
	"github.com/hedgeshield/riskdesk/internal/metrics"
	"github.com/hedgeshield/riskdesk/internal/model"
	"github.com/hedgeshield/riskdesk/internal/scenario"
)

// ErrInvalidSide is returned for order sides other than BUY and SELL.
var ErrInvalidSide = errors.New("dispatch: side must be BUY or SELL")

// Reloader is the part of the entity store the dispatcher needs.
type Reloader interface {
	Background(ctx context.Context, cols ...entity.Collection)
}

// Dispatcher issues write calls. Calls are independent: overlapping writes
// are neither queued nor ordered.
type Dispatcher struct {
	api    gateway.Caller
	store  Reloader
	logger *zap.Logger
}

// New creates a Dispatcher. Pass nil for logger to discard logs.
func New(api gateway.Caller, store Reloader, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{api: api, store: store, logger: logger}
}

// ExecutedPrice is the placeholder fill price recorded with an order:
// 1 + pct/100. It is not a market price.
func ExecutedPrice(s scenario.Scenario) decimal.Decimal {
	return s.Factor()
}

// CreateContract opens a contract and, on success, reloads contracts and
// portfolio. Order history is unaffected and not reloaded. Reload failures
// after a successful write are swallowed; gateway failures are returned and
// leave local state untouched.
func (d *Dispatcher) CreateContract(ctx context.Context, req model.ContractRequest) error {
	if _, err := d.api.Call(ctx, http.MethodPost, entity.ContractsPath, req); err != nil {
		metrics.DeskActions.WithLabelValues("create_contract", "failed").Inc()
		return fmt.Errorf("create contract: %w", err)
	}
	metrics.DeskActions.WithLabelValues("create_contract", "ok").Inc()

	d.logger.Info("contract created",
		zap.String("pair", req.Base+"/"+req.Quote),
		zap.String("notional", req.Notional.String()),
		zap.String("due_date", req.DueDate),
	)

	d.store.Background(ctx, entity.Contracts, entity.Portfolio)
	return nil
}

// PlaceOrder records a hedge order against contractID at the placeholder
// price for scenario s and, on success, reloads orders only. If the order is
// created but the reload fails nothing is rolled back; the next reload
// reconciles.
func (d *Dispatcher) PlaceOrder(ctx context.Context, contractID string, side model.Side, s scenario.Scenario) error {
	if !side.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}

	req := model.OrderRequest{
		ContractID:    contractID,
		Side:          side,
		ExecutedPrice: model.Num(ExecutedPrice(s)),
		ScenarioPct:   model.Num(s.Pct()),
	}
	if _, err := d.api.Call(ctx, http.MethodPost, entity.OrdersPath, req); err != nil {
		metrics.DeskActions.WithLabelValues("place_order", "failed").Inc()
		return fmt.Errorf("place order: %w", err)
	}
	metrics.DeskActions.WithLabelValues("place_order", "ok").Inc()

	d.logger.Info("order placed",
		zap.String("contract_id", contractID),
		zap.String("side", string(side)),
		zap.String("executed_price", req.ExecutedPrice.String()),
		zap.Int("scenario_pct", int(s)),
	)

	d.store.Background(ctx, entity.Orders)
	return nil
}
