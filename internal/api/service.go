// Package api provides the HTTP handlers of the reference risk desk server:
// contracts, hedge orders, and the per-pair portfolio, each scoped to the
// company named by the X-Company header.
//
// All monetary values use shopspring/decimal, never float64 for money.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hedgeshield/riskdesk/internal/entity"
	"github.com/hedgeshield/riskdesk/internal/hedge"
	"github.com/hedgeshield/riskdesk/internal/metrics"
	"github.com/hedgeshield/riskdesk/internal/model"
	"github.com/hedgeshield/riskdesk/internal/pair"
	"github.com/hedgeshield/riskdesk/internal/store"
	"github.com/hedgeshield/riskdesk/internal/tenant"
)

// Service handles the desk's HTTP operations.
type Service struct {
	store  store.Store
	hub    *Hub // optional live feed
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new API service.
// Pass nil for hub if live broadcasting is not needed.
func NewService(st store.Store, hub *Hub, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  st,
		hub:    hub,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the clock used for timestamps and days_left.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// --- HTTP Handlers ---

// Health handles GET /health. It reports whether the store is reachable.
func (s *Service) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "db": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": true})
}

// ListContracts handles GET /api/contracts
func (s *Service) ListContracts(w http.ResponseWriter, r *http.Request) {
	company := companyOf(r)

	records, err := s.store.ListContracts(r.Context(), company)
	if err != nil {
		s.logger.Error("list contracts failed", zap.String("company", company), zap.Error(err))
		writeError(w, "failed to list contracts", http.StatusInternalServerError)
		return
	}

	now := s.now()
	items := make([]model.Contract, 0, len(records))
	for i := range records {
		items = append(items, toContract(&records[i], now))
	}
	writeItems(w, items)
}

// CreateContract handles POST /api/contracts
func (s *Service) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req model.ContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusUnprocessableEntity)
		return
	}

	base, err := pair.NormalizeCode(req.Base)
	if err != nil {
		writeError(w, "invalid base currency", http.StatusUnprocessableEntity)
		return
	}
	quote, err := pair.NormalizeCode(req.Quote)
	if err != nil {
		writeError(w, "invalid quote currency", http.StatusUnprocessableEntity)
		return
	}
	if !req.Notional.GreaterThan(decimal.Zero) {
		writeError(w, "notional must be greater than 0", http.StatusUnprocessableEntity)
		return
	}
	due, err := pair.ParseDueDate(req.DueDate)
	if err != nil {
		writeError(w, "due_date must be YYYY-MM-DD", http.StatusUnprocessableEntity)
		return
	}

	company := companyOf(r)
	now := s.now()
	record := &model.ContractRecord{
		ID:        uuid.New().String(),
		Company:   company,
		BaseCcy:   base,
		QuoteCcy:  quote,
		Notional:  req.Notional.Decimal,
		DueDate:   due,
		Status:    model.StatusActive,
		CreatedAt: now.UTC(),
	}

	if err := s.store.CreateContract(r.Context(), record); err != nil {
		s.logger.Error("create contract failed", zap.String("company", company), zap.Error(err))
		writeError(w, "failed to create contract", http.StatusInternalServerError)
		return
	}

	p := pair.Format(base, quote)
	metrics.ContractsCreated.WithLabelValues(p).Inc()
	s.logger.Info("contract created",
		zap.String("id", record.ID),
		zap.String("company", company),
		zap.String("pair", p),
		zap.String("notional", record.Notional.String()),
	)
	s.publish(company, entity.Contracts, entity.Portfolio)

	writeJSON(w, http.StatusCreated, toContract(record, now))
}

// ListOrders handles GET /api/orders
func (s *Service) ListOrders(w http.ResponseWriter, r *http.Request) {
	company := companyOf(r)

	entries, err := s.store.ListOrders(r.Context(), company)
	if err != nil {
		s.logger.Error("list orders failed", zap.String("company", company), zap.Error(err))
		writeError(w, "failed to list orders", http.StatusInternalServerError)
		return
	}

	items := make([]model.Order, 0, len(entries))
	for i := range entries {
		items = append(items, toOrder(&entries[i].OrderRecord, entries[i].Pair))
	}
	writeItems(w, items)
}

// PlaceOrder handles POST /api/orders
func (s *Service) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusUnprocessableEntity)
		return
	}

	side := model.Side(strings.ToUpper(strings.TrimSpace(string(req.Side))))
	if !side.Valid() {
		writeError(w, "invalid_side", http.StatusBadRequest)
		return
	}

	company := companyOf(r)
	ctx := r.Context()

	// The contract must belong to the caller's company.
	c, err := s.store.GetContract(ctx, company, req.ContractID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "contract_not_found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("load contract failed", zap.String("company", company), zap.Error(err))
		writeError(w, "failed to load contract", http.StatusInternalServerError)
		return
	}

	record := &model.OrderRecord{
		ID:            uuid.New().String(),
		Company:       company,
		ContractID:    c.ID,
		Side:          side,
		ExecutedPrice: req.ExecutedPrice.Decimal,
		ScenarioPct:   req.ScenarioPct.Decimal,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.InsertOrder(ctx, record); err != nil {
		s.logger.Error("insert order failed", zap.String("company", company), zap.Error(err))
		writeError(w, "failed to record order", http.StatusInternalServerError)
		return
	}

	metrics.OrdersPlaced.WithLabelValues(string(side)).Inc()
	s.logger.Info("order placed",
		zap.String("id", record.ID),
		zap.String("company", company),
		zap.String("contract", c.ID),
		zap.String("side", string(side)),
		zap.String("price", record.ExecutedPrice.String()),
		zap.String("scenario_pct", record.ScenarioPct.String()),
	)
	s.publish(company, entity.Orders)

	writeJSON(w, http.StatusCreated, toOrder(record, pair.Format(c.BaseCcy, c.QuoteCcy)))
}

// Portfolio handles GET /api/portfolio
func (s *Service) Portfolio(w http.ResponseWriter, r *http.Request) {
	company := companyOf(r)

	rows, err := s.store.Portfolio(r.Context(), company)
	if err != nil {
		s.logger.Error("portfolio failed", zap.String("company", company), zap.Error(err))
		writeError(w, "failed to load portfolio", http.StatusInternalServerError)
		return
	}
	writeItems(w, rows)
}

func (s *Service) publish(company string, cols ...entity.Collection) {
	if s.hub == nil {
		return
	}
	for _, col := range cols {
		s.hub.Broadcast(Event{Type: EventChanged, Company: company, Collection: string(col)})
	}
}

// --- Mapping ---

func toContract(c *model.ContractRecord, now time.Time) model.Contract {
	days := pair.DaysLeft(c.DueDate, now)
	return model.Contract{
		ID:         c.ID,
		Pair:       pair.Format(c.BaseCcy, c.QuoteCcy),
		BaseCcy:    c.BaseCcy,
		QuoteCcy:   c.QuoteCcy,
		Notional:   model.Num(c.Notional),
		DueDate:    c.DueDate.Format(pair.DateLayout),
		DaysLeft:   model.Int(days),
		Status:     c.Status,
		Suggestion: hedge.Suggest(c.Notional, decimal.Zero, days),
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toOrder(o *model.OrderRecord, p string) model.Order {
	return model.Order{
		ID:            o.ID,
		ContractID:    o.ContractID,
		Side:          o.Side,
		ExecutedPrice: model.Num(o.ExecutedPrice),
		ScenarioPct:   model.Num(o.ScenarioPct),
		Pair:          p,
		CreatedAt:     o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// companyOf returns the company resolved by the Tenant middleware.
func companyOf(r *http.Request) string {
	if id, ok := tenant.FromContext(r.Context()); ok {
		return id
	}
	return model.DefaultTenant
}

// --- Responses ---

func writeItems[T any](w http.ResponseWriter, items []T) {
	writeJSON(w, http.StatusOK, map[string][]T{"items": items})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"detail": message})
}
