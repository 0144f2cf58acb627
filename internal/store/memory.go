package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/hedgeshield/riskdesk/internal/model"
	"github.com/hedgeshield/riskdesk/internal/pair"
)

// MemoryStore implements Store with in-memory slices. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu        sync.RWMutex
	contracts []model.ContractRecord
	orders    []model.OrderRecord
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CreateContract(_ context.Context, c *model.ContractRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.contracts {
		if existing.ID == c.ID {
			return fmt.Errorf("contract %s already exists", c.ID)
		}
	}
	s.contracts = append(s.contracts, *c)
	return nil
}

func (s *MemoryStore) GetContract(_ context.Context, company, id string) (*model.ContractRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.contracts {
		if c.ID == id && c.Company == company {
			copy := c
			return &copy, nil
		}
	}
	return nil, fmt.Errorf("contract %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) ListContracts(_ context.Context, company string) ([]model.ContractRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []model.ContractRecord{}
	// Walk backwards so equal timestamps keep newest-inserted first.
	for i := len(s.contracts) - 1; i >= 0; i-- {
		if s.contracts[i].Company == company {
			result = append(result, s.contracts[i])
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) InsertOrder(_ context.Context, o *model.OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = append(s.orders, *o)
	return nil
}

func (s *MemoryStore) ListOrders(_ context.Context, company string) ([]model.OrderEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pairs := make(map[string]string, len(s.contracts))
	for _, c := range s.contracts {
		pairs[c.ID] = pair.Format(c.BaseCcy, c.QuoteCcy)
	}

	result := []model.OrderEntry{}
	for i := len(s.orders) - 1; i >= 0; i-- {
		o := s.orders[i]
		p, ok := pairs[o.ContractID]
		if o.Company != company || !ok {
			continue
		}
		result = append(result, model.OrderEntry{OrderRecord: o, Pair: p})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > OrdersLimit {
		result = result[:OrdersLimit]
	}
	return result, nil
}

// Portfolio aggregates contracts per pair in a single pass under the read lock.
func (s *MemoryStore) Portfolio(_ context.Context, company string) ([]model.PortfolioRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type agg struct {
		count int
		total decimal.Decimal
	}
	groups := make(map[string]*agg)
	for _, c := range s.contracts {
		if c.Company != company {
			continue
		}
		key := pair.Format(c.BaseCcy, c.QuoteCcy)
		g, ok := groups[key]
		if !ok {
			g = &agg{}
			groups[key] = g
		}
		g.count++
		g.total = g.total.Add(c.Notional)
	}

	rows := make([]model.PortfolioRow, 0, len(groups))
	for p, g := range groups {
		rows = append(rows, model.PortfolioRow{
			Pair:          p,
			TotalNotional: model.Num(g.total),
			Count:         model.Int(g.count),
		})
	}
	sortPortfolio(rows)
	return rows, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// sortPortfolio orders rows by total notional descending, then pair.
func sortPortfolio(rows []model.PortfolioRow) {
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].TotalNotional.Cmp(rows[j].TotalNotional.Decimal); c != 0 {
			return c > 0
		}
		return rows[i].Pair < rows[j].Pair
	})
}
