package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hedgeshield/riskdesk/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache of each company's list views. Writes go to the primary store and
// invalidate the company's cached views; reads check Redis first then fall
// back to the primary. A Redis outage degrades to primary-only reads.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) CreateContract(ctx context.Context, c *model.ContractRecord) error {
	if err := s.primary.CreateContract(ctx, c); err != nil {
		return err
	}
	// A new contract changes all three views (orders carry the pair).
	s.rdb.Del(ctx, contractsKey(c.Company), portfolioKey(c.Company), ordersKey(c.Company))
	return nil
}

func (s *CachedStore) InsertOrder(ctx context.Context, o *model.OrderRecord) error {
	if err := s.primary.InsertOrder(ctx, o); err != nil {
		return err
	}
	s.rdb.Del(ctx, ordersKey(o.Company))
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) ListContracts(ctx context.Context, company string) ([]model.ContractRecord, error) {
	return readThrough(ctx, s, contractsKey(company), func() ([]model.ContractRecord, error) {
		return s.primary.ListContracts(ctx, company)
	})
}

func (s *CachedStore) ListOrders(ctx context.Context, company string) ([]model.OrderEntry, error) {
	return readThrough(ctx, s, ordersKey(company), func() ([]model.OrderEntry, error) {
		return s.primary.ListOrders(ctx, company)
	})
}

func (s *CachedStore) Portfolio(ctx context.Context, company string) ([]model.PortfolioRow, error) {
	return readThrough(ctx, s, portfolioKey(company), func() ([]model.PortfolioRow, error) {
		return s.primary.Portfolio(ctx, company)
	})
}

// --- Passthrough (not cached) ---

func (s *CachedStore) GetContract(ctx context.Context, company, id string) (*model.ContractRecord, error) {
	return s.primary.GetContract(ctx, company, id)
}

// Ping checks the primary only; the cache is optional.
func (s *CachedStore) Ping(ctx context.Context) error {
	return s.primary.Ping(ctx)
}

// --- Cache helpers ---

func readThrough[T any](ctx context.Context, s *CachedStore, key string, load func() ([]T, error)) ([]T, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var cached []T
		if json.Unmarshal(data, &cached) == nil {
			return cached, nil
		}
	}

	// Cache miss.
	items, err := load()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err == nil {
		s.rdb.Set(ctx, key, data, s.ttl)
	}
	return items, nil
}

func contractsKey(company string) string { return fmt.Sprintf("riskdesk:%s:contracts", company) }
func ordersKey(company string) string    { return fmt.Sprintf("riskdesk:%s:orders", company) }
func portfolioKey(company string) string { return fmt.Sprintf("riskdesk:%s:portfolio", company) }
