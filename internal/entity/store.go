// Package entity holds the desk's cached copies of the three server-owned
// collections (contracts, orders, portfolio rows) and their reload lifecycle.
//
// Every reload is tenant-stamped: the tenant id is captured when the reload
// starts and the response is applied only if that id is still current when
// it arrives. A slow response for a tenant the operator has switched away
// from is discarded, never applied. Collections are replaced wholesale on a
// successful, valid reload and left untouched on failure.
package entity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hedgeshield/riskdesk/internal/gateway"
	"github.com/hedgeshield/riskdesk/internal/metrics"
	"github.com/hedgeshield/riskdesk/internal/model"
	"github.com/hedgeshield/riskdesk/internal/tenant"
)

// Collection names a reloadable collection.
type Collection string

const (
	Contracts Collection = "contracts"
	Orders    Collection = "orders"
	Portfolio Collection = "portfolio"
)

// Collections lists every collection in reload order.
var Collections = []Collection{Contracts, Orders, Portfolio}

// API paths of the list endpoints.
const (
	ContractsPath = "/api/contracts"
	OrdersPath    = "/api/orders"
	PortfolioPath = "/api/portfolio"
)

var (
	// ErrStale is returned when a response arrived after the tenant changed
	// and was discarded.
	ErrStale = errors.New("entity: response discarded, tenant changed")

	// ErrUnknownCollection is returned by Reload for an unknown name.
	ErrUnknownCollection = errors.New("entity: unknown collection")
)

// Snapshot is an immutable view of the store. Slices must not be modified.
type Snapshot struct {
	// Tenant is the current tenant, which may be ahead of the data.
	Tenant    string
	Contracts []model.Contract
	Orders    []model.Order
	Portfolio []model.PortfolioRow

	// Stamps records, per collection, the tenant whose reload was last
	// applied. A collection never loaded has no entry.
	Stamps map[Collection]string

	// ContractsVersion increments each time a contracts reload is applied.
	ContractsVersion uint64
}

// Behind lists, in reload order, the collections whose data does not belong
// to the current tenant yet.
func (s Snapshot) Behind() []Collection {
	var out []Collection
	for _, col := range Collections {
		if s.Stamps[col] != s.Tenant {
			out = append(out, col)
		}
	}
	return out
}

// Store caches the collections for the current tenant.
type Store struct {
	api    gateway.Caller
	tenant *tenant.Context
	logger *zap.Logger

	mu        sync.RWMutex
	contracts []model.Contract
	orders    []model.Order
	portfolio []model.PortfolioRow
	stamps    map[Collection]string
	version   uint64
}

// NewStore creates an empty store. Pass nil for logger to discard logs.
func NewStore(api gateway.Caller, tc *tenant.Context, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		api:       api,
		tenant:    tc,
		logger:    logger,
		contracts: []model.Contract{},
		orders:    []model.Order{},
		portfolio: []model.PortfolioRow{},
		stamps:    make(map[Collection]string, len(Collections)),
	}
}

// Watch makes every tenant change trigger a background reload of all three
// collections. Background reload failures are logged and swallowed: the
// previous snapshot stays in place.
func (s *Store) Watch(ctx context.Context) {
	s.tenant.Subscribe(func(id string) {
		go s.Background(ctx, Collections...)
	})
}

// Background reloads the given collections concurrently and swallows every
// error. It blocks until all reloads have settled.
func (s *Store) Background(ctx context.Context, cols ...Collection) {
	var wg sync.WaitGroup
	for _, col := range cols {
		wg.Add(1)
		go func(col Collection) {
			defer wg.Done()
			s.swallow(col, s.Reload(ctx, col))
		}(col)
	}
	wg.Wait()
}

func (s *Store) swallow(col Collection, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrStale):
		s.logger.Debug("stale reload discarded", zap.String("collection", string(col)))
	default:
		s.logger.Warn("background reload failed",
			zap.String("collection", string(col)),
			zap.Error(err),
		)
	}
}

// ReloadAll reloads all three collections concurrently. Failures are
// independent: one failing does not block or roll back the others. The
// returned error joins every failure.
func (s *Store) ReloadAll(ctx context.Context) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, col := range Collections {
		col := col
		g.Go(func() error {
			if err := s.Reload(ctx, col); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Reload reloads one collection by name.
func (s *Store) Reload(ctx context.Context, col Collection) error {
	switch col {
	case Contracts:
		return s.ReloadContracts(ctx)
	case Orders:
		return s.ReloadOrders(ctx)
	case Portfolio:
		return s.ReloadPortfolio(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCollection, col)
	}
}

// ReloadContracts replaces the contracts collection.
func (s *Store) ReloadContracts(ctx context.Context) error {
	return reload(ctx, s, Contracts, ContractsPath, func(items []model.Contract) {
		s.contracts = items
		s.version++
	})
}

// ReloadOrders replaces the orders collection.
func (s *Store) ReloadOrders(ctx context.Context) error {
	return reload(ctx, s, Orders, OrdersPath, func(items []model.Order) {
		s.orders = items
	})
}

// ReloadPortfolio replaces the portfolio collection.
func (s *Store) ReloadPortfolio(ctx context.Context) error {
	return reload(ctx, s, Portfolio, PortfolioPath, func(items []model.PortfolioRow) {
		s.portfolio = items
	})
}

// reload fetches path under the tenant captured now and applies the items
// with apply (under the write lock) only if that tenant is still current.
func reload[T any](ctx context.Context, s *Store, col Collection, path string, apply func([]T)) error {
	stamp := s.tenant.Get()

	items, err := gateway.Items[T](tenant.WithID(ctx, stamp), s.api, path)
	if err != nil {
		metrics.StoreReloads.WithLabelValues(string(col), "failed").Inc()
		return fmt.Errorf("reload %s: %w", col, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check and apply under one lock: a reload for a newer tenant starts
	// after the switch and can only apply after this one.
	if current := s.tenant.Get(); current != stamp {
		metrics.StoreReloads.WithLabelValues(string(col), "stale").Inc()
		return fmt.Errorf("%w: reload %s for %q, current %q", ErrStale, col, stamp, current)
	}
	apply(items)
	s.stamps[col] = stamp
	metrics.StoreReloads.WithLabelValues(string(col), "applied").Inc()
	return nil
}

// Snapshot returns the current collections.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stamps := make(map[Collection]string, len(s.stamps))
	for col, id := range s.stamps {
		stamps[col] = id
	}
	return Snapshot{
		Tenant:           s.tenant.Get(),
		Contracts:        s.contracts,
		Orders:           s.orders,
		Portfolio:        s.portfolio,
		Stamps:           stamps,
		ContractsVersion: s.version,
	}
}
