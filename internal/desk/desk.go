// Package desk wires the tenant context, the entity store, the scenario
// engine and the action dispatcher into the object the CLI drives.
package desk

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hedgeshield/riskdesk/internal/dispatch"
	"github.com/hedgeshield/riskdesk/internal/entity"
	"github.com/hedgeshield/riskdesk/internal/gateway"
	"github.com/hedgeshield/riskdesk/internal/model"
	"github.com/hedgeshield/riskdesk/internal/scenario"
	"github.com/hedgeshield/riskdesk/internal/tenant"
	"github.com/hedgeshield/riskdesk/internal/view"
)

// Desk is one operator session.
type Desk struct {
	tenant     *tenant.Context
	store      *entity.Store
	dispatcher *dispatch.Dispatcher
	memo       scenario.Memo

	mu       sync.RWMutex
	selected scenario.Scenario
}

// New builds a desk over api. Tenant switches made with SetTenant trigger a
// background reload of every collection, bound to ctx.
func New(ctx context.Context, api gateway.Caller, tc *tenant.Context, logger *zap.Logger) *Desk {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := entity.NewStore(api, tc, logger.Named("store"))
	store.Watch(ctx)
	return &Desk{
		tenant:     tc,
		store:      store,
		dispatcher: dispatch.New(api, store, logger.Named("dispatch")),
		selected:   scenario.Default,
	}
}

// Store exposes the underlying entity store.
func (d *Desk) Store() *entity.Store {
	return d.store
}

// Tenant returns the current tenant id.
func (d *Desk) Tenant() string {
	return d.tenant.Get()
}

// TenantContext exposes the tenant context, e.g. for the live feed.
func (d *Desk) TenantContext() *tenant.Context {
	return d.tenant
}

// SetTenant switches the tenant; the reload happens in the background.
func (d *Desk) SetTenant(id string) {
	d.tenant.Set(id)
}

// Scenario returns the selected scenario.
func (d *Desk) Scenario() scenario.Scenario {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selected
}

// SetScenario selects a scenario. Values outside scenario.Scenarios are
// rejected.
func (d *Desk) SetScenario(s scenario.Scenario) error {
	if !s.Valid() {
		return scenario.ErrInvalidScenario
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected = s
	return nil
}

// Refresh reloads every collection for the current tenant and returns the
// joined errors.
func (d *Desk) Refresh(ctx context.Context) error {
	return d.store.ReloadAll(ctx)
}

// Projection returns the (memoized) projection of the current snapshot.
func (d *Desk) Projection() scenario.Projection {
	snap := d.store.Snapshot()
	return d.memo.Project(snap.ContractsVersion, snap.Contracts, d.Scenario())
}

// View builds the render-ready view of the current snapshot.
func (d *Desk) View() view.View {
	snap := d.store.Snapshot()
	p := d.memo.Project(snap.ContractsVersion, snap.Contracts, d.Scenario())
	return view.Build(snap, p)
}

// CreateContract opens a contract; see dispatch.Dispatcher.CreateContract.
func (d *Desk) CreateContract(ctx context.Context, req model.ContractRequest) error {
	return d.dispatcher.CreateContract(ctx, req)
}

// PlaceOrder places an order priced at the currently selected scenario.
func (d *Desk) PlaceOrder(ctx context.Context, contractID string, side model.Side) error {
	return d.dispatcher.PlaceOrder(ctx, contractID, side, d.Scenario())
}
