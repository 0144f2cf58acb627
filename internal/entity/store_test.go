package entity_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgeshield/riskdesk/internal/entity"
	"github.com/hedgeshield/riskdesk/internal/gateway"
	"github.com/hedgeshield/riskdesk/internal/gateway/gatewaytest"
	"github.com/hedgeshield/riskdesk/internal/model"
	"github.com/hedgeshield/riskdesk/internal/tenant"
)

const (
	contractsA = `{"items":[{"id":"a1","pair":"USD/BRL","notional":1000}]}`
	contractsB = `{"items":[{"id":"b1","pair":"EUR/USD","notional":250},{"id":"b2","pair":"GBP/USD","notional":"750"}]}`
)

func newTestStore(t *testing.T, id string) (*entity.Store, *gatewaytest.Fake, *tenant.Context) {
	t.Helper()
	tc := tenant.New(id)
	fake := gatewaytest.New(tc)
	return entity.NewStore(fake, tc, nil), fake, tc
}

func contractIDs(s entity.Snapshot) []string {
	ids := make([]string, 0, len(s.Contracts))
	for _, c := range s.Contracts {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestStore_StartsEmpty(t *testing.T) {
	s, _, _ := newTestStore(t, "a")
	snap := s.Snapshot()
	assert.Equal(t, "a", snap.Tenant)
	assert.NotNil(t, snap.Contracts)
	assert.Empty(t, snap.Contracts)
	assert.Empty(t, snap.Orders)
	assert.Empty(t, snap.Portfolio)
	assert.Zero(t, snap.ContractsVersion)
}

func TestReloadAll_ReplacesCollections(t *testing.T) {
	s, fake, _ := newTestStore(t, "a")
	fake.Respond("a", http.MethodGet, entity.ContractsPath, contractsA)
	fake.Respond("a", http.MethodGet, entity.OrdersPath, `{"items":[{"id":"o1","contract_id":"a1","side":"BUY","executed_price":"1.05","scenario_pct":5}]}`)
	fake.Respond("a", http.MethodGet, entity.PortfolioPath, `{"items":[{"pair":"USD/BRL","total_notional":1000,"count":1}]}`)

	require.NoError(t, s.ReloadAll(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, []string{"a1"}, contractIDs(snap))
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, "1.05", snap.Orders[0].ExecutedPrice.String())
	require.Len(t, snap.Portfolio, 1)
	assert.Equal(t, model.Int(1), snap.Portfolio[0].Count)
	assert.Equal(t, uint64(1), snap.ContractsVersion)

	for _, c := range fake.Calls() {
		assert.Equal(t, "a", c.Tenant)
	}
}

func TestReload_FailureKeepsPreviousSnapshot(t *testing.T) {
	s, fake, _ := newTestStore(t, "a")
	fake.Respond("a", http.MethodGet, entity.ContractsPath, contractsA)
	require.NoError(t, s.ReloadContracts(context.Background()))

	boom := &gateway.APIError{Status: 500, Message: "HTTP 500"}
	fake.Fail("a", http.MethodGet, entity.ContractsPath, boom)

	err := s.ReloadContracts(context.Background())
	require.Error(t, err)
	var apiErr *gateway.APIError
	assert.True(t, errors.As(err, &apiErr))

	snap := s.Snapshot()
	assert.Equal(t, []string{"a1"}, contractIDs(snap))
	assert.Equal(t, uint64(1), snap.ContractsVersion)
}

func TestReloadAll_FailuresAreIndependent(t *testing.T) {
	s, fake, _ := newTestStore(t, "a")
	fake.Respond("a", http.MethodGet, entity.ContractsPath, contractsA)
	fake.Fail("a", http.MethodGet, entity.OrdersPath, &gateway.APIError{Status: 503, Message: "HTTP 503"})
	fake.Respond("a", http.MethodGet, entity.PortfolioPath, `{"items":[{"pair":"USD/BRL","total_notional":1000,"count":1}]}`)

	err := s.ReloadAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reload orders")

	snap := s.Snapshot()
	assert.Len(t, snap.Contracts, 1)
	assert.Empty(t, snap.Orders)
	assert.Len(t, snap.Portfolio, 1)
}

func TestReload_UnknownCollection(t *testing.T) {
	s, _, _ := newTestStore(t, "a")
	err := s.Reload(context.Background(), entity.Collection("positions"))
	assert.ErrorIs(t, err, entity.ErrUnknownCollection)
}

// A reload for tenant A is in flight; the operator switches to B; B's reload
// resolves first; A's response arrives last. The store must hold B's data.
func TestReload_StaleTenantResponseIsDiscarded(t *testing.T) {
	s, fake, tc := newTestStore(t, "a")
	fake.Respond("a", http.MethodGet, entity.ContractsPath, contractsA)
	fake.Respond("b", http.MethodGet, entity.ContractsPath, contractsB)
	hold := fake.Hold("a", http.MethodGet, entity.ContractsPath)

	errA := make(chan error, 1)
	go func() { errA <- s.ReloadContracts(context.Background()) }()
	<-hold.Entered

	tc.Set("b")
	require.NoError(t, s.ReloadContracts(context.Background()))
	assert.Equal(t, []string{"b1", "b2"}, contractIDs(s.Snapshot()))

	close(hold.Release)
	err := <-errA
	assert.ErrorIs(t, err, entity.ErrStale)

	snap := s.Snapshot()
	assert.Equal(t, "b", snap.Tenant)
	assert.Equal(t, []string{"b1", "b2"}, contractIDs(snap))
	assert.Equal(t, uint64(1), snap.ContractsVersion)
}

// Same race without B's reload completing first: A's late response still
// must not be applied once B is current.
func TestReload_StaleResponseDiscardedEvenBeforeNewTenantLoads(t *testing.T) {
	s, fake, tc := newTestStore(t, "a")
	fake.Respond("a", http.MethodGet, entity.ContractsPath, contractsA)
	hold := fake.Hold("a", http.MethodGet, entity.ContractsPath)

	errA := make(chan error, 1)
	go func() { errA <- s.ReloadContracts(context.Background()) }()
	<-hold.Entered

	tc.Set("b")
	close(hold.Release)

	assert.ErrorIs(t, <-errA, entity.ErrStale)
	assert.Empty(t, s.Snapshot().Contracts)
}

func TestWatch_TenantSwitchReloadsAllCollections(t *testing.T) {
	s, fake, tc := newTestStore(t, "a")
	fake.Respond("b", http.MethodGet, entity.ContractsPath, contractsB)
	s.Watch(context.Background())

	tc.Set("b")

	require.Eventually(t, func() bool {
		return fake.Count(http.MethodGet, entity.ContractsPath) == 1 &&
			fake.Count(http.MethodGet, entity.OrdersPath) == 1 &&
			fake.Count(http.MethodGet, entity.PortfolioPath) == 1 &&
			len(s.Snapshot().Contracts) == 2
	}, time.Second, 5*time.Millisecond)

	for _, c := range fake.Calls() {
		assert.Equal(t, "b", c.Tenant)
	}
}

func TestBackground_SwallowsErrors(t *testing.T) {
	s, fake, _ := newTestStore(t, "a")
	fake.Respond("a", http.MethodGet, entity.ContractsPath, contractsA)
	require.NoError(t, s.ReloadContracts(context.Background()))

	fake.Fail("", http.MethodGet, entity.ContractsPath, &gateway.APIError{Message: "connection refused"})
	fake.Fail("a", http.MethodGet, entity.ContractsPath, &gateway.APIError{Message: "connection refused"})

	// does not panic or surface anything; the old snapshot survives
	s.Background(context.Background(), entity.Collections...)
	assert.Equal(t, []string{"a1"}, contractIDs(s.Snapshot()))
}

func TestReload_EmptySuccessBodyKeepsPreviousSnapshot(t *testing.T) {
	var body atomic.Value
	body.Store(contractsA)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body.Load().(string))
	}))
	defer srv.Close()

	tc := tenant.New("a")
	s := entity.NewStore(gateway.New(srv.URL, tc), tc, nil)
	require.NoError(t, s.ReloadContracts(context.Background()))

	body.Store("")
	err := s.ReloadContracts(context.Background())
	require.Error(t, err)
	var apiErr *gateway.APIError
	assert.True(t, errors.As(err, &apiErr))

	snap := s.Snapshot()
	assert.Equal(t, []string{"a1"}, contractIDs(snap))
	assert.Equal(t, uint64(1), snap.ContractsVersion)
}

func TestReload_LenientCounters(t *testing.T) {
	s, fake, _ := newTestStore(t, "a")
	fake.Respond("a", http.MethodGet, entity.ContractsPath, `{"items":[{"id":"c1","notional":1000,"days_left":"12"}]}`)
	fake.Respond("a", http.MethodGet, entity.PortfolioPath, `{"items":[{"pair":"USD/BRL","total_notional":"1000","count":"2"}]}`)

	require.NoError(t, s.ReloadAll(context.Background()))

	snap := s.Snapshot()
	require.Len(t, snap.Contracts, 1)
	assert.Equal(t, model.Int(12), snap.Contracts[0].DaysLeft)
	require.Len(t, snap.Portfolio, 1)
	assert.Equal(t, model.Int(2), snap.Portfolio[0].Count)
}

func TestSnapshot_StampsFollowAppliedData(t *testing.T) {
	s, fake, tc := newTestStore(t, "a")
	assert.Equal(t, entity.Collections, s.Snapshot().Behind(), "nothing loaded yet")

	fake.Respond("a", http.MethodGet, entity.ContractsPath, contractsA)
	require.NoError(t, s.ReloadAll(context.Background()))
	snap := s.Snapshot()
	assert.Empty(t, snap.Behind())
	assert.Equal(t, "a", snap.Stamps[entity.Contracts])

	// B's contracts reload fails; the cached rows still belong to A.
	tc.Set("b")
	fake.Fail("b", http.MethodGet, entity.ContractsPath, &gateway.APIError{Status: 500, Message: "HTTP 500"})
	s.Background(context.Background(), entity.Collections...)

	snap = s.Snapshot()
	assert.Equal(t, "b", snap.Tenant)
	assert.Equal(t, []string{"a1"}, contractIDs(snap))
	assert.Equal(t, "a", snap.Stamps[entity.Contracts])
	assert.Equal(t, "b", snap.Stamps[entity.Orders])
	assert.Equal(t, []entity.Collection{entity.Contracts}, snap.Behind())
}
