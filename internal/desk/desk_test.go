package desk_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgeshield/riskdesk/internal/api"
	"github.com/hedgeshield/riskdesk/internal/desk"
	"github.com/hedgeshield/riskdesk/internal/gateway"
	"github.com/hedgeshield/riskdesk/internal/gateway/gatewaytest"
	"github.com/hedgeshield/riskdesk/internal/model"
	"github.com/hedgeshield/riskdesk/internal/scenario"
	"github.com/hedgeshield/riskdesk/internal/store"
	"github.com/hedgeshield/riskdesk/internal/tenant"
)

const (
	wait = 2 * time.Second
	tick = 10 * time.Millisecond
)

// newDesk runs a desk against a real API server backed by a memory store.
func newDesk(t *testing.T, company string) *desk.Desk {
	t.Helper()
	svc := api.NewService(store.NewMemoryStore(), nil, nil)
	srv := httptest.NewServer(api.NewRouter(svc, nil, api.DefaultRouterConfig(), nil))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	tc := tenant.New(company)
	return desk.New(ctx, gateway.New(srv.URL, tc), tc, nil)
}

func TestDesk_EndToEnd(t *testing.T) {
	d := newDesk(t, "acme")
	ctx := context.Background()

	require.NoError(t, d.Refresh(ctx))
	assert.Empty(t, d.Store().Snapshot().Contracts)

	err := d.CreateContract(ctx, model.ContractRequest{
		Base:     "USD",
		Quote:    "BRL",
		Notional: model.Num(decimal.NewFromInt(1000)),
		DueDate:  time.Now().AddDate(0, 2, 0).Format("2006-01-02"),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap := d.Store().Snapshot()
		return len(snap.Contracts) == 1 && len(snap.Portfolio) == 1
	}, wait, tick)

	require.NoError(t, d.SetScenario(5))
	p := d.Projection()
	assert.True(t, p.TotalExposure.Equal(decimal.NewFromInt(1000)))
	assert.True(t, p.ProjectedPnL.Equal(decimal.NewFromInt(50)))

	v := d.View()
	assert.Equal(t, "1000.00", v.Totals.Exposure)
	assert.Equal(t, "50.00", v.Totals.PnL)
	assert.True(t, v.Totals.Positive)

	contractID := d.Store().Snapshot().Contracts[0].ID
	require.NoError(t, d.PlaceOrder(ctx, contractID, model.SideSell))

	require.Eventually(t, func() bool { return len(d.Store().Snapshot().Orders) == 1 }, wait, tick)
	o := d.Store().Snapshot().Orders[0]
	assert.Equal(t, model.SideSell, o.Side)
	assert.Equal(t, "USD/BRL", o.Pair)
	assert.True(t, o.ExecutedPrice.Equal(decimal.RequireFromString("1.05")))
	assert.True(t, o.ScenarioPct.Equal(decimal.NewFromInt(5)))
}

func TestDesk_TenantSwitchReloads(t *testing.T) {
	d := newDesk(t, "acme")
	ctx := context.Background()

	require.NoError(t, d.CreateContract(ctx, model.ContractRequest{
		Base: "EUR", Quote: "USD", Notional: model.Num(decimal.NewFromInt(250)), DueDate: "2030-01-01",
	}))
	require.Eventually(t, func() bool { return len(d.Store().Snapshot().Contracts) == 1 }, wait, tick)

	d.SetTenant("globex")
	assert.Equal(t, "globex", d.Tenant())
	require.Eventually(t, func() bool {
		snap := d.Store().Snapshot()
		return snap.Tenant == "globex" && len(snap.Contracts) == 0
	}, wait, tick)

	d.SetTenant("acme")
	require.Eventually(t, func() bool {
		snap := d.Store().Snapshot()
		return snap.Tenant == "acme" && len(snap.Contracts) == 1
	}, wait, tick)
}

func TestDesk_SetScenarioRejectsUnknown(t *testing.T) {
	tc := tenant.New("acme")
	d := desk.New(context.Background(), gatewaytest.New(tc), tc, nil)

	assert.ErrorIs(t, d.SetScenario(scenario.Scenario(3)), scenario.ErrInvalidScenario)
	assert.Equal(t, scenario.Default, d.Scenario())

	require.NoError(t, d.SetScenario(-2))
	assert.Equal(t, scenario.Scenario(-2), d.Scenario())
}

func TestDesk_PlaceOrderFailureSurfaces(t *testing.T) {
	tc := tenant.New("acme")
	fake := gatewaytest.New(tc)
	fake.Fail("", "POST", "/api/orders", &gateway.APIError{Status: 404, Message: "contract_not_found"})
	d := desk.New(context.Background(), fake, tc, nil)

	err := d.PlaceOrder(context.Background(), "missing", model.SideBuy)
	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "contract_not_found", apiErr.Message)
}
