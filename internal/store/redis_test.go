package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hedgeshield/riskdesk/internal/store"
)

// unreachableRedis points at a closed port so every cache call fails fast.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestCached_FallsBackToPrimaryWhenRedisDown(t *testing.T) {
	primary := store.NewMemoryStore()
	st := store.NewCachedStore(primary, unreachableRedis(t), time.Minute)

	seedContract(t, st, "c1", "acme", "USD", "BRL", 1000, t0)
	seedOrder(t, st, "o1", "acme", "c1", t0.Add(time.Minute))

	contracts, err := st.ListContracts(context.Background(), "acme")
	if err != nil {
		t.Fatalf("list contracts: %v", err)
	}
	if len(contracts) != 1 || contracts[0].ID != "c1" {
		t.Errorf("unexpected contracts: %+v", contracts)
	}

	orders, err := st.ListOrders(context.Background(), "acme")
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 || orders[0].Pair != "USD/BRL" {
		t.Errorf("unexpected orders: %+v", orders)
	}

	rows, err := st.Portfolio(context.Background(), "acme")
	if err != nil {
		t.Fatalf("portfolio: %v", err)
	}
	if len(rows) != 1 || rows[0].Count != 1 {
		t.Errorf("unexpected portfolio: %+v", rows)
	}
}

func TestCached_PingChecksPrimaryOnly(t *testing.T) {
	st := store.NewCachedStore(store.NewMemoryStore(), unreachableRedis(t), time.Minute)
	if err := st.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}
