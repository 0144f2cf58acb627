package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hedgeshield/riskdesk/internal/api"
	"github.com/hedgeshield/riskdesk/internal/store"
)

func dialFeed(t *testing.T, srv *httptest.Server, company string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	header := http.Header{}
	header.Set("X-Company", company)
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitClients(t *testing.T, hub *api.Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_BroadcastsToCompanyOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := api.NewHub(nil)
	go hub.Run(ctx)
	svc := api.NewService(store.NewMemoryStore(), hub, nil)
	srv := httptest.NewServer(api.NewRouter(svc, hub, api.DefaultRouterConfig(), nil))
	defer srv.Close()

	acme := dialFeed(t, srv, "acme")
	globex := dialFeed(t, srv, "globex")
	waitClients(t, hub, 2)

	body, _ := json.Marshal(map[string]any{
		"base": "USD", "quote": "BRL", "notional": 1000, "due_date": "2026-05-01",
	})
	req, _ := http.NewRequest("POST", srv.URL+"/api/contracts", bytes.NewReader(body))
	req.Header.Set("X-Company", "acme")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var got []api.Event
	acme.SetReadDeadline(time.Now().Add(2 * time.Second))
	for len(got) < 2 {
		var ev api.Event
		if err := acme.ReadJSON(&ev); err != nil {
			t.Fatalf("read event: %v", err)
		}
		got = append(got, ev)
	}
	if got[0].Collection != "contracts" || got[1].Collection != "portfolio" {
		t.Errorf("unexpected collections: %+v", got)
	}
	for _, ev := range got {
		if ev.Type != api.EventChanged || ev.Company != "acme" {
			t.Errorf("unexpected event: %+v", ev)
		}
	}

	globex.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := globex.ReadMessage(); err == nil {
		t.Error("globex should not receive acme events")
	}
}
