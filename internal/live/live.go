// Package live subscribes the desk to the server's change feed and turns
// each change notice into a targeted, tenant-stamped reload.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hedgeshield/riskdesk/internal/entity"
	"github.com/hedgeshield/riskdesk/internal/tenant"
)

// FeedPath is the server's live feed endpoint.
const FeedPath = "/api/ws"

// Event mirrors the server's change notice.
type Event struct {
	Type       string `json:"type"`
	Company    string `json:"company"`
	Collection string `json:"collection"`
}

// Reloader reloads collections in the background.
type Reloader interface {
	Background(ctx context.Context, cols ...entity.Collection)
}

// Subscriber keeps one feed connection open for the current tenant and
// reconnects when the tenant changes or the connection drops.
type Subscriber struct {
	url    string
	tc     *tenant.Context
	store  Reloader
	dialer *websocket.Dialer
	logger *zap.Logger
	retry  time.Duration

	mu   sync.Mutex
	conn *websocket.Conn
}

// Option configures a Subscriber.
type Option func(*Subscriber)

// WithRetry sets the delay between reconnect attempts.
func WithRetry(d time.Duration) Option {
	return func(s *Subscriber) { s.retry = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Subscriber) { s.logger = l }
}

// New creates a subscriber for the server at baseURL (http or https).
func New(baseURL string, tc *tenant.Context, st Reloader, opts ...Option) (*Subscriber, error) {
	u, err := FeedURL(baseURL)
	if err != nil {
		return nil, err
	}
	s := &Subscriber{
		url:    u,
		tc:     tc,
		store:  st,
		dialer: websocket.DefaultDialer,
		logger: zap.NewNop(),
		retry:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	// A tenant switch drops the connection; Run redials as the new tenant.
	tc.Subscribe(func(string) { s.closeConn() })
	return s, nil
}

// FeedURL maps an API base URL to its WebSocket feed URL.
func FeedURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("live: parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("live: unsupported scheme %q", u.Scheme)
	}
	u.Path += FeedPath
	return u.String(), nil
}

// Run dials the feed and dispatches events until ctx is done.
func (s *Subscriber) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.closeConn()
	}()

	for {
		id := s.tc.Get()
		connected, err := s.session(ctx, id)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if id != s.tc.Get() {
			continue
		}
		if err != nil {
			s.logger.Warn("live feed disconnected", zap.String("tenant", id), zap.Error(err))
		}
		if connected {
			// Changes made while reconnecting are not announced.
			s.store.Background(ctx, entity.Collections...)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retry):
		}
	}
}

// session holds one connection for tenant id until it fails or is closed.
// connected reports whether the dial succeeded.
func (s *Subscriber) session(ctx context.Context, id string) (connected bool, err error) {
	header := http.Header{}
	header.Set(tenant.Header, id)
	conn, _, err := s.dialer.DialContext(ctx, s.url, header)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer s.closeConn()

	// The tenant may have switched before the connection was published.
	if s.tc.Get() != id {
		return true, nil
	}
	s.logger.Info("live feed connected", zap.String("tenant", id))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, net.ErrClosed) {
				return true, nil
			}
			return true, err
		}
		s.handle(ctx, id, data)
	}
}

func (s *Subscriber) handle(ctx context.Context, id string, data []byte) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		s.logger.Debug("live feed: bad event", zap.Error(err))
		return
	}
	if ev.Company != id {
		return
	}
	col := entity.Collection(ev.Collection)
	if !known(col) {
		s.logger.Debug("live feed: unknown collection", zap.String("collection", ev.Collection))
		return
	}
	s.store.Background(ctx, col)
}

func (s *Subscriber) closeConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

func known(col entity.Collection) bool {
	for _, c := range entity.Collections {
		if c == col {
			return true
		}
	}
	return false
}
