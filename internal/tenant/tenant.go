// Package tenant holds the active company (tenant) identifier. Every outbound
// API call is tagged with it, and changing it is the sole trigger for a full
// resynchronization of the desk's collections.
package tenant

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hedgeshield/riskdesk/internal/model"
)

// Header is the request header carrying the tenant id.
const Header = "X-Company"

// MaxLen is the longest tenant id the API accepts.
const MaxLen = 40

// ErrInvalidTenant is returned by Validate. Its text is the API's error detail.
var ErrInvalidTenant = errors.New("invalid_company")

// Context owns the current tenant id. The zero value is not usable; use New.
type Context struct {
	mu   sync.RWMutex
	id   string
	subs []func(id string)
}

// New creates a Context. An empty id falls back to model.DefaultTenant.
func New(id string) *Context {
	if id == "" {
		id = model.DefaultTenant
	}
	return &Context{id: id}
}

// Get returns the current tenant id.
func (c *Context) Get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

// Set switches the tenant. The id is forwarded as-is; the server is the
// authority on tenant existence. Subscribers run synchronously, after the
// new id is visible, and only when the id actually changes.
func (c *Context) Set(id string) {
	c.mu.Lock()
	if c.id == id {
		c.mu.Unlock()
		return
	}
	c.id = id
	subs := make([]func(string), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(id)
	}
}

// Subscribe registers fn to be called on every tenant change.
func (c *Context) Subscribe(fn func(id string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

type ctxKey struct{}

// WithID returns a context carrying a captured tenant id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the tenant id captured on ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok
}

// Validate normalizes a tenant id received by the API: blank means default;
// ids longer than MaxLen or containing characters outside [A-Za-z0-9-_.]
// are rejected.
func Validate(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.DefaultTenant, nil
	}
	if len(id) > MaxLen {
		return "", ErrInvalidTenant
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return "", ErrInvalidTenant
		}
	}
	return id, nil
}
