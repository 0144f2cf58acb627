// Package gatewaytest provides a scriptable in-memory gateway.Caller for
// tests of the desk components.
package gatewaytest

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/hedgeshield/riskdesk/internal/tenant"
)

// Call records one request made through the Fake.
type Call struct {
	Method string
	Path   string
	Tenant string
	Body   any
}

type key struct {
	tenant, method, path string
}

type response struct {
	body string
	err  error
}

// Hold blocks the next matching call until Release is closed.
// Entered is closed once the call has been issued.
type Hold struct {
	Entered chan struct{}
	Release chan struct{}
}

// Fake is a gateway.Caller with scripted responses. Unscripted GETs return
// {"items":[]}, unscripted writes return {"ok":true}.
type Fake struct {
	// Tenant resolves the tenant for calls without a captured id, the way
	// gateway.Client does. Optional.
	Tenant *tenant.Context

	mu        sync.Mutex
	calls     []Call
	responses map[key]response
	holds     map[key]*Hold
}

// New creates an empty Fake.
func New(tc *tenant.Context) *Fake {
	return &Fake{
		Tenant:    tc,
		responses: make(map[key]response),
		holds:     make(map[key]*Hold),
	}
}

// Respond scripts the JSON body for (tenant, method, path). An empty tenant
// matches any tenant without a more specific script.
func (f *Fake) Respond(tenantID, method, path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key{tenantID, method, path}] = response{body: body}
}

// Fail scripts an error for (tenant, method, path).
func (f *Fake) Fail(tenantID, method, path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key{tenantID, method, path}] = response{err: err}
}

// Hold makes the next call for (tenant, method, path) block until released.
func (f *Fake) Hold(tenantID, method, path string) *Hold {
	h := &Hold{Entered: make(chan struct{}), Release: make(chan struct{})}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holds[key{tenantID, method, path}] = h
	return h
}

// Call implements gateway.Caller.
func (f *Fake) Call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	id, ok := tenant.FromContext(ctx)
	if !ok && f.Tenant != nil {
		id = f.Tenant.Get()
	}

	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: method, Path: path, Tenant: id, Body: body})
	k := key{id, method, path}
	h := f.holds[k]
	delete(f.holds, k)
	f.mu.Unlock()

	if h != nil {
		close(h.Entered)
		select {
		case <-h.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	resp, ok := f.responses[k]
	if !ok {
		resp, ok = f.responses[key{"", method, path}]
	}
	f.mu.Unlock()

	switch {
	case !ok && method == http.MethodGet:
		return json.RawMessage(`{"items":[]}`), nil
	case !ok:
		return json.RawMessage(`{"ok":true}`), nil
	case resp.err != nil:
		return nil, resp.err
	default:
		return json.RawMessage(resp.body), nil
	}
}

// Calls returns every recorded call in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Count returns how many calls matched method and path.
func (f *Fake) Count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls; scripts are kept.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
