package api

import (
	"context"
	"sort"
	"sync"

	"github.com/tendant/simple-pagedata/pkg/pagedata"
)

// Dispatcher routes named editor actions to their handlers.
type Dispatcher struct {
	mu      sync.RWMutex
	actions map[string]pagedata.ActionFunc
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{actions: make(map[string]pagedata.ActionFunc)}
}

// Register implements pagedata.ActionRegistrar. A later registration for
// the same action replaces the earlier one.
func (d *Dispatcher) Register(action string, fn pagedata.ActionFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions[action] = fn
}

// Dispatch runs the handler for action. ok is false when no handler is
// registered.
func (d *Dispatcher) Dispatch(ctx context.Context, action string, req pagedata.Request, response pagedata.Response, payload pagedata.Payload) (pagedata.Response, bool) {
	d.mu.RLock()
	fn, ok := d.actions[action]
	d.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return fn(ctx, req, response, payload), true
}

// Actions lists the registered action names in sorted order
func (d *Dispatcher) Actions() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.actions))
	for name := range d.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ pagedata.ActionRegistrar = (*Dispatcher)(nil)
