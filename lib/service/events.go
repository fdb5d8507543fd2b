package service

import (
	"context"
	"sync"
)

type EventKind string

const (
	EventTransactionFinalized EventKind = "transaction.finalized"
	EventLineItemsChanged     EventKind = "transaction.items_changed"
	EventPaymentChanged       EventKind = "transaction.payment_changed"
)

// TransactionEvent is published by the write path after the owning database
// transaction has committed. Transaction IDs are the external POS ids.
type TransactionEvent struct {
	Kind          EventKind
	TransactionID int64
}

type EventHandler func(ctx context.Context, event TransactionEvent) error

// ErrorSink receives handler failures. Dispatching is fail-open: a handler
// error is routed here and never returned to the publisher.
type ErrorSink func(ctx context.Context, engine string, event TransactionEvent, err error)

type registration struct {
	engine string
	handle EventHandler
}

// Dispatcher routes transaction events to the named engine handlers
// synchronously, replacing the database triggers of the legacy system.
// Engines can be paused by name, which is what the manage endpoints and the
// bulk recompute jobs use instead of ALTER TABLE ... DISABLE TRIGGER.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[EventKind][]registration
	paused   map[string]bool
	errSink  ErrorSink
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[EventKind][]registration),
		paused:   make(map[string]bool),
	}
}

func (d *Dispatcher) Register(engine string, kind EventKind, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], registration{engine: engine, handle: handler})
}

func (d *Dispatcher) OnError(sink ErrorSink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errSink = sink
}

func (d *Dispatcher) SetEnabled(engine string, enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused[engine] = !enabled
}

func (d *Dispatcher) Enabled(engine string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return !d.paused[engine]
}

// Publish invokes every enabled handler registered for the event kind.
// Handler errors go to the error sink; the publisher always succeeds.
func (d *Dispatcher) Publish(ctx context.Context, event TransactionEvent) {
	d.mu.RLock()
	registrations := make([]registration, len(d.handlers[event.Kind]))
	copy(registrations, d.handlers[event.Kind])
	sink := d.errSink
	paused := make(map[string]bool, len(d.paused))
	for engine, p := range d.paused {
		paused[engine] = p
	}
	d.mu.RUnlock()

	for _, reg := range registrations {
		if paused[reg.engine] {
			continue
		}
		if err := reg.handle(ctx, event); err != nil && sink != nil {
			sink(ctx, reg.engine, event, err)
		}
	}
}
