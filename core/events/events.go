/*Package events delivers document lifecycle events to registered
handlers.

The API emits an event when it creates a document; the dispatcher runs
the matching trigger handlers on a small worker pool. Handlers are not
guaranteed idempotent: the platform's retry-on-failure mechanism for
queued triggers is the only retry boundary.
*/
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/gridshop/functions/core/logger"
)

// Operation represents a document store operation
type Operation string

// all supported document operations
const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Event is a single document lifecycle event
type Event struct {
	EventID   string          `json:"event_id"`
	Resource  string          `json:"resource"`
	Operation Operation       `json:"operation"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Notifier is an interface to emit document events
type Notifier interface {
	Notify(ctx context.Context, resource string, operation Operation, payload []byte)
}

// Handler processes one event. Returning an error marks the event as
// failed; the dispatcher logs it and moves on.
type Handler func(ctx context.Context, event Event) error

// Dispatcher is an in-process notifier which runs registered handlers
// on a worker pool.
type Dispatcher struct {
	mutex    sync.RWMutex
	handlers map[string]Handler
	jobs     chan Event
	wg       sync.WaitGroup
	once     sync.Once
}

// NewDispatcher creates a dispatcher with the given number of workers
func NewDispatcher(workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		handlers: make(map[string]Handler),
		jobs:     make(chan Event, 64),
	}
	for n := 0; n < workers; n++ {
		d.wg.Add(1)
		go d.worker(n)
	}
	return d
}

func eventRequestKey(resource string, operation Operation) string {
	return resource + " " + string(operation)
}

// HandleEvent registers a handler for the resource and operation.
// Register all handlers before the first event is emitted.
func (d *Dispatcher) HandleEvent(resource string, operation Operation, handler Handler) {
	d.mutex.Lock()
	d.handlers[eventRequestKey(resource, operation)] = handler
	d.mutex.Unlock()
}

// Notify emits an event. Delivery is asynchronous; the caller does not
// learn about handler failures.
func (d *Dispatcher) Notify(ctx context.Context, resource string, operation Operation, payload []byte) {
	event := Event{
		EventID:   uuid.New().String(),
		Resource:  resource,
		Operation: operation,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	select {
	case d.jobs <- event:
	default:
		logger.FromContext(ctx).Errorln("event queue full, dropping event for", resource)
	}
}

// Close stops the workers after draining the queue
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.jobs) })
	d.wg.Wait()
}

func (d *Dispatcher) worker(n int) {
	defer d.wg.Done()

	for event := range d.jobs {
		request := eventRequestKey(event.Resource, event.Operation)
		d.mutex.RLock()
		handler, ok := d.handlers[request]
		d.mutex.RUnlock()
		if !ok {
			continue
		}

		ctx, rlog := logger.ContextWithLogger(context.Background())
		err := callWithPanicEnvelope(ctx, handler, event)
		if err != nil {
			rlog.WithError(err).Errorln("error processing", event.EventID, request)
		} else {
			rlog.Debugln("successfully handled", event.EventID, request)
		}
	}
}

func callWithPanicEnvelope(ctx context.Context, handler Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic: %s", r)
		}
	}()
	err = handler(ctx, event)
	return
}
