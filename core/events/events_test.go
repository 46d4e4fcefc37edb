package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherDelivers(t *testing.T) {
	dispatcher := NewDispatcher(2)

	var mutex sync.Mutex
	var received []Event
	done := make(chan struct{})
	dispatcher.HandleEvent("users", OperationCreate, func(ctx context.Context, event Event) error {
		mutex.Lock()
		received = append(received, event)
		mutex.Unlock()
		close(done)
		return nil
	})

	dispatcher.Notify(context.Background(), "users", OperationCreate, []byte(`{"uid":"u1"}`))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
	dispatcher.Close()

	mutex.Lock()
	defer mutex.Unlock()
	assert.Len(t, received, 1)
	assert.Equal(t, "users", received[0].Resource)
	assert.Equal(t, OperationCreate, received[0].Operation)
	assert.NotEmpty(t, received[0].EventID)
	assert.JSONEq(t, `{"uid":"u1"}`, string(received[0].Payload))
}

func TestDispatcherIgnoresUnhandledResource(t *testing.T) {
	dispatcher := NewDispatcher(1)
	dispatcher.Notify(context.Background(), "unknown", OperationCreate, []byte(`{}`))
	dispatcher.Close() // drains without a handler, must not hang
}

func TestDispatcherSurvivesPanickingHandler(t *testing.T) {
	dispatcher := NewDispatcher(1)

	var delivered bool
	done := make(chan struct{})
	dispatcher.HandleEvent("users", OperationCreate, func(ctx context.Context, event Event) error {
		panic("handler exploded")
	})
	dispatcher.HandleEvent("reviews", OperationCreate, func(ctx context.Context, event Event) error {
		delivered = true
		close(done)
		return nil
	})

	dispatcher.Notify(context.Background(), "users", OperationCreate, []byte(`{}`))
	dispatcher.Notify(context.Background(), "reviews", OperationCreate, []byte(`{}`))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
	dispatcher.Close()
	assert.True(t, delivered)
}
