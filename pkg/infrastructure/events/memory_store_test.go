package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestInMemoryEventStore_StreamVersions(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	store := NewInMemoryEventStore(nil)
	defer store.Close()

	stream := Stream("invoice", "i1")
	require.NoError(t, store.AppendEvent(ctx, stream, NewEvent(InvoiceSubmittedEvent, stream, "u1", nil)))
	require.NoError(t, store.AppendEvent(ctx, stream, NewEvent(InvoiceApprovedEvent, stream, "u2", StatusChanged{From: "submitted", To: "approved"})))
	require.NoError(t, store.AppendEvent(ctx, Stream("invoice", "i2"), NewEvent(InvoiceSubmittedEvent, "", "u1", nil)))

	got, err := store.ReadEvents(ctx, stream, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Version())
	assert.Equal(t, 2, got[1].Version())
	assert.Equal(t, "u2", got[1].Actor())
	assert.Equal(t, StatusChanged{From: "submitted", To: "approved"}, got[1].Data())

	tail, err := store.ReadEvents(ctx, stream, 2)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, InvoiceApprovedEvent, tail[0].Type())

	all, err := store.ReadAllEvents(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, Stream("invoice", "i2"), all[1].StreamID())

	none, err := store.ReadEvents(ctx, "missing", 1)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemoryEventStore_CloseWaitsForHandlers(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	store := NewInMemoryEventStore(nil)

	var handled atomic.Int32
	release := make(chan struct{})
	require.NoError(t, store.Subscribe([]string{PaymentProcessedEvent}, HandlerFunc(func(context.Context, Event) error {
		<-release
		handled.Add(1)
		return nil
	})))
	require.NoError(t, store.Subscribe([]string{PaymentProcessedEvent}, HandlerFunc(func(context.Context, Event) error {
		handled.Add(1)
		return errors.New("handler failure is only logged")
	})))

	require.NoError(t, store.AppendEvent(ctx, "invoice:i1", NewEvent(PaymentProcessedEvent, "invoice:i1", "", nil)))
	require.NoError(t, store.AppendEvent(ctx, "invoice:i1", NewEvent(InvoicePaidEvent, "invoice:i1", "", nil)))

	done := make(chan struct{})
	go func() {
		_ = store.Close()
		close(done)
	}()
	close(release)
	<-done

	assert.Equal(t, int32(2), handled.Load())
	assert.ErrorIs(t, store.AppendEvent(ctx, "invoice:i1", NewEvent(InvoicePaidEvent, "invoice:i1", "", nil)), ErrStoreClosed)
}

type typedHandler struct {
	accept string
	seen   atomic.Int32
}

func (h *typedHandler) Handle(context.Context, Event) error {
	h.seen.Add(1)
	return nil
}

func (h *typedHandler) CanHandle(eventType string) bool { return eventType == h.accept }

func TestInMemoryEventStore_CanHandleFilters(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	store := NewInMemoryEventStore(nil)

	h := &typedHandler{accept: POApprovedEvent}
	require.NoError(t, store.Subscribe([]string{POApprovedEvent, POSentEvent}, h))
	require.NoError(t, store.AppendEvent(ctx, "po:1", NewEvent(POApprovedEvent, "po:1", "", nil)))
	require.NoError(t, store.AppendEvent(ctx, "po:1", NewEvent(POSentEvent, "po:1", "", nil)))
	require.NoError(t, store.Close())

	assert.Equal(t, int32(1), h.seen.Load())
}
