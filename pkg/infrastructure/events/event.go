package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one entry in the activity log.
type Event interface {
	ID() string
	Type() string
	StreamID() string
	Actor() string
	Data() interface{}
	Timestamp() time.Time
	Version() int
}

type EventHandler interface {
	Handle(ctx context.Context, event Event) error
	CanHandle(eventType string) bool
}

// HandlerFunc adapts a function into an EventHandler accepting every type it is subscribed to.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error { return f(ctx, event) }

func (f HandlerFunc) CanHandle(string) bool { return true }

type EventStore interface {
	AppendEvent(ctx context.Context, streamID string, event Event) error
	ReadEvents(ctx context.Context, streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(ctx context.Context, fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Close() error
}

type BaseEvent struct {
	EventID      string      `json:"id"`
	EventType    string      `json:"type"`
	Stream       string      `json:"stream_id"`
	EventActor   string      `json:"actor,omitempty"`
	EventData    interface{} `json:"data"`
	EventTime    time.Time   `json:"timestamp"`
	EventVersion int         `json:"version"`
}

func (e BaseEvent) ID() string {
	return e.EventID
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) StreamID() string {
	return e.Stream
}

func (e BaseEvent) Actor() string {
	return e.EventActor
}

func (e BaseEvent) Data() interface{} {
	return e.EventData
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func (e BaseEvent) Version() int {
	return e.EventVersion
}

// NewEvent builds an event for streamID, usually "<entity>:<id>".
func NewEvent(eventType, streamID, actor string, data interface{}) Event {
	return BaseEvent{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		Stream:       streamID,
		EventActor:   actor,
		EventData:    data,
		EventTime:    time.Now().UTC(),
		EventVersion: 1,
	}
}

// Stream names the activity stream of one entity.
func Stream(entity, id string) string {
	return entity + ":" + id
}
