package events

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrStoreClosed is returned by AppendEvent after Close.
var ErrStoreClosed = errors.New("event store closed")

type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	allEvents   []Event
	closed      bool
	handlers    sync.WaitGroup
	logger      *zap.Logger
}

func NewInMemoryEventStore(logger *zap.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		logger:      logger,
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(ctx context.Context, streamID string, event Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	eventWithVersion := BaseEvent{
		EventID:      event.ID(),
		EventType:    event.Type(),
		Stream:       streamID,
		EventActor:   event.Actor(),
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}

	s.streams[streamID] = append(s.streams[streamID], eventWithVersion)
	s.allEvents = append(s.allEvents, eventWithVersion)

	// Handlers outlive the request that produced the event.
	s.dispatch(context.WithoutCancel(ctx), eventWithVersion)

	return nil
}

func (s *InMemoryEventStore) ReadEvents(_ context.Context, streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}

	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(_ context.Context, fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

// Close rejects further events and waits for running handlers to finish.
func (s *InMemoryEventStore) Close() error {
	s.mutex.Lock()
	s.closed = true
	s.mutex.Unlock()

	s.handlers.Wait()
	return nil
}

// dispatch must be called with the write lock held.
func (s *InMemoryEventStore) dispatch(ctx context.Context, event Event) {
	for _, handler := range s.subscribers[event.Type()] {
		if !handler.CanHandle(event.Type()) {
			continue
		}
		s.handlers.Add(1)
		go func(h EventHandler, e Event) {
			defer s.handlers.Done()
			if err := h.Handle(ctx, e); err != nil {
				s.logger.Warn("event handler failed",
					zap.String("event", e.Type()),
					zap.String("stream", e.StreamID()),
					zap.Error(err))
			}
		}(handler, event)
	}
}
