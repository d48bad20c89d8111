package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChanged EventType = "balance_changed"
	EventTypeWarningIssued  EventType = "warning_issued"
	EventTypeLevelUp        EventType = "level_up"
	EventTypeMemberJoined   EventType = "member_joined"
	EventTypeCommandUsed    EventType = "command_used"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangedEvent represents a balance change that occurred
type BalanceChangedEvent struct {
	UserID  int64
	GuildID int64
	Amount  int64
	Reason  string
}

func (e BalanceChangedEvent) Type() EventType {
	return EventTypeBalanceChanged
}

// WarningIssuedEvent is emitted after a warning was stored on a member's record
type WarningIssuedEvent struct {
	GuildID     int64
	UserID      int64
	ModeratorID int64
	WarningID   string
	Reason      string
	Total       int
	IssuedAt    time.Time
}

func (e WarningIssuedEvent) Type() EventType {
	return EventTypeWarningIssued
}

// LevelUpEvent is emitted when message XP pushes a member to a new level
type LevelUpEvent struct {
	GuildID   int64
	UserID    int64
	ChannelID int64
	OldLevel  int
	NewLevel  int
	XP        int64
}

func (e LevelUpEvent) Type() EventType {
	return EventTypeLevelUp
}

// MemberJoinedEvent is emitted when a member joins a guild
type MemberJoinedEvent struct {
	GuildID  int64
	UserID   int64
	JoinedAt time.Time
}

func (e MemberJoinedEvent) Type() EventType {
	return EventTypeMemberJoined
}

// CommandUsedEvent is emitted after a command invocation completed
type CommandUsedEvent struct {
	GuildID int64
	UserID  int64
	Command string
	Surface string
	Failed  bool
}

func (e CommandUsedEvent) Type() EventType {
	return EventTypeCommandUsed
}

// Emitter publishes events to subscribers
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	wg       sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers.
// Handlers run on their own goroutines; a panicking handler is logged and dropped.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	// Handlers outlive the emitting command
	ctx = context.WithoutCancel(ctx)

	for i, handler := range handlers {
		b.wg.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Wait blocks until every handler started so far has returned
func (b *Bus) Wait() {
	b.wg.Wait()
}

// TransactionalBus holds events until the operation that raised them has fully succeeded
type TransactionalBus struct {
	real    Emitter
	mu      sync.Mutex
	pending []Event
}

// NewTransactionalBus wraps real
func NewTransactionalBus(real Emitter) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes e until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, e)
}

// Flush emits every pending event to the underlying bus in publish order
func (b *TransactionalBus) Flush(ctx context.Context) {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	log.WithField("pendingEventCount", len(pending)).Debug("Flushing pending events")
	for _, ev := range pending {
		b.real.Emit(ctx, ev)
	}
}

// Discard drops pending events after a failed operation
func (b *TransactionalBus) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = nil
}
