package db

import "log"

// ------------------------------
// Event System
// ------------------------------
//
// The DB emits typed events when values are written or deleted and when a
// fetch run is recorded. Register listeners to react to these changes.
//
// Example usage:
//
//	db.RegisterEventListener(db.OnValueWrittenEvent, func(event db.Event) error {
//	    ev := event.(db.ValueWrittenEvent)
//	    log.Printf("Stored %s (%d bytes)", ev.Key, ev.Size)
//	    return nil
//	})
//
// Event is the common interface for all database events.
type Event interface {
	Kind() EventKind
}

// EventKind represents all the kinds of events that can be emitted by the DB.
type EventKind int

const (
	// OnValueWrittenEvent is emitted when a key is created or overwritten.
	OnValueWrittenEvent EventKind = iota
	// OnValueDeletedEvent is emitted when a key is removed.
	OnValueDeletedEvent
	// OnFetchRunSavedEvent is emitted when a fetch outcome is recorded.
	OnFetchRunSavedEvent
)

func (k EventKind) String() string {
	switch k {
	case OnValueWrittenEvent:
		return "value_written"
	case OnValueDeletedEvent:
		return "value_deleted"
	case OnFetchRunSavedEvent:
		return "fetch_run_saved"
	default:
		return "unknown"
	}
}

// ValueWrittenEvent carries the key and value size, never the value itself,
// since values may hold session credentials.
type ValueWrittenEvent struct {
	Key  string
	Size int
}

func (e ValueWrittenEvent) Kind() EventKind { return OnValueWrittenEvent }

type ValueDeletedEvent struct {
	Key string
}

func (e ValueDeletedEvent) Kind() EventKind { return OnValueDeletedEvent }

type FetchRunSavedEvent struct {
	Run FetchRun
}

func (e FetchRunSavedEvent) Kind() EventKind { return OnFetchRunSavedEvent }

// EventListener is a callback that handles events of a specific kind.
type EventListener func(event Event) error

// RegisterEventListener adds a listener for a specific event kind.
// Listeners are called synchronously in registration order after the DB operation succeeds.
func (db *DB) RegisterEventListener(eventKind EventKind, listener EventListener) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.eventListeners == nil {
		db.eventListeners = make(map[EventKind][]EventListener)
	}
	db.eventListeners[eventKind] = append(db.eventListeners[eventKind], listener)
}

// emit dispatches an event to all registered listeners for that event kind.
func (db *DB) emit(event Event) {
	db.mu.RLock()
	listeners := append([]EventListener(nil), db.eventListeners[event.Kind()]...)
	db.mu.RUnlock()
	for _, listener := range listeners {
		if err := listener(event); err != nil {
			log.Printf("Event listener error for %s: %v", event.Kind(), err)
		}
	}
}
