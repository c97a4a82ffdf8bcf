package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestEventKindString tests the String method on EventKind.
func TestEventKindString(t *testing.T) {
	tests := []struct {
		kind     EventKind
		expected string
	}{
		{OnValueWrittenEvent, "value_written"},
		{OnValueDeletedEvent, "value_deleted"},
		{OnFetchRunSavedEvent, "fetch_run_saved"},
		{EventKind(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestValueWrittenEvent(t *testing.T) {
	db := newTestDB(t)

	var received []ValueWrittenEvent
	db.RegisterEventListener(OnValueWrittenEvent, func(event Event) error {
		received = append(received, event.(ValueWrittenEvent))
		return nil
	})

	if err := db.Set(context.Background(), "backend_url", "https://example.com"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if received[0].Key != "backend_url" || received[0].Size != len("https://example.com") {
		t.Errorf("unexpected event %+v", received[0])
	}
}

func TestValueDeletedEvent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	db.Set(ctx, "auth_tokens", "{}")

	var deleted []string
	db.RegisterEventListener(OnValueDeletedEvent, func(event Event) error {
		deleted = append(deleted, event.(ValueDeletedEvent).Key)
		return nil
	})

	db.Delete(ctx, "auth_tokens")
	db.Delete(ctx, "auth_tokens")

	if len(deleted) != 1 || deleted[0] != "auth_tokens" {
		t.Errorf("expected a single delete event, got %v", deleted)
	}
}

func TestFetchRunSavedEvent(t *testing.T) {
	db := newTestDB(t)

	var received FetchRunSavedEvent
	db.RegisterEventListener(OnFetchRunSavedEvent, func(event Event) error {
		received = event.(FetchRunSavedEvent)
		return nil
	})

	now := time.Now()
	id, err := db.SaveFetchRun(context.Background(), FetchRun{
		Platform: "linkedin", StartedAt: now, FinishedAt: now, Status: RunStatusOK, Count: 4,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if received.Run.ID != id || received.Run.Count != 4 {
		t.Errorf("unexpected event %+v", received.Run)
	}
}

// TestListenerErrorDoesNotFailWrite tests that listener errors are only logged.
func TestListenerErrorDoesNotFailWrite(t *testing.T) {
	db := newTestDB(t)

	secondCalled := false
	db.RegisterEventListener(OnValueWrittenEvent, func(event Event) error {
		return errors.New("listener failed")
	})
	db.RegisterEventListener(OnValueWrittenEvent, func(event Event) error {
		secondCalled = true
		return nil
	})

	if err := db.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("expected write to succeed despite listener error, got %v", err)
	}
	if !secondCalled {
		t.Error("expected later listeners to still run")
	}
}

func TestNoEventOnFailedWrite(t *testing.T) {
	db := newTestDB(t)
	called := false
	db.RegisterEventListener(OnValueWrittenEvent, func(event Event) error {
		called = true
		return nil
	})
	db.Close()

	if err := db.Set(context.Background(), "k", "v"); err == nil {
		t.Fatal("expected error writing to a closed database")
	}
	if called {
		t.Error("listener should not run when the write fails")
	}
}
