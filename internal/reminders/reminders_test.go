package reminders

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/cron"
)

func TestAddFiresOnceReminder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.json")
	fired := make(chan string, 1)
	m := NewManager(path, func(chatID, msg string) error {
		fired <- msg
		return nil
	}, nil)

	at := time.Now().Add(50 * time.Millisecond)
	_, err := m.Add(Reminder{ChatID: "c1", Message: "hello", Kind: KindOnce, At: &at})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	select {
	case msg := <-fired:
		if msg != "hello" {
			t.Errorf("got %q, want %q", msg, "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reminder never fired")
	}

	if got := m.List(); len(got) != 0 {
		t.Errorf("expected one-shot reminder removed after fire, got %d remaining", len(got))
	}
}

func TestRestoreDropsPastOneShot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.json")
	m := NewManager(path, func(string, string) error { return nil }, nil)
	past := time.Now().Add(-time.Hour)
	if _, err := m.Add(Reminder{ChatID: "c1", Message: "stale", Kind: KindOnce, At: &past}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Add arms immediately and fires right away since At is in the past;
	// cancel it out of the timer map before restore to simulate a
	// process restart finding a stale persisted entry.
	m.StopAll()
	time.Sleep(10 * time.Millisecond)

	m2 := NewManager(path, func(string, string) error { return nil }, nil)
	m2.Restore()
	if got := m2.List(); len(got) != 0 {
		t.Errorf("expected past one-shot dropped on restore, got %d", len(got))
	}
}

func TestRestoreRedeliversCrashedOneShot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.json")
	past := time.Now().Add(-time.Hour)
	attemptAt := time.Now().Add(-30 * time.Minute)
	s := &Store{Reminders: []Reminder{{
		ID: "crashed1", ChatID: "c1", Message: "unsent", Kind: KindOnce,
		At: &past, NextFire: &past, Enabled: true, LastAttemptAt: &attemptAt,
	}}}
	if err := cron.AtomicWriteJSON(path, s); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	fired := make(chan string, 1)
	m := NewManager(path, func(chatID, msg string) error {
		fired <- msg
		return nil
	}, nil)
	m.Restore()

	select {
	case msg := <-fired:
		if msg != "unsent" {
			t.Errorf("got %q, want %q", msg, "unsent")
		}
	case <-time.After(time.Second):
		t.Fatal("expected crashed reminder to be redelivered on restore")
	}
}
