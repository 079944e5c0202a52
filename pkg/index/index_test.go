package index

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEventIndexRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ptt", EventsFile)

	idx, err := NewEventIndex(path)
	if err != nil {
		t.Fatalf("NewEventIndex failed: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("Expected empty index, got %d entries", idx.Len())
	}

	idx.Set("task-1", "event-1")
	idx.Set("task-2", "event-2")
	idx.Remove("task-2")
	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := NewEventIndex(path)
	if err != nil {
		t.Fatalf("NewEventIndex failed: %v", err)
	}
	if got := reloaded.Get("task-1"); got != "event-1" {
		t.Errorf("Expected event-1, got %q", got)
	}
	if got := reloaded.Get("task-2"); got != "" {
		t.Errorf("Expected removed mapping, got %q", got)
	}
}

func TestSaveSkipsCleanIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), EventsFile)
	idx, err := NewEventIndex(path)
	if err != nil {
		t.Fatalf("NewEventIndex failed: %v", err)
	}
	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no file for an untouched index, got %v", err)
	}

	idx.Set("a", "b")
	idx.Set("a", "b")
	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected index file, got %v", err)
	}
}

func TestNewEventIndexRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), EventsFile)
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewEventIndex(path); err == nil {
		t.Error("Expected error for corrupt index")
	}
}
