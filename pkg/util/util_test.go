package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/model"
	"google.golang.org/api/calendar/v3"
)

func TestConvertTaskToCalendarEvent(t *testing.T) {
	started := time.Date(2023, 1, 1, 9, 0, 0, 0, time.UTC)
	task := model.Task{
		ID:          "12345678-1234-1234-1234-123456789012",
		StartedAt:   started,
		Duration:    duration.Seconds(5400),
		Description: "Write report\n+ Review",
	}

	event, err := ConvertTaskToCalendarEvent(task, true, "5")
	if err != nil {
		t.Fatalf("ConvertTaskToCalendarEvent failed: %v", err)
	}

	if event.ExtendedProperties == nil || event.ExtendedProperties.Private == nil {
		t.Fatal("ExtendedProperties or Private map is nil")
	}
	if val, ok := event.ExtendedProperties.Private[EventTaskIDProperty]; !ok || val != task.ID {
		t.Errorf("Expected %s %s, got %v", EventTaskIDProperty, task.ID, val)
	}
	if event.Summary != "‣ Write report" {
		t.Errorf("Expected summary '‣ Write report', got '%s'", event.Summary)
	}
	if event.Start.DateTime != "2023-01-01T09:00:00Z" || event.End.DateTime != "2023-01-01T10:30:00Z" {
		t.Errorf("Expected 09:00-10:30, got %s-%s", event.Start.DateTime, event.End.DateTime)
	}
	if !strings.Contains(event.Description, "Tracked: 01:30") {
		t.Errorf("Expected description to contain tracked time, got: %s", event.Description)
	}
	if !strings.Contains(event.Description, "‣ Review") {
		t.Errorf("Expected description to list merged entries, got: %s", event.Description)
	}
	if id, ok := GetTaskIDFromEventDescription(event.Description); !ok || id != task.ID {
		t.Errorf("Expected ID %s from description, got %s", task.ID, id)
	}
}

func TestConvertTaskToCalendarEventRequiresStart(t *testing.T) {
	if _, err := ConvertTaskToCalendarEvent(model.Task{ID: "abc"}, false, "1"); err == nil {
		t.Error("Expected error for task without start time")
	}
	if _, err := ConvertTaskToCalendarEvent(model.Task{StartedAt: time.Now()}, false, "1"); err == nil {
		t.Error("Expected error for task without ID")
	}
}

func TestEventNeedsUpdate(t *testing.T) {
	task := model.Task{ID: "abc", StartedAt: time.Date(2023, 1, 1, 9, 0, 0, 0, time.UTC), Duration: 600, Description: "a"}
	existing, _ := ConvertTaskToCalendarEvent(task, false, "1")

	patch, err := EventNeedsUpdate(existing, existing)
	if err != nil || patch != nil {
		t.Fatalf("Expected no patch for identical events, got %v, %v", patch, err)
	}

	task.Duration = 1200
	target, _ := ConvertTaskToCalendarEvent(task, false, "1")
	patch, err = EventNeedsUpdate(existing, target)
	if err != nil {
		t.Fatalf("EventNeedsUpdate failed: %v", err)
	}
	if patch == nil || patch.End == nil || patch.End.DateTime != "2023-01-01T09:20:00Z" {
		t.Errorf("Expected end patch to 09:20, got %+v", patch)
	}

	patch, err = EventNeedsUpdate(&calendar.Event{Summary: "a"}, target)
	if err != nil || patch == nil || patch.Start == nil {
		t.Errorf("Expected full time patch for event without times, got %+v, %v", patch, err)
	}
}

func TestParseDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"":         0,
		"PT1H":     time.Hour,
		"PT30M":    30 * time.Minute,
		"PT1H30M":  90 * time.Minute,
		"PT2H5M9S": 2*time.Hour + 5*time.Minute + 9*time.Second,
		"P1D":      24 * time.Hour,
		"P1DT2H":   26 * time.Hour,
		"P1W2DT1M": 9*24*time.Hour + time.Minute,
	}
	for in, want := range tests {
		got, err := ParseDuration(in)
		if err != nil {
			t.Errorf("ParseDuration(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseDuration(%q): expected %v, got %v", in, want, got)
		}
	}

	for _, in := range []string{"1H", "P", "PT", "PTxyz", "P1H", "PxDT1H"} {
		if _, err := ParseDuration(in); err == nil {
			t.Errorf("Expected error for %q", in)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "file.txt")

	if err := WriteFileAtomic(path, []byte("one"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(b) != "two" {
		t.Errorf("Expected 'two', got '%s'", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("Expected temp file to be gone, got %v", err)
	}
}
