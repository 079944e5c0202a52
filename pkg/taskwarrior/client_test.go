package taskwarrior

import (
	"strings"
	"testing"
	"time"
)

func TestParseTasksArray(t *testing.T) {
	input := `[
		{"uuid": "a", "description": "Buy milk", "status": "completed", "project": "Groceries",
		 "start": "20230101T120000Z", "end": "20230101T123000Z"},
		{"uuid": "b", "description": "Call bank", "status": "pending", "tags": ["phone"]}
	]`

	tasks, err := NewClient().ParseTasks(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Project != "Groceries" {
		t.Errorf("Expected Project 'Groceries', got '%s'", tasks[0].Project)
	}
	expectedStart, _ := time.Parse(time.RFC3339, "2023-01-01T12:00:00Z")
	if !tasks[0].Start.Time.Equal(expectedStart) {
		t.Errorf("Expected Start %v, got %v", expectedStart, tasks[0].Start.Time)
	}
	if len(tasks[1].Tags) != 1 {
		t.Errorf("Expected 1 tag, got %d", len(tasks[1].Tags))
	}
}

func TestParseTasksLines(t *testing.T) {
	input := "{\"uuid\": \"a\", \"description\": \"one\"}\n{\"uuid\": \"b\", \"description\": \"two\"}\n"

	tasks, err := NewClient().ParseTasks(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTasks failed: %v", err)
	}
	if len(tasks) != 2 || tasks[1].Description != "two" {
		t.Errorf("Expected two tasks ending with 'two', got %+v", tasks)
	}
}

func TestParseTasksEmpty(t *testing.T) {
	tasks, err := NewClient().ParseTasks(strings.NewReader("  \n"))
	if err != nil {
		t.Fatalf("ParseTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Expected no tasks, got %d", len(tasks))
	}
}

func TestParseTasksInvalid(t *testing.T) {
	if _, err := NewClient().ParseTasks(strings.NewReader(`[{"uuid": `)); err == nil {
		t.Error("Expected error for truncated export")
	}
	if _, err := NewClient().ParseTasks(strings.NewReader(`{"start": "yesterday"}`)); err == nil {
		t.Error("Expected error for bad timestamp")
	}
}

func TestToEntries(t *testing.T) {
	input := `[
		{"uuid": "late", "description": "Review", "status": "completed",
		 "start": "20230102T090000Z", "end": "20230102T100000Z"},
		{"uuid": "act", "description": "Report", "project": "work", "status": "completed",
		 "start": "20230101T090000Z", "end": "20230101T180000Z", "act": "PT1H30M"},
		{"uuid": "running", "description": "Open", "status": "pending", "start": "20230103T090000Z"},
		{"uuid": "gone", "description": "Gone", "status": "deleted",
		 "start": "20230101T090000Z", "end": "20230101T100000Z"},
		{"uuid": "never", "description": "Never started", "status": "pending"}
	]`
	tasks, err := NewClient().ParseTasks(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTasks failed: %v", err)
	}

	entries := ToEntries(tasks)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Description != "work: Report" {
		t.Errorf("Expected 'work: Report' first, got '%s'", entries[0].Description)
	}
	if entries[0].Duration != 90*time.Minute {
		t.Errorf("Expected act duration 1h30m, got %v", entries[0].Duration)
	}
	if entries[1].Description != "Review" || entries[1].Duration != time.Hour {
		t.Errorf("Expected Review for 1h, got %+v", entries[1])
	}
}

func TestToEntriesActWithDays(t *testing.T) {
	input := `{"uuid": "long", "description": "Migration", "status": "completed",
		"start": "20230101T090000Z", "end": "20230102T110000Z", "act": "P1DT2H"}`
	tasks, err := NewClient().ParseTasks(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTasks failed: %v", err)
	}

	entries := ToEntries(tasks)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Duration != 26*time.Hour {
		t.Errorf("Expected 26h, got %v", entries[0].Duration)
	}
}
