package orgmode

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sample = `#+TITLE: work
CLOCK: [2019-12-17 Tue 07:00]--[2019-12-17 Tue 08:00] =>  1:00
* TODO [#A] Write report :work:writing:
:LOGBOOK:
CLOCK: [2019-12-17 Tue 09:00]--[2019-12-17 Tue 10:30] =>  1:30
CLOCK: [2019-12-17 Tue 14:00]
:END:
** Review notes
   CLOCK: [2019-12-16 Mon 16:00]--[2019-12-16 Mon 16:45] =>  0:45
* DONE Standup
CLOCK: [2019-12-17 Tue 30:00]--[2019-12-17 Tue 31:00] =>  1:00
`

func TestParse(t *testing.T) {
	clocks, err := Parse(strings.NewReader(sample), "work.org")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(clocks) != 2 {
		t.Fatalf("Expected 2 clocks, got %d: %+v", len(clocks), clocks)
	}

	first := clocks[0]
	if first.Heading != "Write report" {
		t.Errorf("Expected heading 'Write report', got '%s'", first.Heading)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "work" {
		t.Errorf("Expected tags [work writing], got %v", first.Tags)
	}
	if first.Duration != 90*time.Minute {
		t.Errorf("Expected 1h30m, got %v", first.Duration)
	}
	expectedStart := time.Date(2019, 12, 17, 9, 0, 0, 0, time.Local)
	if !first.Start.Equal(expectedStart) {
		t.Errorf("Expected start %v, got %v", expectedStart, first.Start)
	}

	if clocks[1].Heading != "Review notes" || clocks[1].Duration != 45*time.Minute {
		t.Errorf("Expected Review notes for 45m, got %+v", clocks[1])
	}
}

func TestParseFilesSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "work.org")
	if err := os.WriteFile(path, []byte(sample), 0600); err != nil {
		t.Fatal(err)
	}

	clocks, err := ParseFiles([]string{path})
	if err != nil {
		t.Fatalf("ParseFiles failed: %v", err)
	}
	if len(clocks) != 2 || clocks[0].Heading != "Review notes" {
		t.Errorf("Expected Review notes first, got %+v", clocks)
	}

	filtered := FilterClocks(clocks, "writing")
	if len(filtered) != 1 || filtered[0].Heading != "Write report" {
		t.Errorf("Expected only Write report, got %+v", filtered)
	}

	if _, err := ParseFiles([]string{filepath.Join(dir, "missing.org")}); err == nil {
		t.Error("Expected error for missing file")
	}
}
