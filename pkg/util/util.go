package util

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/model"
	"google.golang.org/api/calendar/v3"
)

// EventTaskIDProperty is the private extended property carrying the ledger task ID.
const EventTaskIDProperty = "ptt_id"

var (
	isoDateRe     = regexp.MustCompile(`^(?:(\d+)W)?(?:(\d+)D)?$`)
	isoDurationRe = regexp.MustCompile(`(\d+)([HMS])`)
)

// ParseDuration parses ISO 8601 duration format (PT1H30M, P1DT2H) from Taskwarrior JSON export.
// A day is 24 hours.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	if len(s) < 2 || s[0] != 'P' {
		return 0, fmt.Errorf("invalid ISO 8601 duration format: %s", s)
	}

	datePart, timePart, hasTime := strings.Cut(s[1:], "T")
	date := isoDateRe.FindStringSubmatch(datePart)
	if date == nil {
		return 0, fmt.Errorf("invalid ISO 8601 duration date part: %s", s)
	}

	var total time.Duration
	if date[1] != "" {
		weeks, _ := strconv.Atoi(date[1])
		total += time.Duration(weeks) * 7 * 24 * time.Hour
	}
	if date[2] != "" {
		days, _ := strconv.Atoi(date[2])
		total += time.Duration(days) * 24 * time.Hour
	}

	if hasTime {
		for _, match := range isoDurationRe.FindAllStringSubmatch(timePart, -1) {
			value, _ := strconv.Atoi(match[1])
			switch match[2] {
			case "H":
				total += time.Duration(value) * time.Hour
			case "M":
				total += time.Duration(value) * time.Minute
			case "S":
				total += time.Duration(value) * time.Second
			}
		}
	}

	if total == 0 {
		return 0, fmt.Errorf("invalid ISO 8601 duration: %s", s)
	}

	return total, nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// EventNeedsUpdate returns a patch event if the fields shared between the existing
// calendar event and the freshly converted one differ, nil otherwise.
func EventNeedsUpdate(existingEvent *calendar.Event, targetEvent *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existingEvent.Summary != targetEvent.Summary {
		patch.Summary = targetEvent.Summary
		needsUpdate = true
	}

	if existingEvent.Description != targetEvent.Description {
		patch.Description = targetEvent.Description
		needsUpdate = true
	}

	if existingEvent.ColorId != targetEvent.ColorId {
		patch.ColorId = targetEvent.ColorId
		needsUpdate = true
	}

	if existingEvent.Start == nil || existingEvent.End == nil {
		patch.Start = targetEvent.Start
		patch.End = targetEvent.End
		return patch, nil
	}

	existingStartTime, err := time.Parse(time.RFC3339, existingEvent.Start.DateTime)
	if err != nil {
		return nil, err
	}
	targetStartTime, err := time.Parse(time.RFC3339, targetEvent.Start.DateTime)
	if err != nil {
		return nil, err
	}
	existingEndTime, err := time.Parse(time.RFC3339, existingEvent.End.DateTime)
	if err != nil {
		return nil, err
	}
	targetEndTime, err := time.Parse(time.RFC3339, targetEvent.End.DateTime)
	if err != nil {
		return nil, err
	}

	if !existingStartTime.Equal(targetStartTime) || !existingEndTime.Equal(targetEndTime) {
		patch.Start = targetEvent.Start
		patch.End = targetEvent.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

// ConvertTaskToCalendarEvent turns a tracked task into a calendar event
// spanning StartedAt to StartedAt+Duration.
func ConvertTaskToCalendarEvent(task model.Task, active bool, colorID string) (*calendar.Event, error) {
	if task.ID == "" {
		return nil, fmt.Errorf("could not convert task without ID")
	}
	if task.StartedAt.IsZero() {
		return nil, fmt.Errorf("task has no start time: %s", task.ID)
	}

	summary := task.Title()
	if summary == "" {
		summary = "(no description)"
	}
	if active {
		summary = "‣ " + summary
	}

	var descBuilder strings.Builder
	descBuilder.WriteString(fmt.Sprintf("Tracked: %s\n", task.Duration.Format(duration.FormatHHMM)))
	if active {
		descBuilder.WriteString("Status: active\n")
	}
	descBuilder.WriteString(fmt.Sprintf("ID: %s\n", task.ID))

	if lines := strings.Split(task.Description, "\n"); len(lines) > 1 {
		descBuilder.WriteString("\nMerged:\n")
		for _, line := range lines {
			descBuilder.WriteString(fmt.Sprintf("‣ %s\n", strings.TrimPrefix(line, "+ ")))
		}
	}

	event := &calendar.Event{
		Summary: summary,
		ColorId: colorID,
		Start: &calendar.EventDateTime{
			DateTime: task.StartedAt.UTC().Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: task.End().UTC().Format(time.RFC3339),
		},
		Description: descBuilder.String(),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				EventTaskIDProperty: task.ID,
			},
		},
	}

	return event, nil
}

var eventIDRe = regexp.MustCompile(`ID: ([a-f0-9\-]+)`)

// GetTaskIDFromEventDescription parses the task ID from the event description.
func GetTaskIDFromEventDescription(description string) (string, bool) {
	matches := eventIDRe.FindStringSubmatch(description)
	if len(matches) > 1 {
		return matches[1], true
	}
	return "", false
}
