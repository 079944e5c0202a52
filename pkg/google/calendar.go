// Package google mirrors ledger tasks into a Google Calendar, one event per task.
package google

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/ptt/pkg/colors"
	"github.com/harrisonrobin/ptt/pkg/index"
	"github.com/harrisonrobin/ptt/pkg/model"
	"github.com/harrisonrobin/ptt/pkg/util"
)

// Action is what SyncTask did to the calendar.
type Action int

const (
	Unchanged Action = iota
	Created
	Updated
)

// SyncStats counts the outcome of SyncTasks.
type SyncStats struct {
	Created   int
	Updated   int
	Unchanged int
	Failed    int
}

// CalendarClient is a Google Calendar API client.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
	colors     *colors.ColorCache
}

// NewCalendarClient wraps srv. idx and cache may be nil.
func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex, cache *colors.ColorCache) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx, colors: cache}
}

func (c *CalendarClient) colorFor(task model.Task, active bool) string {
	if active {
		return colors.ActiveColorID
	}
	if c.colors == nil {
		return ""
	}
	return c.colors.GetColorID(task.Title())
}

// SyncTasks exports the ledger rows, row 0 being the active task. A task
// that fails is logged and counted, the others are still exported.
func (c *CalendarClient) SyncTasks(ctx context.Context, tasks []model.Task) SyncStats {
	var stats SyncStats
	for i, task := range tasks {
		_, action, err := c.SyncTask(ctx, task, i == 0)
		if err != nil {
			log.Printf("Warning: failed to export task %s: %v", task.ID, err)
			stats.Failed++
			continue
		}
		switch action {
		case Created:
			stats.Created++
		case Updated:
			stats.Updated++
		default:
			stats.Unchanged++
		}
	}
	return stats
}

// SyncTask creates the event of task or patches the fields that changed.
func (c *CalendarClient) SyncTask(ctx context.Context, task model.Task, active bool) (*calendar.Event, Action, error) {
	event, err := util.ConvertTaskToCalendarEvent(task, active, c.colorFor(task, active))
	if err != nil {
		return nil, Unchanged, err
	}

	var existingEvent *calendar.Event
	if c.index != nil {
		if eventID := c.index.Get(task.ID); eventID != "" {
			existingEvent, err = c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
			if err != nil || existingEvent.Status == "cancelled" {
				existingEvent = nil
			} else if id, ok := util.GetTaskIDFromEventDescription(existingEvent.Description); ok && id != task.ID {
				// stale index entry
				existingEvent = nil
			}
		}
	}

	if existingEvent == nil {
		existingEvent, err = c.GetEventByTaskID(ctx, task.ID)
		if err != nil {
			return nil, Unchanged, fmt.Errorf("error searching for event: %w", err)
		}
	}

	if existingEvent != nil {
		patch, err := util.EventNeedsUpdate(existingEvent, event)
		if err != nil {
			return nil, Unchanged, fmt.Errorf("could not compare task with its calendar event: %w", err)
		}
		if c.index != nil {
			c.index.Set(task.ID, existingEvent.Id)
		}
		if patch == nil {
			return existingEvent, Unchanged, nil
		}
		updatedEvent, err := c.PatchEvent(ctx, existingEvent.Id, patch)
		if err != nil {
			return nil, Unchanged, err
		}
		return updatedEvent, Updated, nil
	}

	createdEvent, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, Unchanged, err
	}
	if c.index != nil {
		c.index.Set(task.ID, createdEvent.Id)
	}
	return createdEvent, Created, nil
}

// PatchEvent performs a partial update on an event.
func (c *CalendarClient) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
}

// GetEventByTaskID searches for the event carrying taskID in its private
// extended properties.
func (c *CalendarClient) GetEventByTaskID(ctx context.Context, taskID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", util.EventTaskIDProperty, taskID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}
