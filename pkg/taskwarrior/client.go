package taskwarrior

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os/exec"
	"sort"
	"time"

	"github.com/harrisonrobin/ptt/pkg/util"
)

type Client struct{}

func NewClient() *Client {
	return &Client{}
}

// GetTasks runs `task <filter> export` and decodes its output.
func (c *Client) GetTasks(filter []string) ([]Task, error) {
	args := append(filter, "export", "rc.hooks=0")
	cmd := exec.Command("task", args...)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("taskwarrior command failed: exit code %d, %s, stderr: %s",
				exitErr.ExitCode(), err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("taskwarrior command failed: %w", err)
	}
	return c.ParseTasks(bytes.NewReader(output))
}

// ParseTasks reads either a JSON array, as `task export` prints, or one JSON
// object per line, as hooks receive them.
func (c *Client) ParseTasks(r io.Reader) ([]Task, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read task json: %w", err)
	}

	decoder := json.NewDecoder(br)
	if first == '[' {
		var tasks []Task
		if err := decoder.Decode(&tasks); err != nil {
			return nil, fmt.Errorf("failed to decode task export: %w", err)
		}
		return tasks, nil
	}

	var tasks []Task
	for {
		var task Task
		if err := decoder.Decode(&task); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

// ToEntries keeps the tasks with tracked time, oldest first. The duration is
// the act UDA when present, otherwise end minus start. Deleted tasks and
// tasks still running are skipped.
func ToEntries(tasks []Task) []Entry {
	var entries []Entry
	for _, t := range tasks {
		if t.Status == DELETED || t.Start == nil || t.Start.IsZero() {
			continue
		}

		var d time.Duration
		if t.Act != "" {
			parsed, err := util.ParseDuration(t.Act)
			if err != nil {
				log.Printf("Warning: task %s: %v", t.UUID, err)
				continue
			}
			d = parsed
		} else if t.End != nil && !t.End.IsZero() {
			d = t.End.Sub(t.Start.Time)
		}
		if d <= 0 {
			continue
		}

		entries = append(entries, Entry{
			Description: t.title(),
			StartedAt:   t.Start.Time.Local(),
			Duration:    d,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartedAt.Before(entries[j].StartedAt)
	})
	return entries
}

func (t Task) title() string {
	if t.Project == "" {
		return t.Description
	}
	return t.Project + ": " + t.Description
}
