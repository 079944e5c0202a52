package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/session"
	"github.com/harrisonrobin/ptt/pkg/store"
)

var errQuit = errors.New("quit")

const replHelp = `commands:
  add <description>          add a task and make it active
  activate <row>             move a task to the top
  edit <row> duration hh:mm
  edit <row> description <text>
  edit <row> started dd/mm/yyyy hh:mm
  merge <row> <row>...       fold tasks into the topmost one
  delete <row>...            remove tasks
  clear                      remove every task
  list                       show the tasks
  quit                       stop tracking`

// parseCommand turns a line typed at the `ptt run` prompt into a command.
// An empty line yields a nil command.
func parseCommand(line string) (session.Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "add", "a":
		return session.Add{Description: strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))}, nil
	case "activate", "act":
		rows, err := exactRows(args, 1)
		if err != nil {
			return nil, err
		}
		return session.Activate{Index: rows[0]}, nil
	case "merge":
		rows, err := parseRows(args)
		if err != nil {
			return nil, err
		}
		if len(rows) < 2 {
			return nil, errors.New("merge needs at least two rows")
		}
		return session.Merge{Indices: rows}, nil
	case "delete", "del", "rm":
		rows, err := parseRows(args)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, errors.New("delete needs at least one row")
		}
		return session.Delete{Indices: rows}, nil
	case "clear":
		return session.Clear{}, nil
	case "list", "ls":
		return session.List{}, nil
	case "edit":
		return parseEdit(args)
	case "quit", "exit", "q":
		return nil, errQuit
	}
	return nil, fmt.Errorf("unknown command %q, type help", verb)
}

func exactRows(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d row(s), got %d", n, len(args))
	}
	return parseRows(args)
}

func parseEdit(args []string) (session.Command, error) {
	if len(args) < 3 {
		return nil, errors.New("usage: edit <row> duration|description|started <value>")
	}
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid row %q", args[0])
	}
	value := strings.Join(args[2:], " ")
	edit := session.Edit{Index: row}

	switch strings.ToLower(args[1]) {
	case "duration":
		d, err := duration.FromString(value, duration.FormatHHMM)
		if err != nil {
			return nil, err
		}
		edit.Duration = &d
	case "description":
		edit.Description = &value
	case "started":
		t, err := time.ParseInLocation(store.StartedOnLayout, value, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid start %q, expected dd/mm/yyyy hh:mm", value)
		}
		edit.StartedAt = &t
	default:
		return nil, fmt.Errorf("unknown field %q", args[1])
	}
	return edit, nil
}
