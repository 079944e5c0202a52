package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/session"
)

func TestParseCommand(t *testing.T) {
	tests := map[string]session.Command{
		"add  write   report": session.Add{Description: "write   report"},
		"activate 3":          session.Activate{Index: 3},
		"merge 0 2 4":         session.Merge{Indices: []int{0, 2, 4}},
		"rm 1":                session.Delete{Indices: []int{1}},
		"clear":               session.Clear{},
		"LS":                  session.List{},
	}
	for line, want := range tests {
		got, err := parseCommand(line)
		require.NoError(t, err, line)
		assert.Equal(t, want, got, line)
	}
}

func TestParseCommandEdit(t *testing.T) {
	cmd, err := parseCommand("edit 1 duration 02:15")
	require.NoError(t, err)
	edit := cmd.(session.Edit)
	assert.Equal(t, 1, edit.Index)
	require.NotNil(t, edit.Duration)
	assert.Equal(t, duration.Seconds(8100), *edit.Duration)

	cmd, err = parseCommand("edit 0 description call the bank")
	require.NoError(t, err)
	assert.Equal(t, "call the bank", *cmd.(session.Edit).Description)

	cmd, err = parseCommand("edit 0 started 17/12/2019 09:05")
	require.NoError(t, err)
	want := time.Date(2019, 12, 17, 9, 5, 0, 0, time.Local)
	assert.True(t, want.Equal(*cmd.(session.Edit).StartedAt))
}

func TestParseCommandErrors(t *testing.T) {
	for _, line := range []string{
		"activate",
		"activate one",
		"merge 1",
		"delete",
		"edit 0 duration 1h",
		"edit 0 colour red",
		"edit x description y",
		"dance",
	} {
		_, err := parseCommand(line)
		assert.Error(t, err, line)
	}

	cmd, err := parseCommand("   ")
	assert.NoError(t, err)
	assert.Nil(t, cmd)

	_, err = parseCommand("quit")
	assert.True(t, errors.Is(err, errQuit))
}
