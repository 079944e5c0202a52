package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/ptt/pkg/duration"
	"github.com/harrisonrobin/ptt/pkg/model"
)

func openTemp(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "data", File))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestRecordAndEntries(t *testing.T) {
	a := openTemp(t)
	start := time.Date(2019, 12, 17, 9, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "b", StartedAt: start.Add(time.Hour), Duration: duration.Seconds(600), Description: "review"},
		{ID: "a", StartedAt: start, Duration: duration.Seconds(1800), Description: "standup"},
	}
	require.NoError(t, a.Record(ReasonDelete, tasks, start.Add(2*time.Hour)))

	entries, err := a.Entries(time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Task.ID)
	assert.Equal(t, ReasonDelete, entries[0].Reason)
	assert.True(t, start.Equal(entries[0].Task.StartedAt))
	assert.Equal(t, duration.Seconds(1800), entries[0].Task.Duration)
	assert.Equal(t, "review", entries[1].Task.Description)

	later, err := a.Entries(start.Add(30 * time.Minute))
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.Equal(t, "b", later[0].Task.ID)
}

func TestRecordNothing(t *testing.T) {
	a := openTemp(t)
	require.NoError(t, a.Record(ReasonClear, nil, time.Now()))
	entries, err := a.Entries(time.Time{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTotals(t *testing.T) {
	a := openTemp(t)
	now := time.Date(2019, 12, 17, 18, 0, 0, 0, time.UTC)
	require.NoError(t, a.Record(ReasonDelete, []model.Task{
		{ID: "1", StartedAt: now.Add(-5 * time.Hour), Duration: duration.Seconds(3600), Description: "ops"},
		{ID: "2", StartedAt: now.Add(-4 * time.Hour), Duration: duration.Seconds(600), Description: "mail"},
	}, now))
	require.NoError(t, a.Record(ReasonClear, []model.Task{
		{ID: "3", StartedAt: now.Add(-3 * time.Hour), Duration: duration.Seconds(1200), Description: "ops"},
	}, now))
	require.NoError(t, a.Record(ReasonMerge, []model.Task{
		{ID: "4", StartedAt: now.Add(-2 * time.Hour), Duration: duration.Seconds(9000), Description: "ops"},
	}, now))

	totals, err := a.Totals(time.Time{})
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, Total{Description: "ops", Duration: duration.Seconds(4800), Count: 2}, totals[0])
	assert.Equal(t, Total{Description: "mail", Duration: duration.Seconds(600), Count: 1}, totals[1])
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), File)
	a, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, a.Record(ReasonDelete, []model.Task{{ID: "x", StartedAt: time.Unix(0, 0), Description: "kept"}}, time.Now()))
	require.NoError(t, a.Close())

	b, err := Open(path)
	require.NoError(t, err)
	defer b.Close()
	entries, err := b.Entries(time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Task.Description)
}
