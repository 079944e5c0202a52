package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	ticks := testutil.ToFloat64(ticksTotal)
	RecordTick()
	assert.Equal(t, ticks+1, testutil.ToFloat64(ticksTotal))

	splits := testutil.ToFloat64(splitsTotal)
	RecordSplit()
	assert.Equal(t, splits+1, testutil.ToFloat64(splitsTotal))

	rejected := testutil.ToFloat64(mergesTotal.WithLabelValues("rejected"))
	RecordMerge(false)
	assert.Equal(t, rejected+1, testutil.ToFloat64(mergesTotal.WithLabelValues("rejected")))

	failed := testutil.ToFloat64(savesTotal.WithLabelValues("error"))
	RecordSave(errors.New("disk full"))
	assert.Equal(t, failed+1, testutil.ToFloat64(savesTotal.WithLabelValues("error")))

	SetTasks(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(tasksGauge))
}

func TestRecordHeartbeat(t *testing.T) {
	ts := time.Unix(1576569600, 0)
	RecordHeartbeat(ts, nil)
	assert.Equal(t, float64(1576569600), testutil.ToFloat64(heartbeatGauge))

	failures := testutil.ToFloat64(heartbeatFailures)
	RecordHeartbeat(time.Now(), errors.New("read-only"))
	assert.Equal(t, failures+1, testutil.ToFloat64(heartbeatFailures))
	assert.Equal(t, float64(1576569600), testutil.ToFloat64(heartbeatGauge))
}

func TestHandlerServesMetrics(t *testing.T) {
	RecordTick()
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ptt_tracker_ticks_total")
}
