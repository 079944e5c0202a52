// Package metrics exposes tracker activity to Prometheus while `ptt run` is up.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ptt"

var (
	ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tracker",
		Name:      "ticks_total",
		Help:      "Ticks credited to the active task.",
	})
	splitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "splits_total",
		Help:      "Continuation tasks started because a task reached the duration ceiling.",
	})
	mergesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "merges_total",
		Help:      "Merge requests by outcome.",
	}, []string{"result"})
	tasksGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "tasks",
		Help:      "Rows currently in the ledger.",
	})
	savesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "saves_total",
		Help:      "Task file writes by outcome.",
	}, []string{"result"})
	heartbeatGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "lease",
		Name:      "last_heartbeat_timestamp_seconds",
		Help:      "Unix timestamp of the last successful lease heartbeat.",
	})
	heartbeatFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "lease",
		Name:      "heartbeat_failures_total",
		Help:      "Lease heartbeats that could not be written.",
	})
)

func init() {
	prometheus.MustRegister(ticksTotal, splitsTotal, mergesTotal, tasksGauge, savesTotal, heartbeatGauge, heartbeatFailures)
}

func RecordTick() { ticksTotal.Inc() }

func RecordSplit() { splitsTotal.Inc() }

// RecordMerge counts a merge as "merged" or "rejected".
func RecordMerge(merged bool) {
	if merged {
		mergesTotal.WithLabelValues("merged").Inc()
		return
	}
	mergesTotal.WithLabelValues("rejected").Inc()
}

func SetTasks(n int) { tasksGauge.Set(float64(n)) }

// RecordSave counts a save attempt as "ok" or "error".
func RecordSave(err error) {
	if err != nil {
		savesTotal.WithLabelValues("error").Inc()
		return
	}
	savesTotal.WithLabelValues("ok").Inc()
}

// RecordHeartbeat updates the heartbeat watermark or counts the failure.
func RecordHeartbeat(ts time.Time, err error) {
	if err != nil {
		heartbeatFailures.Inc()
		return
	}
	if ts.IsZero() {
		return
	}
	heartbeatGauge.Set(float64(ts.Unix()))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
