// Package metrics defines the Prometheus collectors for harvest runs and the
// read API.
package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "youtube_harvester"

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeInserted = "inserted"
	OutcomeUpdated  = "updated"
	OutcomeFailed   = "failed"
)

// Harvest holds the collectors updated during a harvest run. All methods are
// safe to call on a nil *Harvest.
type Harvest struct {
	Registry *prometheus.Registry

	apiCalls            *prometheus.CounterVec
	upserts             *prometheus.CounterVec
	channelsResolved    prometheus.Counter
	channelsUnresolved  prometheus.Counter
	pagesFetched        prometheus.Counter
	statisticsFallbacks prometheus.Counter
	videosSkipped       prometheus.Counter
	lastRunDuration     prometheus.Gauge
	lastRunSuccess      prometheus.Gauge
}

// NewHarvest creates the harvest collectors on a fresh registry.
func NewHarvest() *Harvest {
	reg := prometheus.NewRegistry()

	h := &Harvest{
		Registry: reg,
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_calls_total",
			Help:      "YouTube Data API calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		upserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upserts_total",
			Help:      "Row upserts by entity and outcome.",
		}, []string{"entity", "outcome"}),
		channelsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channels_resolved_total",
			Help:      "Handles resolved to a channel ID.",
		}),
		channelsUnresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channels_unresolved_total",
			Help:      "Handles for which the search returned no channel.",
		}),
		pagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_pages_fetched_total",
			Help:      "Video search pages fetched.",
		}),
		statisticsFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statistics_fallbacks_total",
			Help:      "Videos stored with zero counts because the statistics lookup failed.",
		}),
		videosSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "videos_skipped_total",
			Help:      "Search items dropped because their snippet could not be mapped.",
		}),
		lastRunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last harvest run.",
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 when the last harvest run completed, 0 when it failed.",
		}),
	}

	reg.MustRegister(
		h.apiCalls,
		h.upserts,
		h.channelsResolved,
		h.channelsUnresolved,
		h.pagesFetched,
		h.statisticsFallbacks,
		h.videosSkipped,
		h.lastRunDuration,
		h.lastRunSuccess,
	)

	return h
}

// APICall counts one API call.
func (h *Harvest) APICall(operation string, err error) {
	if h == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	h.apiCalls.WithLabelValues(operation, outcome).Inc()
}

// Upsert counts one upsert of entity ("channel" or "video").
func (h *Harvest) Upsert(entity string, inserted bool, err error) {
	if h == nil {
		return
	}
	outcome := OutcomeUpdated
	switch {
	case err != nil:
		outcome = OutcomeFailed
	case inserted:
		outcome = OutcomeInserted
	}
	h.upserts.WithLabelValues(entity, outcome).Inc()
}

// ChannelResolved counts a resolution attempt.
func (h *Harvest) ChannelResolved(found bool) {
	if h == nil {
		return
	}
	if found {
		h.channelsResolved.Inc()
		return
	}
	h.channelsUnresolved.Inc()
}

// PageFetched counts a fetched search page.
func (h *Harvest) PageFetched() {
	if h == nil {
		return
	}
	h.pagesFetched.Inc()
}

// StatisticsFallback counts a video stored with zero statistics.
func (h *Harvest) StatisticsFallback() {
	if h == nil {
		return
	}
	h.statisticsFallbacks.Inc()
}

// VideoSkipped counts a search item that could not be mapped to a video.
func (h *Harvest) VideoSkipped() {
	if h == nil {
		return
	}
	h.videosSkipped.Inc()
}

// RunFinished records the duration and result of a run.
func (h *Harvest) RunFinished(d time.Duration, success bool) {
	if h == nil {
		return
	}
	h.lastRunDuration.Set(d.Seconds())
	if success {
		h.lastRunSuccess.Set(1)
	} else {
		h.lastRunSuccess.Set(0)
	}
}

// Push sends the registry to a Prometheus Pushgateway, grouped by run ID.
func (h *Harvest) Push(ctx context.Context, gatewayURL, job, runID string) error {
	if h == nil || gatewayURL == "" {
		return nil
	}

	err := push.New(gatewayURL, job).
		Gatherer(h.Registry).
		Grouping("run_id", runID).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}

	return nil
}

// HTTP holds the read API collectors.
type HTTP struct {
	Registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTP creates the read API collectors, plus Go runtime and process
// collectors, on a fresh registry.
func NewHTTP() *HTTP {
	reg := prometheus.NewRegistry()

	m := &HTTP{
		Registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Read API requests by route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Read API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.requests,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Middleware records every request under its matched route template.
func (m *HTTP) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
