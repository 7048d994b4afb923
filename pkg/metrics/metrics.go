package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Collector tracks request and delivery counters for the relay.
type Collector struct {
	totalRequests   atomic.Int64
	failedRequests  atomic.Int64
	totalLatencyMic atomic.Int64
	delivered       atomic.Int64
	failed          atomic.Int64
	startedAt       time.Time
}

func New() *Collector {
	return &Collector{
		startedAt: time.Now(),
	}
}

func (c *Collector) IncDelivered() { c.delivered.Add(1) }
func (c *Collector) IncFailed()    { c.failed.Add(1) }

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	RequestsTotal    int64     `json:"requests_total"`
	RequestsFailed   int64     `json:"requests_failed"`
	AvgLatencyMicros int64     `json:"avg_latency_micros"`
	PushDelivered    int64     `json:"push_delivered"`
	PushFailed       int64     `json:"push_failed"`
	UptimeSeconds    int64     `json:"uptime_seconds"`
	Timestamp        time.Time `json:"timestamp"`
}

func (c *Collector) Snapshot() Snapshot {
	reqs := c.totalRequests.Load()
	var avgMicros int64
	if reqs > 0 {
		avgMicros = c.totalLatencyMic.Load() / reqs
	}
	return Snapshot{
		RequestsTotal:    reqs,
		RequestsFailed:   c.failedRequests.Load(),
		AvgLatencyMicros: avgMicros,
		PushDelivered:    c.delivered.Load(),
		PushFailed:       c.failed.Load(),
		UptimeSeconds:    int64(time.Since(c.startedAt).Seconds()),
		Timestamp:        time.Now().UTC(),
	}
}

// GinMiddleware records request count, 5xx responses and aggregate latency.
func (c *Collector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		c.totalRequests.Add(1)
		if ctx.Writer.Status() >= http.StatusInternalServerError {
			c.failedRequests.Add(1)
		}
		c.totalLatencyMic.Add(time.Since(start).Microseconds())
	}
}

// Handler exposes the counters as JSON.
func (c *Collector) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c.Snapshot())
	})
}
