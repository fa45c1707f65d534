package monitoring

import (
	"sync/atomic"
	"time"
)

// Metrics collects lightweight service counters without an external
// metrics backend.
type Metrics struct {
	httpRequests        atomic.Int64
	scoringPasses       atomic.Int64
	scorecardsComputed  atomic.Int64
	shiftsDetected      atomic.Int64
	ingestSyncs         atomic.Int64
	ingestFailures      atomic.Int64
	rateLimitRejections atomic.Int64
	rateLimitFallbacks  atomic.Int64
	rateLimitRedisErrs  atomic.Int64
	started             time.Time
}

// NewMetrics creates a metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{started: time.Now()}
}

func (m *Metrics) IncrementHTTPRequests()        { m.httpRequests.Add(1) }
func (m *Metrics) IncrementScoringPasses()       { m.scoringPasses.Add(1) }
func (m *Metrics) AddScorecardsComputed(n int)   { m.scorecardsComputed.Add(int64(n)) }
func (m *Metrics) IncrementShiftsDetected()      { m.shiftsDetected.Add(1) }
func (m *Metrics) IncrementIngestSyncs()         { m.ingestSyncs.Add(1) }
func (m *Metrics) IncrementIngestFailures()      { m.ingestFailures.Add(1) }
func (m *Metrics) IncrementRateLimitRejections() { m.rateLimitRejections.Add(1) }
func (m *Metrics) IncrementRateLimitFallback()   { m.rateLimitFallbacks.Add(1) }
func (m *Metrics) IncrementRateLimitRedisError() { m.rateLimitRedisErrs.Add(1) }

// Snapshot returns current counter values for the stats endpoint.
func (m *Metrics) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"http_requests":         m.httpRequests.Load(),
		"scoring_passes":        m.scoringPasses.Load(),
		"scorecards_computed":   m.scorecardsComputed.Load(),
		"shifts_detected":       m.shiftsDetected.Load(),
		"ingest_syncs":          m.ingestSyncs.Load(),
		"ingest_failures":       m.ingestFailures.Load(),
		"rate_limit_rejections": m.rateLimitRejections.Load(),
		"rate_limit_fallbacks":  m.rateLimitFallbacks.Load(),
		"rate_limit_redis_errs": m.rateLimitRedisErrs.Load(),
		"uptime_seconds":        int64(time.Since(m.started).Seconds()),
	}
}
