package metrics

import (
	"sync/atomic"
)

// Metrics tracks operational counters for one process lifetime.
type Metrics struct {
	ComparisonsRun      uint64 `json:"comparisons_run"`
	ComparisonsFailed   uint64 `json:"comparisons_failed"`
	ComparisonsTimedOut uint64 `json:"comparisons_timed_out"`
	QualityScansRun     uint64 `json:"quality_scans_run"`
	QualityScansFailed  uint64 `json:"quality_scans_failed"`
	CacheHits           uint64 `json:"cache_hits"`
	CacheMisses         uint64 `json:"cache_misses"`
}

var global = &Metrics{}

// ComparisonRun increments the count of comparisons attempted.
func ComparisonRun() { atomic.AddUint64(&global.ComparisonsRun, 1) }

// ComparisonFailed increments the count of comparisons that produced the
// canonical failure record.
func ComparisonFailed() { atomic.AddUint64(&global.ComparisonsFailed, 1) }

// ComparisonTimedOut increments the count of comparisons killed at the deadline.
func ComparisonTimedOut() { atomic.AddUint64(&global.ComparisonsTimedOut, 1) }

// QualityScanRun increments the count of quality scans attempted.
func QualityScanRun() { atomic.AddUint64(&global.QualityScansRun, 1) }

// QualityScanFailed increments the count of quality scans that fell back to
// an empty report.
func QualityScanFailed() { atomic.AddUint64(&global.QualityScansFailed, 1) }

// CacheHit increments the content-cache hit count.
func CacheHit() { atomic.AddUint64(&global.CacheHits, 1) }

// CacheMiss increments the content-cache miss count.
func CacheMiss() { atomic.AddUint64(&global.CacheMisses, 1) }

// Snapshot returns a copy of the current counters.
func Snapshot() Metrics {
	return Metrics{
		ComparisonsRun:      atomic.LoadUint64(&global.ComparisonsRun),
		ComparisonsFailed:   atomic.LoadUint64(&global.ComparisonsFailed),
		ComparisonsTimedOut: atomic.LoadUint64(&global.ComparisonsTimedOut),
		QualityScansRun:     atomic.LoadUint64(&global.QualityScansRun),
		QualityScansFailed:  atomic.LoadUint64(&global.QualityScansFailed),
		CacheHits:           atomic.LoadUint64(&global.CacheHits),
		CacheMisses:         atomic.LoadUint64(&global.CacheMisses),
	}
}
