package collection

import "time"

// Outcome results reported to OutcomeMetrics
const (
	ResultSuccess    = "success"
	ResultValidation = "validation_error"
	ResultNotFound   = "not_found"
	ResultError      = "error"
	ResultCacheHit   = "cache_hit"
)

// OutcomeMetrics receives engine measurements. Implementations must be safe
// for concurrent use.
type OutcomeMetrics interface {
	// ObserveOutcome records one post-call outcome and how long it took
	ObserveOutcome(directive, result string, elapsed time.Duration)
	// ObserveLookup records one pre-call lookup
	ObserveLookup(result string)
	// ObserveFieldChanges records n written fields on entity
	ObserveFieldChanges(entity string, n int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveOutcome(string, string, time.Duration) {}
func (noopMetrics) ObserveLookup(string)                         {}
func (noopMetrics) ObserveFieldChanges(string, int)              {}
