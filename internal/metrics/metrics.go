// Package metrics is the thin seam between the pipeline and whatever metrics
// sink is configured. Core code records counters and histograms through
// package functions; a process sets a backend once at startup (or leaves the
// default nop in place).
package metrics

import "sync"

// Labels annotate a metric sample.
type Labels map[string]string

// Backend receives metric samples. Implementations must be safe for
// concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
}

// Metric names recorded by the pipeline.
const (
	RecordsTotal        = "etl_records_total"         // labels: kind (read|cleaned|kept|written|null_field)
	StepTotal           = "etl_step_total"            // labels: step, status (ok|error)
	BatchesTotal        = "etl_batches_total"
	StepDurationSeconds = "etl_step_duration_seconds" // labels: step, status
)

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs the process-wide backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		backend = nopBackend{}
		return
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush flushes the installed backend. Call once before process exit.
func Flush() error {
	return current().Flush()
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }
