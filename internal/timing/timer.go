// Package timing measures elapsed wall time for labeled spans and reports
// each completed span as one debug-level log record.
package timing

import (
	"fmt"
	"sync"
	"time"

	"github.com/CRDigitalAndMining/go-service-template/internal/logging"
)

// Timer tracks one labeled span. Each instance owns its own timestamps, so
// spans nest and overlap freely; labels need not be unique.
type Timer struct {
	label   string
	logger  logging.Logger
	start   time.Time
	elapsed time.Duration
	once    sync.Once
}

// Start begins a span. Pair it with a deferred Stop so the record is emitted
// however the surrounding block exits:
//
//	defer timing.Start("rebuild index", logger).Stop()
func Start(label string, logger logging.Logger) *Timer {
	return &Timer{
		label:  label,
		logger: logger,
		start:  time.Now(),
	}
}

// Stop completes the span and emits exactly one debug record. Further calls
// are no-ops.
func (t *Timer) Stop() {
	t.once.Do(func() {
		t.elapsed = time.Since(t.start)
		t.logger.Debug(fmt.Sprintf("%s executed in %d ms", t.label, t.elapsed.Milliseconds()))
	})
}

// Elapsed returns the measured duration, or zero while the span is running.
func (t *Timer) Elapsed() time.Duration {
	return t.elapsed
}

// Track runs fn inside a span. The record is emitted even when fn panics.
func Track(label string, logger logging.Logger, fn func() error) error {
	t := Start(label, logger)
	defer t.Stop()
	return fn()
}

// Wrap returns a callable that times every invocation of fn under the given
// label.
func Wrap(label string, logger logging.Logger, fn func() error) func() error {
	return func() error {
		return Track(label, logger, fn)
	}
}
