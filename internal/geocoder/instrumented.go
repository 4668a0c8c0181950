package geocoder

import (
	"context"
	"errors"
	"log"
	"time"
)

const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

type LookupRecorder interface {
	GeocodeObserve(outcome string, d time.Duration)
}

// Instrumented records the outcome and latency of every lookup and logs failures.
type Instrumented struct {
	next    Geocoder
	metrics LookupRecorder
}

func NewInstrumented(next Geocoder, m LookupRecorder) *Instrumented {
	return &Instrumented{next: next, metrics: m}
}

func (i *Instrumented) Search(ctx context.Context, query string, limit int) Result {
	start := time.Now()
	res := i.next.Search(ctx, query, limit)

	outcome := OutcomeOK
	switch {
	case res.Err != nil:
		outcome = OutcomeError
		if !errors.Is(res.Err, ErrEmptyQuery) {
			log.Printf("geocode %q failed: %v", query, res.Err)
		}
	case len(res.Places) == 0:
		outcome = OutcomeEmpty
	}
	if i.metrics != nil {
		i.metrics.GeocodeObserve(outcome, time.Since(start))
	}
	return res
}
