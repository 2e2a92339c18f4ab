// SPDX-License-Identifier: MIT
package dispatch

import (
	"context"
	"errors"
	"time"

	"sigbench/internal/method"
	"sigbench/internal/transport"
)

// Outcome statuses.
const (
	StatusOK             = "ok"
	StatusError          = "error"
	StatusNotImplemented = "not_implemented"
	StatusInvalidParams  = "invalid_params"
	StatusBadResult      = "bad_result"
	StatusInputMutated   = "input_mutated"
	StatusTimeout        = "timeout"
	StatusPanic          = "panic"
	StatusCanceled       = "canceled"
)

// Outcome is the record of one method invocation on one signal with one
// parameter set.
type Outcome struct {
	MethodID   string
	Task       method.Task
	Signal     string
	ParamIndex int // Position of Params in the method's sweep.
	Params     method.Params
	Result     method.Result
	Err        error
	Elapsed    time.Duration
}

// Status classifies the outcome's error.
func (o Outcome) Status() string {
	switch err := o.Err; {
	case err == nil:
		return StatusOK
	case errors.Is(err, method.ErrNotImplemented):
		return StatusNotImplemented
	case errors.Is(err, method.ErrInvalidParams):
		return StatusInvalidParams
	case errors.Is(err, method.ErrResultShape):
		return StatusBadResult
	case errors.Is(err, ErrInputMutated):
		return StatusInputMutated
	case errors.Is(err, ErrTimeout):
		return StatusTimeout
	case errors.Is(err, ErrMethodPanic):
		return StatusPanic
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	default:
		return StatusError
	}
}

// Record flattens the outcome for transports.
func (o Outcome) Record(runID string) transport.Record {
	rec := transport.Record{
		RunID:      runID,
		Method:     o.MethodID,
		Task:       o.Task.String(),
		Signal:     o.Signal,
		ParamIndex: o.ParamIndex,
		Params:     o.Params.String(),
		Status:     o.Status(),
		ElapsedMs:  float64(o.Elapsed) / float64(time.Millisecond),
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
		return rec
	}
	if o.Result.Signal != nil {
		rec.Samples = o.Result.Signal.Samples
		rec.SampleRate = o.Result.Signal.SampleRate
	}
	rec.Events = o.Result.Events
	return rec
}

// Report collects the outcomes of a run.
type Report struct {
	RunID    string
	Started  time.Time
	Elapsed  time.Duration
	Outcomes []Outcome
}

// Succeeded returns the number of outcomes without error.
func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of outcomes with an error.
func (r *Report) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}
