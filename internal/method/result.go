// SPDX-License-Identifier: MIT
package method

import (
	"fmt"

	"sigbench/internal/signal"
)

// Event is a single detection within a signal.
type Event struct {
	Index int     `json:"index"` // Sample index of the event.
	Time  float64 `json:"time"`  // Position in seconds (Index / SampleRate).
	Score float64 `json:"score"` // Method-specific strength of the detection.
}

// Result is the output of Apply. Denoising methods fill Signal, detection
// methods fill Events; Task records which of the two was produced.
type Result struct {
	Task   Task
	Signal *signal.Signal
	Events []Event
}

// Denoised wraps a cleaned signal.
func Denoised(sig signal.Signal) Result {
	return Result{Task: Denoising, Signal: &sig}
}

// Detected wraps a list of events. A nil list is stored as an empty one so
// that "found nothing" remains a valid detection result.
func Detected(events []Event) Result {
	if events == nil {
		events = []Event{}
	}
	return Result{Task: Detection, Events: events}
}

// Validate checks that r is a well-formed result for task.
func (r Result) Validate(task Task) error {
	if r.Task != task {
		return fmt.Errorf("%w: got %q result for %q method", ErrResultShape, r.Task, task)
	}

	switch task {
	case Denoising:
		if r.Signal == nil {
			return fmt.Errorf("%w: denoising result has no signal", ErrResultShape)
		}
		if r.Events != nil {
			return fmt.Errorf("%w: denoising result carries events", ErrResultShape)
		}
	case Detection:
		if r.Events == nil {
			return fmt.Errorf("%w: detection result has no event list", ErrResultShape)
		}
		if r.Signal != nil {
			return fmt.Errorf("%w: detection result carries a signal", ErrResultShape)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTask, task)
	}
	return nil
}
