// SPDX-License-Identifier: MIT
// Package transport delivers dispatch outcomes to consumers outside the
// process: the log, WebSocket clients and UDP listeners.
package transport

import (
	"errors"

	"sigbench/internal/method"
)

// Transport defines a generic interface for sending processed data or events.
// Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// Record is the flattened form of one method invocation.
type Record struct {
	RunID      string         `json:"run_id"`
	Method     string         `json:"method"`
	Task       string         `json:"task"`
	Signal     string         `json:"signal"`
	ParamIndex int            `json:"param_index"`
	Params     string         `json:"params"`
	Status     string         `json:"status"`
	Error      string         `json:"error,omitempty"`
	ElapsedMs  float64        `json:"elapsed_ms"`
	SampleRate float64        `json:"sample_rate,omitempty"`
	Samples    []float64      `json:"samples,omitempty"` // Denoised output.
	Events     []method.Event `json:"events,omitempty"`  // Detections.
}

// Multi fans each Send out to several transports.
type Multi []Transport

// Send forwards data to every transport and joins their errors.
func (m Multi) Send(data any) error {
	var errs []error
	for _, t := range m {
		if err := t.Send(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = Multi(nil)
