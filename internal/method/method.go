// SPDX-License-Identifier: MIT
/*
Package method defines the contract shared by every pluggable signal
processing method:
- An identity (ID) and a task classification (denoising or detection)
- A processing operation, Apply, invoked with a signal and optional params
- An optional parameter grid, exposed through ParameterSource

Methods are constructed once by the registry and are immutable afterwards.
Apply may be called concurrently from several goroutines as long as each
call operates on its own signal and params. A method that needs shared state
(a cached model, a lookup table) must guard it itself.
*/
package method

import (
	"errors"
	"fmt"
	"strings"

	"sigbench/internal/signal"
)

var (
	// ErrNotImplemented is returned by methods whose processing operation was
	// never written. It lets callers tell "ran and found nothing" apart from
	// "was never finished".
	ErrNotImplemented = errors.New("method not implemented")

	// ErrInvalidTask is returned for task tags outside {denoising, detection}.
	ErrInvalidTask = errors.New("invalid task classification")

	// ErrInvalidParams is returned when a method cannot interpret its params.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrResultShape is returned when a result does not match the task that
	// produced it.
	ErrResultShape = errors.New("result does not match task")
)

// Task classifies what a method does.
type Task string

const (
	Denoising Task = "denoising" // Clean a signal.
	Detection Task = "detection" // Find events in a signal.
)

// Tasks lists every valid task in display order.
var Tasks = []Task{Denoising, Detection}

// Valid reports whether t is one of the known tasks.
func (t Task) Valid() bool {
	return t == Denoising || t == Detection
}

func (t Task) String() string {
	return string(t)
}

// ParseTask converts a string (case-insensitive) to a Task.
func ParseTask(s string) (Task, error) {
	t := Task(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTask, s)
	}
	return t, nil
}

// Method is the interface every processing method implements.
type Method interface {
	// ID returns the identifier of the method. It must be non-empty and is
	// expected to be unique within a registry.
	ID() string

	// Task returns the task classification of the method.
	Task() Task

	// Apply processes sig with the given params. A nil params selects the
	// method's defaults. Implementations must not modify sig.Samples.
	//
	// Denoising methods return a result built with Denoised, detection
	// methods one built with Detected.
	Apply(sig signal.Signal, params Params) (Result, error)
}

// ParameterSource is implemented by methods that expose a grid of
// parameter sets to sweep. Methods that don't implement it run once with
// nil params.
type ParameterSource interface {
	Parameters() []Params
}

// Template is the starting point for a new method. Embed it, set the
// identity, and override Apply:
//
//	type myDenoiser struct{ method.Template }
//
//	func newMyDenoiser() method.Method {
//		return &myDenoiser{method.Template{MethodID: "my_denoiser", MethodTask: method.Denoising}}
//	}
//
//	func (m *myDenoiser) Apply(sig signal.Signal, params method.Params) (method.Result, error) { ... }
//
// Until Apply is overridden every invocation fails with ErrNotImplemented.
type Template struct {
	MethodID   string
	MethodTask Task
}

// Compile-time check for interface implementation.
var _ Method = Template{}

func (t Template) ID() string {
	return t.MethodID
}

func (t Template) Task() Task {
	return t.MethodTask
}

// Apply always fails with ErrNotImplemented.
func (t Template) Apply(signal.Signal, Params) (Result, error) {
	return Result{}, fmt.Errorf("%w: %s", ErrNotImplemented, t.MethodID)
}
