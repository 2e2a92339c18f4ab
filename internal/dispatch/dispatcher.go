// SPDX-License-Identifier: MIT
/*
Package dispatch selects registered methods and invokes them on signals:
- Parameter sweeps run each parameter set once, in the order the method
  returns them
- Every invocation runs on its own goroutine under an optional deadline;
  panics become errors
- Results are checked against the method's task, and optionally the input
  is checked for mutation
- Runs fan out over a bounded worker pool and publish every outcome to a
  transport

Methods offer no cancellation hook. When an invocation times out the
dispatcher stops waiting for it, but the method's goroutine keeps running
until Apply returns.
*/
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	applog "sigbench/internal/log"
	"sigbench/internal/method"
	"sigbench/internal/registry"
	"sigbench/internal/signal"
	"sigbench/internal/transport"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrTimeout      = errors.New("method timed out")
	ErrMethodPanic  = errors.New("method panicked")
	ErrInputMutated = errors.New("method mutated its input signal")
	ErrNoMethods    = errors.New("no methods selected")
	ErrNoSignals    = errors.New("no signals to process")
	ErrTaskMismatch = errors.New("method task does not match selection")
)

// Dispatcher invokes methods from a registry.
type Dispatcher struct {
	registry    *registry.Registry
	timeout     time.Duration
	workers     int
	verifyInput bool
	sink        transport.Transport
	metrics     *Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout bounds each invocation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.timeout = d }
}

// WithWorkers sets the number of concurrent invocations in Run. Values
// below one select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(disp *Dispatcher) { disp.workers = n }
}

// WithInputVerification makes every invocation work on a private copy of
// the signal and fail with ErrInputMutated if the method changed it.
func WithInputVerification(enabled bool) Option {
	return func(disp *Dispatcher) { disp.verifyInput = enabled }
}

// WithSink publishes each outcome of Run to t.
func WithSink(t transport.Transport) Option {
	return func(disp *Dispatcher) { disp.sink = t }
}

// WithMetrics records invocation metrics.
func WithMetrics(m *Metrics) Option {
	return func(disp *Dispatcher) { disp.metrics = m }
}

// New creates a Dispatcher over reg.
func New(reg *registry.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{registry: reg}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = runtime.NumCPU()
	}
	return d
}

// Parameters returns the sweep grid of m. Methods that are not a
// method.ParameterSource, or that return no sets, run once with nil params.
func Parameters(m method.Method) []method.Params {
	if src, ok := m.(method.ParameterSource); ok {
		if params := src.Parameters(); len(params) > 0 {
			return params
		}
	}
	return []method.Params{nil}
}

type reply struct {
	result method.Result
	err    error
}

// Invoke calls m.Apply(sig, params) and checks the result. Errors returned
// by the method are wrapped with its ID and can be matched with errors.Is.
func (d *Dispatcher) Invoke(ctx context.Context, m method.Method, sig signal.Signal, params method.Params) (method.Result, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return method.Result{}, err
	}

	input := sig
	if d.verifyInput {
		input = sig.Clone()
	}

	done := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("%w: %s: %v", ErrMethodPanic, m.ID(), r)}
			}
		}()
		res, err := m.Apply(input, params)
		done <- reply{result: res, err: err}
	}()

	var r reply
	select {
	case r = <-done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			if d.timeout > 0 {
				return method.Result{}, fmt.Errorf("%w: %s after %s", ErrTimeout, m.ID(), d.timeout)
			}
			return method.Result{}, fmt.Errorf("%w: %s", ErrTimeout, m.ID())
		}
		return method.Result{}, ctx.Err()
	}

	if r.err != nil {
		if errors.Is(r.err, ErrMethodPanic) {
			return method.Result{}, r.err
		}
		return method.Result{}, fmt.Errorf("%s: %w", m.ID(), r.err)
	}
	if err := r.result.Validate(m.Task()); err != nil {
		return method.Result{}, fmt.Errorf("%s: %w", m.ID(), err)
	}
	if d.verifyInput && !input.Equal(sig) {
		return method.Result{}, fmt.Errorf("%w: %s", ErrInputMutated, m.ID())
	}
	return r.result, nil
}

// Sweep invokes m on sig once per parameter set, sequentially and in the
// order returned by Parameters. It stops early only when ctx is done, in
// which case the outcomes gathered so far are returned with ctx's error.
func (d *Dispatcher) Sweep(ctx context.Context, m method.Method, sig signal.Named) ([]Outcome, error) {
	grid := Parameters(m)
	outcomes := make([]Outcome, 0, len(grid))

	for i, params := range grid {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		start := time.Now()
		res, err := d.Invoke(ctx, m, sig.Signal, params)
		o := Outcome{
			MethodID:   m.ID(),
			Task:       m.Task(),
			Signal:     sig.Name,
			ParamIndex: i,
			Params:     params.Clone(),
			Result:     res,
			Err:        err,
			Elapsed:    time.Since(start),
		}
		d.metrics.observe(o)
		if err != nil {
			applog.Debug("invocation failed", "method", o.MethodID, "signal", o.Signal,
				"params", o.Params.String(), "status", o.Status(), "err", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

// Selection picks methods for Run. IDs take precedence; with no IDs, Task
// selects every method of that task; with neither, every method runs.
type Selection struct {
	IDs  []string
	Task method.Task
}

// Select resolves sel against the registry.
func (d *Dispatcher) Select(sel Selection) ([]method.Method, error) {
	if sel.Task != "" && !sel.Task.Valid() {
		return nil, fmt.Errorf("%w: %q", method.ErrInvalidTask, sel.Task)
	}

	var selected []method.Method
	switch {
	case len(sel.IDs) > 0:
		seen := make(map[string]bool, len(sel.IDs))
		for _, id := range sel.IDs {
			if seen[id] {
				continue
			}
			seen[id] = true

			m, err := d.registry.Get(id)
			if err != nil {
				return nil, err
			}
			if sel.Task != "" && m.Task() != sel.Task {
				return nil, fmt.Errorf("%w: %s is a %s method", ErrTaskMismatch, id, m.Task())
			}
			selected = append(selected, m)
		}
	case sel.Task != "":
		selected = d.registry.ByTask(sel.Task)
	default:
		selected = d.registry.All()
	}

	if len(selected) == 0 {
		return nil, ErrNoMethods
	}
	return selected, nil
}

// Run sweeps every selected method over every signal. Pairs of method and
// signal run concurrently on the worker pool; each pair's sweep is
// sequential. Outcomes are ordered by method, then signal, then parameter
// index, regardless of completion order.
//
// Per-invocation failures are reported on the outcomes. Run itself fails
// only for invalid selections or signals, or when ctx is done; the partial
// report is returned in the latter case.
func (d *Dispatcher) Run(ctx context.Context, sel Selection, signals []signal.Named) (*Report, error) {
	selected, err := d.Select(sel)
	if err != nil {
		return nil, err
	}
	if len(signals) == 0 {
		return nil, ErrNoSignals
	}
	for _, s := range signals {
		if err := s.Signal.Validate(); err != nil {
			return nil, fmt.Errorf("signal %q: %w", s.Name, err)
		}
	}

	report := &Report{RunID: uuid.NewString(), Started: time.Now()}
	applog.Infof("Dispatch: run %s: %d methods x %d signals (workers: %d, timeout: %s)",
		report.RunID, len(selected), len(signals), d.workers, d.timeout)

	results := make([][]Outcome, len(selected)*len(signals))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for mi, m := range selected {
		for si, sig := range signals {
			slot := mi*len(signals) + si
			g.Go(func() error {
				outcomes, err := d.Sweep(gctx, m, sig)
				results[slot] = outcomes
				for _, o := range outcomes {
					d.publish(report.RunID, o)
				}
				return err
			})
		}
	}
	err = g.Wait()

	for _, outcomes := range results {
		report.Outcomes = append(report.Outcomes, outcomes...)
	}
	report.Elapsed = time.Since(report.Started)

	applog.Infof("Dispatch: run %s finished in %s (%d ok, %d failed)",
		report.RunID, report.Elapsed, report.Succeeded(), report.Failed())

	return report, err
}

func (d *Dispatcher) publish(runID string, o Outcome) {
	if d.sink == nil {
		return
	}
	if err := d.sink.Send(o.Record(runID)); err != nil {
		applog.Warnf("Dispatch: failed to publish outcome of %s: %v", o.MethodID, err)
	}
}
