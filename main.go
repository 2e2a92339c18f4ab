// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"sigbench/cmd"
	"sigbench/internal/config"
	"sigbench/internal/dispatch"
	applog "sigbench/internal/log"
	"sigbench/internal/method"
	"sigbench/internal/methods"
	"sigbench/internal/registry"
	"sigbench/internal/transport"
	"sigbench/internal/transport/udp"
	"sigbench/internal/tui"
	"sigbench/pkg/build"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// main is the entry point for the benchmark runner.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase:
//   - Initialize build information
//   - Parse command line arguments
//   - Load configuration and apply flag overrides
//   - Register the built-in methods
//   - Execute one-off commands (list, params, browse) if requested
//
// 2. Run Phase:
//   - Start the metrics endpoint and transports
//   - Load or synthesise the signals
//   - Dispatch every selected method over every signal
//
// 3. Shutdown Phase:
//   - Write denoised outputs and print the summary
//   - Close transports and the metrics endpoint
func main() {
	// ==================== STARTUP PHASE ====================

	// Development builds have no ldflags; that is not fatal.
	if err := build.Initialize(); err != nil {
		applog.Debugf("build: %v", err)
	}

	opts, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if opts.Command == "" {
		return
	}

	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		applog.Fatalf("%v", err)
	}
	opts.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		applog.Fatalf("%v", err)
	}

	level, _ := applog.ParseLevel(cfg.LogLevel)
	applog.SetLevel(level)

	reg := methods.DefaultRegistry()

	if err := executeCommand(opts, cfg, reg); err != nil {
		applog.Fatalf("%v", err)
	}
}

// executeCommand runs the command selected on the command line.
func executeCommand(opts *cmd.Options, cfg *config.Config, reg *registry.Registry) error {
	switch opts.Command {
	case cmd.CommandList:
		ms := reg.All()
		if opts.Task != "" {
			task, err := method.ParseTask(opts.Task)
			if err != nil {
				return err
			}
			ms = reg.ByTask(task)
		}
		fmt.Println(tui.MethodTable(ms))
		return nil

	case cmd.CommandParams:
		m, err := reg.Get(opts.MethodID)
		if err != nil {
			return err
		}
		fmt.Println(tui.ParamsTable(m))
		return nil

	case cmd.CommandBrowse:
		return tui.StartMethodBrowser(reg, method.Task(opts.Task))

	case cmd.CommandRun:
		return run(cfg, reg)

	default:
		return fmt.Errorf("unknown command %q", opts.Command)
	}
}

// run dispatches the configured methods over the configured signals.
func run(cfg *config.Config, reg *registry.Registry) error {
	// ==================== RUN PHASE ====================

	// Cancel the run on interrupt; in-flight invocations finish or time out.
	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatchOpts := []dispatch.Option{
		dispatch.WithWorkers(cfg.Run.Workers),
		dispatch.WithTimeout(cfg.Run.Timeout),
		dispatch.WithInputVerification(cfg.Run.VerifyInput),
	}

	if cfg.Metrics.Address != "" {
		promReg := prometheus.NewRegistry()
		metrics, err := dispatch.NewMetrics(promReg)
		if err != nil {
			return err
		}
		dispatchOpts = append(dispatchOpts, dispatch.WithMetrics(metrics))

		srv := serveMetrics(cfg.Metrics.Address, promReg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				applog.Warnf("Error stopping metrics server: %v", err)
			}
		}()
	}

	sink, err := newTransports(cfg.Transport)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			applog.Warnf("Error closing transports: %v", err)
		}
	}()
	if len(sink) > 0 {
		dispatchOpts = append(dispatchOpts, dispatch.WithSink(sink))
	}

	signals, err := cfg.LoadSignals()
	if err != nil {
		return err
	}

	var task method.Task
	if cfg.Run.Task != "" {
		if task, err = method.ParseTask(cfg.Run.Task); err != nil {
			return err
		}
	}

	disp := dispatch.New(reg, dispatchOpts...)
	report, runErr := disp.Run(ctx, dispatch.Selection{IDs: cfg.Run.Methods, Task: task}, signals)
	if report == nil {
		return runErr
	}

	// ==================== SHUTDOWN PHASE ====================

	if cfg.Run.OutputDir != "" {
		paths, err := dispatch.WriteOutputs(cfg.Run.OutputDir, report, cfg.Run.BitDepth)
		if err != nil {
			applog.Errorf("Error writing outputs: %v", err)
		}
		fmt.Printf("Wrote %d denoised signals to %s\n", len(paths), cfg.Run.OutputDir)
	}

	fmt.Println(tui.SummaryTable(report))

	if errors.Is(runErr, context.Canceled) {
		applog.Warnf("Run interrupted; the summary is partial.")
		return nil
	}
	return runErr
}

// newTransports builds the enabled outcome sinks.
func newTransports(cfg config.TransportConfig) (transport.Multi, error) {
	var sinks transport.Multi

	if cfg.LogEnabled {
		sinks = append(sinks, transport.NewLoggingTransport())
	}

	if cfg.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.WebSocketAddress)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to start WebSocket transport: %w", err), sinks.Close())
		}
		sinks = append(sinks, ws)
	}

	if cfg.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.UDPTargetAddress)
		if err != nil {
			return nil, errors.Join(err, sinks.Close())
		}
		pub, err := udp.NewUDPPublisher(sender, cfg.UDPQueueSize)
		if err != nil {
			return nil, errors.Join(err, sender.Close(), sinks.Close())
		}
		pub.Start()
		sinks = append(sinks, pub)
	}

	return sinks, nil
}

// serveMetrics exposes reg on addr under /metrics.
func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		applog.Infof("Metrics: Serving on http://%s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Errorf("Metrics: Server error: %v", err)
		}
	}()
	return srv
}
