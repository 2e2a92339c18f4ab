// SPDX-License-Identifier: MIT
package transport

import (
	applog "sigbench/internal/log"
)

// LoggingTransport implements the Transport interface by logging data.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs records as structured lines and anything else with %+v.
func (lt *LoggingTransport) Send(data any) error {
	switch rec := data.(type) {
	case Record:
		lt.logRecord(rec)
	case *Record:
		if rec != nil {
			lt.logRecord(*rec)
		}
	default:
		applog.Infof("Transport: %+v", data)
	}
	return nil // Logging transport never fails to "send"
}

func (lt *LoggingTransport) logRecord(rec Record) {
	keyvals := []any{
		"method", rec.Method,
		"signal", rec.Signal,
		"params", rec.Params,
		"status", rec.Status,
		"elapsed_ms", rec.ElapsedMs,
	}
	switch {
	case rec.Error != "":
		applog.Warn("outcome", append(keyvals, "error", rec.Error)...)
	case rec.Events != nil:
		applog.Info("outcome", append(keyvals, "events", len(rec.Events))...)
	default:
		applog.Info("outcome", append(keyvals, "samples", len(rec.Samples))...)
	}
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
