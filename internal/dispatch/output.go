// SPDX-License-Identifier: MIT
package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	applog "sigbench/internal/log"
	"sigbench/internal/signal"
)

// OutputName returns the WAV file name for a denoised outcome:
// <signal>__<method>__p<index>.wav.
func OutputName(o Outcome) string {
	clean := func(s string) string {
		return strings.Map(func(r rune) rune {
			if r == '/' || r == '\\' || r == os.PathSeparator {
				return '_'
			}
			return r
		}, s)
	}
	return fmt.Sprintf("%s__%s__p%d.wav", clean(o.Signal), clean(o.MethodID), o.ParamIndex)
}

// WriteOutputs writes every successful denoising outcome of r into dir as
// a WAV file and returns the paths written. Failed and detection outcomes
// are skipped.
func WriteOutputs(dir string, r *Report, bitDepth int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for _, o := range r.Outcomes {
		if o.Err != nil || o.Result.Signal == nil {
			continue
		}
		path := filepath.Join(dir, OutputName(o))
		if err := signal.WriteWAV(path, *o.Result.Signal, bitDepth); err != nil {
			return paths, fmt.Errorf("%s: %w", path, err)
		}
		applog.Debugf("Dispatch: wrote %s", path)
		paths = append(paths, path)
	}
	return paths, nil
}
