// SPDX-License-Identifier: MIT
package methods

import (
	"math"
	"sort"

	"sigbench/internal/method"
	"sigbench/internal/signal"

	"gonum.org/v1/gonum/stat"
)

// PeakDetectionID is the ID of the statistical peak detector.
const PeakDetectionID = "peak_detection"

const (
	defaultPeakK        = 4.0
	defaultPeakDistance = 64
)

// PeakParams configures the peak detector.
type PeakParams struct {
	K        float64 `mapstructure:"k"`        // Standard deviations above the mean.
	Distance int     `mapstructure:"distance"` // Minimum spacing between events, in samples.
}

// PeakDetection flags samples whose absolute deviation from the signal mean
// exceeds K standard deviations. Within Distance samples only the strongest
// candidate is kept.
type PeakDetection struct {
	method.Template
}

// NewPeakDetection constructs the peak detector.
func NewPeakDetection() method.Method {
	return &PeakDetection{method.Template{MethodID: PeakDetectionID, MethodTask: method.Detection}}
}

// Parameters sweeps K.
func (d *PeakDetection) Parameters() []method.Params {
	return []method.Params{
		{"k": 3.0},
		{"k": 4.0},
		{"k": 5.0},
	}
}

func (d *PeakDetection) params(params method.Params) (PeakParams, error) {
	p := PeakParams{K: defaultPeakK, Distance: defaultPeakDistance}
	if err := method.DecodeParams(params, &p); err != nil {
		return p, err
	}
	if p.K <= 0 || math.IsNaN(p.K) || math.IsInf(p.K, 0) {
		return p, method.InvalidParamsf("k must be positive, got %f", p.K)
	}
	if p.Distance < 1 {
		return p, method.InvalidParamsf("distance must be at least 1, got %d", p.Distance)
	}
	return p, nil
}

// Apply returns the detected peaks ordered by sample index. Scores are the
// z-scores of the peaks.
func (d *PeakDetection) Apply(sig signal.Signal, params method.Params) (method.Result, error) {
	p, err := d.params(params)
	if err != nil {
		return method.Result{}, err
	}
	if len(sig.Samples) < 2 {
		return method.Detected(nil), nil
	}

	mean, std := stat.MeanStdDev(sig.Samples, nil)
	if std == 0 || math.IsNaN(std) {
		return method.Detected(nil), nil
	}

	type candidate struct {
		index int
		score float64
	}
	var candidates []candidate
	for i, v := range sig.Samples {
		if z := math.Abs(v-mean) / std; z > p.K {
			candidates = append(candidates, candidate{index: i, score: z})
		}
	}

	// Strongest first; ties resolved by position so results are stable.
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		return candidates[a].index < candidates[b].index
	})

	var kept []candidate
	for _, c := range candidates {
		suppressed := false
		for _, k := range kept {
			if abs(c.index-k.index) < p.Distance {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(a, b int) bool { return kept[a].index < kept[b].index })

	events := make([]method.Event, len(kept))
	for i, c := range kept {
		events[i] = method.Event{
			Index: c.index,
			Time:  float64(c.index) / sig.SampleRate,
			Score: c.score,
		}
	}
	return method.Detected(events), nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
