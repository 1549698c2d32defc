// Package fusion combines per-detector authenticity scores into a single
// fused score with traceable, failure-aware weights. It is a pure package:
// no I/O, no logging, no shared state, deterministic for fixed input.
package fusion

import (
	"errors"
	"sort"

	"github.com/authlens/authlens/pkg/models"
)

// ErrNoValidDetectors is returned when every detector observation has status
// error (or the list is empty). No meaningful fused score exists; the caller
// must treat this as a terminal failure for the request.
var ErrNoValidDetectors = errors.New("no valid detector observations")

// weightTolerance is the slack allowed when checking that weights sum to 1.
const weightTolerance = 1e-9

// Fuse combines detector observations into a FusionResult.
//
// Errored detectors contribute nothing; their weight is redistributed
// proportionally across the survivors by renormalizing the surviving base
// weights to sum to 1. Fallback-status detectors keep their base weight but
// are recorded as degraded. If every survivor carries zero base weight the
// engine falls back to equal weights.
func Fuse(observations []models.DetectorObservation) (models.FusionResult, error) {
	survivors := make([]models.DetectorObservation, 0, len(observations))
	for _, obs := range observations {
		if obs.Usable() {
			survivors = append(survivors, obs)
		}
	}
	if len(survivors) == 0 {
		return models.FusionResult{}, ErrNoValidDetectors
	}

	var baseSum float64
	for _, obs := range survivors {
		baseSum += obs.Weight
	}

	applied := make(map[string]float64, len(observations))
	for _, obs := range observations {
		applied[obs.Name] = 0
	}

	var finalScore float64
	for _, obs := range survivors {
		w := 1.0 / float64(len(survivors))
		if baseSum > weightTolerance {
			w = obs.Weight / baseSum
		}
		applied[obs.Name] = w
		finalScore += obs.Score * w
	}

	return models.FusionResult{
		FinalScore:        clamp01(finalScore),
		AppliedWeights:    applied,
		DegradedDetectors: degradedNames(observations),
	}, nil
}

// degradedNames lists fallback-status detectors, sorted for stable output.
func degradedNames(observations []models.DetectorObservation) []string {
	var names []string
	for _, obs := range observations {
		if obs.Status == models.DetectorStatusFallback {
			names = append(names, obs.Name)
		}
	}
	sort.Strings(names)
	return names
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
