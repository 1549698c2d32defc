package models

// FusionResult is the weighted combination of all usable detector scores.
// AppliedWeights contains every observed detector; errored detectors carry
// weight 0 so the surviving weights always sum to 1.0 within tolerance.
type FusionResult struct {
	FinalScore        float64            `json:"final_score"`
	AppliedWeights    map[string]float64 `json:"applied_weights"`
	DegradedDetectors []string           `json:"degraded_detectors,omitempty"`
}
