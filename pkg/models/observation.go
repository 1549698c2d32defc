// Package models contains shared data models used across the AuthLens codebase.
package models

// DetectorStatus describes the health of a single detector invocation.
type DetectorStatus string

const (
	// DetectorStatusSuccess means the detector produced a trustworthy score.
	DetectorStatusSuccess DetectorStatus = "success"
	// DetectorStatusFallback means the detector degraded to a backup path;
	// its score is usable but the report should surface the degradation.
	DetectorStatusFallback DetectorStatus = "fallback"
	// DetectorStatusError means the detector failed outright; its score is
	// meaningless and its weight must be redistributed.
	DetectorStatusError DetectorStatus = "error"
)

// DetectorObservation is one upstream detector's verdict for a single image.
// Immutable once received from the detector layer.
type DetectorObservation struct {
	Name             string         `json:"name"`
	Score            float64        `json:"score"`
	Weight           float64        `json:"weight"`
	Status           DetectorStatus `json:"status"`
	ProcessingTimeMs float64        `json:"processing_time_ms"`
	ErrorMessage     *string        `json:"error_message,omitempty"`
}

// Usable reports whether the observation carries a score the engines may use.
func (o DetectorObservation) Usable() bool {
	return o.Status != DetectorStatusError
}
