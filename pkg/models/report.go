package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisReport is the full authenticity verdict for one image, assembled
// from the fusion, uncertainty, and explainability engines. Request-scoped
// and owned by the caller; the engines keep no shared state between reports.
type AnalysisReport struct {
	ID                     uuid.UUID             `json:"id"`
	ContentHash            string                `json:"content_hash"`
	FinalScore             float64               `json:"final_score"`
	ReliabilityLevel       ReliabilityLevel      `json:"reliability_level"`
	HumanReviewRecommended bool                  `json:"human_review_recommended"`
	Recommendation         Recommendation        `json:"recommendation"`
	Summary                string                `json:"summary"`
	Detectors              []DetectorObservation `json:"detectors"`
	Fusion                 FusionResult          `json:"fusion"`
	Uncertainty            UncertaintyResult     `json:"uncertainty"`
	Explanation            XAIExplanation        `json:"explanation"`
	CreatedAt              time.Time             `json:"created_at"`
}
