package models

// ReliabilityLevel buckets the reliability score into UI-facing bands.
type ReliabilityLevel string

const (
	ReliabilityHigh     ReliabilityLevel = "high"
	ReliabilityModerate ReliabilityLevel = "moderate"
	ReliabilityLow      ReliabilityLevel = "low"
	ReliabilityVeryLow  ReliabilityLevel = "very_low"
)

// FactorImpact marks whether a reliability factor helped or hurt the verdict.
type FactorImpact string

const (
	ImpactPositive FactorImpact = "positive"
	ImpactNegative FactorImpact = "negative"
	ImpactNeutral  FactorImpact = "neutral"
)

// Recommendation is the discrete next-step code derived from reliability and score.
type Recommendation string

const (
	RecommendationVeryUncertain      Recommendation = "very_uncertain_human_required"
	RecommendationNeedsReview        Recommendation = "low_confidence_needs_review"
	RecommendationModerate           Recommendation = "moderate_confidence"
	RecommendationHighConfidenceAI   Recommendation = "high_confidence_ai"
	RecommendationHighConfidenceReal Recommendation = "high_confidence_real"
)

// ConfidenceInterval is a formal interval at a named confidence level,
// distinct from the fixed ±2σ bound pair.
type ConfidenceInterval struct {
	Level float64 `json:"level"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// UncertaintyDecomposition splits total uncertainty into inherent ambiguity
// (aleatoric) and model disagreement (epistemic). The split is a documented
// heuristic, not a probabilistic guarantee.
type UncertaintyDecomposition struct {
	Aleatoric float64 `json:"aleatoric"`
	Epistemic float64 `json:"epistemic"`
	Total     float64 `json:"total"`
}

// ReliabilityFactor is one named contribution to the reliability verdict.
type ReliabilityFactor struct {
	Name        string       `json:"name"`
	Impact      FactorImpact `json:"impact"`
	Description string       `json:"description"`
}

// ReliabilityAssessment is the qualitative + quantitative trust judgment.
type ReliabilityAssessment struct {
	Score                  float64             `json:"score"`
	Level                  ReliabilityLevel    `json:"level"`
	Factors                []ReliabilityFactor `json:"factors"`
	HumanReviewRecommended bool                `json:"human_review_recommended"`
	Reason                 string              `json:"reason"`
}

// EnsembleDetails exposes the raw per-member statistics behind the estimate.
type EnsembleDetails struct {
	MemberPredictions map[string]float64 `json:"member_predictions"`
	AgreementScore    float64            `json:"agreement_score"`
	StdDev            float64            `json:"std_dev"`
	Outliers          []string           `json:"outliers,omitempty"`
}

// UncertaintyResult quantifies how much the fused score should be trusted.
// Invariants: 0 <= LowerBound <= Prediction <= UpperBound <= 1 and
// Total = sqrt(Aleatoric² + Epistemic²) clamped to [0,1].
type UncertaintyResult struct {
	Prediction         float64                  `json:"prediction"`
	LowerBound         float64                  `json:"lower_bound"`
	UpperBound         float64                  `json:"upper_bound"`
	ConfidenceInterval ConfidenceInterval       `json:"confidence_interval"`
	Decomposition      UncertaintyDecomposition `json:"decomposition"`
	Reliability        ReliabilityAssessment    `json:"reliability"`
	Ensemble           EnsembleDetails          `json:"ensemble"`
	Recommendation     Recommendation           `json:"recommendation"`
	ProcessingTimeMs   float64                  `json:"processing_time_ms"`
}
