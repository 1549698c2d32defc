// Package uncertainty quantifies how much a fused authenticity score should
// be trusted, based purely on detector disagreement. It recomputes its own
// weighted mean from the raw observations and never consults the fusion
// engine's output, so the two act as cross-validation for each other.
//
// The decomposition constants below are heuristic choices preserved from the
// original decision logic, not derivations from a probabilistic model.
package uncertainty

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/authlens/authlens/pkg/models"
)

// ErrEmptyEnsemble is returned when no usable detector observation was
// supplied. This is a precondition violation, terminal for the request.
var ErrEmptyEnsemble = errors.New("empty detector ensemble")

// DefaultConfidenceLevel is the CI level used when the caller passes 0.
const DefaultConfidenceLevel = 0.95

const (
	// Epistemic uncertainty leans on score range over spread.
	epistemicRangeWeight  = 0.7
	epistemicSpreadWeight = 0.3

	// Aleatoric uncertainty peaks when the mean sits on the 0.5 boundary.
	aleatoricBoundaryScale = 0.5

	// The heuristic bound pair is a fixed ±2σ window around the mean.
	boundWindowSigmas = 2.0

	// Outliers deviate from the weighted mean by more than 2σ. With 2–3
	// members the outlier inflates σ enough to hide itself, so deviations
	// beyond an absolute cap are flagged regardless.
	outlierSigmas          = 2.0
	maxCredibleDeviation   = 0.45

	// Reliability penalties.
	disagreementPenaltyCap   = 0.4
	disagreementPenaltyScale = 4.0
	outlierPenalty           = 0.1
	boundaryPenaltyScale     = 0.3
)

// zScores maps supported confidence levels to their normal z multipliers.
var zScores = map[float64]float64{
	0.80: 1.282,
	0.90: 1.645,
	0.95: 1.960,
	0.99: 2.576,
}

// Quantify computes the disagreement-based uncertainty estimate for a set of
// detector observations. Errored observations are ignored; if none remain,
// ErrEmptyEnsemble is returned. level selects the confidence interval
// (0 means DefaultConfidenceLevel).
func Quantify(observations []models.DetectorObservation, level float64) (models.UncertaintyResult, error) {
	members := make([]models.DetectorObservation, 0, len(observations))
	for _, obs := range observations {
		if obs.Usable() {
			members = append(members, obs)
		}
	}
	if len(members) == 0 {
		return models.UncertaintyResult{}, ErrEmptyEnsemble
	}

	if level <= 0 {
		level = DefaultConfidenceLevel
	}

	mean, variance := weightedMoments(members)
	sigma := math.Sqrt(variance)

	minScore, maxScore := members[0].Score, members[0].Score
	predictions := make(map[string]float64, len(members))
	for _, m := range members {
		predictions[m.Name] = m.Score
		minScore = math.Min(minScore, m.Score)
		maxScore = math.Max(maxScore, m.Score)
	}

	epistemic := clamp01(epistemicRangeWeight*(maxScore-minScore) + epistemicSpreadWeight*sigma)
	aleatoric := clamp01(aleatoricBoundaryScale * (0.5 - math.Abs(mean-0.5)))
	total := clamp01(math.Sqrt(epistemic*epistemic + aleatoric*aleatoric))

	outliers := detectOutliers(members, mean, sigma)
	reliability := assessReliability(observations, mean, variance, outliers)

	z := zScores[level]
	if z == 0 {
		z = zScores[DefaultConfidenceLevel]
	}

	return models.UncertaintyResult{
		Prediction: mean,
		LowerBound: clamp01(mean - boundWindowSigmas*sigma),
		UpperBound: clamp01(mean + boundWindowSigmas*sigma),
		ConfidenceInterval: models.ConfidenceInterval{
			Level: level,
			Lower: clamp01(mean - z*sigma),
			Upper: clamp01(mean + z*sigma),
		},
		Decomposition: models.UncertaintyDecomposition{
			Aleatoric: aleatoric,
			Epistemic: epistemic,
			Total:     total,
		},
		Reliability: reliability,
		Ensemble: models.EnsembleDetails{
			MemberPredictions: predictions,
			AgreementScore:    clamp01(1 - (maxScore - minScore)),
			StdDev:            sigma,
			Outliers:          outliers,
		},
		Recommendation: recommend(reliability.Level, mean),
	}, nil
}

// weightedMoments returns the weighted mean and variance of member scores.
// A zero weight sum falls back to equal weights so the estimate stays
// anchored to the scores instead of collapsing to zero.
func weightedMoments(members []models.DetectorObservation) (mean, variance float64) {
	var weightSum float64
	for _, m := range members {
		weightSum += m.Weight
	}

	weightAt := func(m models.DetectorObservation) float64 {
		if weightSum <= 0 {
			return 1.0 / float64(len(members))
		}
		return m.Weight / weightSum
	}

	for _, m := range members {
		mean += m.Score * weightAt(m)
	}
	for _, m := range members {
		d := m.Score - mean
		variance += d * d * weightAt(m)
	}
	return mean, variance
}

// detectOutliers flags members deviating more than outlierSigmas·σ from the
// weighted mean, or beyond maxCredibleDeviation outright. With σ = 0 every
// member equals the mean and nothing is flagged.
func detectOutliers(members []models.DetectorObservation, mean, sigma float64) []string {
	threshold := outlierSigmas * sigma
	if threshold > maxCredibleDeviation {
		threshold = maxCredibleDeviation
	}
	if threshold <= 0 {
		return nil
	}

	var outliers []string
	for _, m := range members {
		if math.Abs(m.Score-mean) > threshold {
			outliers = append(outliers, m.Name)
		}
	}
	sort.Strings(outliers)
	return outliers
}

func assessReliability(observations []models.DetectorObservation, mean, variance float64, outliers []string) models.ReliabilityAssessment {
	boundaryProximity := 0.5 - math.Abs(mean-0.5)

	score := 1.0
	score -= math.Min(disagreementPenaltyCap, disagreementPenaltyScale*variance)
	score -= outlierPenalty * float64(len(outliers))
	score -= boundaryPenaltyScale * boundaryProximity
	score = clamp01(score)

	level := levelFor(score)

	factors := []models.ReliabilityFactor{agreementFactor(variance)}
	if len(outliers) > 0 {
		factors = append(factors, models.ReliabilityFactor{
			Name:        "outliers",
			Impact:      models.ImpactNegative,
			Description: fmt.Sprintf("Detector(s) %s deviate strongly from the ensemble mean", strings.Join(outliers, ", ")),
		})
	}
	factors = append(factors, boundaryFactor(boundaryProximity))
	if degraded := degradedFactor(observations); degraded != nil {
		factors = append(factors, *degraded)
	}

	return models.ReliabilityAssessment{
		Score:                  score,
		Level:                  level,
		Factors:                factors,
		HumanReviewRecommended: level == models.ReliabilityLow || level == models.ReliabilityVeryLow,
		Reason:                 reasonFor(level),
	}
}

func agreementFactor(variance float64) models.ReliabilityFactor {
	switch {
	case variance <= 0.01:
		return models.ReliabilityFactor{
			Name:        "detector_agreement",
			Impact:      models.ImpactPositive,
			Description: fmt.Sprintf("Detectors closely agree (variance %.4f)", variance),
		}
	case variance <= 0.04:
		return models.ReliabilityFactor{
			Name:        "detector_agreement",
			Impact:      models.ImpactNeutral,
			Description: fmt.Sprintf("Detectors broadly agree (variance %.4f)", variance),
		}
	default:
		return models.ReliabilityFactor{
			Name:        "detector_agreement",
			Impact:      models.ImpactNegative,
			Description: fmt.Sprintf("Detectors disagree materially (variance %.4f)", variance),
		}
	}
}

func boundaryFactor(proximity float64) models.ReliabilityFactor {
	switch {
	case proximity > 0.4:
		return models.ReliabilityFactor{
			Name:        "decision_boundary",
			Impact:      models.ImpactNegative,
			Description: "Fused score sits near the 0.5 decision boundary",
		}
	case proximity < 0.2:
		return models.ReliabilityFactor{
			Name:        "decision_boundary",
			Impact:      models.ImpactPositive,
			Description: "Fused score is far from the decision boundary",
		}
	default:
		return models.ReliabilityFactor{
			Name:        "decision_boundary",
			Impact:      models.ImpactNeutral,
			Description: "Fused score is moderately separated from the decision boundary",
		}
	}
}

// degradedFactor surfaces fallback-status detectors as information, never as
// an error or a score penalty.
func degradedFactor(observations []models.DetectorObservation) *models.ReliabilityFactor {
	var names []string
	for _, obs := range observations {
		if obs.Status == models.DetectorStatusFallback {
			names = append(names, obs.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return &models.ReliabilityFactor{
		Name:        "degraded_detectors",
		Impact:      models.ImpactNeutral,
		Description: fmt.Sprintf("Detector(s) %s ran in fallback mode", strings.Join(names, ", ")),
	}
}

func levelFor(score float64) models.ReliabilityLevel {
	switch {
	case score >= 0.8:
		return models.ReliabilityHigh
	case score >= 0.6:
		return models.ReliabilityModerate
	case score >= 0.4:
		return models.ReliabilityLow
	default:
		return models.ReliabilityVeryLow
	}
}

func reasonFor(level models.ReliabilityLevel) string {
	switch level {
	case models.ReliabilityHigh:
		return "Detectors agree and the fused score is decisive"
	case models.ReliabilityModerate:
		return "Detectors mostly agree; minor disagreement or boundary proximity remains"
	case models.ReliabilityLow:
		return "Detector disagreement or boundary proximity undermines the verdict"
	default:
		return "Detector outputs conflict too strongly for an automated verdict"
	}
}

func recommend(level models.ReliabilityLevel, mean float64) models.Recommendation {
	switch level {
	case models.ReliabilityVeryLow:
		return models.RecommendationVeryUncertain
	case models.ReliabilityLow:
		return models.RecommendationNeedsReview
	case models.ReliabilityModerate:
		return models.RecommendationModerate
	}
	// High reliability: decisive only when the mean is clearly on one side.
	if mean >= 0.7 {
		return models.RecommendationHighConfidenceAI
	}
	if mean <= 0.3 {
		return models.RecommendationHighConfidenceReal
	}
	return models.RecommendationModerate
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
