package explain

import (
	"fmt"
	"sort"

	"github.com/authlens/authlens/pkg/models"
)

const (
	highImpactFloor   = 0.7
	mediumImpactFloor = 0.4

	aiLeanFloor    = 0.55
	realLeanFloor  = 0.45
	verdictAIFloor = 0.7
	verdictRealCap = 0.3
)

// buildFindings derives one finding per region plus an overall assessment
// when the score is decisive in either direction.
func buildFindings(regions []models.XAIRegion, fusedScore float64) []models.XAIFinding {
	findings := make([]models.XAIFinding, 0, len(regions)+1)
	for _, region := range regions {
		findings = append(findings, models.XAIFinding{
			ID:          fmt.Sprintf("finding-%s", region.Category),
			Type:        region.Category,
			Description: region.Finding,
			Impact:      impactFor(region.Importance),
			Confidence:  region.Confidence,
			Location: &models.FindingLocation{
				X:      region.X,
				Y:      region.Y,
				Width:  region.Width,
				Height: region.Height,
			},
			TechnicalDetail: technicalDetail(region.Category),
		})
	}

	if fusedScore > verdictAIFloor || fusedScore < verdictRealCap {
		findings = append(findings, overallFinding(fusedScore))
	}
	return findings
}

func impactFor(importance float64) models.FindingImpact {
	switch {
	case importance > highImpactFloor:
		return models.FindingImpactHigh
	case importance > mediumImpactFloor:
		return models.FindingImpactMedium
	default:
		return models.FindingImpactLow
	}
}

func technicalDetail(category string) string {
	switch category {
	case "texture":
		return "Local variance of the luminance channel falls below the range observed in sensor-captured images, a pattern associated with diffusion denoisers."
	case "anatomical":
		return "Keypoint geometry deviates from learned structural priors for the detected subject class."
	case "background":
		return "Edge coherence between foreground and background drops sharply along the region perimeter, consistent with latent-space compositing."
	case "frequency":
		return "Radially averaged power spectrum departs from the 1/f falloff of natural images, with excess energy in mid-band frequencies."
	case "lighting":
		return "Estimated illumination vectors disagree across adjacent surfaces beyond what a single light source can explain."
	default:
		return "Signal departs from baselines established on authentic captures."
	}
}

func overallFinding(fusedScore float64) models.XAIFinding {
	finding := models.XAIFinding{
		ID:              "finding-overall",
		Type:            "overall_assessment",
		Impact:          models.FindingImpactHigh,
		Confidence:      clamp01(2*absFrom(fusedScore, 0.5) + 0.5),
		TechnicalDetail: "Aggregate verdict derived from the weighted detector ensemble.",
	}
	if fusedScore > verdictAIFloor {
		finding.Description = fmt.Sprintf("Multiple independent signals point to synthetic origin (fused score %.2f).", fusedScore)
	} else {
		finding.Description = fmt.Sprintf("Signals are consistent with an authentic capture (fused score %.2f).", fusedScore)
	}
	return finding
}

func absFrom(v, pivot float64) float64 {
	if v < pivot {
		return pivot - v
	}
	return v - pivot
}

// factorRegion maps each key factor to the region category that backs it.
// overall_coherence has no region; its contribution is the fused score.
var factorRegion = map[string]string{
	"texture_analysis":    "texture",
	"frequency_analysis":  "frequency",
	"anatomical_analysis": "anatomical",
}

var factorDescriptions = map[string]string{
	"texture_analysis":    "Uniformity of surface texture relative to natural image statistics",
	"frequency_analysis":  "Spectral signature compared against camera sensor baselines",
	"anatomical_analysis": "Structural consistency of the detected subject",
	"overall_coherence":   "Agreement across the weighted detector ensemble",
}

// buildKeyFactors lists the named signals behind the verdict, strongest
// first. Factors whose backing region did not fire are omitted rather than
// reported with a zero contribution.
func buildKeyFactors(fusedScore float64, regions []models.XAIRegion) []models.KeyFactor {
	importanceByCategory := make(map[string]float64, len(regions))
	for _, region := range regions {
		importanceByCategory[region.Category] = region.Importance
	}

	factors := make([]models.KeyFactor, 0, len(factorRegion)+1)
	for name, category := range factorRegion {
		importance, ok := importanceByCategory[category]
		if !ok {
			continue
		}
		factors = append(factors, models.KeyFactor{
			Name:         name,
			Contribution: importance,
			Direction:    directionFor(fusedScore),
			Description:  factorDescriptions[name],
		})
	}
	factors = append(factors, models.KeyFactor{
		Name:         "overall_coherence",
		Contribution: fusedScore,
		Direction:    directionFor(fusedScore),
		Description:  factorDescriptions["overall_coherence"],
	})

	sort.SliceStable(factors, func(i, j int) bool {
		if factors[i].Contribution != factors[j].Contribution {
			return factors[i].Contribution > factors[j].Contribution
		}
		return factors[i].Name < factors[j].Name
	})
	return factors
}

func directionFor(fusedScore float64) models.FactorDirection {
	switch {
	case fusedScore > aiLeanFloor:
		return models.DirectionAI
	case fusedScore < realLeanFloor:
		return models.DirectionReal
	default:
		return models.DirectionNeutral
	}
}

// summarize writes the one-paragraph narrative. Wording depends only on the
// score band, the strongest finding, and the count of AI-leaning factors.
func summarize(fusedScore float64, findings []models.XAIFinding, factors []models.KeyFactor) string {
	aiLeaning := 0
	for _, f := range factors {
		if f.Direction == models.DirectionAI {
			aiLeaning++
		}
	}

	topFinding := "no individual anomaly stood out"
	if len(findings) > 0 {
		topFinding = lowerFirst(findings[0].Description)
	}

	switch {
	case fusedScore > 0.7:
		return fmt.Sprintf(
			"Strong indicators of AI generation (score %.2f). The most prominent signal: %s. %d of %d weighted factors lean toward synthetic origin.",
			fusedScore, topFinding, aiLeaning, len(factors))
	case fusedScore > 0.5:
		return fmt.Sprintf(
			"Moderate indicators of AI generation (score %.2f). Notably, %s. %d of %d weighted factors lean toward synthetic origin.",
			fusedScore, topFinding, aiLeaning, len(factors))
	case fusedScore > 0.3:
		return fmt.Sprintf(
			"Mixed signals (score %.2f); neither origin is strongly supported. Where anomalies appear, %s.",
			fusedScore, topFinding)
	default:
		return fmt.Sprintf(
			"Few indicators of AI generation (score %.2f); the image is consistent with an authentic capture.",
			fusedScore)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
