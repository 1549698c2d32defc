// Package explain synthesizes the explainability artifacts for an analysis:
// regions of interest, an attention grid, findings, key factors, and a
// narrative summary. All output is derived deterministically from the fused
// score and the content hash; no pixel data or model internals are consulted,
// and the same input always produces byte-identical output.
package explain

import (
	"github.com/authlens/authlens/pkg/models"
)

// Input carries everything the synthesis needs. Detectors are informational
// only; the geometry and narrative key off FusedScore and ContentHash.
type Input struct {
	FusedScore  float64
	ContentHash string
	Detectors   []models.DetectorObservation
	Hints       []models.RegionHint
}

// Explain assembles the full explanation. It never fails: an empty region
// set is a valid outcome for low scores, not an error.
func Explain(in Input) models.XAIExplanation {
	regions := buildRegions(in.FusedScore, in.ContentHash, in.Hints)
	findings := buildFindings(regions, in.FusedScore)
	factors := buildKeyFactors(in.FusedScore, regions)

	return models.XAIExplanation{
		Summary:               summarize(in.FusedScore, findings, factors),
		Findings:              findings,
		Attention:             buildAttention(regions, in.FusedScore, in.ContentHash),
		Regions:               regions,
		ExplanationConfidence: explanationConfidence(regions, in.FusedScore),
		KeyFactors:            factors,
	}
}

// explanationConfidence is the mean region confidence, or the fused score
// itself when no region fired and there is nothing to average.
func explanationConfidence(regions []models.XAIRegion, fusedScore float64) float64 {
	if len(regions) == 0 {
		return clamp01(fusedScore)
	}
	var sum float64
	for _, region := range regions {
		sum += region.Confidence
	}
	return clamp01(sum / float64(len(regions)))
}
