package models

// XAIRegion is a synthetic region of interest. Coordinates are percentages
// of the image dimensions in [0,100]; no pixel data is ever consulted.
type XAIRegion struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Importance float64 `json:"importance"`
	Category   string  `json:"category"`
	Finding    string  `json:"finding"`
	Confidence float64 `json:"confidence"`
}

// RegionHint lets the caller nudge a region template's geometry, e.g. from
// an upstream saliency pass. Hints are matched by category.
type RegionHint struct {
	Category string  `json:"category"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// AttentionDistribution classifies how spread out the attention grid is.
type AttentionDistribution string

const (
	DistributionConcentrated AttentionDistribution = "concentrated"
	DistributionDistributed  AttentionDistribution = "distributed"
	DistributionUniform      AttentionDistribution = "uniform"
)

// AttentionHotspot is one of the strongest cells in the attention grid.
type AttentionHotspot struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Value float64 `json:"value"`
}

// AttentionMap is a fixed 5×5 grid of attention values in [0,1].
type AttentionMap struct {
	Grid         [][]float64           `json:"grid"`
	Hotspots     []AttentionHotspot    `json:"hotspots"`
	Distribution AttentionDistribution `json:"distribution"`
}

// FindingImpact buckets a finding's weight in the overall verdict.
type FindingImpact string

const (
	FindingImpactHigh   FindingImpact = "high"
	FindingImpactMedium FindingImpact = "medium"
	FindingImpactLow    FindingImpact = "low"
)

// FindingLocation is the region box a finding refers to, if any.
type FindingLocation struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// XAIFinding is a categorized, human-readable observation about the image.
type XAIFinding struct {
	ID              string           `json:"id"`
	Type            string           `json:"type"`
	Description     string           `json:"description"`
	Impact          FindingImpact    `json:"impact"`
	Confidence      float64          `json:"confidence"`
	Location        *FindingLocation `json:"location,omitempty"`
	TechnicalDetail string           `json:"technical_detail"`
}

// FactorDirection is the lean of a key factor toward one verdict.
type FactorDirection string

const (
	DirectionAI      FactorDirection = "ai"
	DirectionReal    FactorDirection = "real"
	DirectionNeutral FactorDirection = "neutral"
)

// KeyFactor is a named signal with its weighted contribution to the verdict.
type KeyFactor struct {
	Name         string          `json:"name"`
	Contribution float64         `json:"contribution"`
	Direction    FactorDirection `json:"direction"`
	Description  string          `json:"description"`
}

// XAIExplanation is the assembled explainability output for one analysis.
// Regions and findings are ordered by descending importance.
type XAIExplanation struct {
	Summary               string        `json:"summary"`
	Findings              []XAIFinding  `json:"findings"`
	Attention             AttentionMap  `json:"attention"`
	Regions               []XAIRegion   `json:"regions"`
	ExplanationConfidence float64       `json:"explanation_confidence"`
	KeyFactors            []KeyFactor   `json:"key_factors"`
	ProcessingTimeMs      float64       `json:"processing_time_ms"`
}
