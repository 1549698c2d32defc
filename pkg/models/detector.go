package models

import "context"

// DetectorProvider is the core interface all detector backends implement.
// Never call a specific backend directly — always inject this interface.
type DetectorProvider interface {
	// Detect scores one image for evidence of AI generation. The returned
	// observation carries the provider's name and status; its weight is
	// stamped later from the base weight configuration.
	Detect(ctx context.Context, req DetectionRequest) (DetectorObservation, error)
	// Name returns the detector identifier (e.g., "classifier", "frequency").
	Name() string
}

// DetectionRequest is the input to a single detector call.
type DetectionRequest struct {
	ContentHash string `json:"content_hash"`
	ImageURL    string `json:"image_url,omitempty"`
}
