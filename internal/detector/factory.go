// Package detector runs the configured detector backends and shapes their
// answers into observations the fusion engine can consume.
package detector

import (
	"fmt"

	"github.com/authlens/authlens/internal/config"
	"github.com/authlens/authlens/internal/detector/httpdetector"
	"github.com/authlens/authlens/internal/detector/mock"
	"github.com/authlens/authlens/pkg/models"
)

// NewProviders constructs the detector backends based on config.
// Called once at server startup.
func NewProviders(cfg config.DetectorConfig) ([]models.DetectorProvider, error) {
	switch cfg.Mode {
	case "http":
		return []models.DetectorProvider{
			httpdetector.New("classifier", cfg.Classifier, cfg.Timeout),
			httpdetector.New("vision_language", cfg.VisionLanguage, cfg.Timeout),
			httpdetector.New("frequency", cfg.Frequency, cfg.Timeout),
		}, nil
	case "mock":
		return []models.DetectorProvider{
			mock.NewMockProvider("classifier"),
			mock.NewMockProvider("vision_language"),
			mock.NewMockProvider("frequency"),
		}, nil
	default:
		return nil, fmt.Errorf("unknown detector mode %q: must be one of http, mock", cfg.Mode)
	}
}
