package detector

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/authlens/authlens/internal/detector/httpdetector"
	"github.com/authlens/authlens/pkg/models"
)

// Ensemble fans a detection request out to every configured provider in
// parallel and collects one observation per provider. A provider failure is
// absorbed as an error-status observation so the remaining detectors can
// still carry the analysis; it never fails the request on its own.
type Ensemble struct {
	providers []models.DetectorProvider
	weights   map[string]float64
	timeout   time.Duration
}

// NewEnsemble creates an Ensemble. Weights map detector names to their base
// fusion weights; a provider missing from the map gets weight 0.
func NewEnsemble(providers []models.DetectorProvider, weights map[string]float64, timeout time.Duration) *Ensemble {
	return &Ensemble{providers: providers, weights: weights, timeout: timeout}
}

// Collect runs every provider concurrently and returns the observations
// ordered by detector name. The slice always has one entry per provider.
func (e *Ensemble) Collect(ctx context.Context, req models.DetectionRequest) []models.DetectorObservation {
	observations := make([]models.DetectorObservation, len(e.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range e.providers {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, e.timeout)
			defer cancel()

			start := time.Now()
			obs, err := p.Detect(callCtx, req)
			elapsed := float64(time.Since(start).Microseconds()) / 1000.0

			if err != nil {
				obs = e.failedObservation(p.Name(), err)
				slog.Warn("detector failed",
					"detector", p.Name(),
					"content_hash", req.ContentHash,
					"error", err,
				)
			}
			obs.Name = p.Name()
			obs.Weight = e.weights[p.Name()]
			obs.ProcessingTimeMs = elapsed
			observations[i] = obs
			return nil
		})
	}
	// Worker errors are folded into observations above; Wait only joins.
	_ = g.Wait()

	sort.Slice(observations, func(i, j int) bool {
		return observations[i].Name < observations[j].Name
	})
	return observations
}

func (e *Ensemble) failedObservation(name string, err error) models.DetectorObservation {
	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, httpdetector.ErrBackendTimeout):
		msg = ErrDetectorTimeout.Error()
	case errors.Is(err, httpdetector.ErrBackendUnreachable):
		msg = ErrDetectorUnavailable.Error()
	case errors.Is(err, httpdetector.ErrInvalidScore):
		msg = ErrInvalidResponse.Error()
	}
	return models.DetectorObservation{
		Name:         name,
		Score:        0,
		Status:       models.DetectorStatusError,
		ErrorMessage: &msg,
	}
}
