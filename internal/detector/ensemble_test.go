package detector_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authlens/authlens/internal/detector"
	"github.com/authlens/authlens/internal/detector/httpdetector"
	"github.com/authlens/authlens/internal/detector/mock"
	"github.com/authlens/authlens/pkg/models"
)

func baseWeights() map[string]float64 {
	return map[string]float64{
		"classifier":      0.6,
		"vision_language": 0.3,
		"frequency":       0.1,
	}
}

func TestCollect_AllProvidersSucceed(t *testing.T) {
	providers := []models.DetectorProvider{
		mock.NewFixedProvider("classifier", 0.8),
		mock.NewFixedProvider("vision_language", 0.75),
		mock.NewFixedProvider("frequency", 0.82),
	}
	e := detector.NewEnsemble(providers, baseWeights(), 5*time.Second)

	observations := e.Collect(context.Background(), models.DetectionRequest{ContentHash: "sha256:abc"})
	require.Len(t, observations, 3)

	// Ordered by name.
	assert.Equal(t, "classifier", observations[0].Name)
	assert.Equal(t, "frequency", observations[1].Name)
	assert.Equal(t, "vision_language", observations[2].Name)

	assert.Equal(t, 0.6, observations[0].Weight)
	assert.Equal(t, 0.1, observations[1].Weight)
	assert.Equal(t, 0.3, observations[2].Weight)

	for _, obs := range observations {
		assert.Equal(t, models.DetectorStatusSuccess, obs.Status)
		assert.Nil(t, obs.ErrorMessage)
	}
}

func TestCollect_FailureBecomesErrorObservation(t *testing.T) {
	providers := []models.DetectorProvider{
		mock.NewFixedProvider("classifier", 0.8),
		mock.NewFailingProvider("vision_language", errors.New("model not loaded")),
	}
	e := detector.NewEnsemble(providers, baseWeights(), 5*time.Second)

	observations := e.Collect(context.Background(), models.DetectionRequest{ContentHash: "sha256:abc"})
	require.Len(t, observations, 2)

	failed := observations[1]
	assert.Equal(t, "vision_language", failed.Name)
	assert.Equal(t, models.DetectorStatusError, failed.Status)
	require.NotNil(t, failed.ErrorMessage)
	assert.Contains(t, *failed.ErrorMessage, "model not loaded")
	assert.Equal(t, 0.3, failed.Weight)

	assert.Equal(t, models.DetectorStatusSuccess, observations[0].Status)
}

func TestCollect_TimeoutBecomesErrorObservation(t *testing.T) {
	providers := []models.DetectorProvider{
		mock.NewFixedProvider("classifier", 0.8),
		mock.NewTimeoutProvider("frequency"),
	}
	e := detector.NewEnsemble(providers, baseWeights(), 50*time.Millisecond)

	observations := e.Collect(context.Background(), models.DetectionRequest{ContentHash: "sha256:abc"})
	require.Len(t, observations, 2)

	timedOut := observations[1]
	assert.Equal(t, "frequency", timedOut.Name)
	assert.Equal(t, models.DetectorStatusError, timedOut.Status)
	require.NotNil(t, timedOut.ErrorMessage)
	assert.Equal(t, detector.ErrDetectorTimeout.Error(), *timedOut.ErrorMessage)
}

func TestCollect_TransportErrorsClassified(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"unreachable", httpdetector.ErrBackendUnreachable, detector.ErrDetectorUnavailable.Error()},
		{"timeout", httpdetector.ErrBackendTimeout, detector.ErrDetectorTimeout.Error()},
		{"invalid score", httpdetector.ErrInvalidScore, detector.ErrInvalidResponse.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers := []models.DetectorProvider{
				mock.NewFailingProvider("classifier", fmt.Errorf("calling backend: %w", tt.err)),
			}
			e := detector.NewEnsemble(providers, baseWeights(), 5*time.Second)

			observations := e.Collect(context.Background(), models.DetectionRequest{ContentHash: "sha256:abc"})
			require.Len(t, observations, 1)
			require.NotNil(t, observations[0].ErrorMessage)
			assert.Equal(t, tt.wantMsg, *observations[0].ErrorMessage)
		})
	}
}

func TestCollect_FallbackStatusPreserved(t *testing.T) {
	providers := []models.DetectorProvider{
		mock.NewDegradedProvider("classifier", 0.7),
	}
	e := detector.NewEnsemble(providers, baseWeights(), 5*time.Second)

	observations := e.Collect(context.Background(), models.DetectionRequest{ContentHash: "sha256:abc"})
	require.Len(t, observations, 1)
	assert.Equal(t, models.DetectorStatusFallback, observations[0].Status)
	assert.Equal(t, 0.7, observations[0].Score)
}

func TestCollect_DeterministicMockScores(t *testing.T) {
	providers := []models.DetectorProvider{
		mock.NewMockProvider("classifier"),
		mock.NewMockProvider("vision_language"),
	}
	e := detector.NewEnsemble(providers, baseWeights(), 5*time.Second)
	req := models.DetectionRequest{ContentHash: "sha256:abc"}

	first := e.Collect(context.Background(), req)
	second := e.Collect(context.Background(), req)
	require.Len(t, first, 2)
	for i := range first {
		assert.Equal(t, first[i].Score, second[i].Score)
		assert.GreaterOrEqual(t, first[i].Score, 0.0)
		assert.Less(t, first[i].Score, 1.0)
	}
}

func TestCollect_UnknownProviderGetsZeroWeight(t *testing.T) {
	providers := []models.DetectorProvider{
		mock.NewFixedProvider("experimental", 0.5),
	}
	e := detector.NewEnsemble(providers, baseWeights(), 5*time.Second)

	observations := e.Collect(context.Background(), models.DetectionRequest{ContentHash: "sha256:abc"})
	require.Len(t, observations, 1)
	assert.Equal(t, 0.0, observations[0].Weight)
}
