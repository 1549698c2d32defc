package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"

	"github.com/authlens/authlens/pkg/models"
)

// MockProvider satisfies models.DetectorProvider for testing and for running
// the service without live detector backends.
type MockProvider struct {
	Name_      string
	DetectFunc func(ctx context.Context, req models.DetectionRequest) (models.DetectorObservation, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Detect(ctx context.Context, req models.DetectionRequest) (models.DetectorObservation, error) {
	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, req)
	}
	return models.DetectorObservation{}, nil
}

// NewMockProvider returns a provider that scores deterministically from the
// content hash: the same image always gets the same score, so reports stay
// reproducible across restarts.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		Name_: name,
		DetectFunc: func(_ context.Context, req models.DetectionRequest) (models.DetectorObservation, error) {
			return models.DetectorObservation{
				Name:   name,
				Score:  deterministicScore(req.ContentHash, name),
				Status: models.DetectorStatusSuccess,
			}, nil
		},
	}
}

// NewFixedProvider returns a provider that always reports the given score.
func NewFixedProvider(name string, score float64) *MockProvider {
	return &MockProvider{
		Name_: name,
		DetectFunc: func(_ context.Context, _ models.DetectionRequest) (models.DetectorObservation, error) {
			return models.DetectorObservation{
				Name:   name,
				Score:  score,
				Status: models.DetectorStatusSuccess,
			}, nil
		},
	}
}

// NewDegradedProvider returns a provider that reports a fallback-quality score.
func NewDegradedProvider(name string, score float64) *MockProvider {
	return &MockProvider{
		Name_: name,
		DetectFunc: func(_ context.Context, _ models.DetectionRequest) (models.DetectorObservation, error) {
			return models.DetectorObservation{
				Name:   name,
				Score:  score,
				Status: models.DetectorStatusFallback,
			}, nil
		},
	}
}

// NewFailingProvider returns a provider that always returns the given error.
func NewFailingProvider(name string, err error) *MockProvider {
	return &MockProvider{
		Name_: name,
		DetectFunc: func(_ context.Context, _ models.DetectionRequest) (models.DetectorObservation, error) {
			return models.DetectorObservation{}, err
		},
	}
}

// NewTimeoutProvider returns a provider that blocks until context is cancelled.
func NewTimeoutProvider(name string) *MockProvider {
	return &MockProvider{
		Name_: name,
		DetectFunc: func(ctx context.Context, _ models.DetectionRequest) (models.DetectorObservation, error) {
			<-ctx.Done()
			return models.DetectorObservation{}, ctx.Err()
		},
	}
}

// deterministicScore maps (contentHash, detector) to a stable score in [0, 1).
func deterministicScore(contentHash, name string) float64 {
	sum := sha256.Sum256([]byte(contentHash + ":" + name))
	return float64(binary.BigEndian.Uint64(sum[:8])) / float64(1<<63) / 2
}

// Compile-time check that MockProvider implements DetectorProvider.
var _ models.DetectorProvider = (*MockProvider)(nil)
