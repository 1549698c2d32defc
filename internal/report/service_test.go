package report_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authlens/authlens/internal/fusion"
	"github.com/authlens/authlens/internal/report"
	"github.com/authlens/authlens/internal/store"
	"github.com/authlens/authlens/internal/uncertainty"
	"github.com/authlens/authlens/pkg/models"
)

// --- mocks ---

type mockStore struct {
	mu      sync.Mutex
	reports map[uuid.UUID]*models.AnalysisReport
	created int
	err     error
}

func newMockStore() *mockStore {
	return &mockStore{reports: make(map[uuid.UUID]*models.AnalysisReport)}
}

func (m *mockStore) Ping(_ context.Context) error { return nil }
func (m *mockStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return nil, nil
}
func (m *mockStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }
func (m *mockStore) CreateAPIKey(_ context.Context, _ *models.APIKey) error    { return nil }
func (m *mockStore) ListAPIKeys(_ context.Context) ([]*models.APIKey, error)   { return nil, nil }
func (m *mockStore) RevokeAPIKey(_ context.Context, _ uuid.UUID) error         { return nil }

func (m *mockStore) CreateReport(_ context.Context, r *models.AnalysisReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.reports[r.ID] = r
	m.created++
	return nil
}

func (m *mockStore) GetReport(_ context.Context, id uuid.UUID) (*models.AnalysisReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r, nil
}

func (m *mockStore) ListReports(_ context.Context, filter store.ReportFilter) ([]*models.AnalysisReport, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.AnalysisReport
	for _, r := range m.reports {
		if filter.ContentHash != "" && r.ContentHash != filter.ContentHash {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

type mockCache struct {
	mu     sync.Mutex
	values map[string][]byte
	getErr error
	setErr error
}

func newMockCache() *mockCache {
	return &mockCache{values: make(map[string][]byte)}
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *mockCache) Ping(_ context.Context) error { return nil }
func (m *mockCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 0, nil
}

type staticCollector struct {
	observations []models.DetectorObservation
	calls        int
}

func (c *staticCollector) Collect(_ context.Context, _ models.DetectionRequest) []models.DetectorObservation {
	c.calls++
	return c.observations
}

// --- helpers ---

func successObservations() []models.DetectorObservation {
	return []models.DetectorObservation{
		{Name: "classifier", Score: 0.8, Weight: 0.6, Status: models.DetectorStatusSuccess},
		{Name: "frequency", Score: 0.82, Weight: 0.1, Status: models.DetectorStatusSuccess},
		{Name: "vision_language", Score: 0.75, Weight: 0.3, Status: models.DetectorStatusSuccess},
	}
}

func newService(collector report.Collector, st *mockStore, ca *mockCache) *report.Service {
	return report.NewService(collector, st, ca, report.Options{
		CacheTTL:        time.Minute,
		ConfidenceLevel: 0.95,
	})
}

// --- tests ---

func TestAnalyze_AssemblesFullReport(t *testing.T) {
	st := newMockStore()
	ca := newMockCache()
	collector := &staticCollector{observations: successObservations()}
	svc := newService(collector, st, ca)

	rep, err := svc.Analyze(context.Background(), report.AnalyzeParams{ContentHash: "sha256:abc"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rep.ID)
	assert.Equal(t, "sha256:abc", rep.ContentHash)
	assert.InDelta(t, 0.787, rep.FinalScore, 1e-9)
	assert.Equal(t, models.ReliabilityHigh, rep.ReliabilityLevel)
	assert.Equal(t, models.RecommendationHighConfidenceAI, rep.Recommendation)
	assert.False(t, rep.HumanReviewRecommended)
	assert.NotEmpty(t, rep.Summary)
	assert.Equal(t, rep.Summary, rep.Explanation.Summary)
	assert.Len(t, rep.Detectors, 3)
	assert.NotEmpty(t, rep.Explanation.Regions)
	assert.False(t, rep.CreatedAt.IsZero())

	assert.Equal(t, 1, collector.calls)
	assert.Equal(t, 1, st.created)
}

func TestAnalyze_SuppliedObservationsBypassCollector(t *testing.T) {
	st := newMockStore()
	ca := newMockCache()
	collector := &staticCollector{observations: successObservations()}
	svc := newService(collector, st, ca)

	_, err := svc.Analyze(context.Background(), report.AnalyzeParams{
		ContentHash:  "sha256:abc",
		Observations: successObservations(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, collector.calls)
}

func TestAnalyze_SecondCallServedFromCache(t *testing.T) {
	st := newMockStore()
	ca := newMockCache()
	collector := &staticCollector{observations: successObservations()}
	svc := newService(collector, st, ca)

	first, err := svc.Analyze(context.Background(), report.AnalyzeParams{ContentHash: "sha256:abc"})
	require.NoError(t, err)

	second, err := svc.Analyze(context.Background(), report.AnalyzeParams{ContentHash: "sha256:abc"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, st.created, "cached hit must not persist a second report")
}

func TestAnalyze_AllDetectorsFailed(t *testing.T) {
	msg := "backend down"
	errored := []models.DetectorObservation{
		{Name: "classifier", Weight: 0.6, Status: models.DetectorStatusError, ErrorMessage: &msg},
		{Name: "vision_language", Weight: 0.3, Status: models.DetectorStatusError, ErrorMessage: &msg},
	}
	svc := newService(&staticCollector{observations: errored}, newMockStore(), newMockCache())

	_, err := svc.Analyze(context.Background(), report.AnalyzeParams{ContentHash: "sha256:abc"})
	assert.ErrorIs(t, err, fusion.ErrNoValidDetectors)
}

func TestAnalyze_NoObservationsIsEmptyEnsemble(t *testing.T) {
	svc := newService(&staticCollector{}, newMockStore(), newMockCache())

	_, err := svc.Analyze(context.Background(), report.AnalyzeParams{ContentHash: "sha256:abc"})
	assert.ErrorIs(t, err, uncertainty.ErrEmptyEnsemble)
}

func TestAnalyze_StoreFailureStillReturnsReport(t *testing.T) {
	st := newMockStore()
	st.err = errors.New("connection refused")
	svc := newService(&staticCollector{observations: successObservations()}, st, newMockCache())

	rep, err := svc.Analyze(context.Background(), report.AnalyzeParams{ContentHash: "sha256:abc"})
	require.NoError(t, err)
	assert.NotNil(t, rep)
}

func TestAnalyze_CacheFailureStillReturnsReport(t *testing.T) {
	ca := newMockCache()
	ca.getErr = errors.New("redis down")
	ca.setErr = errors.New("redis down")
	svc := newService(&staticCollector{observations: successObservations()}, newMockStore(), ca)

	rep, err := svc.Analyze(context.Background(), report.AnalyzeParams{ContentHash: "sha256:abc"})
	require.NoError(t, err)
	assert.NotNil(t, rep)
}

func TestAnalyze_DifferentObservationsMissCache(t *testing.T) {
	st := newMockStore()
	ca := newMockCache()
	collector := &staticCollector{observations: successObservations()}
	svc := newService(collector, st, ca)

	_, err := svc.Analyze(context.Background(), report.AnalyzeParams{ContentHash: "sha256:abc"})
	require.NoError(t, err)

	other := successObservations()
	other[0].Score = 0.2
	_, err = svc.Analyze(context.Background(), report.AnalyzeParams{
		ContentHash:  "sha256:abc",
		Observations: other,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, st.created)
}

func TestGetReport_PassesThrough(t *testing.T) {
	st := newMockStore()
	svc := newService(&staticCollector{observations: successObservations()}, st, newMockCache())

	rep, err := svc.Analyze(context.Background(), report.AnalyzeParams{ContentHash: "sha256:abc"})
	require.NoError(t, err)

	got, err := svc.GetReport(context.Background(), rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, got.ID)

	_, err = svc.GetReport(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
