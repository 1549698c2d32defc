// Package report orchestrates a full analysis: collect detector
// observations, fuse them, quantify uncertainty, synthesize the explanation,
// and persist the assembled report.
package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/authlens/authlens/internal/cache"
	"github.com/authlens/authlens/internal/explain"
	"github.com/authlens/authlens/internal/fusion"
	"github.com/authlens/authlens/internal/store"
	"github.com/authlens/authlens/internal/uncertainty"
	"github.com/authlens/authlens/pkg/models"
)

// Collector produces one observation per configured detector.
type Collector interface {
	Collect(ctx context.Context, req models.DetectionRequest) []models.DetectorObservation
}

// Options parameterize report assembly.
type Options struct {
	CacheTTL        time.Duration
	ConfidenceLevel float64
}

// Service runs analyses and assembles reports.
type Service struct {
	collector       Collector
	store           store.Store
	cache           cache.Cache
	cacheTTL        time.Duration
	confidenceLevel float64
}

// NewService creates a report Service.
func NewService(collector Collector, st store.Store, ca cache.Cache, opts Options) *Service {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		collector:       collector,
		store:           st,
		cache:           ca,
		cacheTTL:        ttl,
		confidenceLevel: opts.ConfidenceLevel,
	}
}

// AnalyzeParams holds validated parameters for one analysis request.
// When Observations is non-empty the detector ensemble is bypassed and the
// supplied observations are analyzed as-is.
type AnalyzeParams struct {
	ContentHash  string
	ImageURL     string
	Observations []models.DetectorObservation
	Hints        []models.RegionHint
}

// Analyze runs the full pipeline for one image. Fusion must complete before
// the explanation starts; uncertainty quantification runs alongside the
// explanation since it needs only the raw observations.
func (s *Service) Analyze(ctx context.Context, params AnalyzeParams) (*models.AnalysisReport, error) {
	observations := params.Observations
	if len(observations) == 0 {
		observations = s.collector.Collect(ctx, models.DetectionRequest{
			ContentHash: params.ContentHash,
			ImageURL:    params.ImageURL,
		})
	}
	// Zero observations is a distinct failure from all-errored: there is no
	// ensemble at all, not one whose members failed.
	if len(observations) == 0 {
		return nil, uncertainty.ErrEmptyEnsemble
	}

	fingerprint := observationFingerprint(params.ContentHash, observations)
	if cached := s.lookupCached(ctx, fingerprint); cached != nil {
		return cached, nil
	}

	fusionResult, err := fusion.Fuse(observations)
	if err != nil {
		return nil, err
	}

	var (
		uncertaintyResult models.UncertaintyResult
		explanation       models.XAIExplanation
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		start := time.Now()
		result, err := uncertainty.Quantify(observations, s.confidenceLevel)
		if err != nil {
			return err
		}
		result.ProcessingTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
		uncertaintyResult = result
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		explanation = explain.Explain(explain.Input{
			FusedScore:  fusionResult.FinalScore,
			ContentHash: params.ContentHash,
			Detectors:   observations,
			Hints:       params.Hints,
		})
		explanation.ProcessingTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &models.AnalysisReport{
		ID:                     uuid.New(),
		ContentHash:            params.ContentHash,
		FinalScore:             fusionResult.FinalScore,
		ReliabilityLevel:       uncertaintyResult.Reliability.Level,
		HumanReviewRecommended: uncertaintyResult.Reliability.HumanReviewRecommended,
		Recommendation:         uncertaintyResult.Recommendation,
		Summary:                explanation.Summary,
		Detectors:              observations,
		Fusion:                 fusionResult,
		Uncertainty:            uncertaintyResult,
		Explanation:            explanation,
		CreatedAt:              time.Now().UTC(),
	}

	// Persistence and caching are best effort: the caller still gets the
	// report if either backend is down.
	if err := s.store.CreateReport(ctx, report); err != nil {
		slog.Error("persisting report failed", "report_id", report.ID, "error", err)
	}
	s.storeCached(ctx, fingerprint, report)

	return report, nil
}

// GetReport fetches a persisted report by ID.
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*models.AnalysisReport, error) {
	return s.store.GetReport(ctx, id)
}

// ListReports pages through persisted reports.
func (s *Service) ListReports(ctx context.Context, filter store.ReportFilter) ([]*models.AnalysisReport, int, error) {
	return s.store.ListReports(ctx, filter)
}

func (s *Service) lookupCached(ctx context.Context, fingerprint string) *models.AnalysisReport {
	data, found, err := s.cache.Get(ctx, cache.ReportKey(fingerprint))
	if err != nil {
		slog.Warn("report cache lookup failed", "error", err)
		return nil
	}
	if !found {
		return nil
	}
	var report models.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		slog.Warn("discarding undecodable cached report", "error", err)
		return nil
	}
	return &report
}

func (s *Service) storeCached(ctx context.Context, fingerprint string, report *models.AnalysisReport) {
	data, err := json.Marshal(report)
	if err != nil {
		slog.Warn("encoding report for cache failed", "error", err)
		return
	}
	if err := s.cache.Set(ctx, cache.ReportKey(fingerprint), data, s.cacheTTL); err != nil {
		slog.Warn("caching report failed", "error", err)
	}
}

// observationFingerprint identifies an analysis outcome: same image and same
// detector observations means the assembled report is identical, so it can
// be served from cache.
func observationFingerprint(contentHash string, observations []models.DetectorObservation) string {
	sorted := make([]models.DetectorObservation, len(observations))
	copy(sorted, observations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	h := sha256.New()
	fmt.Fprintf(h, "%s\n", contentHash)
	for _, obs := range sorted {
		fmt.Fprintf(h, "%s|%.9f|%.9f|%s\n", obs.Name, obs.Score, obs.Weight, obs.Status)
	}
	return hex.EncodeToString(h.Sum(nil))
}
