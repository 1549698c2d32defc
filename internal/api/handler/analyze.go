package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/authlens/authlens/internal/api/response"
	"github.com/authlens/authlens/internal/fusion"
	"github.com/authlens/authlens/internal/report"
	"github.com/authlens/authlens/internal/uncertainty"
	"github.com/authlens/authlens/pkg/models"
)

const maxInlineDetectors = 16

// Analyzer defines the interface the analyze handler depends on.
type Analyzer interface {
	Analyze(ctx context.Context, params report.AnalyzeParams) (*models.AnalysisReport, error)
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/analyze.
func NewAnalyzeHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ContentHash string                       `json:"content_hash"`
			ImageURL    string                       `json:"image_url"`
			Detectors   []models.DetectorObservation `json:"detectors"`
			Hints       []models.RegionHint          `json:"hints"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		req.ContentHash = strings.TrimSpace(req.ContentHash)
		if req.ContentHash == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "content_hash is required", nil)
			return
		}
		if len(req.Detectors) > maxInlineDetectors {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "too many inline detector observations", nil)
			return
		}
		for _, obs := range req.Detectors {
			if obs.Name == "" {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "detector name is required", nil)
				return
			}
			if obs.Status != models.DetectorStatusError && (obs.Score < 0 || obs.Score > 1) {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"detector score must be between 0 and 1", map[string]any{"detector": obs.Name})
				return
			}
		}

		result, err := svc.Analyze(r.Context(), report.AnalyzeParams{
			ContentHash:  req.ContentHash,
			ImageURL:     req.ImageURL,
			Observations: req.Detectors,
			Hints:        req.Hints,
		})
		if err != nil {
			switch {
			case errors.Is(err, fusion.ErrNoValidDetectors):
				response.Error(w, http.StatusUnprocessableEntity, "NO_VALID_DETECTORS",
					"Every detector failed; nothing to fuse", nil)
			case errors.Is(err, uncertainty.ErrEmptyEnsemble):
				response.Error(w, http.StatusUnprocessableEntity, "EMPTY_ENSEMBLE",
					"No usable detector observations", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, result)
	}
}
