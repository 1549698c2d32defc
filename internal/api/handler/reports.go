package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/authlens/authlens/internal/api/response"
	"github.com/authlens/authlens/internal/store"
	"github.com/authlens/authlens/pkg/models"
)

// Reporter defines the read-side interface the report handlers depend on.
type Reporter interface {
	GetReport(ctx context.Context, id uuid.UUID) (*models.AnalysisReport, error)
	ListReports(ctx context.Context, filter store.ReportFilter) ([]*models.AnalysisReport, int, error)
}

// NewGetReportHandler returns an http.HandlerFunc for GET /api/v1/reports/{reportID}.
func NewGetReportHandler(svc Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "reportID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "reportID must be a valid UUID", nil)
			return
		}

		rep, err := svc.GetReport(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Report not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, rep)
	}
}

// NewListReportsHandler returns an http.HandlerFunc for GET /api/v1/reports.
func NewListReportsHandler(svc Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseReportFilter(r)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}

		reports, total, err := svc.ListReports(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if reports == nil {
			reports = []*models.AnalysisReport{}
		}

		page, limit := normalizePagination(filter.Page, filter.Limit)
		response.Collection(w, reports, response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: page*limit < total,
		})
	}
}

func parseReportFilter(r *http.Request) (store.ReportFilter, error) {
	q := r.URL.Query()
	filter := store.ReportFilter{
		ContentHash:      q.Get("content_hash"),
		ReliabilityLevel: q.Get("reliability_level"),
	}

	if v := q.Get("human_review"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return store.ReportFilter{}, errors.New("human_review must be a boolean")
		}
		filter.HumanReview = &b
	}
	if v := q.Get("since"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return store.ReportFilter{}, errors.New("since must be a valid RFC3339 timestamp")
		}
		filter.Since = ts
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return store.ReportFilter{}, errors.New("page must be a positive integer")
		}
		filter.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return store.ReportFilter{}, errors.New("limit must be a positive integer")
		}
		filter.Limit = n
	}

	return filter, nil
}

func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
