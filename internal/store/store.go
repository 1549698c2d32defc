package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/authlens/authlens/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error

	CreateReport(ctx context.Context, report *models.AnalysisReport) error
	GetReport(ctx context.Context, id uuid.UUID) (*models.AnalysisReport, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]*models.AnalysisReport, int, error)
}

// ReportFilter narrows and paginates report listings.
type ReportFilter struct {
	ContentHash      string
	ReliabilityLevel string
	HumanReview      *bool
	Since            time.Time
	Page             int
	Limit            int
}
