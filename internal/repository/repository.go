package repository

import (
	"context"
	"time"

	"github.com/fairwaylabs/swinglab/pkg/models"
)

// ReportCache holds freshly produced reports for a bounded TTL so the
// client can fetch, save or discard them by analysis id.
type ReportCache interface {
	SetReport(ctx context.Context, report *models.SwingAnalysisReport, ttl time.Duration) error
	GetReport(ctx context.Context, analysisID string) (*models.SwingAnalysisReport, error)
	DeleteReport(ctx context.Context, analysisID string) error
	Ping(ctx context.Context) error
}

// SwingStore persists swings the user chose to keep.
type SwingStore interface {
	SaveSwing(ctx context.Context, swing *models.SavedSwing) error
	GetSwing(ctx context.Context, analysisID string) (*models.SavedSwing, error)
	ListSwings(ctx context.Context, limit, offset int) ([]*models.SavedSwing, error)
	DeleteSwing(ctx context.Context, analysisID string) error
	CountSwings(ctx context.Context) (int, error)
	Close() error
}
