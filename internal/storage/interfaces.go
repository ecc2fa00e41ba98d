package storage

import (
	"context"

	"chain-risk-lab/internal/domain"
)

// ScanReportStore provides access to scan_reports storage.
type ScanReportStore interface {
	// Insert adds a new report. Returns ErrDuplicateKey if report_id exists.
	Insert(ctx context.Context, r *domain.ScanReport) error

	// GetByID retrieves a report by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, reportID string) (*domain.ScanReport, error)

	// ListByWallet retrieves reports for a wallet, newest first.
	// The wallet address is matched case-insensitively. limit <= 0 means no limit.
	ListByWallet(ctx context.Context, chain, wallet string, limit int) ([]*domain.ScanReport, error)
}

// AssessmentStore provides access to tx_assessments storage.
type AssessmentStore interface {
	// Insert adds a new assessment. Returns ErrDuplicateKey if assessment_id exists.
	Insert(ctx context.Context, a *domain.Assessment) error

	// InsertBulk adds multiple assessments. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, assessments []*domain.Assessment) error

	// ListByTx retrieves assessments of a transaction, ordered by assessed_at ASC.
	ListByTx(ctx context.Context, chain, txHash string) ([]*domain.Assessment, error)

	// ListRecent retrieves the latest assessments across all transactions, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.Assessment, error)
}
