package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/storage"
)

// ScanReportStore implements storage.ScanReportStore using PostgreSQL.
type ScanReportStore struct {
	pool *Pool
}

// NewScanReportStore creates a new ScanReportStore.
func NewScanReportStore(pool *Pool) *ScanReportStore {
	return &ScanReportStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScanReportStore = (*ScanReportStore)(nil)

const scanReportColumns = `
	report_id, chain, wallet_address, risk_level, scam_probability, confidence,
	warnings, sophisticated_patterns, risk_profile,
	total_transactions, dex_transactions, generated_at
`

// Insert adds a new report. Returns ErrDuplicateKey if report_id exists.
// Wallet addresses are stored lowercased.
func (s *ScanReportStore) Insert(ctx context.Context, r *domain.ScanReport) (err error) {
	if r == nil || r.ReportID == "" || r.WalletAddress == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_scan_report", start, err) }(time.Now())

	query := `
		INSERT INTO scan_reports (` + scanReportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = s.pool.Exec(ctx, query,
		r.ReportID,
		r.Chain,
		strings.ToLower(r.WalletAddress),
		string(r.RiskLevel),
		r.ScamProbability,
		r.Confidence,
		nonNil(r.Warnings),
		nonNil(r.SophisticatedPatterns),
		r.RiskProfile,
		r.TotalTransactions,
		r.DexTransactions,
		r.GeneratedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert scan report: %w", err)
	}
	return nil
}

// GetByID retrieves a report by its ID. Returns ErrNotFound if not exists.
func (s *ScanReportStore) GetByID(ctx context.Context, reportID string) (_ *domain.ScanReport, err error) {
	defer func(start time.Time) { observe("get_scan_report", start, err) }(time.Now())

	query := `SELECT ` + scanReportColumns + ` FROM scan_reports WHERE report_id = $1`

	r, err := scanReport(s.pool.QueryRow(ctx, query, reportID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get scan report by id: %w", err)
	}
	return r, nil
}

// ListByWallet retrieves reports for a wallet, newest first.
func (s *ScanReportStore) ListByWallet(ctx context.Context, chain, wallet string, limit int) (_ []*domain.ScanReport, err error) {
	defer func(start time.Time) { observe("list_scan_reports", start, err) }(time.Now())

	query := `
		SELECT ` + scanReportColumns + `
		FROM scan_reports
		WHERE chain = $1 AND wallet_address = $2
		ORDER BY generated_at DESC, report_id ASC
	`
	args := []any{chain, strings.ToLower(wallet)}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scan reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.ScanReport, 0)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan reports: %w", err)
	}
	return reports, nil
}

// scanReport scans a single row into ScanReport.
func scanReport(row pgx.Row) (*domain.ScanReport, error) {
	var r domain.ScanReport
	var level string

	err := row.Scan(
		&r.ReportID,
		&r.Chain,
		&r.WalletAddress,
		&level,
		&r.ScamProbability,
		&r.Confidence,
		&r.Warnings,
		&r.SophisticatedPatterns,
		&r.RiskProfile,
		&r.TotalTransactions,
		&r.DexTransactions,
		&r.GeneratedAt,
	)
	if err != nil {
		return nil, err
	}
	r.RiskLevel = domain.RiskLevel(level)
	return &r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
