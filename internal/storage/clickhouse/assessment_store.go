package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/storage"
)

// AssessmentStore implements storage.AssessmentStore using ClickHouse.
type AssessmentStore struct {
	conn *Conn
}

// NewAssessmentStore creates a new AssessmentStore.
func NewAssessmentStore(conn *Conn) *AssessmentStore {
	return &AssessmentStore{conn: conn}
}

// Compile-time interface check.
var _ storage.AssessmentStore = (*AssessmentStore)(nil)

const assessmentColumns = `
	assessment_id, chain, tx_hash, success, failed_tools,
	risk_level, sender_score, assessed_at
`

// Insert adds a new assessment. Returns ErrDuplicateKey if assessment_id exists.
func (s *AssessmentStore) Insert(ctx context.Context, a *domain.Assessment) error {
	return s.InsertBulk(ctx, []*domain.Assessment{a})
}

// InsertBulk adds multiple assessments in one batch. Fails entire batch on any duplicate.
// ReplacingMergeTree would silently collapse duplicates, so they are checked first.
func (s *AssessmentStore) InsertBulk(ctx context.Context, assessments []*domain.Assessment) (err error) {
	if len(assessments) == 0 {
		return nil
	}
	defer func(start time.Time) { observe("insert_assessments", start, err) }(time.Now())

	seen := make(map[string]struct{}, len(assessments))
	for _, a := range assessments {
		if a == nil || a.AssessmentID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[a.AssessmentID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[a.AssessmentID] = struct{}{}
	}

	for _, a := range assessments {
		exists, err := s.exists(ctx, a.AssessmentID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO tx_assessments (`+assessmentColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, a := range assessments {
		failed := a.FailedTools
		if failed == nil {
			failed = []string{}
		}
		err = batch.Append(
			a.AssessmentID,
			a.Chain,
			strings.ToLower(a.TxHash),
			a.Success,
			failed,
			string(a.RiskLevel),
			a.SenderScore,
			uint64(a.AssessedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// ListByTx retrieves assessments of a transaction, ordered by assessed_at ASC.
func (s *AssessmentStore) ListByTx(ctx context.Context, chain, txHash string) (_ []*domain.Assessment, err error) {
	defer func(start time.Time) { observe("list_assessments_by_tx", start, err) }(time.Now())

	query := `
		SELECT ` + assessmentColumns + `
		FROM tx_assessments FINAL
		WHERE chain = ? AND tx_hash = ?
		ORDER BY assessed_at ASC, assessment_id ASC
	`

	rows, err := s.conn.Query(ctx, query, chain, strings.ToLower(txHash))
	if err != nil {
		return nil, fmt.Errorf("query by tx: %w", err)
	}
	defer rows.Close()

	return scanAssessments(rows)
}

// ListRecent retrieves the latest assessments, newest first. limit <= 0 means no limit.
func (s *AssessmentStore) ListRecent(ctx context.Context, limit int) (_ []*domain.Assessment, err error) {
	defer func(start time.Time) { observe("list_recent_assessments", start, err) }(time.Now())

	query := `
		SELECT ` + assessmentColumns + `
		FROM tx_assessments FINAL
		ORDER BY assessed_at DESC, assessment_id ASC
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, uint64(limit))
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	return scanAssessments(rows)
}

func (s *AssessmentStore) exists(ctx context.Context, assessmentID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count(*) FROM tx_assessments FINAL WHERE assessment_id = ?`,
		assessmentID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRows is the subset of driver.Rows used for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanAssessments(rows chRows) ([]*domain.Assessment, error) {
	assessments := make([]*domain.Assessment, 0)

	for rows.Next() {
		var (
			a          domain.Assessment
			level      string
			assessedAt uint64
		)
		err := rows.Scan(
			&a.AssessmentID,
			&a.Chain,
			&a.TxHash,
			&a.Success,
			&a.FailedTools,
			&level,
			&a.SenderScore,
			&assessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan assessment row: %w", err)
		}
		a.RiskLevel = domain.RiskLevel(level)
		a.AssessedAt = int64(assessedAt)
		assessments = append(assessments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessment rows: %w", err)
	}
	return assessments, nil
}
