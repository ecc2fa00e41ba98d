package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/storage"
)

// ScanReportStore is an in-memory implementation of storage.ScanReportStore.
type ScanReportStore struct {
	mu       sync.RWMutex
	byID     map[string]*domain.ScanReport
	byWallet map[string][]*domain.ScanReport // keyed by chain|lower(wallet)
}

// NewScanReportStore creates a new in-memory scan report store.
func NewScanReportStore() *ScanReportStore {
	return &ScanReportStore{
		byID:     make(map[string]*domain.ScanReport),
		byWallet: make(map[string][]*domain.ScanReport),
	}
}

func walletKey(chain, wallet string) string {
	return chain + "|" + strings.ToLower(wallet)
}

// Insert adds a new report. Returns ErrDuplicateKey if report_id exists.
func (s *ScanReportStore) Insert(_ context.Context, r *domain.ScanReport) error {
	if r == nil || r.ReportID == "" || r.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[r.ReportID]; exists {
		return storage.ErrDuplicateKey
	}

	rc := cloneReport(r)
	s.byID[r.ReportID] = rc
	key := walletKey(r.Chain, r.WalletAddress)
	s.byWallet[key] = append(s.byWallet[key], rc)
	return nil
}

// GetByID retrieves a report by its ID. Returns ErrNotFound if not exists.
func (s *ScanReportStore) GetByID(_ context.Context, reportID string) (*domain.ScanReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.byID[reportID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneReport(r), nil
}

// ListByWallet retrieves reports for a wallet, newest first.
func (s *ScanReportStore) ListByWallet(_ context.Context, chain, wallet string, limit int) ([]*domain.ScanReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byWallet[walletKey(chain, wallet)]
	result := make([]*domain.ScanReport, 0, len(stored))
	for _, r := range stored {
		result = append(result, cloneReport(r))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].GeneratedAt > result[j].GeneratedAt
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func cloneReport(r *domain.ScanReport) *domain.ScanReport {
	c := *r
	c.Warnings = append([]string(nil), r.Warnings...)
	c.SophisticatedPatterns = append([]string(nil), r.SophisticatedPatterns...)
	return &c
}

var _ storage.ScanReportStore = (*ScanReportStore)(nil)
