package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/storage"
)

// AssessmentStore is an in-memory implementation of storage.AssessmentStore.
type AssessmentStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Assessment // keyed by assessment_id
}

// NewAssessmentStore creates a new in-memory assessment store.
func NewAssessmentStore() *AssessmentStore {
	return &AssessmentStore{
		data: make(map[string]*domain.Assessment),
	}
}

// Insert adds a new assessment. Returns ErrDuplicateKey if exists.
func (s *AssessmentStore) Insert(_ context.Context, a *domain.Assessment) error {
	if a == nil || a.AssessmentID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.AssessmentID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[a.AssessmentID] = cloneAssessment(a)
	return nil
}

// InsertBulk adds multiple assessments atomically. Fails entire batch on any duplicate.
func (s *AssessmentStore) InsertBulk(_ context.Context, assessments []*domain.Assessment) error {
	if len(assessments) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(assessments))
	for _, a := range assessments {
		if a == nil || a.AssessmentID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[a.AssessmentID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[a.AssessmentID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[a.AssessmentID] = struct{}{}
	}

	for _, a := range assessments {
		s.data[a.AssessmentID] = cloneAssessment(a)
	}
	return nil
}

// ListByTx retrieves assessments of a transaction, ordered by assessed_at ASC.
func (s *AssessmentStore) ListByTx(_ context.Context, chain, txHash string) ([]*domain.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Assessment
	for _, a := range s.data {
		if a.Chain == chain && strings.EqualFold(a.TxHash, txHash) {
			result = append(result, cloneAssessment(a))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AssessedAt != result[j].AssessedAt {
			return result[i].AssessedAt < result[j].AssessedAt
		}
		return result[i].AssessmentID < result[j].AssessmentID
	})
	return result, nil
}

// ListRecent retrieves the latest assessments, newest first.
func (s *AssessmentStore) ListRecent(_ context.Context, limit int) ([]*domain.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Assessment, 0, len(s.data))
	for _, a := range s.data {
		result = append(result, cloneAssessment(a))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AssessedAt != result[j].AssessedAt {
			return result[i].AssessedAt > result[j].AssessedAt
		}
		return result[i].AssessmentID < result[j].AssessmentID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func cloneAssessment(a *domain.Assessment) *domain.Assessment {
	c := *a
	c.FailedTools = append([]string(nil), a.FailedTools...)
	return &c
}

var _ storage.AssessmentStore = (*AssessmentStore)(nil)
