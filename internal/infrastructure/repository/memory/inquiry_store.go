// Package memory holds recent classification results in process. The
// store is bounded: once full, the oldest results are dropped so a
// burst of traffic cannot grow memory without limit.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
)

const defaultCapacity = 10000

type InquiryStore struct {
	mu      sync.RWMutex
	results map[string]*domain.ClassificationResult
	order   []string
	cap     int
}

func NewInquiryStore(capacity int) *InquiryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &InquiryStore{
		results: make(map[string]*domain.ClassificationResult),
		cap:     capacity,
	}
}

func (s *InquiryStore) Save(_ context.Context, result *domain.ClassificationResult) error {
	if result == nil || result.ID == "" {
		return fmt.Errorf("save classification: %w", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.results[result.ID]; !exists {
		s.order = append(s.order, result.ID)
	}
	s.results[result.ID] = result

	for len(s.order) > s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.results, oldest)
	}
	return nil
}

func (s *InquiryStore) GetByID(_ context.Context, id string) (*domain.ClassificationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.results[id]
	if !ok {
		return nil, fmt.Errorf("get classification %q: %w", id, domain.ErrNotFound)
	}
	copied := *result
	return &copied, nil
}

func (s *InquiryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
