package storage

import (
	"sort"
	"sync"
	"time"
)

// BatchRecord tracks one submitted upload batch and the job it produced.
// These records exist only for the lifetime of the serve process; all
// durable state lives server-side.
type BatchRecord struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	FileCount int       `json:"file_count"`
	CreatedAt time.Time `json:"created_at"`
}

// BatchStore is an in-memory index of submitted batches.
type BatchStore struct {
	batches map[string]*BatchRecord
	mu      sync.RWMutex
}

func New() *BatchStore {
	return &BatchStore{
		batches: make(map[string]*BatchRecord),
	}
}

func (s *BatchStore) Get(batchID string) (*BatchRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch, exists := s.batches[batchID]
	return batch, exists
}

func (s *BatchStore) Set(batchID string, batch *BatchRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[batchID] = batch
}

// GetAll returns every tracked batch, newest first.
func (s *BatchStore) GetAll() []*BatchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*BatchRecord, 0, len(s.batches))
	for _, b := range s.batches {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *BatchStore) Delete(batchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, batchID)
}
