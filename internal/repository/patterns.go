package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
)

// PatternStore persists at most one learned pattern per (supplier, field).
// Implementations allow concurrent reads; writes to one key are last-writer-wins.
type PatternStore interface {
	// Get returns nil and no error when no pattern exists for the key.
	Get(ctx context.Context, supplierID uuid.UUID, field constants.FieldName) (*entity.SupplierPattern, error)
	GetAll(ctx context.Context, supplierID uuid.UUID) ([]*entity.SupplierPattern, error)
	Upsert(ctx context.Context, supplierID uuid.UUID, field constants.FieldName, pattern string) error
}

type patternKey struct {
	supplierID uuid.UUID
	field      constants.FieldName
}

type memoryPatternStore struct {
	mu       sync.RWMutex
	patterns map[patternKey]entity.SupplierPattern
	now      func() time.Time
}

// NewMemoryPatternStore returns a process-local PatternStore.
func NewMemoryPatternStore() PatternStore {
	return &memoryPatternStore{
		patterns: make(map[patternKey]entity.SupplierPattern),
		now:      time.Now,
	}
}

func (s *memoryPatternStore) Get(_ context.Context, supplierID uuid.UUID, field constants.FieldName) (*entity.SupplierPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patterns[patternKey{supplierID, field}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *memoryPatternStore) GetAll(_ context.Context, supplierID uuid.UUID) ([]*entity.SupplierPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.SupplierPattern
	for k, p := range s.patterns {
		if k.supplierID != supplierID {
			continue
		}
		out = append(out, &p)
	}
	sortPatterns(out)
	return out, nil
}

func (s *memoryPatternStore) Upsert(_ context.Context, supplierID uuid.UUID, field constants.FieldName, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns[patternKey{supplierID, field}] = entity.SupplierPattern{
		SupplierID: supplierID,
		FieldName:  field,
		Pattern:    pattern,
		UpdatedAt:  s.now().UTC(),
	}
	return nil
}

func sortPatterns(ps []*entity.SupplierPattern) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].FieldName < ps[j].FieldName })
}
