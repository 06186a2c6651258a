package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
)

type key struct {
	id       uuid.UUID
	statType string
}

// StatStore implements ports.StatStore in memory.
// Safe for concurrent use.
type StatStore struct {
	mu     sync.RWMutex
	rows   map[key]domain.StatRow
	nextID int64
}

// NewStatStore creates a new in-memory store.
func NewStatStore() *StatStore {
	return &StatStore{
		rows: make(map[key]domain.StatRow),
	}
}

func (s *StatStore) Load(ctx context.Context, id uuid.UUID, statType string) (domain.StatRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[key{id, statType}]
	if !ok {
		return domain.StatRow{}, domain.ErrStatNotFound
	}
	return row, nil
}

// Save upserts every row. Rows are stored by value so callers cannot mutate them afterwards.
func (s *StatStore) Save(ctx context.Context, rows ...*domain.StatRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		k := key{row.UUID, row.StatType}
		if existing, ok := s.rows[k]; ok {
			row.ID = existing.ID
		} else {
			s.nextID++
			row.ID = s.nextID
		}
		s.rows[k] = *row
	}
	return nil
}

func (s *StatStore) ListByUser(ctx context.Context, id uuid.UUID) ([]domain.StatRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.StatRow
	for k, row := range s.rows {
		if k.id == id {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StatType < out[j].StatType })
	return out, nil
}

func (s *StatStore) Top(ctx context.Context, statType string, limit int) ([]domain.StatRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.StatRow
	for k, row := range s.rows {
		if k.statType == statType {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Val != out[j].Val {
			return out[i].Val > out[j].Val
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *StatStore) Delete(ctx context.Context, id uuid.UUID, statType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, key{id, statType})
	return nil
}
