package recordlog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Store persists records.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
	Query(ctx context.Context, f *Filter, sorts []Sort) ([]Record, error)
}

// MemoryStore keeps records for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *rec)
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, f *Filter, sorts []Sort) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for i := range s.records {
		if f.matches(&s.records[i]) {
			out = append(out, s.records[i])
		}
	}
	s.mu.RUnlock()

	if len(sorts) == 0 {
		sorts = []Sort{{Field: SortCreatedAt, Descending: true}}
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, s := range sorts {
			c := compareField(&out[i], &out[j], s.Field)
			if c == 0 {
				continue
			}
			if s.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out, nil
}

func compareField(a, b *Record, field string) int {
	switch field {
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortDate:
		return strings.Compare(a.Date, b.Date)
	case SortPatientID:
		return strings.Compare(a.PatientID, b.PatientID)
	case SortStatus:
		return strings.Compare(a.Status, b.Status)
	}
	return 0
}
