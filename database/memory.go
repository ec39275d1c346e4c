package database

import (
	"context"
	"slices"

	"restoanalytics/filters"
	"restoanalytics/models"
)

// MemoryStore keeps a fixed set of restaurants in memory. It backs tests and
// local fixtures; records are served in insertion order.
type MemoryStore struct {
	records []models.Restaurant
}

// NewMemoryStore returns a store holding records in insertion order.
func NewMemoryStore(records ...models.Restaurant) *MemoryStore {
	return &MemoryStore{records: slices.Clone(records)}
}

func (s *MemoryStore) Count(ctx context.Context, p filters.Predicate) (int64, error) {
	var total int64
	err := s.Each(ctx, p, func(models.Restaurant) error {
		total++
		return nil
	})
	return total, err
}

func (s *MemoryStore) Each(ctx context.Context, p filters.Predicate, fn func(models.Restaurant) error) error {
	for _, r := range s.records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.Match(r) {
			continue
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) Page(ctx context.Context, p filters.Predicate, offset, limit int) ([]models.Restaurant, error) {
	results := []models.Restaurant{}
	skipped := 0
	for _, r := range s.records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(results) >= limit {
			break
		}
		if !p.Match(r) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
