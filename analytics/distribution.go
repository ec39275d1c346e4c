package analytics

import (
	"context"
	"fmt"
	"sort"

	"restoanalytics/database"
	"restoanalytics/filters"
	"restoanalytics/models"
)

// Distribution counts how many matched records list each distinct value of
// a multi-valued field. A record contributes once per listed value.
func Distribution(ctx context.Context, store database.Store, p filters.Predicate, field filters.Field) ([]models.ValueCount, error) {
	counts := map[string]int64{}
	err := store.Each(ctx, p, func(r models.Restaurant) error {
		for _, v := range values(r, field) {
			counts[v]++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", field, err)
	}
	return sortedCounts(counts), nil
}

func values(r models.Restaurant, field filters.Field) []string {
	switch field {
	case filters.MealsList:
		return r.MealsList
	case filters.TopTagsList:
		return r.TopTagsList
	case filters.CuisinesList:
		return r.CuisinesList
	}
	return nil
}

// sortedCounts orders by count descending, then value, so responses are
// stable across runs.
func sortedCounts(counts map[string]int64) []models.ValueCount {
	out := make([]models.ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, models.ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
