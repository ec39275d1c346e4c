// Package catalog serves the fixed listings over the restaurant collection
// and the prebuilt catalog document used to populate filter menus.
package catalog

import (
	"context"
	"fmt"
	"math"
	"sort"

	"restoanalytics/analytics"
	"restoanalytics/database"
	"restoanalytics/filters"
	"restoanalytics/models"
)

const (
	// TopPerCountry is how many tags or cuisines are listed per country.
	TopPerCountry = 5
	// MaxLocations caps the restaurant-locations listing.
	MaxLocations = 10000
)

// Count returns the size of the whole collection.
func Count(ctx context.Context, store database.Store) (int64, error) {
	return store.Count(ctx, filters.Predicate{})
}

// CountByCountry returns the number of restaurants per country, largest first.
func CountByCountry(ctx context.Context, store database.Store) ([]models.CountryCount, error) {
	counts := map[string]int64{}
	err := store.Each(ctx, filters.Predicate{}, func(r models.Restaurant) error {
		counts[r.Country]++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count by country: %w", err)
	}

	out := make([]models.CountryCount, 0, len(counts))
	for country, n := range counts {
		out = append(out, models.CountryCount{Country: country, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Country < out[j].Country
	})
	return out, nil
}

// TopByCountry returns, per country, the n most frequent values of a
// multi-valued field. Countries where no restaurant has a value are left out.
func TopByCountry(ctx context.Context, store database.Store, field filters.Field, n int) ([]models.CountryTop, error) {
	perCountry := map[string]map[string]int64{}
	err := store.Each(ctx, filters.Predicate{}, func(r models.Restaurant) error {
		values := listValues(r, field)
		if len(values) == 0 {
			return nil
		}
		counts, ok := perCountry[r.Country]
		if !ok {
			counts = map[string]int64{}
			perCountry[r.Country] = counts
		}
		for _, v := range values {
			counts[v]++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("top %s by country: %w", field, err)
	}

	out := make([]models.CountryTop, 0, len(perCountry))
	for country, counts := range perCountry {
		top := rank(counts)
		if len(top) > n {
			top = top[:n]
		}
		out = append(out, models.CountryTop{Country: country, Top: top})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out, nil
}

// AvgRatingByCuisine averages the valid ratings of the restaurants serving
// each cuisine, best first.
func AvgRatingByCuisine(ctx context.Context, store database.Store) ([]models.CuisineRating, error) {
	type acc struct {
		sum float64
		n   int64
	}
	perCuisine := map[string]*acc{}
	err := store.Each(ctx, filters.Predicate{}, func(r models.Restaurant) error {
		if math.IsNaN(r.AvgRating) || r.AvgRating <= 0 || r.AvgRating > 5 {
			return nil
		}
		for _, c := range r.CuisinesList {
			a, ok := perCuisine[c]
			if !ok {
				a = &acc{}
				perCuisine[c] = a
			}
			a.sum += r.AvgRating
			a.n++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("avg rating by cuisine: %w", err)
	}

	out := make([]models.CuisineRating, 0, len(perCuisine))
	for cuisine, a := range perCuisine {
		avg := math.Round(a.sum/float64(a.n)*100) / 100
		out = append(out, models.CuisineRating{Cuisine: cuisine, AvgRating: models.Float(avg)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgRating.Float64 != out[j].AvgRating.Float64 {
			return out[i].AvgRating.Float64 > out[j].AvgRating.Float64
		}
		return out[i].Cuisine < out[j].Cuisine
	})
	return out, nil
}

// Countries returns the distinct, non-empty country names in order.
func Countries(ctx context.Context, store database.Store) ([]string, error) {
	seen := map[string]struct{}{}
	err := store.Each(ctx, filters.Predicate{}, func(r models.Restaurant) error {
		if r.Country != "" {
			seen[r.Country] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("distinct countries: %w", err)
	}
	return sortedKeys(seen), nil
}

// Locations lists up to MaxLocations restaurants filtered by country,
// province and city. Other filter fields are ignored.
func Locations(ctx context.Context, store database.Store, c models.FilterCriteria) ([]models.RestaurantSummary, error) {
	p := filters.Normalize(models.FilterCriteria{Country: c.Country, Province: c.Province, City: c.City})
	records, err := store.Page(ctx, p, 0, MaxLocations)
	if err != nil {
		return nil, fmt.Errorf("restaurant locations: %w", err)
	}
	out := make([]models.RestaurantSummary, 0, len(records))
	for _, r := range records {
		out = append(out, analytics.Summarize(r))
	}
	return out, nil
}

func listValues(r models.Restaurant, field filters.Field) []string {
	switch field {
	case filters.CuisinesList:
		return r.CuisinesList
	case filters.MealsList:
		return r.MealsList
	case filters.TopTagsList:
		return r.TopTagsList
	}
	return nil
}

func rank(counts map[string]int64) []models.ValueCount {
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

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
