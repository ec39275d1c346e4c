package analytics

import (
	"context"
	"fmt"

	"restoanalytics/database"
	"restoanalytics/filters"
	"restoanalytics/models"
)

// ComputeStats aggregates the records matching p into OverallStats. The
// vegetarian, vegan, gluten-free, premium and rated percentages all use the
// matched total as denominator; pct_total_restaurants uses the size of the
// whole collection.
func ComputeStats(ctx context.Context, store database.Store, p filters.Predicate) (models.OverallStats, error) {
	var t tally
	err := store.Each(ctx, p, func(r models.Restaurant) error {
		t.add(r.VegetarianFriendly, r.VeganOptions, r.GlutenFree, r.PriceLevelCat, r.AvgRating)
		return nil
	})
	if err != nil {
		return models.OverallStats{}, fmt.Errorf("aggregate stats: %w", err)
	}

	dataset, err := store.Count(ctx, filters.Predicate{})
	if err != nil {
		return models.OverallStats{}, fmt.Errorf("count dataset: %w", err)
	}

	return buildStats(t, dataset), nil
}

func buildStats(t tally, dataset int64) models.OverallStats {
	if t.total == 0 {
		return emptyStats(dataset)
	}

	avgRating := 0.0
	if t.rated > 0 {
		avgRating = round(t.avgRating(), 2)
	}
	category := NoData
	if t.priced > 0 {
		category = priceCategory(t.avgPrice())
	}

	return models.OverallStats{
		TotalRestaurants:    t.total,
		TotalDataset:        dataset,
		PctTotalRestaurants: models.Float(percent(t.total, dataset)),
		VegetarianCount:     t.vegetarian,
		PctVegetarian:       models.Float(percent(t.vegetarian, t.total)),
		VeganCount:          t.vegan,
		PctVegan:            models.Float(percent(t.vegan, t.total)),
		GlutenFreeCount:     t.gluten,
		PctGlutenFree:       models.Float(percent(t.gluten, t.total)),
		PremiumCount:        t.premium,
		PctPremium:          models.Float(percent(t.premium, t.total)),
		RatedCount:          t.rated,
		PctRated:            models.Float(percent(t.rated, t.total)),
		AvgRating:           models.Float(avgRating),
		AvgPriceCategory:    category,
	}
}

func emptyStats(dataset int64) models.OverallStats {
	zero := models.Float(0)
	return models.OverallStats{
		TotalDataset:        dataset,
		PctTotalRestaurants: zero,
		PctVegetarian:       zero,
		PctVegan:            zero,
		PctGlutenFree:       zero,
		PctPremium:          zero,
		PctRated:            zero,
		AvgRating:           zero,
		AvgPriceCategory:    NoData,
	}
}
