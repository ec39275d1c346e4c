package analytics

import (
	"slices"

	"restoanalytics/models"
)

// Sanitize returns a copy of p in which every non-finite float is null. The
// input is left untouched, and sanitizing twice yields the same payload.
func Sanitize(p models.AnalyticsPayload) models.AnalyticsPayload {
	out := models.AnalyticsPayload{
		OverallStats: sanitizeStats(p.OverallStats),
		MealsList:    slices.Clone(p.MealsList),
		TopTagsList:  slices.Clone(p.TopTagsList),
	}
	if p.Clusters != nil {
		out.Clusters = make([]models.ClusterBucket, len(p.Clusters))
		for i, b := range p.Clusters {
			out.Clusters[i] = sanitizeBucket(b)
		}
	}
	if p.Restaurants != nil {
		out.Restaurants = make([]models.RestaurantSummary, len(p.Restaurants))
		for i, r := range p.Restaurants {
			out.Restaurants[i] = sanitizeSummary(r)
		}
	}
	if p.Pagination != nil {
		pg := *p.Pagination
		out.Pagination = &pg
	}
	return out
}

func sanitizeStats(s models.OverallStats) models.OverallStats {
	s.PctTotalRestaurants = s.PctTotalRestaurants.Finite()
	s.PctVegetarian = s.PctVegetarian.Finite()
	s.PctVegan = s.PctVegan.Finite()
	s.PctGlutenFree = s.PctGlutenFree.Finite()
	s.PctPremium = s.PctPremium.Finite()
	s.PctRated = s.PctRated.Finite()
	s.AvgRating = s.AvgRating.Finite()
	return s
}

func sanitizeBucket(b models.ClusterBucket) models.ClusterBucket {
	b.Latitude = b.Latitude.Finite()
	b.Longitude = b.Longitude.Finite()
	b.PctVegan = b.PctVegan.Finite()
	b.PctGlutenFree = b.PctGlutenFree.Finite()
	b.PctPremium = b.PctPremium.Finite()
	b.AvgRating = b.AvgRating.Finite()
	b.PctAvgRating = b.PctAvgRating.Finite()
	return b
}

func sanitizeSummary(r models.RestaurantSummary) models.RestaurantSummary {
	r.Latitude = r.Latitude.Finite()
	r.Longitude = r.Longitude.Finite()
	r.AvgRating = r.AvgRating.Finite()
	r.CuisinesList = slices.Clone(r.CuisinesList)
	r.MealsList = slices.Clone(r.MealsList)
	r.TopTagsList = slices.Clone(r.TopTagsList)
	return r
}
