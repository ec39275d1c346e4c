package analytics

import (
	"context"
	"fmt"

	"restoanalytics/database"
	"restoanalytics/filters"
	"restoanalytics/models"
)

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// PageWindow resolves the effective limit, page and offset for a listing of
// total records. A nil limit defaults to min(total, defaultLimit). The page
// is clamped to [1, total_pages].
func PageWindow(total int64, page int, limit *int, defaultLimit int) models.Pagination {
	effective := defaultLimit
	if limit != nil {
		effective = *limit
	} else if total < int64(defaultLimit) {
		effective = int(total)
	}

	totalPages := 1
	if effective > 0 && total > 0 {
		totalPages = int((total + int64(effective) - 1) / int64(effective))
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	return models.Pagination{
		Page:         page,
		Limit:        effective,
		TotalPages:   totalPages,
		TotalResults: total,
	}
}

// List returns one page of records matching p together with the pagination
// actually served.
func List(ctx context.Context, store database.Store, p filters.Predicate, page int, limit *int, defaultLimit int) ([]models.RestaurantSummary, models.Pagination, error) {
	total, err := store.Count(ctx, p)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("count listing: %w", err)
	}

	pg := PageWindow(total, page, limit, defaultLimit)
	if pg.Limit == 0 {
		return []models.RestaurantSummary{}, pg, nil
	}

	offset := (pg.Page - 1) * pg.Limit
	records, err := store.Page(ctx, p, offset, pg.Limit)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("fetch listing page: %w", err)
	}

	out := make([]models.RestaurantSummary, 0, len(records))
	for _, r := range records {
		out = append(out, Summarize(r))
	}
	return out, pg, nil
}

// Summarize projects a record onto the listing fields. Non-finite
// coordinates and out-of-range ratings come out as null.
func Summarize(r models.Restaurant) models.RestaurantSummary {
	rating := models.NullFloat{}
	if validRating(r.AvgRating) {
		rating = models.Float(r.AvgRating)
	}
	return models.RestaurantSummary{
		ID:             r.ID,
		RestaurantName: r.RestaurantName,
		RestaurantLink: r.RestaurantLink,
		Country:        r.Country,
		Province:       r.Province,
		City:           r.City,
		Latitude:       models.Float(r.Latitude).Finite(),
		Longitude:      models.Float(r.Longitude).Finite(),
		AvgRating:      rating,
		PriceLevelCat:  r.PriceLevelCat,
		VeganOptions:   r.VeganOptions,
		GlutenFree:     r.GlutenFree,
		CuisinesList:   orEmpty(r.CuisinesList),
		MealsList:      orEmpty(r.MealsList),
		TopTagsList:    orEmpty(r.TopTagsList),
	}
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
