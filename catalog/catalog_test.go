package catalog

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"restoanalytics/database"
	"restoanalytics/filters"
	"restoanalytics/models"
)

func fixture() *database.MemoryStore {
	return database.NewMemoryStore(
		models.Restaurant{ID: 1, Country: "Spain", Province: "Madrid", City: "Madrid", AvgRating: 4.5,
			CuisinesList: []string{"Spanish", "Tapas"}, TopTagsList: []string{"Cheap Eats"}, MealsList: []string{"Dinner"}},
		models.Restaurant{ID: 2, Country: "Spain", Province: "Madrid", City: "Alcala", AvgRating: 3.5,
			CuisinesList: []string{"Spanish"}, TopTagsList: []string{"Cheap Eats", "Mid-range"}, MealsList: []string{"Lunch"}},
		models.Restaurant{ID: 3, Country: "Spain", Province: "Catalonia", City: "Barcelona", AvgRating: 0,
			CuisinesList: []string{"Seafood"}},
		models.Restaurant{ID: 4, Country: "Italy", Province: "Lazio", City: "Rome", AvgRating: math.NaN(),
			CuisinesList: []string{"Italian"}, MealsList: []string{"Dinner"}},
	)
}

func TestCountByCountry(t *testing.T) {
	got, err := CountByCountry(context.Background(), fixture())
	if err != nil {
		t.Fatalf("count by country: %v", err)
	}
	want := []models.CountryCount{{Country: "Spain", Count: 3}, {Country: "Italy", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestTopByCountry(t *testing.T) {
	got, err := TopByCountry(context.Background(), fixture(), filters.TopTagsList, 1)
	if err != nil {
		t.Fatalf("top by country: %v", err)
	}
	want := []models.CountryTop{
		{Country: "Spain", Top: []models.ValueCount{{Value: "Cheap Eats", Count: 2}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	cuisines, err := TopByCountry(context.Background(), fixture(), filters.CuisinesList, 1)
	if err != nil {
		t.Fatalf("top cuisines by country: %v", err)
	}
	want = []models.CountryTop{
		{Country: "Italy", Top: []models.ValueCount{{Value: "Italian", Count: 1}}},
		{Country: "Spain", Top: []models.ValueCount{{Value: "Spanish", Count: 2}}},
	}
	if !reflect.DeepEqual(cuisines, want) {
		t.Fatalf("got %+v, want %+v", cuisines, want)
	}
}

func TestAvgRatingByCuisine_skipsInvalidRatings(t *testing.T) {
	got, err := AvgRatingByCuisine(context.Background(), fixture())
	if err != nil {
		t.Fatalf("avg rating: %v", err)
	}
	want := []models.CuisineRating{
		{Cuisine: "Tapas", AvgRating: models.Float(4.5)},
		{Cuisine: "Spanish", AvgRating: models.Float(4)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCountries(t *testing.T) {
	got, err := Countries(context.Background(), fixture())
	if err != nil {
		t.Fatalf("countries: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Italy", "Spain"}) {
		t.Fatalf("unexpected countries %v", got)
	}
}

func TestLocations_placeholderFiltersIgnored(t *testing.T) {
	got, err := Locations(context.Background(), fixture(), models.FilterCriteria{Country: "Spain", City: "string"})
	if err != nil {
		t.Fatalf("locations: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 Spanish restaurants, got %d", len(got))
	}
	if got[2].AvgRating.Valid {
		t.Fatalf("expected zero rating to be null, got %+v", got[2].AvgRating)
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	doc, err := Build(context.Background(), fixture(), now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	wantLocations := []models.Country{
		{Name: "Italy", Provinces: []models.Province{{Name: "Lazio", Cities: []string{"Rome"}}}},
		{Name: "Spain", Provinces: []models.Province{
			{Name: "Catalonia", Cities: []string{"Barcelona"}},
			{Name: "Madrid", Cities: []string{"Alcala", "Madrid"}},
		}},
	}
	if !reflect.DeepEqual(doc.Locations, wantLocations) {
		t.Fatalf("locations mismatch\n got=%+v\nwant=%+v", doc.Locations, wantLocations)
	}
	if !reflect.DeepEqual(doc.Cuisines, []string{"Italian", "Seafood", "Spanish", "Tapas"}) {
		t.Fatalf("unexpected cuisines %v", doc.Cuisines)
	}
	if !reflect.DeepEqual(doc.Meals, []string{"Dinner", "Lunch"}) {
		t.Fatalf("unexpected meals %v", doc.Meals)
	}
	if !doc.BuiltAt.Equal(now) {
		t.Fatalf("unexpected build time %v", doc.BuiltAt)
	}
}

func TestHolder(t *testing.T) {
	var h Holder
	if _, ok := h.Get(); ok {
		t.Fatalf("expected empty holder")
	}
	h.Set(Document{Meals: []string{"Dinner"}})
	doc, ok := h.Get()
	if !ok || len(doc.Meals) != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}
}
