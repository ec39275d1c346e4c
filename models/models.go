package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// Restaurant is the stored shape of a single TripAdvisor restaurant record.
// Coordinates, ratings and scores may be non-finite when the source row was
// incomplete; consumers decide per field whether that means "absent".
type Restaurant struct {
	ID                 int64
	RestaurantName     string
	RestaurantLink     string
	Country            string
	Province           string
	City               string
	Latitude           float64
	Longitude          float64
	AvgRating          float64
	PriceLevelCat      string
	VegetarianFriendly string
	VeganOptions       string
	GlutenFree         string
	Claimed            string
	Service            float64
	Food               float64
	MealsList          []string
	TopTagsList        []string
	CuisinesList       []string
}

// NullFloat is a float64 that serializes as null when Valid is false.
// Encoding a valid NaN or Inf fails, so responses go through the sanitizer
// before they are written.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float wraps v as a valid NullFloat.
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Finite returns f unchanged when it holds a finite number and a null
// value otherwise.
func (f NullFloat) Finite() NullFloat {
	if !f.Valid || math.IsNaN(f.Float64) || math.IsInf(f.Float64, 0) {
		return NullFloat{}
	}
	return f
}

func (f NullFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Float64)
}

func (f *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NullFloat{}
		return nil
	}
	if err := json.Unmarshal(data, &f.Float64); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

// StringList accepts either a single JSON string or an array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*l = values
	return nil
}

// FilterCriteria is the raw, unnormalized filter input of an analytics or
// locations request. Empty strings, the "string" placeholder and empty
// lists all mean "not supplied".
type FilterCriteria struct {
	Country       string     `json:"country,omitempty"`
	Province      string     `json:"province,omitempty"`
	City          string     `json:"city,omitempty"`
	PriceLevelCat string     `json:"price_level_cat,omitempty"`
	Claimed       string     `json:"claimed,omitempty"`
	VeganOptions  string     `json:"vegan_options,omitempty"`
	GlutenFree    string     `json:"gluten_free,omitempty"`
	MealsList     StringList `json:"meals_list,omitempty"`
	CuisinesList  StringList `json:"cuisines_list,omitempty"`
	TopTagsList   StringList `json:"top_tags_list,omitempty"`
	Service       *float64   `json:"service,omitempty"`
	Food          *float64   `json:"food,omitempty"`
}

// Viewport is the visible map area plus its zoom level.
type Viewport struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
	Zoom  float64 `json:"zoom"`

	// Missing names the fields a decoded request left absent or null, in
	// declaration order. "viewport" stands for the whole object.
	Missing []string `json:"-"`
}

func (v *Viewport) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*v = Viewport{Missing: []string{"viewport"}}
		return nil
	}
	var raw struct {
		North *float64 `json:"north"`
		South *float64 `json:"south"`
		East  *float64 `json:"east"`
		West  *float64 `json:"west"`
		Zoom  *float64 `json:"zoom"`
	}
	if err := decodeStrict(data, &raw); err != nil {
		return err
	}

	*v = Viewport{}
	fields := []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"north", raw.North, &v.North},
		{"south", raw.South, &v.South},
		{"east", raw.East, &v.East},
		{"west", raw.West, &v.West},
		{"zoom", raw.Zoom, &v.Zoom},
	}
	for _, f := range fields {
		if f.src == nil {
			v.Missing = append(v.Missing, f.name)
			continue
		}
		*f.dst = *f.src
	}
	return nil
}

// AnalyticsRequest is the body of POST /analytics.
type AnalyticsRequest struct {
	Filters  FilterCriteria `json:"filters"`
	Viewport Viewport       `json:"viewport"`
	Page     *int           `json:"page,omitempty"`
	Limit    *int           `json:"limit,omitempty"`
}

func (r *AnalyticsRequest) UnmarshalJSON(data []byte) error {
	type plain AnalyticsRequest
	req := plain{Viewport: Viewport{Missing: []string{"viewport"}}}
	if err := decodeStrict(data, &req); err != nil {
		return err
	}
	*r = AnalyticsRequest(req)
	return nil
}

// decodeStrict decodes data into dst and rejects unknown fields.
func decodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// OverallStats summarizes the matched subset of restaurants.
type OverallStats struct {
	TotalRestaurants    int64     `json:"total_restaurants"`
	TotalDataset        int64     `json:"total_dataset"`
	PctTotalRestaurants NullFloat `json:"pct_total_restaurants"`
	VegetarianCount     int64     `json:"vegetarian_count"`
	PctVegetarian       NullFloat `json:"pct_vegetarian"`
	VeganCount          int64     `json:"vegan_count"`
	PctVegan            NullFloat `json:"pct_vegan"`
	GlutenFreeCount     int64     `json:"gluten_free_count"`
	PctGlutenFree       NullFloat `json:"pct_gluten_free"`
	PremiumCount        int64     `json:"premium_count"`
	PctPremium          NullFloat `json:"pct_premium"`
	RatedCount          int64     `json:"rated_count"`
	PctRated            NullFloat `json:"pct_rated"`
	AvgRating           NullFloat `json:"avg_rating"`
	AvgPriceCategory    string    `json:"avg_price_category"`
}

// ValueCount is one entry of a categorical frequency distribution.
type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// ClusterBucket aggregates the restaurants that fall into one grid cell.
type ClusterBucket struct {
	CellX            int64     `json:"cell_x"`
	CellY            int64     `json:"cell_y"`
	Count            int64     `json:"count"`
	Latitude         NullFloat `json:"latitude"`
	Longitude        NullFloat `json:"longitude"`
	VeganCount       int64     `json:"vegan_count"`
	PctVegan         NullFloat `json:"pct_vegan"`
	GlutenFreeCount  int64     `json:"gluten_free_count"`
	PctGlutenFree    NullFloat `json:"pct_gluten_free"`
	PremiumCount     int64     `json:"premium_count"`
	PctPremium       NullFloat `json:"pct_premium"`
	AvgRating        NullFloat `json:"avg_rating"`
	PctAvgRating     NullFloat `json:"pct_avg_rating"`
	AvgPriceCategory string    `json:"avg_price_category"`
}

// RestaurantSummary is the fixed projection returned by listings.
type RestaurantSummary struct {
	ID             int64     `json:"id,string"`
	RestaurantName string    `json:"restaurant_name"`
	RestaurantLink string    `json:"restaurant_link,omitempty"`
	Country        string    `json:"country"`
	Province       string    `json:"province"`
	City           string    `json:"city"`
	Latitude       NullFloat `json:"latitude"`
	Longitude      NullFloat `json:"longitude"`
	AvgRating      NullFloat `json:"avg_rating"`
	PriceLevelCat  string    `json:"price_level_cat,omitempty"`
	VeganOptions   string    `json:"vegan_options,omitempty"`
	GlutenFree     string    `json:"gluten_free,omitempty"`
	CuisinesList   []string  `json:"cuisines_list"`
	MealsList      []string  `json:"meals_list"`
	TopTagsList    []string  `json:"top_tags_list"`
}

// Pagination describes the page actually served.
type Pagination struct {
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalPages   int   `json:"total_pages"`
	TotalResults int64 `json:"total_results"`
}

// AnalyticsPayload is the response of POST /analytics. Clusters is set on
// the zoomed-out path; Restaurants and Pagination on the zoomed-in one.
type AnalyticsPayload struct {
	OverallStats OverallStats
	MealsList    []ValueCount
	TopTagsList  []ValueCount
	Clusters     []ClusterBucket
	Restaurants  []RestaurantSummary
	Pagination   *Pagination
}

type payloadBase struct {
	OverallStats OverallStats `json:"overall_stats"`
	MealsList    []ValueCount `json:"meals_list"`
	TopTagsList  []ValueCount `json:"top_tags_list"`
}

func (p AnalyticsPayload) MarshalJSON() ([]byte, error) {
	base := payloadBase{
		OverallStats: p.OverallStats,
		MealsList:    nonNil(p.MealsList),
		TopTagsList:  nonNil(p.TopTagsList),
	}
	if p.Pagination != nil {
		return json.Marshal(struct {
			payloadBase
			Restaurants []RestaurantSummary `json:"restaurants"`
			Pagination  *Pagination         `json:"pagination"`
		}{base, nonNil(p.Restaurants), p.Pagination})
	}
	return json.Marshal(struct {
		payloadBase
		Clusters []ClusterBucket `json:"clusters"`
	}{base, nonNil(p.Clusters)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// CountryCount is the number of restaurants in a country.
type CountryCount struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// CountryTop lists the most frequent values of a category in one country.
type CountryTop struct {
	Country string       `json:"country"`
	Top     []ValueCount `json:"top"`
}

// CuisineRating is the average valid rating of restaurants serving a cuisine.
type CuisineRating struct {
	Cuisine   string    `json:"cuisine"`
	AvgRating NullFloat `json:"avg_rating"`
}

// Province groups the cities of a province.
type Province struct {
	Name   string   `json:"name"`
	Cities []string `json:"cities"`
}

// Country is the root of the locations tree.
type Country struct {
	Name      string     `json:"name"`
	Provinces []Province `json:"provinces"`
}
