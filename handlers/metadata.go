package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"restoanalytics/catalog"
	"restoanalytics/database"
	"restoanalytics/filters"
	"restoanalytics/models"
)

// CountHandler returns the size of the whole restaurant collection.
func CountHandler(log zerolog.Logger, store database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := catalog.Count(r.Context(), store)
		if err != nil {
			log.Error().Err(err).Msg("restaurant count failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"count": count})
	}
}

// ByCountryHandler returns restaurant counts per country.
func ByCountryHandler(log zerolog.Logger, store database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := catalog.CountByCountry(r.Context(), store)
		if err != nil {
			log.Error().Err(err).Msg("count by country failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
			return
		}
		writeJSON(w, http.StatusOK, counts)
	}
}

// TopByCountryHandler returns the five most frequent values of field per country.
func TopByCountryHandler(log zerolog.Logger, store database.Store, field filters.Field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		top, err := catalog.TopByCountry(r.Context(), store, field, catalog.TopPerCountry)
		if err != nil {
			log.Error().Err(err).Str("field", string(field)).Msg("top by country failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
			return
		}
		writeJSON(w, http.StatusOK, top)
	}
}

// AvgRatingByCuisineHandler returns the average rating per cuisine.
func AvgRatingByCuisineHandler(log zerolog.Logger, store database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ratings, err := catalog.AvgRatingByCuisine(r.Context(), store)
		if err != nil {
			log.Error().Err(err).Msg("avg rating by cuisine failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
			return
		}
		writeJSON(w, http.StatusOK, ratings)
	}
}

// CountriesHandler lists the distinct countries for filter population.
func CountriesHandler(log zerolog.Logger, store database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		countries, err := catalog.Countries(r.Context(), store)
		if err != nil {
			log.Error().Err(err).Msg("countries query failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
			return
		}
		writeJSON(w, http.StatusOK, countries)
	}
}

// LocationsHandler lists restaurant coordinates filtered by country,
// province and city.
func LocationsHandler(log zerolog.Logger, store database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c models.FilterCriteria
		if err := decodeJSONStrict(r, &c); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body", map[string]any{"details": err.Error()})
			return
		}

		restaurants, err := catalog.Locations(r.Context(), store, c)
		if err != nil {
			log.Error().Err(err).Msg("restaurant locations failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"restaurants": restaurants})
	}
}

// CatalogHandler serves one section of the latest catalog document:
// "locations", "cuisines" or "meals".
func CatalogHandler(holder *catalog.Holder, section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := holder.Get()
		if !ok {
			writeError(w, http.StatusServiceUnavailable, "catalog_unavailable", "catalog not built yet", nil)
			return
		}

		var body any
		switch section {
		case "locations":
			body = doc.Locations
		case "cuisines":
			body = doc.Cuisines
		case "meals":
			body = doc.Meals
		default:
			body = doc
		}
		w.Header().Set("Last-Modified", doc.BuiltAt.UTC().Format(http.TimeFormat))
		writeJSON(w, http.StatusOK, body)
	}
}
