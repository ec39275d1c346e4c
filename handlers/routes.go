package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"restoanalytics/analytics"
	"restoanalytics/catalog"
	"restoanalytics/database"
	"restoanalytics/filters"
	"restoanalytics/metrics"
)

// Deps are the collaborators shared by every handler.
type Deps struct {
	Log            zerolog.Logger
	Store          database.Store
	Analyzer       *analytics.Analyzer
	Catalog        *catalog.Holder
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
}

// NewMux registers every route on a fresh ServeMux.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /analytics", AnalyticsHandler(d.Log, d.Analyzer, d.RequestTimeout))
	mux.HandleFunc("POST /restaurant-locations", LocationsHandler(d.Log, d.Store))

	mux.HandleFunc("GET /restaurants/count", CountHandler(d.Log, d.Store))
	mux.HandleFunc("GET /restaurants/by-country", ByCountryHandler(d.Log, d.Store))
	mux.HandleFunc("GET /top-tags/by-country", TopByCountryHandler(d.Log, d.Store, filters.TopTagsList))
	mux.HandleFunc("GET /top-cuisines/by-country", TopByCountryHandler(d.Log, d.Store, filters.CuisinesList))
	mux.HandleFunc("GET /avg-rating/by-cuisine", AvgRatingByCuisineHandler(d.Log, d.Store))
	mux.HandleFunc("GET /filters/countries", CountriesHandler(d.Log, d.Store))

	mux.HandleFunc("GET /catalog", CatalogHandler(d.Catalog, ""))
	mux.HandleFunc("GET /catalog/locations", CatalogHandler(d.Catalog, "locations"))
	mux.HandleFunc("GET /catalog/cuisines", CatalogHandler(d.Catalog, "cuisines"))
	mux.HandleFunc("GET /catalog/meals", CatalogHandler(d.Catalog, "meals"))

	mux.HandleFunc("GET /healthz", HealthzHandler())
	mux.HandleFunc("GET /readyz", ReadyzHandler(d.Store))
	mux.Handle("GET /metrics", d.Metrics.Handler())

	return mux
}
