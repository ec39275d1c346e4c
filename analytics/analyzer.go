// Package analytics computes the map analytics payload: overall statistics,
// meal and tag distributions, and either grid clusters or a page of
// restaurants depending on the zoom level.
package analytics

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"restoanalytics/database"
	"restoanalytics/filters"
	"restoanalytics/metrics"
	"restoanalytics/models"
)

// DefaultClusterMaxZoom is the highest zoom level still served as clusters.
const DefaultClusterMaxZoom = 15

// ValidationError reports a request field outside its accepted range.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Options tunes an Analyzer. Zero values select the package defaults. A nil
// ClusterMaxZoom means DefaultClusterMaxZoom; a pointer to 0 serves clusters
// at zoom 0 only.
type Options struct {
	ClusterMaxZoom   *float64
	ClusterLimit     int
	DefaultPageLimit int
	MaxPageLimit     int
}

func (o Options) withDefaults() Options {
	z := float64(DefaultClusterMaxZoom)
	if o.ClusterMaxZoom != nil {
		z = *o.ClusterMaxZoom
	}
	o.ClusterMaxZoom = &z
	if o.ClusterLimit <= 0 {
		o.ClusterLimit = DefaultClusterLimit
	}
	if o.DefaultPageLimit <= 0 {
		o.DefaultPageLimit = DefaultPageLimit
	}
	if o.MaxPageLimit <= 0 {
		o.MaxPageLimit = MaxPageLimit
	}
	return o
}

// Analyzer answers analytics requests against a Store. It holds no mutable
// state and is safe for concurrent use.
type Analyzer struct {
	log     zerolog.Logger
	store   database.Store
	metrics *metrics.Metrics
	opts    Options
}

// New returns an Analyzer reading from store. m may be nil.
func New(log zerolog.Logger, store database.Store, m *metrics.Metrics, opts Options) *Analyzer {
	return &Analyzer{log: log, store: store, metrics: m, opts: opts.withDefaults()}
}

// Validate checks that the viewport is complete and within range, and that
// the pagination hints are usable.
func (a *Analyzer) Validate(req models.AnalyticsRequest) error {
	vp := req.Viewport
	if len(vp.Missing) > 0 {
		return &ValidationError{Field: vp.Missing[0], Message: "is required"}
	}
	checks := []struct {
		field    string
		value    float64
		min, max float64
	}{
		{"north", vp.North, -90, 90},
		{"south", vp.South, -90, 90},
		{"east", vp.East, -180, 180},
		{"west", vp.West, -180, 180},
		{"zoom", vp.Zoom, 0, 22},
	}
	for _, c := range checks {
		// Written as a negated range so NaN fails too.
		if !(c.value >= c.min && c.value <= c.max) {
			return &ValidationError{Field: c.field, Message: fmt.Sprintf("must be between %g and %g", c.min, c.max)}
		}
	}
	if req.Page != nil && *req.Page < 1 {
		return &ValidationError{Field: "page", Message: "must be at least 1"}
	}
	if req.Limit != nil && (*req.Limit < 1 || *req.Limit > a.opts.MaxPageLimit) {
		return &ValidationError{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", a.opts.MaxPageLimit)}
	}
	return nil
}

// Analyze validates req, runs every sub-aggregation concurrently against the
// same predicate and returns the sanitized payload. Any storage failure
// fails the whole request.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalyticsRequest) (models.AnalyticsPayload, error) {
	if err := a.Validate(req); err != nil {
		return models.AnalyticsPayload{}, err
	}

	pred := filters.ForViewport(req.Filters, req.Viewport)
	clustered := req.Viewport.Zoom <= *a.opts.ClusterMaxZoom
	page := 1
	if req.Page != nil {
		page = *req.Page
	}

	var payload models.AnalyticsPayload
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := ComputeStats(gctx, a.store, pred)
		payload.OverallStats = stats
		return err
	})
	g.Go(func() error {
		meals, err := Distribution(gctx, a.store, pred, filters.MealsList)
		payload.MealsList = meals
		return err
	})
	g.Go(func() error {
		tags, err := Distribution(gctx, a.store, pred, filters.TopTagsList)
		payload.TopTagsList = tags
		return err
	})
	if clustered {
		g.Go(func() error {
			clusters, err := Cluster(gctx, a.store, pred, CellSize(req.Viewport.Zoom), a.opts.ClusterLimit)
			payload.Clusters = clusters
			return err
		})
	} else {
		g.Go(func() error {
			restaurants, pg, err := List(gctx, a.store, pred, page, req.Limit, a.opts.DefaultPageLimit)
			payload.Restaurants = restaurants
			payload.Pagination = &pg
			return err
		})
	}

	if err := g.Wait(); err != nil {
		a.metrics.IncAnalytics("error")
		return models.AnalyticsPayload{}, fmt.Errorf("analyze: %w", err)
	}

	mode := "listing"
	if clustered {
		mode = "clusters"
	}
	a.metrics.IncAnalytics(mode)
	a.log.Debug().
		Str("mode", mode).
		Float64("zoom", req.Viewport.Zoom).
		Int("constraints", pred.Len()).
		Int64("matched", payload.OverallStats.TotalRestaurants).
		Msg("analytics computed")

	return Sanitize(payload), nil
}
