package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"

	"restoanalytics/database"
	"restoanalytics/filters"
	"restoanalytics/models"
)

// DefaultClusterLimit caps the number of buckets returned per request.
const DefaultClusterLimit = 500

// ClusterPixels is the maximum cluster size on screen for a zoom level.
func ClusterPixels(zoom float64) float64 {
	switch {
	case zoom <= 6:
		return 190
	case zoom <= 12:
		return 120
	default:
		return 80
	}
}

// CellSize returns the grid cell edge in degrees for a zoom level, using the
// 256px web-map tile convention.
func CellSize(zoom float64) float64 {
	degreesPerPixel := 360 / (256 * math.Pow(2, zoom))
	return ClusterPixels(zoom) * degreesPerPixel
}

// Cell identifies one grid cell.
type Cell struct {
	X int64
	Y int64
}

// CellFor places a coordinate on the grid of the given cell size.
func CellFor(lat, lon, cellSize float64) Cell {
	return Cell{
		X: int64(math.Floor((lon + 180) / cellSize)),
		Y: int64(math.Floor((lat + 90) / cellSize)),
	}
}

type bucket struct {
	cell   Cell
	t      tally
	latSum float64
	lonSum float64
}

// Cluster groups the records matching p into grid cells of cellSize degrees
// and returns at most limit buckets, largest first. Records with non-finite
// coordinates are skipped.
func Cluster(ctx context.Context, store database.Store, p filters.Predicate, cellSize float64, limit int) ([]models.ClusterBucket, error) {
	if limit <= 0 {
		limit = DefaultClusterLimit
	}

	buckets := map[Cell]*bucket{}
	err := store.Each(ctx, p, func(r models.Restaurant) error {
		if !finite(r.Latitude) || !finite(r.Longitude) {
			return nil
		}
		cell := CellFor(r.Latitude, r.Longitude, cellSize)
		b, ok := buckets[cell]
		if !ok {
			b = &bucket{cell: cell}
			buckets[cell] = b
		}
		b.t.add(r.VegetarianFriendly, r.VeganOptions, r.GlutenFree, r.PriceLevelCat, r.AvgRating)
		b.latSum += r.Latitude
		b.lonSum += r.Longitude
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate clusters: %w", err)
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.t.total != b.t.total {
			return a.t.total > b.t.total
		}
		if a.cell.X != b.cell.X {
			return a.cell.X < b.cell.X
		}
		return a.cell.Y < b.cell.Y
	})
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	out := make([]models.ClusterBucket, 0, len(ordered))
	for _, b := range ordered {
		out = append(out, b.summary())
	}
	return out, nil
}

func (b *bucket) summary() models.ClusterBucket {
	n := b.t.total
	avgRating := b.t.avgRating()
	// No priced member leaves the average NaN, which falls through to "caro".
	return models.ClusterBucket{
		CellX:            b.cell.X,
		CellY:            b.cell.Y,
		Count:            n,
		Latitude:         models.Float(round(b.latSum/float64(n), 6)),
		Longitude:        models.Float(round(b.lonSum/float64(n), 6)),
		VeganCount:       b.t.vegan,
		PctVegan:         models.Float(percent(b.t.vegan, n)),
		GlutenFreeCount:  b.t.gluten,
		PctGlutenFree:    models.Float(percent(b.t.gluten, n)),
		PremiumCount:     b.t.premium,
		PctPremium:       models.Float(percent(b.t.premium, n)),
		AvgRating:        models.Float(round(avgRating, 2)),
		PctAvgRating:     models.Float(round(avgRating/5*100, 2)),
		AvgPriceCategory: priceCategory(b.t.avgPrice()),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
