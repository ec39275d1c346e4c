package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"restoanalytics/database"
	"restoanalytics/filters"
	"restoanalytics/models"
)

// Document is a precomputed set of filter values: the locations tree and
// the distinct cuisines and meals.
type Document struct {
	Locations []models.Country `json:"locations"`
	Cuisines  []string         `json:"cuisines"`
	Meals     []string         `json:"meals"`
	BuiltAt   time.Time        `json:"built_at"`
}

// Build scans the collection and assembles a fresh Document.
func Build(ctx context.Context, store database.Store, now time.Time) (Document, error) {
	var doc Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		locations, err := buildLocations(gctx, store)
		doc.Locations = locations
		return err
	})
	g.Go(func() error {
		cuisines, err := distinct(gctx, store, filters.CuisinesList)
		doc.Cuisines = cuisines
		return err
	})
	g.Go(func() error {
		meals, err := distinct(gctx, store, filters.MealsList)
		doc.Meals = meals
		return err
	})
	if err := g.Wait(); err != nil {
		return Document{}, fmt.Errorf("build catalog: %w", err)
	}
	doc.BuiltAt = now
	return doc, nil
}

func buildLocations(ctx context.Context, store database.Store) ([]models.Country, error) {
	tree := map[string]map[string]map[string]struct{}{}
	err := store.Each(ctx, filters.Predicate{}, func(r models.Restaurant) error {
		if !filters.ValidString(r.Country) {
			return nil
		}
		provinces, ok := tree[r.Country]
		if !ok {
			provinces = map[string]map[string]struct{}{}
			tree[r.Country] = provinces
		}
		cities, ok := provinces[r.Province]
		if !ok {
			cities = map[string]struct{}{}
			provinces[r.Province] = cities
		}
		if r.City != "" {
			cities[r.City] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.Country, 0, len(tree))
	for country, provinces := range tree {
		node := models.Country{Name: country, Provinces: make([]models.Province, 0, len(provinces))}
		for province, cities := range provinces {
			node.Provinces = append(node.Provinces, models.Province{Name: province, Cities: sortedKeys(cities)})
		}
		sort.Slice(node.Provinces, func(i, j int) bool { return node.Provinces[i].Name < node.Provinces[j].Name })
		out = append(out, node)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func distinct(ctx context.Context, store database.Store, field filters.Field) ([]string, error) {
	seen := map[string]struct{}{}
	err := store.Each(ctx, filters.Predicate{}, func(r models.Restaurant) error {
		for _, v := range listValues(r, field) {
			if v != "" {
				seen[v] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sortedKeys(seen), nil
}

// Holder keeps the latest Document for concurrent readers.
type Holder struct {
	mu  sync.RWMutex
	doc *Document
}

// Get returns the current document, or false before the first build.
func (h *Holder) Get() (Document, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.doc == nil {
		return Document{}, false
	}
	return *h.doc, true
}

func (h *Holder) Set(doc Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.doc = &doc
}
