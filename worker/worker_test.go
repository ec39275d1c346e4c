package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"restoanalytics/catalog"
	"restoanalytics/database"
	"restoanalytics/filters"
	"restoanalytics/models"
)

type brokenStore struct {
	*database.MemoryStore
}

func (brokenStore) Each(ctx context.Context, p filters.Predicate, fn func(models.Restaurant) error) error {
	return errors.New("store offline")
}

func TestRebuild_setsDocument(t *testing.T) {
	store := database.NewMemoryStore(models.Restaurant{ID: 1, Country: "Spain", Province: "Madrid", City: "Madrid", MealsList: []string{"Dinner"}})
	holder := &catalog.Holder{}
	w := NewCatalogWorker(zerolog.Nop(), store, holder, nil, time.Hour)

	if err := w.Rebuild(context.Background()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	doc, ok := holder.Get()
	if !ok || len(doc.Locations) != 1 || len(doc.Meals) != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestRebuild_failureKeepsPreviousDocument(t *testing.T) {
	holder := &catalog.Holder{}
	holder.Set(catalog.Document{Cuisines: []string{"Tapas"}})
	w := NewCatalogWorker(zerolog.Nop(), brokenStore{database.NewMemoryStore()}, holder, nil, time.Hour)

	if err := w.Rebuild(context.Background()); err == nil {
		t.Fatalf("expected rebuild error")
	}
	doc, ok := holder.Get()
	if !ok || len(doc.Cuisines) != 1 || doc.Cuisines[0] != "Tapas" {
		t.Fatalf("expected previous document to survive, got %+v", doc)
	}
}

func TestRun_stopsOnCancel(t *testing.T) {
	holder := &catalog.Holder{}
	w := NewCatalogWorker(zerolog.Nop(), database.NewMemoryStore(), holder, nil, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if _, ok := holder.Get(); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("initial build did not happen")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not stop")
	}
}
