package database

import (
	"context"
	"reflect"
	"testing"

	"github.com/lib/pq"

	"restoanalytics/filters"
	"restoanalytics/models"
)

func TestBuildWhere_empty(t *testing.T) {
	where, args := BuildWhere(filters.Predicate{})
	if where != "" || args != nil {
		t.Fatalf("expected empty clause, got %q %v", where, args)
	}
}

func TestBuildWhere_allKinds(t *testing.T) {
	service := 4.0
	p := filters.ForViewport(models.FilterCriteria{
		Country:   "Spain",
		MealsList: models.StringList{"Dinner", "Lunch"},
		Service:   &service,
	}, models.Viewport{North: 41, South: 40, East: -3, West: -4})

	where, args := BuildWhere(p)

	want := "WHERE country = $1" +
		" AND meals_list && $2::text[]" +
		" AND service >= $3 AND service <> 'NaN'::float8" +
		" AND latitude BETWEEN $4 AND $5 AND latitude <> 'NaN'::float8" +
		" AND longitude BETWEEN $6 AND $7 AND longitude <> 'NaN'::float8"
	if where != want {
		t.Fatalf("unexpected where\n got=%s\nwant=%s", where, want)
	}

	wantArgs := []interface{}{"Spain", pq.Array([]string{"Dinner", "Lunch"}), 4.0, 40.0, 41.0, -4.0, -3.0}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("unexpected args\n got=%#v\nwant=%#v", args, wantArgs)
	}
}

func TestBuildWhere_flagsIgnoreCase(t *testing.T) {
	p := filters.Normalize(models.FilterCriteria{City: "Madrid", GlutenFree: "si"})

	where, args := BuildWhere(p)

	if want := "WHERE city = $1 AND lower(gluten_free) = lower($2)"; where != want {
		t.Fatalf("unexpected where\n got=%s\nwant=%s", where, want)
	}
	if !reflect.DeepEqual(args, []interface{}{"Madrid", "si"}) {
		t.Fatalf("unexpected args %#v", args)
	}
}

func TestMemoryStore_PageWindow(t *testing.T) {
	var records []models.Restaurant
	for i := 1; i <= 5; i++ {
		records = append(records, models.Restaurant{ID: int64(i), Country: "Spain"})
	}
	records = append(records, models.Restaurant{ID: 6, Country: "Italy"})
	s := NewMemoryStore(records...)
	p := filters.Normalize(models.FilterCriteria{Country: "Spain"})

	page, err := s.Page(context.Background(), p, 2, 2)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(page) != 2 || page[0].ID != 3 || page[1].ID != 4 {
		t.Fatalf("unexpected window: %+v", page)
	}

	total, err := s.Count(context.Background(), p)
	if err != nil || total != 5 {
		t.Fatalf("expected 5 matches, got %d (%v)", total, err)
	}
}

func TestMemoryStore_cancelledContext(t *testing.T) {
	s := NewMemoryStore(models.Restaurant{ID: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Count(ctx, filters.Predicate{}); err == nil {
		t.Fatalf("expected context error")
	}
}
