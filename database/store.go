package database

import (
	"context"

	"restoanalytics/filters"
	"restoanalytics/models"
)

// Store is the read-only view of the restaurant collection used by the
// analytics and catalog code.
type Store interface {
	// Count returns the number of records matching p.
	Count(ctx context.Context, p filters.Predicate) (int64, error)
	// Each streams every record matching p to fn, stopping at the first
	// error returned by fn.
	Each(ctx context.Context, p filters.Predicate, fn func(models.Restaurant) error) error
	// Page returns the matching records in id order, skipping offset and
	// returning at most limit.
	Page(ctx context.Context, p filters.Predicate, offset, limit int) ([]models.Restaurant, error)
	Ping(ctx context.Context) error
}
