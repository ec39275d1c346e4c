package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/lib/pq"

	"restoanalytics/filters"
	"restoanalytics/models"
)

const restaurantColumns = "id, restaurant_name, restaurant_link, country, province, city, latitude, longitude, avg_rating, price_level_cat, vegetarian_friendly, vegan_options, gluten_free, claimed, service, food, meals_list, top_tags_list, cuisines_list"

// PostgresStore reads restaurants from the restaurants table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// BuildWhere renders p as a SQL WHERE clause with positional arguments. It
// returns an empty clause for an empty predicate.
func BuildWhere(p filters.Predicate) (string, []interface{}) {
	var args []interface{}
	var conditions []string
	idx := 1

	for _, c := range p.Constraints() {
		col := string(c.Field)
		switch c.Kind() {
		case filters.Equal:
			if c.Field.CaseInsensitive() {
				conditions = append(conditions, fmt.Sprintf("lower(%s) = lower($%d)", col, idx))
			} else {
				conditions = append(conditions, fmt.Sprintf("%s = $%d", col, idx))
			}
			args = append(args, c.Value)
			idx++
		case filters.In:
			// Array overlap: the record's set shares at least one element.
			conditions = append(conditions, fmt.Sprintf("%s && $%d::text[]", col, idx))
			args = append(args, pq.Array(c.Values))
			idx++
		case filters.AtLeast:
			// NaN sorts above every number in Postgres.
			conditions = append(conditions, fmt.Sprintf("%s >= $%d AND %s <> 'NaN'::float8", col, idx, col))
			args = append(args, c.Min)
			idx++
		case filters.Between:
			conditions = append(conditions, fmt.Sprintf("%s BETWEEN $%d AND $%d AND %s <> 'NaN'::float8", col, idx, idx+1, col))
			args = append(args, c.Min, c.Max)
			idx += 2
		}
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (s *PostgresStore) Count(ctx context.Context, p filters.Predicate) (int64, error) {
	where, args := BuildWhere(p)
	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM restaurants "+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count restaurants: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) Each(ctx context.Context, p filters.Predicate, fn func(models.Restaurant) error) error {
	where, args := BuildWhere(p)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM restaurants %s", restaurantColumns, where), args...)
	if err != nil {
		return fmt.Errorf("query restaurants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := ScanRestaurant(rows)
		if err != nil {
			return fmt.Errorf("scan restaurant: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *PostgresStore) Page(ctx context.Context, p filters.Predicate, offset, limit int) ([]models.Restaurant, error) {
	where, args := BuildWhere(p)
	query := fmt.Sprintf("SELECT %s FROM restaurants %s ORDER BY id ASC LIMIT %d OFFSET %d", restaurantColumns, where, limit, offset)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query restaurant page: %w", err)
	}
	defer rows.Close()

	results := []models.Restaurant{}
	for rows.Next() {
		r, err := ScanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ScanRestaurant reads one row selected with restaurantColumns. NULL
// numbers become NaN so that callers apply a single "absent" rule.
func ScanRestaurant(rows *sql.Rows) (models.Restaurant, error) {
	var r models.Restaurant
	var link, country, province, city, price, vegetarian, vegan, gluten, claimed sql.NullString
	var lat, lon, rating, service, food sql.NullFloat64
	var meals, tags, cuisines []string

	err := rows.Scan(&r.ID, &r.RestaurantName, &link, &country, &province, &city,
		&lat, &lon, &rating, &price, &vegetarian, &vegan, &gluten, &claimed,
		&service, &food, pq.Array(&meals), pq.Array(&tags), pq.Array(&cuisines))
	if err != nil {
		return r, err
	}

	r.RestaurantLink = link.String
	r.Country = country.String
	r.Province = province.String
	r.City = city.String
	r.PriceLevelCat = price.String
	r.VegetarianFriendly = vegetarian.String
	r.VeganOptions = vegan.String
	r.GlutenFree = gluten.String
	r.Claimed = claimed.String
	r.Latitude = orNaN(lat)
	r.Longitude = orNaN(lon)
	r.AvgRating = orNaN(rating)
	r.Service = orNaN(service)
	r.Food = orNaN(food)
	r.MealsList = meals
	r.TopTagsList = tags
	r.CuisinesList = cuisines
	return r, nil
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
