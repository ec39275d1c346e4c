package analytics

import (
	"math"
	"strings"
)

// NoData is the average price category reported when no record carries a
// usable price level.
const NoData = "sin datos"

const (
	priceCheap   = "barato"
	priceRegular = "regular"
	pricePremium = "caro"
)

// isYes reports whether a yes/no flag column says yes ("si", any case).
func isYes(flag string) bool {
	return strings.EqualFold(strings.TrimSpace(flag), "si")
}

// validRating reports whether a rating is within (0, 5].
func validRating(v float64) bool {
	return !math.IsNaN(v) && v > 0 && v <= 5
}

// priceValue maps a price category to 1..3. ok is false for anything else.
func priceValue(cat string) (value float64, ok bool) {
	switch strings.ToLower(strings.TrimSpace(cat)) {
	case priceCheap:
		return 1, true
	case priceRegular:
		return 2, true
	case pricePremium:
		return 3, true
	}
	return 0, false
}

// priceCategory turns an average price value back into a category.
func priceCategory(avg float64) string {
	switch {
	case avg < 1.5:
		return priceCheap
	case avg < 2.5:
		return priceRegular
	default:
		return pricePremium
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// percent returns count/total*100 rounded to two decimals, or 0 for an
// empty total.
func percent(count, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round(float64(count)/float64(total)*100, 2)
}

// tally accumulates the per-record counters shared by overall statistics
// and cluster buckets.
type tally struct {
	total      int64
	vegetarian int64
	vegan      int64
	gluten     int64
	premium    int64
	rated      int64
	ratingSum  float64
	priced     int64
	priceSum   float64
}

func (t *tally) add(vegetarian, vegan, gluten, price string, rating float64) {
	t.total++
	if isYes(vegetarian) {
		t.vegetarian++
	}
	if isYes(vegan) {
		t.vegan++
	}
	if isYes(gluten) {
		t.gluten++
	}
	if v, ok := priceValue(price); ok {
		t.priced++
		t.priceSum += v
		if v == 3 {
			t.premium++
		}
	}
	if validRating(rating) {
		t.rated++
		t.ratingSum += rating
	}
}

// avgRating is NaN when no record had a valid rating.
func (t *tally) avgRating() float64 {
	if t.rated == 0 {
		return math.NaN()
	}
	return t.ratingSum / float64(t.rated)
}

// avgPrice is NaN when no record had a valid price level.
func (t *tally) avgPrice() float64 {
	if t.priced == 0 {
		return math.NaN()
	}
	return t.priceSum / float64(t.priced)
}
