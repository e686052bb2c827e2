package catalog

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"eveningmall/internal/apperr"
	"eveningmall/internal/models"
	"eveningmall/internal/taxonomy"
)

type SortKey string

const (
	SortPopularity SortKey = "popularity"
	SortRating     SortKey = "rating"
	SortAvgRating  SortKey = "avg-rating"
	SortLatest     SortKey = "latest"
	SortPriceLow   SortKey = "price-low"
	SortPriceHigh  SortKey = "price-high"
)

type RatingMode string

const (
	RatingRange RatingMode = "range"
	RatingMin   RatingMode = "min"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// avgRatingSortWindow restricts the rating range whenever results are sorted
// by avg-rating, whatever selector the caller passed.
var avgRatingSortWindow = struct{ Low, High float64 }{Low: 2.0, High: 4.0}

// SearchQuery is the storefront search input. Nil pointers mean "not given".
type SearchQuery struct {
	Text          string
	Tag           string
	BrandNames    []string
	CategoryNames []string
	PrdType       *models.ProductType
	MinPrice      *float64
	MaxPrice      *float64
	Rating        int
	RatingMode    RatingMode
	Sort          SortKey
	Page          int64
	PageSize      int64
}

func (q *SearchQuery) normalize() {
	q.Text = strings.TrimSpace(q.Text)
	q.Tag = strings.TrimSpace(q.Tag)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.RatingMode != RatingMin {
		q.RatingMode = RatingRange
	}
}

// ParseSortKey maps unknown keys to SortLatest.
func ParseSortKey(value string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(value))); k {
	case SortPopularity, SortRating, SortAvgRating, SortPriceLow, SortPriceHigh:
		return k
	default:
		return SortLatest
	}
}

// NameLookup resolves taxonomy names without creating entries.
type NameLookup interface {
	IDsByNames(ctx context.Context, kind taxonomy.Kind, names []string) ([]int64, error)
}

// Plan is a built search. Base holds the text, taxonomy and prdType
// constraints only and is what price bounds are computed over; Filter adds
// the price and rating constraints.
type Plan struct {
	Base   bson.M
	Filter bson.M
	Sort   bson.D
}

// BuildFilter turns q into a Plan. q is normalized in place.
func BuildFilter(ctx context.Context, lookup NameLookup, q *SearchQuery) (Plan, error) {
	q.normalize()
	if q.Rating != 0 && (q.Rating < 1 || q.Rating > 5) {
		return Plan{}, apperr.InvalidInput("rating must be between 1 and 5")
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return Plan{}, apperr.InvalidInput("minPrice must not exceed maxPrice")
	}

	base := models.ActiveFilter()
	if q.Text != "" {
		pattern := containsPattern(q.Text)
		base["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"tags": pattern},
		}
	}
	if q.Tag != "" {
		base["tags"] = containsPattern(q.Tag)
	}

	brandIDs, err := lookup.IDsByNames(ctx, taxonomy.Brand, cleanNames(q.BrandNames))
	if err != nil {
		return Plan{}, err
	}
	if len(brandIDs) > 0 {
		base["brndId"] = bson.M{"$in": brandIDs}
	}
	catIDs, err := lookup.IDsByNames(ctx, taxonomy.Category, cleanNames(q.CategoryNames))
	if err != nil {
		return Plan{}, err
	}
	if len(catIDs) > 0 {
		base["catId"] = bson.M{"$in": catIDs}
	}

	if q.PrdType != nil {
		base["prdType"] = *q.PrdType
	}

	filter := bson.M{}
	for k, v := range base {
		filter[k] = v
	}
	filter["$expr"] = priceRange(q.MinPrice, q.MaxPrice)
	if rating := ratingRange(q.Rating, q.RatingMode, q.Sort); rating != nil {
		filter["avgRtng"] = rating
	}

	return Plan{Base: base, Filter: filter, Sort: SortSpec(q.Sort)}, nil
}

func containsPattern(text string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(text), "$options": "i"}
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, models.SplitList(n)...)
	}
	return out
}

func priceRange(min, max *float64) bson.M {
	low := 0.0
	if min != nil {
		low = *min
	}
	conds := bson.A{bson.M{"$gte": bson.A{EffectivePriceExpr(), low}}}
	if max != nil {
		conds = append(conds, bson.M{"$lte": bson.A{EffectivePriceExpr(), *max}})
	}
	return bson.M{"$and": conds}
}

// ratingRange returns nil when no rating constraint applies.
func ratingRange(selector int, mode RatingMode, sort SortKey) bson.M {
	var low, high float64
	bounded := selector != 0
	if bounded {
		low = float64(selector)
		if mode == RatingMin {
			high = 5
		} else {
			high = low + 0.9
		}
	}

	if sort == SortAvgRating {
		if !bounded {
			low, high = avgRatingSortWindow.Low, avgRatingSortWindow.High
		} else {
			low = math.Max(low, avgRatingSortWindow.Low)
			high = math.Min(high, avgRatingSortWindow.High)
		}
		return bson.M{"$gte": low, "$lte": high, "$ne": nil}
	}
	if !bounded {
		return nil
	}
	return bson.M{"$gte": low, "$lte": high}
}

func SortSpec(key SortKey) bson.D {
	switch key {
	case SortPopularity, SortRating, SortAvgRating:
		return bson.D{{Key: "avgRtng", Value: -1}}
	case SortPriceLow:
		return bson.D{{Key: "price", Value: 1}}
	case SortPriceHigh:
		return bson.D{{Key: "price", Value: -1}}
	default:
		return bson.D{{Key: "createdOn", Value: -1}}
	}
}

func TotalPages(total, pageSize int64) int64 {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func (q SearchQuery) String() string {
	return fmt.Sprintf("text=%q tag=%q brands=%v categories=%v rating=%d/%s sort=%s page=%d/%d",
		q.Text, q.Tag, q.BrandNames, q.CategoryNames, q.Rating, q.RatingMode, q.Sort, q.Page, q.PageSize)
}
