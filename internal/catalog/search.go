// Package catalog owns products: storefront search, the rating breakdown,
// showcase listings and admin writes.
package catalog

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eveningmall/internal/apperr"
	"eveningmall/internal/database"
	"eveningmall/internal/logger"
	"eveningmall/internal/models"
	"eveningmall/internal/taxonomy"
)

// Price bounds reported when no product matches the base predicate.
const (
	DefaultMinPrice = 0.0
	DefaultMaxPrice = 1000.0
)

// Taxonomy is the part of the taxonomy resolver the catalog depends on.
type Taxonomy interface {
	NameLookup
	Resolve(ctx context.Context, name string, kind taxonomy.Kind, parentID int64, actor string) (int64, error)
	IDsMatching(ctx context.Context, kind taxonomy.Kind, fragment string) ([]int64, error)
	NamesByIDs(ctx context.Context, kind taxonomy.Kind, ids []int64) (map[int64]string, error)
}

type Service struct {
	db       *mongo.Database
	products *mongo.Collection
	taxonomy Taxonomy
	ids      taxonomy.Allocator
	now      func() time.Time
}

func NewService(db *mongo.Database, tax Taxonomy, ids taxonomy.Allocator) *Service {
	return &Service{
		db:       db,
		products: db.Collection(database.Products),
		taxonomy: tax,
		ids:      ids,
		now:      time.Now,
	}
}

type SearchResult struct {
	Items      []models.Product `json:"items"`
	TotalCount int64            `json:"totalCount"`
	Page       int64            `json:"page"`
	TotalPages int64            `json:"totalPages"`
	MinPrice   float64          `json:"minPrice"`
	MaxPrice   float64          `json:"maxPrice"`
}

// Search runs q. Price bounds come from the base predicate so they do not
// move when the caller narrows the price range.
func (s *Service) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	plan, err := BuildFilter(ctx, s.taxonomy, &q)
	if err != nil {
		return SearchResult{}, err
	}

	minPrice, maxPrice, err := s.priceBounds(ctx, plan.Base)
	if err != nil {
		return SearchResult{}, err
	}

	result := SearchResult{
		Items:    []models.Product{},
		Page:     q.Page,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	}

	total, err := s.products.CountDocuments(ctx, plan.Filter)
	if err != nil {
		return SearchResult{}, apperr.Internal("count products", err)
	}
	if total == 0 {
		return result, nil
	}

	opts := options.Find().
		SetSort(plan.Sort).
		SetSkip((q.Page - 1) * q.PageSize).
		SetLimit(q.PageSize)
	cursor, err := s.products.Find(ctx, plan.Filter, opts)
	if err != nil {
		return SearchResult{}, apperr.Internal("find products", err)
	}
	defer cursor.Close(ctx)

	items, err := decodeProducts(ctx, cursor)
	if err != nil {
		return SearchResult{}, apperr.Internal("decode products", err)
	}

	result.Items = items
	result.TotalCount = total
	result.TotalPages = TotalPages(total, q.PageSize)

	logger.Get("catalog").WithField("query", q.String()).
		Debugf("search matched %d products", total)
	return result, nil
}

type priceStats struct {
	Min *float64 `bson:"min"`
	Max *float64 `bson:"max"`
}

func (s *Service) priceBounds(ctx context.Context, base bson.M) (float64, float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: base}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"min": bson.M{"$min": EffectivePriceExpr()},
			"max": bson.M{"$max": EffectivePriceExpr()},
		}}},
	}
	cursor, err := s.products.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, apperr.Internal("aggregate price bounds", err)
	}
	defer cursor.Close(ctx)

	var stats []priceStats
	if err := cursor.All(ctx, &stats); err != nil {
		return 0, 0, apperr.Internal("decode price bounds", err)
	}

	minPrice, maxPrice := DefaultMinPrice, DefaultMaxPrice
	if len(stats) > 0 {
		if stats[0].Min != nil {
			minPrice = *stats[0].Min
		}
		if stats[0].Max != nil {
			maxPrice = *stats[0].Max
		}
	}
	return minPrice, maxPrice, nil
}

// ratingBuckets maps an average rating to its star bucket by rounding.
var ratingBuckets = []struct {
	Floor float64
	Star  int
}{
	{4.5, 5},
	{3.5, 4},
	{2.5, 3},
	{1.5, 2},
	{0.5, 1},
}

func bucketSwitch() bson.M {
	branches := bson.A{}
	for _, b := range ratingBuckets {
		branches = append(branches, bson.M{
			"case": bson.M{"$gte": bson.A{"$avgRtng", b.Floor}},
			"then": b.Star,
		})
	}
	return bson.M{"$switch": bson.M{"branches": branches, "default": 0}}
}

// breakdownMatch narrows the breakdown by text, tag, taxonomy and price
// only. Rating selectors, prdType and the avg-rating sort window never apply.
func breakdownMatch(ctx context.Context, lookup NameLookup, q SearchQuery) (bson.M, error) {
	q.Rating = 0
	q.PrdType = nil
	q.Sort = SortLatest
	plan, err := BuildFilter(ctx, lookup, &q)
	if err != nil {
		return nil, err
	}

	match := bson.M{}
	for k, v := range plan.Base {
		match[k] = v
	}
	match["$expr"] = priceRange(q.MinPrice, q.MaxPrice)
	return match, nil
}

// RatingBreakdown counts the products matching q per star bucket. Products
// rated below 0.5 are not counted.
func (s *Service) RatingBreakdown(ctx context.Context, q SearchQuery) (map[int]int64, error) {
	match, err := breakdownMatch(ctx, s.taxonomy, q)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.M{"star": bucketSwitch()}}},
		{{Key: "$match", Value: bson.M{"star": bson.M{"$gt": 0}}}},
		{{Key: "$group", Value: bson.M{"_id": "$star", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.products.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Internal("aggregate rating breakdown", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Star  int   `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, apperr.Internal("decode rating breakdown", err)
	}

	out := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range rows {
		if r.Star >= 1 && r.Star <= 5 {
			out[r.Star] = r.Count
		}
	}
	return out, nil
}
