package catalog

import (
	"context"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eveningmall/internal/apperr"
	"eveningmall/internal/models"
	"eveningmall/internal/taxonomy"
)

// Default sizes of the storefront home sections.
const (
	ShowcaseLimit   = 7
	TypeLimit       = models.ProductTypeCapacity
	KeywordLimit    = 4
	bestSellerFloor = 4.0
)

func limitOr(limit, fallback int64) int64 {
	if limit < 1 || limit > MaxPageSize {
		return fallback
	}
	return limit
}

func (s *Service) listing(ctx context.Context, filter bson.M, sort bson.D, limit int64) ([]models.Product, error) {
	opts := options.Find().SetSort(sort).SetLimit(limit)
	cursor, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Internal("find products", err)
	}
	defer cursor.Close(ctx)

	items, err := decodeProducts(ctx, cursor)
	if err != nil {
		return nil, apperr.Internal("decode products", err)
	}
	return items, nil
}

func (s *Service) NewArrivals(ctx context.Context, limit int64) ([]models.Product, error) {
	return s.listing(ctx, models.ActiveFilter(),
		bson.D{{Key: "createdOn", Value: -1}},
		limitOr(limit, ShowcaseLimit))
}

// BestSelling lists products rated 4 or better.
func (s *Service) BestSelling(ctx context.Context, limit int64) ([]models.Product, error) {
	return s.listing(ctx,
		models.WithActive(bson.M{"avgRtng": bson.M{"$gte": bestSellerFloor}}),
		bson.D{{Key: "avgRtng", Value: -1}, {Key: "createdOn", Value: -1}},
		limitOr(limit, ShowcaseLimit))
}

func (s *Service) TopRated(ctx context.Context, limit int64) ([]models.Product, error) {
	return s.listing(ctx,
		models.WithActive(bson.M{"avgRtng": bson.M{"$gt": 0}}),
		bson.D{{Key: "avgRtng", Value: -1}, {Key: "reviewCount", Value: -1}},
		limitOr(limit, ShowcaseLimit))
}

func (s *Service) ByType(ctx context.Context, t models.ProductType, limit int64) ([]models.Product, error) {
	if t == models.ProductTypeNone {
		return nil, apperr.InvalidInput("prdType must be trending or featured")
	}
	return s.listing(ctx,
		models.WithActive(bson.M{"prdType": t}),
		bson.D{{Key: "createdOn", Value: -1}},
		limitOr(limit, TypeLimit))
}

// TopByKeyword finds well-rated products whose name, tags, category or
// subcategory mention keyword.
func (s *Service) TopByKeyword(ctx context.Context, keyword string, limit int64) ([]models.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperr.InvalidInput("keyword is required")
	}

	pattern := bson.M{"$regex": regexp.QuoteMeta(keyword), "$options": "i"}
	or := bson.A{bson.M{"name": pattern}, bson.M{"tags": pattern}}

	catIDs, err := s.taxonomy.IDsMatching(ctx, taxonomy.Category, keyword)
	if err != nil {
		return nil, err
	}
	if len(catIDs) > 0 {
		or = append(or, bson.M{"catId": bson.M{"$in": catIDs}})
	}
	subIDs, err := s.taxonomy.IDsMatching(ctx, taxonomy.SubCategory, keyword)
	if err != nil {
		return nil, err
	}
	if len(subIDs) > 0 {
		or = append(or, bson.M{"subCatId": bson.M{"$in": subIDs}})
	}

	filter := models.WithActive(bson.M{
		"$or":     or,
		"avgRtng": bson.M{"$gte": bestSellerFloor},
	})
	return s.listing(ctx, filter,
		bson.D{{Key: "avgRtng", Value: -1}, {Key: "createdOn", Value: -1}},
		limitOr(limit, KeywordLimit))
}
