package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"eveningmall/internal/models"
)

const productsNS = "test.products"

func TestSearch(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no matches is an empty page", func(mt *mtest.T) {
		s := NewService(mt.DB, newFakeTaxonomy(), nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch),
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch),
		)

		res, err := s.Search(context.Background(), SearchQuery{Text: "nothing"})
		require.NoError(t, err)
		assert.Empty(t, res.Items)
		assert.NotNil(t, res.Items)
		assert.Equal(t, int64(0), res.TotalCount)
		assert.Equal(t, int64(0), res.TotalPages)
		assert.Equal(t, int64(1), res.Page)
		assert.Equal(t, DefaultMinPrice, res.MinPrice)
		assert.Equal(t, DefaultMaxPrice, res.MaxPrice)
	})

	mt.Run("returns page with price bounds", func(mt *mtest.T) {
		s := NewService(mt.DB, newFakeTaxonomy(), nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: nil}, {Key: "min", Value: 9.5}, {Key: "max", Value: int32(120)}},
			),
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch,
				bson.D{{Key: "n", Value: int32(13)}},
			),
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch,
				bson.D{{Key: "PID", Value: int64(13)}, {Key: "name", Value: "Tote"}, {Key: "price", Value: 20.0}, {Key: "quantity", Value: int32(1)}},
			),
		)

		res, err := s.Search(context.Background(), SearchQuery{Page: 2, PageSize: 12, MinPrice: floatPtr(15)})
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "Tote", res.Items[0].Name)
		assert.True(t, res.Items[0].InStock)
		assert.Equal(t, int64(13), res.TotalCount)
		assert.Equal(t, int64(2), res.Page)
		assert.Equal(t, int64(2), res.TotalPages)
		assert.Equal(t, 9.5, res.MinPrice)
		assert.Equal(t, 120.0, res.MaxPrice)
	})

	mt.Run("invalid rating never reaches the store", func(mt *mtest.T) {
		s := NewService(mt.DB, newFakeTaxonomy(), nil)

		_, err := s.Search(context.Background(), SearchQuery{Rating: 9})
		assert.Error(t, err)
	})
}

func TestRatingBreakdown(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("fills missing stars with zero", func(mt *mtest.T) {
		s := NewService(mt.DB, newFakeTaxonomy(), nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: int32(5)}, {Key: "count", Value: int32(3)}},
			bson.D{{Key: "_id", Value: int32(2)}, {Key: "count", Value: int32(1)}},
		))

		got, err := s.RatingBreakdown(context.Background(), SearchQuery{Rating: 4})
		require.NoError(t, err)
		assert.Equal(t, map[int]int64{1: 0, 2: 1, 3: 0, 4: 0, 5: 3}, got)
	})
}

func TestBreakdownMatchIgnoresRatingAndSort(t *testing.T) {
	q := SearchQuery{
		Text:     "lamp",
		Rating:   5,
		Sort:     SortAvgRating,
		PrdType:  typePtr(models.ProductTypeFeatured),
		MinPrice: floatPtr(10),
	}

	match, err := breakdownMatch(context.Background(), newFakeTaxonomy(), q)
	require.NoError(t, err)
	assert.NotContains(t, match, "avgRtng")
	assert.NotContains(t, match, "prdType")
	assert.Contains(t, match, "$or")
	assert.Equal(t, priceRange(floatPtr(10), nil), match["$expr"])
}

func TestBucketSwitchOrder(t *testing.T) {
	branches := bucketSwitch()["$switch"].(bson.M)["branches"].(bson.A)
	require.Len(t, branches, 5)
	first := branches[0].(bson.M)
	assert.Equal(t, 5, first["then"])
	assert.Equal(t, bson.M{"$gte": bson.A{"$avgRtng", 4.5}}, first["case"])
}
