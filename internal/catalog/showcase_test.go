package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"eveningmall/internal/apperr"
	"eveningmall/internal/models"
)

func TestLimitOr(t *testing.T) {
	assert.Equal(t, int64(7), limitOr(0, 7))
	assert.Equal(t, int64(7), limitOr(-2, 7))
	assert.Equal(t, int64(7), limitOr(MaxPageSize+1, 7))
	assert.Equal(t, int64(3), limitOr(3, 7))
}

func TestShowcaseInputErrors(t *testing.T) {
	s := &Service{taxonomy: newFakeTaxonomy()}

	_, err := s.ByType(context.Background(), models.ProductTypeNone, 0)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = s.TopByKeyword(context.Background(), "   ", 0)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestNewArrivals(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes listing", func(mt *mtest.T) {
		s := NewService(mt.DB, newFakeTaxonomy(), nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch,
			bson.D{{Key: "PID", Value: int64(21)}, {Key: "name", Value: "Lamp"}, {Key: "price", Value: 40.0}, {Key: "quantity", Value: int32(2)}},
			bson.D{{Key: "PID", Value: int64(20)}, {Key: "name", Value: "Mug"}, {Key: "price", Value: 8.0}, {Key: "quantity", Value: int32(0)}},
		))

		items, err := s.NewArrivals(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Lamp", items[0].Name)
		assert.True(t, items[0].InStock)
		assert.False(t, items[1].InStock)
	})

	mt.Run("store failure is internal", func(mt *mtest.T) {
		s := NewService(mt.DB, newFakeTaxonomy(), nil)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "boom"}))

		_, err := s.NewArrivals(context.Background(), 0)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	})
}
