package sequence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"eveningmall/internal/apperr"
)

func TestSeeds(t *testing.T) {
	for _, e := range []Entity{Product, Brand, Category, SubCategory, Review} {
		assert.Equal(t, int64(1), Seeds[e], string(e))
	}
	for _, e := range []Entity{RegisteredUser, Cart, Order} {
		assert.Equal(t, int64(1111), Seeds[e], string(e))
	}
}

func TestNextPipelineStartsAtSeed(t *testing.T) {
	pipeline := nextPipeline(1111)
	require.Len(t, pipeline, 1)

	raw, err := bson.Marshal(pipeline[0])
	require.NoError(t, err)

	ifNull := bson.Raw(raw).Lookup("$set", "seq", "$add", "0", "$ifNull", "1")
	assert.Equal(t, int64(1110), ifNull.Int64())
	step := bson.Raw(raw).Lookup("$set", "seq", "$add", "1")
	assert.Equal(t, int64(1), step.Int64())
}

func TestNext(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns counter value", func(mt *mtest.T) {
		alloc := New(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: "orderId"}, {Key: "seq", Value: int64(1111)}}},
		))

		id, err := alloc.Next(context.Background(), Order)
		require.NoError(t, err)
		assert.Equal(t, int64(1111), id)
	})

	mt.Run("unknown entity", func(mt *mtest.T) {
		alloc := New(mt.DB)

		_, err := alloc.Next(context.Background(), Entity("SKU"))
		assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	})

	mt.Run("store failure", func(mt *mtest.T) {
		alloc := New(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "bad",
		}))

		_, err := alloc.Next(context.Background(), Product)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	})
}
