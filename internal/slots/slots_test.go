package slots

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"eveningmall/internal/apperr"
)

func featuredRule() Rule {
	return Rule{
		Key:     "prdType:featured",
		Members: bson.M{"prdType": "featured", "dlt_sts": bson.M{"$ne": 1}},
		Limit:   12,
	}
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(11, featuredRule()))

	err := Check(12, featuredRule())
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "max 12")
}

func TestCheckUsesRuleMessage(t *testing.T) {
	rule := featuredRule()
	rule.Message = "Only 12 featured products allowed"

	assert.EqualError(t, Check(20, rule), "Only 12 featured products allowed")
}

func TestClaim(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("room left", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(0, "test.products", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(11)}}),
		)

		assert.NoError(t, Claim(context.Background(), mt.DB, mt.Coll, featuredRule()))
	})

	mt.Run("full", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(0, "test.products", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(12)}}),
		)

		err := Claim(context.Background(), mt.DB, mt.Coll, featuredRule())
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}
