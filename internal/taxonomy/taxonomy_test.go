package taxonomy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"eveningmall/internal/apperr"
	"eveningmall/internal/sequence"
)

type fakeIDs struct {
	next  int64
	calls []sequence.Entity
}

func (f *fakeIDs) Next(_ context.Context, e sequence.Entity) (int64, error) {
	f.calls = append(f.calls, e)
	return f.next, nil
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind(" SubCategory ")
	assert.True(t, ok)
	assert.Equal(t, SubCategory, k)

	_, ok = ParseKind("tag")
	assert.False(t, ok)
}

func TestNameFilterScopesSubcategories(t *testing.T) {
	brand := nameFilter(specs[Brand], "Nike", 0)
	assert.NotContains(t, brand, "catId")
	assert.Equal(t, "Nike", brand["name"])
	assert.Contains(t, brand, "dlt_sts")

	sub := nameFilter(specs[SubCategory], "Sneakers", 4)
	assert.Equal(t, int64(4), sub["catId"])
}

func TestResolveValidation(t *testing.T) {
	r := NewResolver(nil, &fakeIDs{})

	_, err := r.Resolve(context.Background(), "   ", Brand, 0, "admin")
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = r.Resolve(context.Background(), "Sneakers", SubCategory, 0, "admin")
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = r.Resolve(context.Background(), "x", Kind("tag"), 0, "admin")
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestResolve(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("existing name returns its id", func(mt *mtest.T) {
		ids := &fakeIDs{next: 99}
		r := NewResolver(mt.DB, ids)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.brands", mtest.FirstBatch,
			bson.D{{Key: "brndId", Value: int64(5)}},
		))

		id, err := r.Resolve(context.Background(), "NIKE", Brand, 0, "admin")
		require.NoError(t, err)
		assert.Equal(t, int64(5), id)
		assert.Empty(t, ids.calls)
	})

	mt.Run("missing name is created", func(mt *mtest.T) {
		ids := &fakeIDs{next: 9}
		r := NewResolver(mt.DB, ids)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.brands", mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "name", Value: "nike"}, {Key: "brndId", Value: int64(9)},
			}}),
		)

		id, err := r.Resolve(context.Background(), "nike", Brand, 0, "admin")
		require.NoError(t, err)
		assert.Equal(t, int64(9), id)
		assert.Equal(t, []sequence.Entity{sequence.Brand}, ids.calls)
	})

	mt.Run("concurrent insert falls back to the winner", func(mt *mtest.T) {
		r := NewResolver(mt.DB, &fakeIDs{next: 10})
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.categories", mtest.FirstBatch),
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code: 11000, Name: "DuplicateKey", Message: "E11000 duplicate key error",
			}),
			mtest.CreateCursorResponse(0, "test.categories", mtest.FirstBatch,
				bson.D{{Key: "catId", Value: int32(4)}},
			),
		)

		id, err := r.Resolve(context.Background(), "Shoes", Category, 0, "admin")
		require.NoError(t, err)
		assert.Equal(t, int64(4), id)
	})
}

func TestIDsByNames(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("collects ids", func(mt *mtest.T) {
		r := NewResolver(mt.DB, &fakeIDs{})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.brands", mtest.FirstBatch,
			bson.D{{Key: "brndId", Value: int64(1)}},
			bson.D{{Key: "brndId", Value: int64(3)}},
		))

		ids, err := r.IDsByNames(context.Background(), Brand, []string{"Nike", "Puma", "Unknown"})
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 3}, ids)
	})

	mt.Run("no names skips the query", func(mt *mtest.T) {
		r := NewResolver(mt.DB, &fakeIDs{})

		ids, err := r.IDsByNames(context.Background(), Category, nil)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestIDsMatchingBlankFragment(t *testing.T) {
	r := NewResolver(nil, &fakeIDs{})

	ids, err := r.IDsMatching(context.Background(), Category, "  ")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearchRequiresParentForSubcategory(t *testing.T) {
	r := NewResolver(nil, &fakeIDs{})

	_, err := r.Search(context.Background(), SubCategory, "sn", 0)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing entry", func(mt *mtest.T) {
		r := NewResolver(mt.DB, &fakeIDs{})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := r.Delete(context.Background(), Brand, 42, "admin")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	mt.Run("soft deletes", func(mt *mtest.T) {
		r := NewResolver(mt.DB, &fakeIDs{})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(t, r.Delete(context.Background(), Brand, 42, "admin"))
	})
}
