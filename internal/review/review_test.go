package review

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

type fakeIDs struct{ next int64 }

func (f *fakeIDs) Next(_ context.Context, _ sequence.Entity) (int64, error) {
	f.next++
	return f.next, nil
}

func TestHistogramFloorsAndClamps(t *testing.T) {
	ratings := []float64{5, 4.9, 4.2, 3, 1.5, 0.5, 5.5}
	got := Histogram(ratings)
	assert.Equal(t, map[int]int64{1: 2, 2: 0, 3: 1, 4: 2, 5: 2}, got)

	var sum int64
	for _, n := range got {
		sum += n
	}
	assert.Equal(t, int64(len(ratings)), sum)
}

func TestPercentages(t *testing.T) {
	hist := map[int]int64{1: 1, 2: 0, 3: 1, 4: 0, 5: 1}
	got := Percentages(hist, 3)
	assert.Equal(t, 33.3, got[1])
	assert.Equal(t, 0.0, got[2])

	sum := 0.0
	for _, v := range got {
		sum += v
	}
	assert.InDelta(t, 100.0, sum, 0.15)
}

func TestPercentagesZeroTotal(t *testing.T) {
	got := Percentages(map[int]int64{}, 0)
	assert.Equal(t, map[int]float64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, got)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 4.67, RoundTo(14.0/3.0, 2))
	assert.Equal(t, 3.5, RoundTo(3.5, 2))
}

func TestSubmissionValidate(t *testing.T) {
	cases := []Submission{
		{PID: 0, Rating: 4, Text: "ok"},
		{PID: 1, Rating: 0.5, Text: "ok"},
		{PID: 1, Rating: 5.5, Text: "ok"},
		{PID: 1, Rating: 3, Text: "   "},
	}
	for _, c := range cases {
		assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(c.validate()), "%+v", c)
	}
	assert.NoError(t, Submission{PID: 1, Rating: 3, Text: "fine"}.validate())
}

func TestRecord(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("recomputes the aggregate", func(mt *mtest.T) {
		s := NewService(mt.DB, &fakeIDs{})
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.products", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, "test.reviews", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: nil}, {Key: "avg", Value: 14.0 / 3.0}, {Key: "count", Value: int32(3)}},
			),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(),
		)

		res, err := s.Record(context.Background(), Submission{PID: 8, Rating: 5, Text: "great", Name: "Ada"})
		require.NoError(t, err)
		assert.Equal(t, 4.67, res.NewAverage)
		assert.Equal(t, int64(3), res.NewCount)
	})

	mt.Run("unknown product", func(mt *mtest.T) {
		s := NewService(mt.DB, &fakeIDs{})
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.products", mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)

		_, err := s.Record(context.Background(), Submission{PID: 8, Rating: 5, Text: "great"})
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestBreakdown(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("counts and percentages", func(mt *mtest.T) {
		s := NewService(mt.DB, &fakeIDs{})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.reviews", mtest.FirstBatch,
			bson.D{{Key: "rating", Value: 5.0}},
			bson.D{{Key: "rating", Value: int32(4)}},
			bson.D{{Key: "rating", Value: 4.5}},
			bson.D{{Key: "rating", Value: 1.0}},
		))

		got, err := s.Breakdown(context.Background(), 8)
		require.NoError(t, err)
		assert.Equal(t, int64(4), got.Total)
		assert.Equal(t, int64(2), got.Counts[4])
		assert.Equal(t, 50.0, got.PercentBreakdown[4])
		assert.Equal(t, 25.0, got.PercentBreakdown[1])
	})

	mt.Run("rejects missing pid", func(mt *mtest.T) {
		s := NewService(mt.DB, &fakeIDs{})
		_, err := s.Breakdown(context.Background(), 0)
		assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	})
}
