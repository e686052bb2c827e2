package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"eveningmall/internal/apperr"
	"eveningmall/internal/models"
	"eveningmall/internal/sequence"
)

type fakeIDs struct{}

func (fakeIDs) Next(_ context.Context, _ sequence.Entity) (int64, error) { return 1111, nil }

type fakeCatalog map[int64]models.Product

func (f fakeCatalog) Products(_ context.Context, pids []int64) (map[int64]models.Product, error) {
	out := map[int64]models.Product{}
	for _, pid := range pids {
		if p, ok := f[pid]; ok {
			out[pid] = p
		}
	}
	return out, nil
}

type fakeCart struct {
	items   []models.LineItem
	cleared bool
}

func (f *fakeCart) RawCart(_ context.Context, user int64) (models.Cart, error) {
	return models.Cart{UserID: user, Items: f.items}, nil
}

func (f *fakeCart) ClearCart(_ context.Context, _ int64) error {
	f.cleared = true
	return nil
}

var products = fakeCatalog{
	7: {PID: 7, Name: "Mug", EffectivePrice: 10.5, Quantity: 4},
	9: {PID: 9, Name: "Bowl", EffectivePrice: 4.25, Quantity: 1},
}

var home = models.Address{FirstName: "Ada", Street1: "12 Main St", City: "London"}

func matched(n int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

func TestPaymentRules(t *testing.T) {
	method, status, err := PlaceInput{PaymentMethod: " COD "}.payment()
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCOD, method)
	assert.Equal(t, models.PaymentUnpaid, status)

	_, status, err = PlaceInput{PaymentMethod: "stripe", PaymentID: "pi_1"}.payment()
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, status)

	_, _, err = PlaceInput{PaymentMethod: "stripe"}.payment()
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, _, err = PlaceInput{PaymentMethod: "barter"}.payment()
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestPlaceValidation(t *testing.T) {
	s := &Service{}
	_, err := s.Place(context.Background(), 1200, "Ada", PlaceInput{PaymentMethod: "cod"})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = s.Place(context.Background(), 1200, "Ada", PlaceInput{PaymentMethod: "cod", ShippingCost: -1, ShippingAddress: home})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestPlace(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("freezes lines and clears the cart", func(mt *mtest.T) {
		cart := &fakeCart{items: []models.LineItem{{ProductID: 7, Quantity: 2}, {ProductID: 9, Quantity: 1}}}
		s := NewService(mt.DB, products, cart, fakeIDs{})
		s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
		mt.AddMockResponses(matched(1), matched(1), mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		order, err := s.Place(context.Background(), 1200, "Ada", PlaceInput{
			PaymentMethod: "cod", ShippingCost: 5, ShippingAddress: home,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1111), order.OrderID)
		assert.Equal(t, int64(1200), order.UserID)
		assert.Equal(t, models.OrderProcessing, order.Status)
		assert.Equal(t, models.PaymentUnpaid, order.PaymentStatus)
		assert.Equal(t, home, order.BillingAddress)
		require.Len(t, order.Items, 2)
		assert.Equal(t, models.OrderItem{ProductID: 7, Name: "Mug", Price: 10.5, Quantity: 2}, order.Items[0])
		assert.InDelta(t, 30.25, order.TotalAmount, 0.0001)
		assert.True(t, cart.cleared)
	})

	mt.Run("empty cart", func(mt *mtest.T) {
		cart := &fakeCart{}
		s := NewService(mt.DB, products, cart, fakeIDs{})
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		_, err := s.Place(context.Background(), 1200, "Ada", PlaceInput{PaymentMethod: "cod", ShippingAddress: home})
		assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
		assert.False(t, cart.cleared)
	})

	mt.Run("not enough stock", func(mt *mtest.T) {
		cart := &fakeCart{items: []models.LineItem{{ProductID: 9, Quantity: 3}}}
		s := NewService(mt.DB, products, cart, fakeIDs{})
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		_, err := s.Place(context.Background(), 1200, "Ada", PlaceInput{PaymentMethod: "cod", ShippingAddress: home})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		assert.Equal(t, "Insufficient stock", apperr.MessageOf(err))
	})

	mt.Run("stock taken concurrently", func(mt *mtest.T) {
		cart := &fakeCart{items: []models.LineItem{{ProductID: 7, Quantity: 2}}}
		s := NewService(mt.DB, products, cart, fakeIDs{})
		mt.AddMockResponses(matched(0), mtest.CreateSuccessResponse())

		_, err := s.Place(context.Background(), 1200, "Ada", PlaceInput{PaymentMethod: "cod", ShippingAddress: home})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		assert.False(t, cart.cleared)
	})

	mt.Run("product gone", func(mt *mtest.T) {
		cart := &fakeCart{items: []models.LineItem{{ProductID: 42, Quantity: 1}}}
		s := NewService(mt.DB, products, cart, fakeIDs{})
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		_, err := s.Place(context.Background(), 1200, "Ada", PlaceInput{PaymentMethod: "cod", ShippingAddress: home})
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestSetStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("rejects unknown status", func(mt *mtest.T) {
		err := NewService(mt.DB, products, &fakeCart{}, fakeIDs{}).SetStatus(context.Background(), "admin", 1111, "lost")
		assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	})

	mt.Run("missing order", func(mt *mtest.T) {
		s := NewService(mt.DB, products, &fakeCart{}, fakeIDs{})
		mt.AddMockResponses(matched(0))
		err := s.SetStatus(context.Background(), "admin", 1111, models.OrderShipped)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	mt.Run("updates", func(mt *mtest.T) {
		s := NewService(mt.DB, products, &fakeCart{}, fakeIDs{})
		mt.AddMockResponses(matched(1))
		require.NoError(t, s.SetStatus(context.Background(), "admin", 1111, models.OrderDelivered))
	})
}

func TestList(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("empty", func(mt *mtest.T) {
		s := NewService(mt.DB, products, &fakeCart{}, fakeIDs{})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.orders", mtest.FirstBatch))

		page, err := s.List(context.Background(), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Page)
		assert.Empty(t, page.Items)
		assert.Equal(t, int64(0), page.TotalPages)
	})

	mt.Run("second page", func(mt *mtest.T) {
		s := NewService(mt.DB, products, &fakeCart{}, fakeIDs{})
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.orders", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}),
			mtest.CreateCursorResponse(0, "test.orders", mtest.FirstBatch,
				bson.D{{Key: "orderId", Value: int64(5)}, {Key: "status", Value: "shipped"}}),
		)

		page, err := s.List(context.Background(), 2, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.TotalPages)
		require.Len(t, page.Items, 1)
		assert.Equal(t, models.OrderShipped, page.Items[0].Status)
	})
}
