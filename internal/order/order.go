// Package order turns a user's cart into a frozen order.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eveningmall/internal/apperr"
	"eveningmall/internal/database"
	"eveningmall/internal/logger"
	"eveningmall/internal/models"
	"eveningmall/internal/sequence"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Allocator interface {
	Next(ctx context.Context, entity sequence.Entity) (int64, error)
}

// Cart is the part of the basket service orders need.
type Cart interface {
	RawCart(ctx context.Context, user int64) (models.Cart, error)
	ClearCart(ctx context.Context, user int64) error
}

type ProductSource interface {
	Products(ctx context.Context, pids []int64) (map[int64]models.Product, error)
}

type Service struct {
	db       *mongo.Database
	orders   *mongo.Collection
	products *mongo.Collection
	catalog  ProductSource
	cart     Cart
	ids      Allocator
	now      func() time.Time
}

func NewService(db *mongo.Database, catalog ProductSource, cart Cart, ids Allocator) *Service {
	return &Service{
		db:       db,
		orders:   db.Collection(database.Orders),
		products: db.Collection(database.Products),
		catalog:  catalog,
		cart:     cart,
		ids:      ids,
		now:      time.Now,
	}
}

type PlaceInput struct {
	PaymentMethod string
	// PaymentID is the captured payment reference, required for stripe.
	PaymentID       string
	ShippingCost    float64
	ShippingAddress models.Address
	BillingAddress  *models.Address
}

// StockError reports a line that asked for more than is on hand.
type StockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e StockError) Error() string {
	return fmt.Sprintf("product %d out of stock: %d available, %d requested", e.ProductID, e.Available, e.Requested)
}

type MissingProductError struct {
	ProductID int64
}

func (e MissingProductError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

var errEmptyCart = errors.New("cart is empty")

func (in PlaceInput) payment() (method, status string, err error) {
	switch strings.ToLower(strings.TrimSpace(in.PaymentMethod)) {
	case models.PaymentCOD:
		return models.PaymentCOD, models.PaymentUnpaid, nil
	case models.PaymentStripe:
		if strings.TrimSpace(in.PaymentID) == "" {
			return "", "", apperr.InvalidInput("paymentId is required for stripe payments")
		}
		return models.PaymentStripe, models.PaymentPaid, nil
	default:
		return "", "", apperr.InvalidInput("invalid payment method")
	}
}

// Place builds an order from the user's cart. Stock is decremented with a
// conditional update per line; the order insert and the cart clear share the
// same transaction.
func (s *Service) Place(ctx context.Context, usid int64, actor string, in PlaceInput) (models.Order, error) {
	method, status, err := in.payment()
	if err != nil {
		return models.Order{}, err
	}
	if in.ShippingCost < 0 {
		return models.Order{}, apperr.InvalidInput("shippingCost must be 0 or greater")
	}
	if strings.TrimSpace(in.ShippingAddress.Street1) == "" {
		return models.Order{}, apperr.InvalidInput("shipping address is required")
	}
	billing := in.ShippingAddress
	if in.BillingAddress != nil {
		billing = *in.BillingAddress
	}

	orderID, err := s.ids.Next(ctx, sequence.Order)
	if err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		OrderID:         orderID,
		UserID:          usid,
		ShippingCost:    in.ShippingCost,
		PaymentMethod:   method,
		PaymentStatus:   status,
		PaymentID:       strings.TrimSpace(in.PaymentID),
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  billing,
		Status:          models.OrderProcessing,
		Audit:           models.NewAudit(actor, s.now()),
	}

	err = database.WithTransaction(ctx, s.db, func(sc mongo.SessionContext) error {
		cart, err := s.cart.RawCart(sc, usid)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return errEmptyCart
		}

		pids := make([]int64, 0, len(cart.Items))
		for _, line := range cart.Items {
			pids = append(pids, line.ProductID)
		}
		products, err := s.catalog.Products(sc, pids)
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(cart.Items))
		total := decimal.NewFromFloat(in.ShippingCost)
		for _, line := range cart.Items {
			product, ok := products[line.ProductID]
			if !ok {
				return MissingProductError{ProductID: line.ProductID}
			}
			if product.Quantity < line.Quantity {
				return StockError{ProductID: line.ProductID, Available: product.Quantity, Requested: line.Quantity}
			}

			res, err := s.products.UpdateOne(sc,
				models.WithActive(bson.M{"PID": line.ProductID, "quantity": bson.M{"$gte": line.Quantity}}),
				bson.M{"$inc": bson.M{"quantity": -line.Quantity}},
			)
			if err != nil {
				return err
			}
			if res.MatchedCount == 0 {
				return StockError{ProductID: line.ProductID, Available: product.Quantity, Requested: line.Quantity}
			}

			items = append(items, models.OrderItem{
				ProductID: line.ProductID,
				Name:      product.Name,
				Price:     product.EffectivePrice,
				Quantity:  line.Quantity,
			})
			total = total.Add(decimal.NewFromFloat(product.EffectivePrice).Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		order.Items = items
		order.TotalAmount = total.Round(2).InexactFloat64()
		if _, err := s.orders.InsertOne(sc, order); err != nil {
			return err
		}
		return s.cart.ClearCart(sc, usid)
	})
	if err != nil {
		return models.Order{}, placeError(err)
	}

	logger.Get("order").WithFields(map[string]interface{}{
		"orderId": orderID, "USID": usid, "total": order.TotalAmount,
	}).Info("order placed")
	return order, nil
}

func placeError(err error) error {
	var stockErr StockError
	if errors.As(err, &stockErr) {
		return apperr.Wrap(apperr.KindConflict, "Insufficient stock", stockErr)
	}
	var notFoundErr MissingProductError
	if errors.As(err, &notFoundErr) {
		return apperr.Wrap(apperr.KindNotFound, "Product not found", notFoundErr)
	}
	if errors.Is(err, errEmptyCart) {
		return apperr.InvalidInput("Cart is empty")
	}
	return apperr.FromMongo(err, "")
}

// Mine lists the user's orders, newest first.
func (s *Service) Mine(ctx context.Context, usid int64) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdOn", Value: -1}})
	cursor, err := s.orders.Find(ctx, models.WithActive(bson.M{"userId": usid}), opts)
	if err != nil {
		return nil, apperr.Internal("find orders", err)
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, apperr.Internal("decode orders", err)
	}
	return orders, nil
}

type Page struct {
	Items      []models.Order `json:"items"`
	Total      int64          `json:"total"`
	Page       int64          `json:"page"`
	TotalPages int64          `json:"totalPages"`
}

func (s *Service) List(ctx context.Context, page, limit int64) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	filter := models.ActiveFilter()

	total, err := s.orders.CountDocuments(ctx, filter)
	if err != nil {
		return Page{}, apperr.Internal("count orders", err)
	}
	out := Page{Items: []models.Order{}, Total: total, Page: page, TotalPages: (total + limit - 1) / limit}
	if total == 0 {
		return out, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdOn", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return Page{}, apperr.Internal("find orders", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &out.Items); err != nil {
		return Page{}, apperr.Internal("decode orders", err)
	}
	return out, nil
}

func (s *Service) SetStatus(ctx context.Context, actor string, orderID int64, status models.OrderStatus) error {
	if !status.Valid() {
		return apperr.InvalidInput("invalid order status")
	}
	now := s.now().UTC()
	set := models.UpdateStamp(actor, now)
	set["status"] = status
	set["statusUpdatedOn"] = now

	res, err := s.orders.UpdateOne(ctx, models.WithActive(bson.M{"orderId": orderID}), bson.M{"$set": set})
	if err != nil {
		return apperr.FromMongo(err, "")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Order not found")
	}
	return nil
}

// Delete soft-deletes an order; the line snapshot is kept.
func (s *Service) Delete(ctx context.Context, actor string, orderID int64) error {
	res, err := s.orders.UpdateOne(ctx,
		models.WithActive(bson.M{"orderId": orderID}),
		bson.M{"$set": models.DeleteStamp(actor, s.now())},
	)
	if err != nil {
		return apperr.FromMongo(err, "")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Order not found")
	}
	return nil
}
