package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eveningmall/internal/models"
	"eveningmall/internal/order"
)

type OrderPlacer interface {
	Place(ctx context.Context, usid int64, actor string, in order.PlaceInput) (models.Order, error)
	Mine(ctx context.Context, usid int64) ([]models.Order, error)
}

type placeOrderRequest struct {
	PaymentMethod   string          `json:"paymentMethod" binding:"required,oneof=cod stripe"`
	PaymentID       string          `json:"paymentId"`
	ShippingCost    float64         `json:"shippingCost" binding:"gte=0"`
	ShippingAddress models.Address  `json:"shippingAddress"`
	BillingAddress  *models.Address `json:"billingAddress"`
}

// PlaceOrder turns the caller's cart into an order.
func PlaceOrder(orders OrderPlacer, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/place"
		defer handlePanic(c, route)

		var req placeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		placed, err := orders.Place(ctx, currentIdentity(c).USID, actorName(c), order.PlaceInput{
			PaymentMethod:   req.PaymentMethod,
			PaymentID:       req.PaymentID,
			ShippingCost:    req.ShippingCost,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
		})
		if err != nil {
			var stockErr order.StockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusConflict, gin.H{
					"error":     "Insufficient stock",
					"productId": stockErr.ProductID,
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			var missing order.MissingProductError
			if errors.As(err, &missing) {
				c.JSON(http.StatusNotFound, gin.H{
					"error":     "Product not found",
					"productId": missing.ProductID,
				})
				return
			}
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Order placed", "order": placed})
	}
}

func MyOrders(orders OrderPlacer, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/my"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		list, err := orders.Mine(ctx, currentIdentity(c).USID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
