package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eveningmall/internal/models"
	"eveningmall/internal/order"
)

type OrderAdmin interface {
	List(ctx context.Context, page, limit int64) (order.Page, error)
	SetStatus(ctx context.Context, actor string, orderID int64, status models.OrderStatus) error
	Delete(ctx context.Context, actor string, orderID int64) error
}

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func GetOrders(orders OrderAdmin, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"), order.DefaultPageSize)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		result, err := orders.List(ctx, page, limit)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func UpdateOrderStatus(orders OrderAdmin, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/admin/orders/:orderId/status"
		defer handlePanic(c, route)

		orderID, ok := int64Param(c, "orderId")
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}
		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		if err := orders.SetStatus(ctx, actorName(c), orderID, req.Status); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "status": req.Status})
	}
}

func DeleteOrder(orders OrderAdmin, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/orders/:orderId"
		defer handlePanic(c, route)

		orderID, ok := int64Param(c, "orderId")
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		if err := orders.Delete(ctx, actorName(c), orderID); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
