package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eveningmall/internal/catalog"
	"eveningmall/internal/models"
)

// ProductWriter is the admin side of the catalog.
type ProductWriter interface {
	Create(ctx context.Context, actor string, in catalog.ProductInput) (models.Product, error)
	Update(ctx context.Context, actor string, pid int64, in catalog.ProductInput) (models.Product, error)
	Delete(ctx context.Context, actor string, pid int64) error
	ToggleDiscount(ctx context.Context, actor string, pid int64) (models.Product, error)
	TypeCount(ctx context.Context, t models.ProductType) (int64, error)
	List(ctx context.Context, page, limit int64) (catalog.ProductPage, error)
	CustomHTML(ctx context.Context, pid int64) (string, error)
	SaveCustomHTML(ctx context.Context, actor string, pid int64, html string) error
}

type customHTMLRequest struct {
	CustomHTML string `json:"customHtml"`
}

func GetAllProducts(products ProductWriter, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/products/view"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"), 24)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		result, err := products.List(ctx, page, limit)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func CreateProduct(products ProductWriter, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/products/add"
		defer handlePanic(c, route)

		input, err := parseProductForm(c)
		if err != nil {
			respondMultipartError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		product, err := products.Create(ctx, actorName(c), input)
		if err != nil {
			respondError(c, route, err)
			return
		}
		routeLog(c, route).WithField("PID", product.PID).Info("product created")
		c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": product})
	}
}

func UpdateProduct(products ProductWriter, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/products/update/:pid"
		defer handlePanic(c, route)

		pid, ok := int64Param(c, "pid")
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}
		input, err := parseProductForm(c)
		if err != nil {
			respondMultipartError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		product, err := products.Update(ctx, actorName(c), pid, input)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
	}
}

func DeleteProduct(products ProductWriter, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/products/delete/:pid"
		defer handlePanic(c, route)

		pid, ok := int64Param(c, "pid")
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		if err := products.Delete(ctx, actorName(c), pid); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}

func ToggleShowDiscount(products ProductWriter, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/products/toggle-show-discount/:pid"
		defer handlePanic(c, route)

		pid, ok := int64Param(c, "pid")
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		product, err := products.ToggleDiscount(ctx, actorName(c), pid)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "ShowDiscount updated", "product": product})
	}
}

func CheckPrdTypeCount(products ProductWriter, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/products/check-prdtype"
		defer handlePanic(c, route)

		t, ok := models.ParseProductType(c.Query("prdType"))
		if !ok || t == models.ProductTypeNone {
			respondWithError(c, http.StatusBadRequest, route, "invalid prdType")
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		count, err := products.TypeCount(ctx, t)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"prdType":   t,
			"count":     count,
			"limit":     models.ProductTypeCapacity,
			"available": count < models.ProductTypeCapacity,
		})
	}
}

func GetCustomHTML(products ProductWriter, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/products/custom-html/:pid"
		defer handlePanic(c, route)

		pid, ok := int64Param(c, "pid")
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		html, err := products.CustomHTML(ctx, pid)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"pid": pid, "customHtml": html})
	}
}

func SaveCustomHTML(products ProductWriter, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/products/custom-html/:pid"
		defer handlePanic(c, route)

		pid, ok := int64Param(c, "pid")
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}
		var req customHTMLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		if err := products.SaveCustomHTML(ctx, actorName(c), pid, req.CustomHTML); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Custom HTML saved"})
	}
}
