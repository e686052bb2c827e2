package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"eveningmall/internal/apperr"
	"eveningmall/internal/catalog"
	"eveningmall/internal/models"
)

// ProductReader is the storefront side of the catalog.
type ProductReader interface {
	Search(ctx context.Context, q catalog.SearchQuery) (catalog.SearchResult, error)
	RatingBreakdown(ctx context.Context, q catalog.SearchQuery) (map[int]int64, error)
	GetByPID(ctx context.Context, pid int64) (models.Product, error)
	ByType(ctx context.Context, t models.ProductType, limit int64) ([]models.Product, error)
	NewArrivals(ctx context.Context, limit int64) ([]models.Product, error)
	BestSelling(ctx context.Context, limit int64) ([]models.Product, error)
	TopRated(ctx context.Context, limit int64) ([]models.Product, error)
	TopByKeyword(ctx context.Context, keyword string, limit int64) ([]models.Product, error)
	CustomHTML(ctx context.Context, pid int64) (string, error)
}

func optionalFloat(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.InvalidInput(name + " must be a number")
	}
	return &v, nil
}

func parseSearchQuery(c *gin.Context) (catalog.SearchQuery, error) {
	q := catalog.SearchQuery{
		Text:          c.Query("q"),
		Tag:           c.Query("tag"),
		BrandNames:    models.SplitList(c.Query("brands")),
		CategoryNames: models.SplitList(c.Query("categories")),
		RatingMode:    catalog.RatingMode(strings.ToLower(strings.TrimSpace(c.Query("ratingFilterMode")))),
		Sort:          catalog.ParseSortKey(c.Query("sortBy")),
	}

	if raw := strings.TrimSpace(c.Query("prdType")); raw != "" {
		t, ok := models.ParseProductType(raw)
		if !ok {
			return q, apperr.InvalidInput("invalid prdType")
		}
		q.PrdType = &t
	}

	var err error
	if q.MinPrice, err = optionalFloat(c, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = optionalFloat(c, "maxPrice"); err != nil {
		return q, err
	}

	if raw := strings.TrimSpace(c.Query("rating")); raw != "" {
		r, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperr.InvalidInput("rating must be a whole number")
		}
		q.Rating = r
	}

	q.Page, q.PageSize, err = parsePaginationParams(c.Query("page"), c.Query("limit"), catalog.DefaultPageSize)
	if err != nil {
		return q, apperr.InvalidInput(err.Error())
	}
	return q, nil
}

func SearchProducts(products ProductReader, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/search"
		defer handlePanic(c, route)

		q, err := parseSearchQuery(c)
		if err != nil {
			respondError(c, route, err)
			return
		}
		routeLog(c, route).Debugf("search %s", q)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		result, err := products.Search(ctx, q)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func ProductRatingBreakdown(products ProductReader, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/rating-stats"
		defer handlePanic(c, route)

		q, err := parseSearchQuery(c)
		if err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		counts, err := products.RatingBreakdown(ctx, q)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"breakdown": counts})
	}
}

func GetProduct(products ProductReader, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/detail/:pid"
		defer handlePanic(c, route)

		pid, ok := int64Param(c, "pid")
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		product, err := products.GetByPID(ctx, pid)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func ProductsByType(products ProductReader, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/type/:type"
		defer handlePanic(c, route)

		raw := c.Param("type")
		if raw == "" {
			raw = c.Query("type")
		}
		t, ok := models.ParseProductType(raw)
		if !ok || t == models.ProductTypeNone {
			respondWithError(c, http.StatusBadRequest, route, "invalid product type")
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		items, err := products.ByType(ctx, t, int64Query(c, "limit"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": items})
	}
}

// HomeSection serves one of the fixed storefront sections: new-arrivals,
// best-selling or top-rated.
func HomeSection(products ProductReader, section string, timeout time.Duration) gin.HandlerFunc {
	var load func(context.Context, int64) ([]models.Product, error)
	switch section {
	case "new-arrivals":
		load = products.NewArrivals
	case "best-selling":
		load = products.BestSelling
	case "top-rated":
		load = products.TopRated
	default:
		panic("handlers: unknown home section " + section)
	}
	route := "GET /api/home/" + section

	return func(c *gin.Context) {
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		items, err := load(ctx, int64Query(c, "limit"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": items})
	}
}

func HomeKeyword(products ProductReader, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/home/top-products"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		items, err := products.TopByKeyword(ctx, c.Query("keyword"), int64Query(c, "limit"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": items})
	}
}

func ProductCustomHTML(products ProductReader, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/detail/:pid/html"
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
