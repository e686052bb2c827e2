package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eveningmall/internal/taxonomy"
)

// TaxonomyWriter is the admin side of the taxonomy resolver.
type TaxonomyWriter interface {
	TaxonomyReader
	Resolve(ctx context.Context, name string, kind taxonomy.Kind, parentID int64, actor string) (int64, error)
	Delete(ctx context.Context, kind taxonomy.Kind, id int64, actor string) error
}

type TaxonomyCreateRequest struct {
	Name  string `json:"name" binding:"required"`
	CatID int64  `json:"catId"`
}

func taxonomyKind(c *gin.Context, route string) (taxonomy.Kind, bool) {
	kind, ok := taxonomy.ParseKind(c.Param("kind"))
	if !ok {
		respondWithError(c, http.StatusNotFound, route, "unknown taxonomy kind")
	}
	return kind, ok
}

// SearchTaxonomy is the admin autocomplete: ?search= fragment, ?catId= for
// subcategories.
func SearchTaxonomy(tax TaxonomyWriter, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/taxonomy/:kind"
		defer handlePanic(c, route)

		kind, ok := taxonomyKind(c, route)
		if !ok {
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		entries, err := tax.Search(ctx, kind, c.Query("search"), int64Query(c, "catId"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

// CreateTaxonomy finds or creates the named entry.
func CreateTaxonomy(tax TaxonomyWriter, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/taxonomy/:kind"
		defer handlePanic(c, route)

		kind, ok := taxonomyKind(c, route)
		if !ok {
			return
		}
		var req TaxonomyCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		id, err := tax.Resolve(ctx, req.Name, kind, req.CatID, actorName(c))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, taxonomy.Entry{ID: id, Name: req.Name, ParentID: req.CatID})
	}
}

func DeleteTaxonomy(tax TaxonomyWriter, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/taxonomy/:kind/:id"
		defer handlePanic(c, route)

		kind, ok := taxonomyKind(c, route)
		if !ok {
			return
		}
		id, ok := int64Param(c, "id")
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		if err := tax.Delete(ctx, kind, id, actorName(c)); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": string(kind) + " deleted"})
	}
}
