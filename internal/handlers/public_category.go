package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eveningmall/internal/taxonomy"
)

// TaxonomyReader lists brands, categories and subcategories.
type TaxonomyReader interface {
	List(ctx context.Context, kind taxonomy.Kind, parentID int64) ([]taxonomy.Entry, error)
	Search(ctx context.Context, kind taxonomy.Kind, fragment string, parentID int64) ([]taxonomy.Entry, error)
}

// GetFilterOptions lists every active entry of one kind for the storefront
// filter panel. Subcategories may be narrowed with ?catId=.
func GetFilterOptions(tax TaxonomyReader, kind taxonomy.Kind, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "GET /api/filters/" + string(kind)
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		entries, err := tax.List(ctx, kind, int64Query(c, "catId"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		routeLog(c, route).Debugf("returning %d entries", len(entries))
		c.JSON(http.StatusOK, entries)
	}
}
