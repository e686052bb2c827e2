package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eveningmall/internal/models"
	"eveningmall/internal/review"
)

type ReviewService interface {
	Record(ctx context.Context, sub review.Submission) (review.Result, error)
	Breakdown(ctx context.Context, pid int64) (review.Breakdown, error)
	ListByProduct(ctx context.Context, pid int64) ([]models.Review, error)
}

// Reviewers resolves the display name a review is signed with.
type Reviewers interface {
	DisplayName(ctx context.Context, usid int64) (string, error)
}

type reviewRequest struct {
	PID    int64   `json:"PID" binding:"required,gt=0"`
	Rating float64 `json:"rating" binding:"required,gte=1,lte=5"`
	Review string  `json:"review" binding:"required"`
}

// SubmitReview records a review. Anonymous callers are signed as "Unknown".
func SubmitReview(reviews ReviewService, names Reviewers, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/reviews/submit"
		defer handlePanic(c, route)

		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		var name string
		if usid := currentIdentity(c).USID; usid > 0 {
			n, err := names.DisplayName(ctx, usid)
			if err != nil {
				respondError(c, route, err)
				return
			}
			name = n
		}

		result, err := reviews.Record(ctx, review.Submission{
			PID:    req.PID,
			Rating: req.Rating,
			Text:   req.Review,
			Name:   name,
			IP:     c.ClientIP(),
		})
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Review submitted", "avgRating": result.NewAverage, "reviewCount": result.NewCount})
	}
}

func ListReviews(reviews ReviewService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reviews/:pid"
		defer handlePanic(c, route)

		pid, ok := int64Param(c, "pid")
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		list, err := reviews.ListByProduct(ctx, pid)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func ReviewBreakdown(reviews ReviewService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reviews/breakdown/:pid"
		defer handlePanic(c, route)

		pid, ok := int64Param(c, "pid")
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		b, err := reviews.Breakdown(ctx, pid)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}
