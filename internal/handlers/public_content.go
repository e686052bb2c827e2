package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eveningmall/internal/content"
	"eveningmall/internal/models"
)

// Storefront is the published side of the content service.
type Storefront interface {
	PublishedBlogs(ctx context.Context, page, limit int64) (content.BlogPage, error)
	Blog(ctx context.Context, id string) (models.Blog, error)
	PublishedSliders(ctx context.Context) ([]models.Slider, error)
	PublishedTestimonials(ctx context.Context) ([]models.Testimonial, error)
	Subscribe(ctx context.Context, email string) (models.NewsletterSubscriber, error)
	Unsubscribe(ctx context.Context, id string) error
}

const (
	defaultBlogPageSize = 6
	topBlogCount        = 3
)

type subscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func ListBlogs(store Storefront, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/blogs/list"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"), defaultBlogPageSize)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		result, err := store.PublishedBlogs(ctx, page, limit)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// TopBlogs is the home page teaser: the newest few published posts.
func TopBlogs(store Storefront, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/blogs/top"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		result, err := store.PublishedBlogs(ctx, 1, topBlogCount)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, result.Blogs)
	}
}

func GetBlog(store Storefront, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/blogs/detail/:id"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		blog, err := store.Blog(ctx, c.Param("id"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, blog)
	}
}

func PublishedSliders(store Storefront, timeout time.Duration) gin.HandlerFunc {
	return listAll("GET /api/home/sliders/view", store.PublishedSliders, timeout)
}

func PublishedTestimonials(store Storefront, timeout time.Duration) gin.HandlerFunc {
	return listAll("GET /api/testimonials/view", store.PublishedTestimonials, timeout)
}

func Subscribe(store Storefront, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/contact/subscribe"
		defer handlePanic(c, route)

		var req subscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		if _, err := store.Subscribe(ctx, req.Email); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Subscribed successfully."})
	}
}

func Unsubscribe(store Storefront, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/contact/unsubscribe/:id"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		if err := store.Unsubscribe(ctx, c.Param("id")); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "You have been unsubscribed."})
	}
}
