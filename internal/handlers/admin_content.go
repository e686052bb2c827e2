package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"eveningmall/internal/content"
	"eveningmall/internal/models"
)

type BlogEditor interface {
	CreateBlog(ctx context.Context, actor, ip string, in content.BlogInput) (models.Blog, error)
	UpdateBlog(ctx context.Context, actor, id string, in content.BlogInput) (models.Blog, error)
	ToggleBlog(ctx context.Context, actor, id string) (models.Blog, error)
	DeleteBlog(ctx context.Context, actor, id string) error
	AllBlogs(ctx context.Context) ([]models.Blog, error)
}

type SliderEditor interface {
	CreateSlider(ctx context.Context, actor string, in content.SliderInput) (models.Slider, error)
	UpdateSlider(ctx context.Context, actor, id string, in content.SliderInput) (models.Slider, error)
	ToggleSlider(ctx context.Context, actor, id string) (models.Slider, error)
	DeleteSlider(ctx context.Context, actor, id string) error
	AllSliders(ctx context.Context) ([]models.Slider, error)
}

type TestimonialEditor interface {
	SubmitTestimonial(ctx context.Context, actor string, in content.TestimonialInput) (models.Testimonial, error)
	ToggleTestimonial(ctx context.Context, actor, id string) (models.Testimonial, error)
	DeleteTestimonial(ctx context.Context, actor, id string) error
	AllTestimonials(ctx context.Context) ([]models.Testimonial, error)
}

func parseBlogForm(c *gin.Context) (content.BlogInput, error) {
	var in content.BlogInput
	if err := parseForm(c); err != nil {
		return in, err
	}
	formStrings(c, map[string]**string{
		"name":        &in.Name,
		"heading":     &in.Heading,
		"description": &in.Description,
		"image":       &in.Image,
	})
	if values, ok := c.GetPostFormArray("tags"); ok {
		in.Tags, in.TagsSet = parseListField(values), true
	}
	if values, ok := c.GetPostFormArray("categories"); ok {
		in.Categories, in.CatsSet = parseListField(values), true
	}
	return in, nil
}

func parseSliderForm(c *gin.Context) (content.SliderInput, error) {
	var in content.SliderInput
	if err := parseForm(c); err != nil {
		return in, err
	}
	formStrings(c, map[string]**string{
		"image":      &in.Image,
		"brandImg":   &in.BrandImg,
		"subtitle":   &in.Subtitle,
		"title":      &in.Title,
		"alignment":  &in.Alignment,
		"price":      &in.Price,
		"buttonText": &in.ButtonText,
		"buttonLink": &in.ButtonLink,
	})
	return in, nil
}

func CreateBlog(blogs BlogEditor, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/blogs/add"
		defer handlePanic(c, route)

		in, err := parseBlogForm(c)
		if err != nil {
			respondMultipartError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		blog, err := blogs.CreateBlog(ctx, actorName(c), c.ClientIP(), in)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Blog created", "blog": blog})
	}
}

func UpdateBlog(blogs BlogEditor, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/blogs/update/:id"
		defer handlePanic(c, route)

		in, err := parseBlogForm(c)
		if err != nil {
			respondMultipartError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		blog, err := blogs.UpdateBlog(ctx, actorName(c), c.Param("id"), in)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Blog updated", "blog": blog})
	}
}

func CreateSlider(sliders SliderEditor, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/sliders/add"
		defer handlePanic(c, route)

		in, err := parseSliderForm(c)
		if err != nil {
			respondMultipartError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		slider, err := sliders.CreateSlider(ctx, actorName(c), in)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Slider created", "slider": slider})
	}
}

func UpdateSlider(sliders SliderEditor, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/sliders/update/:id"
		defer handlePanic(c, route)

		in, err := parseSliderForm(c)
		if err != nil {
			respondMultipartError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		slider, err := sliders.UpdateSlider(ctx, actorName(c), c.Param("id"), in)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Slider updated", "slider": slider})
	}
}

// CreateTestimonial lets an admin enter a testimonial directly. It still
// starts as a draft.
func CreateTestimonial(testimonials TestimonialEditor, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/testimonials/add"
		defer handlePanic(c, route)

		if err := parseForm(c); err != nil {
			respondMultipartError(c, err)
			return
		}
		in := content.TestimonialInput{
			Name:       c.PostForm("name"),
			Profession: c.PostForm("profession"),
			Image:      c.PostForm("image"),
			Message:    c.PostForm("message"),
			IP:         c.ClientIP(),
		}
		rating, err := strconv.ParseFloat(strings.TrimSpace(c.PostForm("rating")), 64)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "rating must be a number")
			return
		}
		in.Rating = rating

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		t, err := testimonials.SubmitTestimonial(ctx, actorName(c), in)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Testimonial created", "testimonial": t})
	}
}

// listAll serves an admin listing of every non-deleted record.
func listAll[T any](route string, list func(ctx context.Context) ([]T, error), timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		items, err := list(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// toggleStatus flips a record between draft and published and returns it.
func toggleStatus[T any](route string, toggle func(ctx context.Context, actor, id string) (T, error), timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		item, err := toggle(ctx, actorName(c), c.Param("id"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func softDelete(route, message string, del func(ctx context.Context, actor, id string) error, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		if err := del(ctx, actorName(c), c.Param("id")); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

func ListAllBlogs(blogs BlogEditor, timeout time.Duration) gin.HandlerFunc {
	return listAll("GET /api/admin/blogs/view", blogs.AllBlogs, timeout)
}

func ToggleBlog(blogs BlogEditor, timeout time.Duration) gin.HandlerFunc {
	return toggleStatus("PUT /api/admin/blogs/toggle-status/:id", blogs.ToggleBlog, timeout)
}

func DeleteBlog(blogs BlogEditor, timeout time.Duration) gin.HandlerFunc {
	return softDelete("PUT /api/admin/blogs/delete/:id", "Blog deleted", blogs.DeleteBlog, timeout)
}

func ListAllSliders(sliders SliderEditor, timeout time.Duration) gin.HandlerFunc {
	return listAll("GET /api/admin/sliders/view", sliders.AllSliders, timeout)
}

func ToggleSlider(sliders SliderEditor, timeout time.Duration) gin.HandlerFunc {
	return toggleStatus("PUT /api/admin/sliders/toggle-status/:id", sliders.ToggleSlider, timeout)
}

func DeleteSlider(sliders SliderEditor, timeout time.Duration) gin.HandlerFunc {
	return softDelete("PUT /api/admin/sliders/delete/:id", "Slider deleted", sliders.DeleteSlider, timeout)
}

func ListAllTestimonials(testimonials TestimonialEditor, timeout time.Duration) gin.HandlerFunc {
	return listAll("GET /api/admin/testimonials/view", testimonials.AllTestimonials, timeout)
}

func ToggleTestimonial(testimonials TestimonialEditor, timeout time.Duration) gin.HandlerFunc {
	return toggleStatus("PUT /api/admin/testimonials/toggle-status/:id", testimonials.ToggleTestimonial, timeout)
}

func DeleteTestimonial(testimonials TestimonialEditor, timeout time.Duration) gin.HandlerFunc {
	return softDelete("PUT /api/admin/testimonials/delete/:id", "Testimonial deleted", testimonials.DeleteTestimonial, timeout)
}
