package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"eveningmall/internal/catalog"
	"eveningmall/internal/models"
)

const maxFormMemory = 32 << 20

// parseProductForm reads a multipart or urlencoded product form. Only fields
// that are present are set on the returned input. Images arrive as URLs in
// imgMain and imgMulti.
func parseProductForm(c *gin.Context) (catalog.ProductInput, error) {
	if err := parseForm(c); err != nil {
		return catalog.ProductInput{}, err
	}

	input := catalog.ProductInput{}

	formStrings(c, map[string]**string{
		"name":            &input.Name,
		"description":     &input.Description,
		"brandName":       &input.Brand,
		"categoryName":    &input.Category,
		"subCategoryName": &input.SubCategory,
		"imgMain":         &input.ImgMain,
	})

	for field, target := range map[string]**float64{
		"price":    &input.Price,
		"discount": &input.Discount,
	} {
		if value, ok := c.GetPostForm(field); ok {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return catalog.ProductInput{}, fmt.Errorf("%s must be a number", field)
			}
			*target = &parsed
		}
	}

	if value, ok := c.GetPostForm("quantity"); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return catalog.ProductInput{}, fmt.Errorf("quantity must be a whole number")
		}
		input.Quantity = &parsed
	}

	if value, ok := c.GetPostForm("showDiscount"); ok {
		parsed, err := parseBoolValue(value)
		if err != nil {
			return catalog.ProductInput{}, fmt.Errorf("showDiscount must be a boolean")
		}
		input.ShowDiscount = &parsed
	}

	if value, ok := c.GetPostForm("prdType"); ok {
		t, valid := models.ParseProductType(value)
		if !valid {
			return catalog.ProductInput{}, fmt.Errorf("invalid prdType %q", value)
		}
		input.PrdType = &t
	}

	if values, ok := c.GetPostFormArray("tags"); ok {
		input.Tags = parseListField(values)
		input.TagsSet = true
	}

	if values, ok := c.GetPostFormArray("imgMulti"); ok {
		input.ImgMulti = parseListField(values)
		input.ImgMultiSet = true
	}

	return input, nil
}

// parseForm parses the body as multipart when it is one.
func parseForm(c *gin.Context) error {
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// formStrings sets each target whose field is present in the form.
func formStrings(c *gin.Context, targets map[string]**string) {
	for field, target := range targets {
		if value, ok := c.GetPostForm(field); ok {
			v := strings.TrimSpace(value)
			*target = &v
		}
	}
}

// parseListField accepts repeated fields, a JSON array or a comma-separated
// string.
func parseListField(values []string) []string {
	out := []string{}
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if strings.HasPrefix(raw, "[") {
			var decoded []string
			if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
				for _, v := range decoded {
					out = append(out, models.SplitList(v)...)
				}
				continue
			}
		}
		out = append(out, models.SplitList(raw)...)
	}
	return out
}

func parseBoolValue(value string) (bool, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "on" {
		return true, nil
	}
	return strconv.ParseBool(value)
}

func respondMultipartError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
