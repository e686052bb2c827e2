package catalog

import (
	"context"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"eveningmall/internal/models"
)

// normalizeProductDocument coerces legacy field encodings (string prices,
// boolean showDiscount, string ratings) before decoding into models.Product.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	for _, field := range []string{"price", "discount", "avgRtng"} {
		raw[field] = toFloat(raw[field])
	}
	raw["quantity"] = int(toFloat(raw["quantity"]))

	switch v := raw["showDiscount"].(type) {
	case bool:
		if v {
			raw["showDiscount"] = 1
		} else {
			raw["showDiscount"] = 0
		}
	case string:
		s := strings.TrimSpace(strings.ToLower(v))
		if s == "1" || s == "true" {
			raw["showDiscount"] = 1
		} else {
			raw["showDiscount"] = 0
		}
	default:
		raw["showDiscount"] = int(toFloat(v))
	}

	if _, ok := raw["reviewCount"]; ok {
		raw["reviewCount"] = int64(toFloat(raw["reviewCount"]))
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, err
	}

	p.EffectivePrice = EffectivePrice(p.Price, p.Discount, p.ShowDiscount)
	p.InStock = p.Quantity > 0

	return p, nil
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		product, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
