package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

var hundred = decimal.NewFromInt(100)

// IsDiscounted reports whether the discount applies to the price.
func IsDiscounted(showDiscount int, discount float64) bool {
	return showDiscount == 1 && discount > 0
}

// EffectivePrice is price × (1 − discount/100) when the discount is shown,
// otherwise the raw price.
func EffectivePrice(price, discount float64, showDiscount int) float64 {
	if showDiscount != 1 {
		return price
	}
	p := decimal.NewFromFloat(price)
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discount).Div(hundred))
	return p.Mul(factor).InexactFloat64()
}

// EffectivePriceExpr is EffectivePrice as an aggregation expression. Legacy
// documents store showDiscount as a boolean.
func EffectivePriceExpr() bson.M {
	return bson.M{"$cond": bson.A{
		bson.M{"$in": bson.A{"$showDiscount", bson.A{1, true}}},
		bson.M{"$subtract": bson.A{
			"$price",
			bson.M{"$multiply": bson.A{
				"$price",
				bson.M{"$divide": bson.A{bson.M{"$ifNull": bson.A{"$discount", 0}}, 100}},
			}},
		}},
		"$price",
	}}
}

func validatePricing(price, discount float64) error {
	if price < 0 {
		return fmt.Errorf("price must be 0 or greater")
	}
	if discount < 0 || discount > 100 {
		return fmt.Errorf("discount must be between 0 and 100")
	}
	return nil
}
