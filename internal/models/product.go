package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductType is a capacity-limited merchandising slot.
type ProductType string

const (
	ProductTypeNone     ProductType = ""
	ProductTypeTrending ProductType = "trending"
	ProductTypeFeatured ProductType = "featured"
)

// ProductTypeCapacity is the number of active products a non-empty type may hold.
const ProductTypeCapacity = 12

func ParseProductType(value string) (ProductType, bool) {
	switch t := ProductType(strings.ToLower(strings.TrimSpace(value))); t {
	case ProductTypeNone, ProductTypeTrending, ProductTypeFeatured:
		return t, true
	default:
		return "", false
	}
}

type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PID             int64              `bson:"PID" json:"PID"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Price           float64            `bson:"price" json:"price"`
	Discount        float64            `bson:"discount" json:"discount"`
	ShowDiscount    int                `bson:"showDiscount" json:"showDiscount"`
	EffectivePrice  float64            `bson:"-" json:"effectivePrice"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	InStock         bool               `bson:"-" json:"inStock"`
	PrdType         ProductType        `bson:"prdType" json:"prdType"`
	BrndID          int64              `bson:"brndId,omitempty" json:"brndId,omitempty"`
	CatID           int64              `bson:"catId,omitempty" json:"catId,omitempty"`
	SubCatID        int64              `bson:"subCatId,omitempty" json:"subCatId,omitempty"`
	BrandName       string             `bson:"-" json:"brandName,omitempty"`
	CategoryName    string             `bson:"-" json:"categoryName,omitempty"`
	SubCategoryName string             `bson:"-" json:"subCategoryName,omitempty"`
	Tags            StringList         `bson:"tags" json:"tags"`
	AvgRtng         float64            `bson:"avgRtng" json:"avgRtng"`
	ReviewCount     int64              `bson:"reviewCount" json:"reviewCount"`
	ImgMain         string             `bson:"imgMain,omitempty" json:"imgMain,omitempty"`
	ImgMulti        []string           `bson:"imgMulti,omitempty" json:"imgMulti,omitempty"`
	CustomHTML      string             `bson:"customHTML,omitempty" json:"-"`
	Audit           `bson:",inline"`
}
