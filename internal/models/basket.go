package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem references a product by its PID. Quantity is unused for wishlists.
type LineItem struct {
	ProductID int64      `bson:"productId" json:"productId"`
	Quantity  int        `bson:"quantity,omitempty" json:"quantity,omitempty"`
	AddedAt   time.Time  `bson:"addedAt" json:"addedAt"`
	UpdatedAt *time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Cart is keyed by the registered user's USID.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CID       int64              `bson:"CID" json:"CID"`
	UserID    int64              `bson:"userId" json:"userId"`
	Items     []LineItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Item returns the line for productID, if any.
func (c Cart) Item(productID int64) (LineItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return LineItem{}, false
}

type Wishlist struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    int64              `bson:"userId" json:"userId"`
	Items     []LineItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (w Wishlist) Contains(productID int64) bool {
	for _, item := range w.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
