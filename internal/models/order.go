package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem is frozen at purchase time and never re-joined to the product.
type OrderItem struct {
	ProductID int64   `bson:"productId" json:"productId"`
	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
}

type OrderStatus string

const (
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

const (
	PaymentStripe = "stripe"
	PaymentCOD    = "cod"

	PaymentPaid   = "paid"
	PaymentUnpaid = "unpaid"
)

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID         int64              `bson:"orderId" json:"orderId"`
	UserID          int64              `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	ShippingCost    float64            `bson:"shippingCost" json:"shippingCost"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus   string             `bson:"paymentStatus" json:"paymentStatus"`
	PaymentID       string             `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	ShippingAddress Address            `bson:"shippingAddress" json:"shippingAddress"`
	BillingAddress  Address            `bson:"billingAddress" json:"billingAddress"`
	Status          OrderStatus        `bson:"status" json:"status"`
	StatusUpdatedOn *time.Time         `bson:"statusUpdatedOn,omitempty" json:"statusUpdatedOn,omitempty"`
	Audit           `bson:",inline"`
}
